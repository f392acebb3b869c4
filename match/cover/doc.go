// Package cover provides an exact descriptor index backed by a cover tree.
package cover
