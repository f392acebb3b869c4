// Package tree implements a cover tree over float32 vectors with exact
// Euclidean kNN search (depth-first and best-first variants).
//
// This implementation is adapted from github.com/viant/gds/tree/cover.
package tree
