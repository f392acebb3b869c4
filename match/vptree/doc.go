// Package vptree provides an exact descriptor index built as a vantage-point
// tree. Queries prune subtrees with the triangle inequality, which holds for
// the L2 metric used between descriptors.
package vptree
