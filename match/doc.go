// Package match finds, for every query descriptor, its k nearest train
// descriptors by L2 distance. Matchers are either built on an Index (exact
// brute force, VP-tree, cover tree, or an approximate randomized k-d forest) or
// registered by optional backends.
package match
