// Package bruteforce provides an exact descriptor index that answers kNN
// queries by scanning all train descriptors. It is the baseline every other
// index is checked against.
package bruteforce
