// Package compare runs the image similarity pipeline for a pair of images:
// load, extract, kNN match with k=2, ratio filter and score. A Batch
// distributes independent pairs over a worker pool.
package compare
