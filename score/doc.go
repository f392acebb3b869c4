// Package score converts an accepted-match count into a similarity
// percentage relative to the smaller keypoint set.
package score
