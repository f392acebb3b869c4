// Package extract detects keypoints and computes their descriptors.
//
// The built-in DoG extractor follows the classic SIFT recipe: a Gaussian
// scale space, difference-of-Gaussian extrema with sub-pixel refinement,
// contrast and edge rejection, dominant orientations from a 36-bin gradient
// histogram, and 4x4x8 gradient histograms as 128-dimensional descriptors.
// Other extractors can be plugged in with Register.
package extract
