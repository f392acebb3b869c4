// Package render draws two images side by side with their keypoints and the
// accepted correspondences between them, and encodes the result as PNG.
package render
