// Package opencv registers OpenCV-backed collaborators: the "sift" extractor
// and the "flann" matcher. It is compiled only with the gocv build tag and
// needs OpenCV 4 with the features2d module installed.
package opencv
