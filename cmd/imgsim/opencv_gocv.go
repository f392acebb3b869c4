//go:build gocv

package main

import _ "github.com/viant/imgsim/opencv" // register the sift extractor and flann matcher
