// Package filter applies Lowe's distance-ratio test to kNN candidates. A
// nearest neighbor is accepted only when it is clearly closer than the
// runner-up, which rejects ambiguous matches caused by repetitive texture and
// background clutter.
package filter
