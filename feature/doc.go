// Package feature defines the data model shared by the extraction, matching
// and scoring stages:
//   - Keypoint and Descriptor, aligned by index inside a Set
//   - Neighbor and Candidate, produced by a kNN matcher
//   - Match, an accepted query-to-train correspondence
//   - L2 distance between descriptors
package feature
