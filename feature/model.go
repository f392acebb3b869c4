package feature

import "fmt"

// Keypoint is a detected image location with scale and orientation metadata.
type Keypoint struct {
	// X and Y are pixel coordinates in the raster the keypoint was detected on.
	X, Y float64

	// Size is the diameter of the meaningful neighbourhood.
	Size float64

	// Angle is the dominant gradient orientation in degrees, in [0, 360).
	Angle float64

	// Response is the detector strength; larger is stronger.
	Response float64

	// Octave is the pyramid octave the keypoint was found in.
	Octave int
}

// Descriptor summarizes the local appearance around a keypoint.
type Descriptor []float32

// Set holds keypoints and their descriptors. Keypoints[i] is described by
// Descriptors[i].
type Set struct {
	Keypoints   []Keypoint
	Descriptors []Descriptor
}

// Len returns the number of keypoints in the set. A nil set has none.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Keypoints)
}

// Dim returns the descriptor dimension, or 0 for an empty set.
func (s *Set) Dim() int {
	if s == nil || len(s.Descriptors) == 0 {
		return 0
	}
	return len(s.Descriptors[0])
}

// Validate checks that keypoints and descriptors are aligned and that every
// descriptor has the same dimension.
func (s *Set) Validate() error {
	if s == nil {
		return nil
	}
	if len(s.Keypoints) != len(s.Descriptors) {
		return fmt.Errorf("feature: keypoints and descriptors length mismatch: %d != %d", len(s.Keypoints), len(s.Descriptors))
	}
	dim := s.Dim()
	for i, d := range s.Descriptors {
		if len(d) != dim {
			return fmt.Errorf("feature: inconsistent descriptor dims at %d: %d vs %d", i, len(d), dim)
		}
	}
	return nil
}

// Neighbor is one train descriptor returned by a kNN search.
type Neighbor struct {
	TrainIdx int
	Distance float64
}

// Candidate holds the nearest train descriptors of a single query
// descriptor, ordered nearest first.
type Candidate struct {
	QueryIdx  int
	Neighbors []Neighbor
}

// Match is an accepted correspondence between a query and a train keypoint.
type Match struct {
	QueryIdx int
	TrainIdx int
	Distance float64
}
