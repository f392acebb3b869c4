package compare

import (
	"time"

	"github.com/viant/imgsim/feature"
)

// Result describes one comparison.
type Result struct {
	PathA      string        `json:"path_a,omitempty"`
	PathB      string        `json:"path_b,omitempty"`
	KeypointsA int           `json:"keypoints_a"`
	KeypointsB int           `json:"keypoints_b"`
	Good       int           `json:"good_matches"`
	Score      float64       `json:"score"`
	Degenerate bool          `json:"degenerate,omitempty"`
	Excluded   int           `json:"excluded,omitempty"`
	Matcher    string        `json:"matcher,omitempty"`
	Ratio      float64       `json:"ratio"`
	Elapsed    time.Duration `json:"elapsed_ns"`

	// Matches are the accepted correspondences, query in A, train in B.
	Matches []feature.Match `json:"-"`
	SetA    *feature.Set    `json:"-"`
	SetB    *feature.Set    `json:"-"`
}
