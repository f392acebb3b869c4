//go:build gocv

package opencv

import (
	"fmt"

	"github.com/viant/imgsim/feature"
	"github.com/viant/imgsim/match"
	"gocv.io/x/gocv"
)

func init() {
	match.Register("flann", func(match.Options) (match.Matcher, error) { return &FLANN{}, nil })
}

// FLANN matches descriptors with OpenCV's FLANN-based matcher.
type FLANN struct{}

func (f *FLANN) String() string { return "flann" }

func (f *FLANN) KnnMatch(query, train []feature.Descriptor, k int) ([]feature.Candidate, error) {
	if k < 1 {
		return nil, fmt.Errorf("opencv: k must be positive, got %d", k)
	}
	if len(query) == 0 {
		return nil, nil
	}
	if len(train) == 0 {
		out := make([]feature.Candidate, len(query))
		for i := range out {
			out[i].QueryIdx = i
		}
		return out, nil
	}
	qm, err := toMat(query)
	if err != nil {
		return nil, err
	}
	defer qm.Close()
	tm, err := toMat(train)
	if err != nil {
		return nil, err
	}
	defer tm.Close()

	matcher := gocv.NewFlannBasedMatcher()
	defer matcher.Close()
	rows := matcher.KnnMatch(qm, tm, min(k, len(train)))

	out := make([]feature.Candidate, len(query))
	for i := range out {
		out[i].QueryIdx = i
	}
	for _, row := range rows {
		for _, m := range row {
			if m.QueryIdx < 0 || m.QueryIdx >= len(out) {
				continue
			}
			c := &out[m.QueryIdx]
			c.Neighbors = append(c.Neighbors, feature.Neighbor{TrainIdx: m.TrainIdx, Distance: m.Distance})
		}
	}
	return out, nil
}

func toMat(descs []feature.Descriptor) (gocv.Mat, error) {
	dim := len(descs[0])
	m := gocv.NewMatWithSize(len(descs), dim, gocv.MatTypeCV32F)
	for r, d := range descs {
		if len(d) != dim {
			m.Close()
			return gocv.Mat{}, fmt.Errorf("opencv: descriptor %d has dim %d, want %d", r, len(d), dim)
		}
		for c, v := range d {
			m.SetFloatAt(r, c, v)
		}
	}
	return m, nil
}
