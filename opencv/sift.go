//go:build gocv

package opencv

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/viant/imgsim/extract"
	"github.com/viant/imgsim/feature"
	"gocv.io/x/gocv"
)

func init() {
	extract.Register("sift", func(opts extract.Options) (extract.Extractor, error) {
		return NewSIFT(opts.MaxFeatures), nil
	})
}

// SIFT detects keypoints with OpenCV's SIFT implementation. A detector is
// created per call, so a SIFT value is safe for concurrent use.
type SIFT struct {
	// MaxFeatures keeps only the strongest keypoints; 0 keeps all.
	MaxFeatures int
}

func NewSIFT(maxFeatures int) *SIFT { return &SIFT{MaxFeatures: maxFeatures} }

func (s *SIFT) Extract(img *image.Gray) (*feature.Set, error) {
	if img == nil {
		return nil, errors.New("opencv: nil image")
	}
	mat, err := gocv.ImageGrayToMatGray(img)
	if err != nil {
		return nil, fmt.Errorf("opencv: %w", err)
	}
	defer mat.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	sift := gocv.NewSIFT()
	defer sift.Close()
	kps, desc := sift.DetectAndCompute(mat, mask)
	defer desc.Close()

	set := &feature.Set{}
	if len(kps) == 0 || desc.Empty() {
		return set, nil
	}
	if desc.Rows() != len(kps) {
		return nil, fmt.Errorf("opencv: %d keypoints but %d descriptors", len(kps), desc.Rows())
	}
	order := make([]int, len(kps))
	for i := range order {
		order[i] = i
	}
	if s.MaxFeatures > 0 && len(order) > s.MaxFeatures {
		sort.SliceStable(order, func(a, b int) bool { return kps[order[a]].Response > kps[order[b]].Response })
		order = order[:s.MaxFeatures]
		sort.Ints(order)
	}
	cols := desc.Cols()
	for _, i := range order {
		kp := kps[i]
		set.Keypoints = append(set.Keypoints, feature.Keypoint{
			X:        kp.X,
			Y:        kp.Y,
			Size:     kp.Size,
			Angle:    kp.Angle,
			Response: kp.Response,
			Octave:   kp.Octave,
		})
		d := make(feature.Descriptor, cols)
		for c := 0; c < cols; c++ {
			d[c] = desc.GetFloatAt(i, c)
		}
		set.Descriptors = append(set.Descriptors, d)
	}
	return set, nil
}
