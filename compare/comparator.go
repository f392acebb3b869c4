package compare

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/viant/imgsim/extract"
	"github.com/viant/imgsim/feature"
	"github.com/viant/imgsim/filter"
	"github.com/viant/imgsim/imageio"
	"github.com/viant/imgsim/logging"
	"github.com/viant/imgsim/match"
	"github.com/viant/imgsim/metrics"
	"github.com/viant/imgsim/score"
)

// K is the neighbor count requested from the matcher; the ratio test needs
// the two nearest.
const K = 2

var (
	keyLoad    = []string{"compare", "load"}
	keyExtract = []string{"compare", "extract"}
	keyMatch   = []string{"compare", "match"}
	keyCount   = []string{"compare", "count"}
	keyFailed  = []string{"compare", "failed"}
)

// Comparator wires the pipeline collaborators. It holds no per-comparison
// state and is safe for concurrent use when its collaborators are.
type Comparator struct {
	Loader    imageio.Loader
	Extractor extract.Extractor
	Matcher   match.Matcher
	Ratio     float64
	Policy    filter.Policy
	Logger    *slog.Logger
}

// New creates a Comparator with the default ratio and the Reject policy.
func New(loader imageio.Loader, extractor extract.Extractor, matcher match.Matcher, opts ...Option) *Comparator {
	c := &Comparator{
		Loader:    loader,
		Extractor: extractor,
		Matcher:   matcher,
		Ratio:     filter.DefaultRatio,
		Policy:    filter.Reject,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = logging.GetLogger()
	}
	return c
}

// Compare loads both images and compares them.
func (c *Comparator) Compare(ctx context.Context, pathA, pathB string) (*Result, error) {
	started := time.Now()
	res, err := c.compare(ctx, pathA, pathB)
	metrics.IncrCounter(keyCount, 1)
	if err != nil {
		metrics.IncrCounter(keyFailed, 1)
		c.logger().Warn("comparison failed", "a", pathA, "b", pathB, "error", err)
		return nil, err
	}
	res.PathA, res.PathB = pathA, pathB
	res.Elapsed = time.Since(started)
	c.logger().Debug("compared", "a", pathA, "b", pathB, "score", res.Score, "good", res.Good, "elapsed", res.Elapsed)
	return res, nil
}

func (c *Comparator) compare(ctx context.Context, pathA, pathB string) (*Result, error) {
	if c.Loader == nil {
		return nil, errors.New("compare: no loader configured")
	}
	start := time.Now()
	imgA, err := c.load(ctx, pathA)
	if err != nil {
		return nil, err
	}
	imgB, err := c.load(ctx, pathB)
	if err != nil {
		return nil, err
	}
	metrics.MeasureSince(keyLoad, start)
	res, err := c.CompareImages(ctx, imgA, imgB)
	if err != nil {
		return nil, fmt.Errorf("compare %s vs %s: %w", pathA, pathB, err)
	}
	return res, nil
}

func (c *Comparator) load(ctx context.Context, path string) (*image.Gray, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := c.Loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("compare: load: %w", err)
	}
	return img, nil
}

// CompareImages extracts features from both rasters, matches A (query)
// against B (train) and scores the accepted matches. When either keypoint
// set is empty, or B has fewer than two descriptors, the result is
// degenerate with a zero score and the matcher is not called.
func (c *Comparator) CompareImages(ctx context.Context, imgA, imgB *image.Gray) (*Result, error) {
	started := time.Now()
	if imgA == nil || imgB == nil {
		return nil, errors.New("compare: nil image")
	}
	if !(c.Ratio > 0 && c.Ratio <= 1) {
		return nil, fmt.Errorf("%w: got %v", filter.ErrInvalidRatio, c.Ratio)
	}
	if c.Extractor == nil || c.Matcher == nil {
		return nil, errors.New("compare: extractor and matcher are required")
	}

	start := time.Now()
	setA, err := c.extract(ctx, imgA, "a")
	if err != nil {
		return nil, err
	}
	setB, err := c.extract(ctx, imgB, "b")
	if err != nil {
		return nil, err
	}
	metrics.MeasureSince(keyExtract, start)

	res := &Result{
		KeypointsA: setA.Len(),
		KeypointsB: setB.Len(),
		Ratio:      c.Ratio,
		Matcher:    matcherName(c.Matcher),
		SetA:       setA,
		SetB:       setB,
	}
	if setA.Len() == 0 || setB.Len() < K {
		res.Degenerate = true
		res.Elapsed = time.Since(started)
		c.logger().Debug("degenerate comparison", "keypoints_a", res.KeypointsA, "keypoints_b", res.KeypointsB)
		return res, nil
	}
	if setA.Dim() != setB.Dim() {
		return nil, fmt.Errorf("compare: descriptor dimension mismatch: %d vs %d", setA.Dim(), setB.Dim())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	candidates, err := c.Matcher.KnnMatch(setA.Descriptors, setB.Descriptors, K)
	metrics.MeasureSince(keyMatch, start)
	if err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}
	matches, stats, err := filter.RatioStats(candidates, c.Ratio, c.Policy)
	if err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}
	res.Matches = matches
	res.Good = len(matches)
	res.Excluded = stats.Excluded
	res.Score = score.Similarity(res.Good, res.KeypointsA, res.KeypointsB)
	res.Elapsed = time.Since(started)
	return res, nil
}

func (c *Comparator) extract(ctx context.Context, img *image.Gray, label string) (*feature.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	set, err := c.Extractor.Extract(img)
	if err != nil {
		return nil, fmt.Errorf("compare: extract %s: %w", label, err)
	}
	if set == nil {
		set = &feature.Set{}
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("compare: extract %s: %w", label, err)
	}
	return set, nil
}

func (c *Comparator) logger() *slog.Logger {
	if c.Logger == nil {
		return logging.GetLogger()
	}
	return c.Logger
}

func matcherName(m match.Matcher) string {
	if s, ok := m.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", m)
}
