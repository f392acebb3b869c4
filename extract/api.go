package extract

import (
	"fmt"
	"image"
	"sort"
	"strings"
	"sync"

	"github.com/viant/imgsim/feature"
)

// Extractor produces keypoints and descriptors aligned by index.
type Extractor interface {
	Extract(img *image.Gray) (*feature.Set, error)
}

// Options tunes keypoint detection.
type Options struct {
	// MaxFeatures keeps only the strongest keypoints; 0 keeps all.
	MaxFeatures int
	// ContrastThreshold rejects weak extrema in low-contrast regions.
	ContrastThreshold float64
	// EdgeThreshold rejects edge-like extrema; larger keeps more.
	EdgeThreshold float64
	// Sigma is the blur of the first scale of every octave.
	Sigma float64
	// Intervals is the number of scales sampled per octave.
	Intervals int
}

// DefaultOptions returns the usual SIFT parameters.
func DefaultOptions() Options {
	return Options{
		ContrastThreshold: 0.04,
		EdgeThreshold:     10,
		Sigma:             1.6,
		Intervals:         3,
	}
}

// Validate reports an error for unusable options.
func (o Options) Validate() error {
	switch {
	case o.MaxFeatures < 0:
		return fmt.Errorf("extract: max features must not be negative, got %d", o.MaxFeatures)
	case o.ContrastThreshold < 0:
		return fmt.Errorf("extract: contrast threshold must not be negative, got %v", o.ContrastThreshold)
	case o.EdgeThreshold <= 0:
		return fmt.Errorf("extract: edge threshold must be positive, got %v", o.EdgeThreshold)
	case o.Sigma <= 0:
		return fmt.Errorf("extract: sigma must be positive, got %v", o.Sigma)
	case o.Intervals < 1:
		return fmt.Errorf("extract: intervals must be at least 1, got %d", o.Intervals)
	}
	return nil
}

// Factory creates an Extractor.
type Factory func(opts Options) (Extractor, error)

var registry = struct {
	mu        sync.RWMutex
	factories map[string]Factory
}{factories: map[string]Factory{}}

func init() {
	Register("dog", func(opts Options) (Extractor, error) { return NewDoG(opts) })
}

// Register makes an extractor kind available to New.
func Register(kind string, factory Factory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.factories[strings.ToLower(kind)] = factory
}

// New creates an extractor of the given kind; the empty kind means "dog".
func New(kind string, opts Options) (Extractor, error) {
	key := strings.ToLower(strings.TrimSpace(kind))
	if key == "" {
		key = "dog"
	}
	registry.mu.RLock()
	factory, ok := registry.factories[key]
	registry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("extract: unknown extractor %q (available: %s)", kind, strings.Join(Kinds(), ", "))
	}
	return factory(opts)
}

// Kinds lists the registered extractor kinds in sorted order.
func Kinds() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	kinds := make([]string, 0, len(registry.factories))
	for k := range registry.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
