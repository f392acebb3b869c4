package match

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/viant/imgsim/match/bruteforce"
	"github.com/viant/imgsim/match/cover"
	"github.com/viant/imgsim/match/kdforest"
	"github.com/viant/imgsim/match/vptree"
)

// Options tunes matcher construction. Approximate matchers use Trees and
// Checks; exact matchers ignore them.
type Options struct {
	// Trees is the number of randomized k-d trees searched together.
	Trees int
	// Checks bounds the train descriptors compared per query; 0 means no
	// bound.
	Checks int
}

// DefaultOptions mirrors the common FLANN KD-tree setup (5 trees, 50 checks).
func DefaultOptions() Options { return Options{Trees: 5, Checks: 50} }

// Factory creates a Matcher for the given options.
type Factory func(opts Options) (Matcher, error)

var registry = struct {
	mu        sync.RWMutex
	factories map[string]Factory
}{factories: map[string]Factory{}}

func init() {
	Register("bruteforce", func(Options) (Matcher, error) {
		return &IndexMatcher{Name: "bruteforce", NewIndex: func() Index { return &bruteforce.Index{} }}, nil
	})
	Register("vptree", func(Options) (Matcher, error) {
		return &IndexMatcher{Name: "vptree", NewIndex: func() Index { return &vptree.Index{} }}, nil
	})
	Register("cover", func(Options) (Matcher, error) {
		return &IndexMatcher{Name: "cover", NewIndex: func() Index { return cover.New() }}, nil
	})
	Register("kdforest", func(opts Options) (Matcher, error) {
		if opts.Trees <= 0 {
			return nil, fmt.Errorf("match: kdforest trees must be positive, got %d", opts.Trees)
		}
		return &IndexMatcher{Name: "kdforest", NewIndex: func() Index {
			return kdforest.New(opts.Trees, opts.Checks)
		}}, nil
	})
}

// Register makes a matcher kind available to New. Registering a kind twice
// replaces the earlier factory.
func Register(kind string, factory Factory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.factories[strings.ToLower(kind)] = factory
}

// New creates a matcher of the given kind. "brute" is accepted as an alias
// of "bruteforce".
func New(kind string, opts Options) (Matcher, error) {
	key := strings.ToLower(strings.TrimSpace(kind))
	switch key {
	case "", "brute":
		key = "bruteforce"
	}
	registry.mu.RLock()
	factory, ok := registry.factories[key]
	registry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("match: unknown matcher %q (available: %s)", kind, strings.Join(Kinds(), ", "))
	}
	return factory(opts)
}

// Kinds lists the registered matcher kinds in sorted order.
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
