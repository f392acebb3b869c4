package cover

import (
	"errors"
	"fmt"

	"github.com/viant/imgsim/feature"
	"github.com/viant/imgsim/internal/cover/tree"
)

// DefaultBase is the cover-tree expansion base.
const DefaultBase = 1.3

// Index implements an L2 kNN index over a cover tree.
type Index struct {
	base float32
	dim  int
	tree *tree.Tree
}

// Option configures an Index.
type Option func(*Index)

// WithBase sets the expansion base; values not greater than 1 are ignored.
func WithBase(base float32) Option {
	return func(i *Index) {
		if base > 1 {
			i.base = base
		}
	}
}

// New creates an empty cover-tree index.
func New(opts ...Option) *Index {
	i := &Index{base: DefaultBase}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Build inserts every train descriptor; insertion order defines the train
// index reported by Query.
func (i *Index) Build(train []feature.Descriptor) error {
	i.tree = tree.NewTree(i.base)
	i.dim = 0
	if len(train) == 0 {
		return nil
	}
	i.dim = len(train[0])
	for j := range train {
		if len(train[j]) != i.dim {
			return errors.New("cover: inconsistent dims")
		}
		i.tree.Insert(tree.NewPoint(train[j]...))
	}
	return nil
}

// Query returns up to k neighbors ordered by increasing L2 distance.
func (i *Index) Query(query feature.Descriptor, k int) ([]feature.Neighbor, error) {
	if i.tree == nil || i.tree.Len() == 0 {
		return nil, nil
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("cover: query dim %d != index dim %d", len(query), i.dim)
	}
	if k <= 0 || k > i.tree.Len() {
		k = i.tree.Len()
	}
	found := i.tree.KNearestNeighborsBestFirst(tree.NewPoint(query...), k)
	out := make([]feature.Neighbor, len(found))
	for n, nb := range found {
		out[n] = feature.Neighbor{TrainIdx: int(nb.Point.Index()), Distance: float64(nb.Distance)}
	}
	return out, nil
}
