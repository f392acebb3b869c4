package bruteforce

import (
	"fmt"
	"math"

	"github.com/viant/imgsim/feature"
	"github.com/viant/imgsim/internal/knn"
)

// Index is a brute-force L2 descriptor index.
type Index struct {
	vecs []feature.Descriptor
	dim  int
}

// Build loads train descriptors and checks that their dimensions agree.
func (i *Index) Build(train []feature.Descriptor) error {
	if len(train) == 0 {
		i.vecs, i.dim = nil, 0
		return nil
	}
	dim := len(train[0])
	for j := range train {
		if len(train[j]) != dim {
			return fmt.Errorf("bruteforce: inconsistent vector dims %d vs %d", len(train[j]), dim)
		}
	}
	i.vecs = append([]feature.Descriptor(nil), train...)
	i.dim = dim
	return nil
}

// Query returns the top-k nearest descriptors by L2 distance.
func (i *Index) Query(query feature.Descriptor, k int) ([]feature.Neighbor, error) {
	if len(i.vecs) == 0 {
		return nil, nil
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("bruteforce: query dim %d != index dim %d", len(query), i.dim)
	}
	if k <= 0 || k > len(i.vecs) {
		k = len(i.vecs)
	}
	res := knn.New(k)
	for j, v := range i.vecs {
		// squared distance preserves the order; sqrt is applied on output
		res.Push(j, feature.SquaredL2(query, v))
	}
	out := res.Sorted()
	for n := range out {
		out[n].Distance = math.Sqrt(out[n].Distance)
	}
	return out, nil
}
