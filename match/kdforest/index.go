package kdforest

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/viant/imgsim/feature"
	"github.com/viant/imgsim/internal/knn"
)

const (
	// DefaultTrees and DefaultChecks follow the usual FLANN k-d tree setup.
	DefaultTrees  = 5
	DefaultChecks = 50

	// sampleSize bounds the points used to estimate split statistics.
	sampleSize = 100
	// topDims is the number of high-variance dimensions a split picks from.
	topDims = 5
)

// Index is an approximate L2 kNN index over a forest of randomized k-d
// trees.
type Index struct {
	trees  int
	checks int
	seed   int64
	dim    int
	vecs   []feature.Descriptor
	roots  []*node
}

type node struct {
	dim   int
	split float32
	left  *node // values below split
	right *node
	items []int // set on leaves only
}

// Option configures an Index.
type Option func(*Index)

// WithSeed fixes the random source used to pick split dimensions.
func WithSeed(seed int64) Option {
	return func(i *Index) { i.seed = seed }
}

// New creates an index with the given number of trees and a per-query
// budget of checked descriptors. trees <= 0 falls back to DefaultTrees;
// checks <= 0 removes the budget, making queries exact.
func New(trees, checks int, opts ...Option) *Index {
	if trees <= 0 {
		trees = DefaultTrees
	}
	i := &Index{trees: trees, checks: checks, seed: 1}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Build constructs every tree over the full train set.
func (i *Index) Build(train []feature.Descriptor) error {
	i.vecs = append([]feature.Descriptor(nil), train...)
	i.roots = nil
	i.dim = 0
	if len(train) == 0 {
		return nil
	}
	i.dim = len(train[0])
	for j := range train {
		if len(train[j]) != i.dim {
			return errors.New("kdforest: inconsistent dims")
		}
	}
	rng := rand.New(rand.NewSource(i.seed))
	for t := 0; t < i.trees; t++ {
		idxs := make([]int, len(train))
		for k := range idxs {
			idxs[k] = k
		}
		rng.Shuffle(len(idxs), func(a, b int) { idxs[a], idxs[b] = idxs[b], idxs[a] })
		i.roots = append(i.roots, i.build(idxs, rng))
	}
	return nil
}

func (i *Index) build(idxs []int, rng *rand.Rand) *node {
	if len(idxs) == 1 {
		return &node{items: idxs}
	}
	dim, split, ok := i.chooseSplit(idxs, rng)
	if !ok {
		return &node{items: idxs}
	}
	var left, right []int
	for _, j := range idxs {
		if i.vecs[j][dim] < split {
			left = append(left, j)
		} else {
			right = append(right, j)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &node{items: idxs}
	}
	return &node{dim: dim, split: split, left: i.build(left, rng), right: i.build(right, rng)}
}

// chooseSplit estimates per-dimension mean and variance on a sample and
// picks one of the highest-variance dimensions at random, splitting at its
// mean. It reports false when the sample does not vary.
func (i *Index) chooseSplit(idxs []int, rng *rand.Rand) (int, float32, bool) {
	sample := idxs[:min(len(idxs), sampleSize)]
	mean := make([]float64, i.dim)
	for _, j := range sample {
		for d, v := range i.vecs[j] {
			mean[d] += float64(v)
		}
	}
	for d := range mean {
		mean[d] /= float64(len(sample))
	}
	variance := make([]float64, i.dim)
	for _, j := range sample {
		for d, v := range i.vecs[j] {
			diff := float64(v) - mean[d]
			variance[d] += diff * diff
		}
	}
	order := make([]int, 0, i.dim)
	for d := range variance {
		if variance[d] > 0 {
			order = append(order, d)
		}
	}
	if len(order) == 0 {
		return 0, 0, false
	}
	sort.SliceStable(order, func(a, b int) bool { return variance[order[a]] > variance[order[b]] })
	dim := order[rng.Intn(min(len(order), topDims))]
	return dim, float32(mean[dim]), true
}

// Query returns up to k neighbors ordered by increasing L2 distance. The
// result is approximate when a check budget is set.
func (i *Index) Query(query feature.Descriptor, k int) ([]feature.Neighbor, error) {
	if len(i.vecs) == 0 {
		return nil, nil
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("kdforest: query dim %d != index dim %d", len(query), i.dim)
	}
	if k <= 0 || k > len(i.vecs) {
		k = len(i.vecs)
	}
	s := &search{
		index:   i,
		query:   query,
		res:     knn.New(k),
		checked: make([]bool, len(i.vecs)),
	}
	for _, root := range i.roots {
		s.descend(root, 0)
	}
	for s.branches.Len() > 0 && (!s.budgetSpent() || !s.res.Full()) {
		b := heap.Pop(&s.branches).(branch)
		s.descend(b.node, b.minDist)
	}
	return s.res.Sorted(), nil
}

type search struct {
	index    *Index
	query    feature.Descriptor
	res      *knn.Results
	checked  []bool
	checks   int
	branches branches
}

func (s *search) budgetSpent() bool {
	return s.index.checks > 0 && s.checks >= s.index.checks
}

// pruned reports whether a branch can be skipped. minDist sums squared
// offsets to every split crossed, which can overestimate when a dimension is
// split twice on the way down, so budgetless searches never prune.
func (s *search) pruned(minDist float64) bool {
	if s.index.checks <= 0 || !s.res.Full() {
		return false
	}
	bound := s.res.Bound()
	return minDist > bound*bound
}

func (s *search) descend(n *node, minDist float64) {
	for n.items == nil {
		if s.pruned(minDist) {
			return
		}
		diff := float64(s.query[n.dim]) - float64(n.split)
		near, far := n.right, n.left
		if diff < 0 {
			near, far = n.left, n.right
		}
		heap.Push(&s.branches, branch{node: far, minDist: minDist + diff*diff})
		n = near
	}
	for _, j := range n.items {
		if s.checked[j] {
			continue
		}
		if s.budgetSpent() && s.res.Full() {
			return
		}
		s.checked[j] = true
		s.checks++
		s.res.Push(j, math.Sqrt(feature.SquaredL2(s.query, s.index.vecs[j])))
	}
}

type branch struct {
	node    *node
	minDist float64
}

type branches []branch

func (h branches) Len() int            { return len(h) }
func (h branches) Less(a, b int) bool  { return h[a].minDist < h[b].minDist }
func (h branches) Swap(a, b int)       { h[a], h[b] = h[b], h[a] }
func (h *branches) Push(x interface{}) { *h = append(*h, x.(branch)) }
func (h *branches) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
