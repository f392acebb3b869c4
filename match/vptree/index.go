package vptree

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/viant/imgsim/feature"
	"github.com/viant/imgsim/internal/knn"
)

// Index implements an L2 kNN index using a VP-tree to prune search.
type Index struct {
	vecs []feature.Descriptor
	dim  int
	root *node
}

type node struct {
	idx   int // index into vecs
	thr   float64
	left  *node // points with distance to idx <= thr
	right *node
}

// Build constructs the VP-tree.
func (i *Index) Build(train []feature.Descriptor) error {
	i.vecs = append([]feature.Descriptor(nil), train...)
	if len(train) == 0 {
		i.dim = 0
		i.root = nil
		return nil
	}
	i.dim = len(train[0])
	for j := range train {
		if len(train[j]) != i.dim {
			return errors.New("vptree: inconsistent dims")
		}
	}
	idxs := make([]int, len(train))
	for k := range idxs {
		idxs[k] = k
	}
	i.root = i.buildVP(idxs)
	return nil
}

func (i *Index) buildVP(idxs []int) *node {
	if len(idxs) == 0 {
		return nil
	}
	// last element is the vantage point to keep builds deterministic
	vp := idxs[len(idxs)-1]
	idxs = idxs[:len(idxs)-1]
	if len(idxs) == 0 {
		return &node{idx: vp}
	}
	dists := make([]float64, len(idxs))
	for k, j := range idxs {
		dists[k] = i.distance(i.vecs[vp], i.vecs[j])
	}
	order := make([]int, len(idxs))
	for k := range order {
		order[k] = k
	}
	sort.Slice(order, func(a, b int) bool { return dists[order[a]] < dists[order[b]] })
	mid := len(order) / 2
	thr := dists[order[mid]]
	leftIdxs := make([]int, 0, mid+1)
	rightIdxs := make([]int, 0, len(order)-(mid+1))
	for rank, k := range order {
		if rank <= mid {
			leftIdxs = append(leftIdxs, idxs[k])
		} else {
			rightIdxs = append(rightIdxs, idxs[k])
		}
	}
	return &node{
		idx:   vp,
		thr:   thr,
		left:  i.buildVP(leftIdxs),
		right: i.buildVP(rightIdxs),
	}
}

// Query returns up to k neighbors ordered by increasing L2 distance.
func (i *Index) Query(query feature.Descriptor, k int) ([]feature.Neighbor, error) {
	if len(i.vecs) == 0 {
		return nil, nil
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("vptree: query dim %d != index dim %d", len(query), i.dim)
	}
	if k <= 0 || k > len(i.vecs) {
		k = len(i.vecs)
	}
	res := knn.New(k)
	var search func(n *node)
	search = func(n *node) {
		if n == nil {
			return
		}
		d := i.distance(query, i.vecs[n.idx])
		res.Push(n.idx, d)
		// left holds points within thr of the vantage point, right the rest
		if d < n.thr {
			if d-res.Bound() <= n.thr {
				search(n.left)
			}
			if d+res.Bound() >= n.thr {
				search(n.right)
			}
		} else {
			if d+res.Bound() >= n.thr {
				search(n.right)
			}
			if d-res.Bound() <= n.thr {
				search(n.left)
			}
		}
	}
	search(i.root)
	return res.Sorted(), nil
}

func (i *Index) distance(a, b feature.Descriptor) float64 {
	return math.Sqrt(feature.SquaredL2(a, b))
}
