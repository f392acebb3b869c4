// Package knn keeps the k best (smallest distance) entries seen during a
// nearest-neighbor scan.
package knn

import (
	"math"
	"sort"

	"github.com/viant/imgsim/feature"
)

// Results is a bounded candidate list. k is small (2 for the ratio test) so
// a linear worst-slot scan beats a heap.
type Results struct {
	k     int
	items []feature.Neighbor
	worst int
}

// New returns an empty result list keeping at most k entries.
func New(k int) *Results {
	if k < 1 {
		k = 1
	}
	return &Results{k: k, items: make([]feature.Neighbor, 0, k)}
}

// Full reports whether k entries are held.
func (r *Results) Full() bool { return len(r.items) == r.k }

// Bound returns the distance an entry must beat to be admitted, +Inf while
// the list is not full.
func (r *Results) Bound() float64 {
	if !r.Full() {
		return math.Inf(1)
	}
	return r.items[r.worst].Distance
}

// Push offers an entry; it is kept if the list is not full or it beats the
// current worst entry, ties going to the lower index.
func (r *Results) Push(idx int, dist float64) {
	if !r.Full() {
		r.items = append(r.items, feature.Neighbor{TrainIdx: idx, Distance: dist})
		if r.Full() {
			r.findWorst()
		}
		return
	}
	if n := (feature.Neighbor{TrainIdx: idx, Distance: dist}); less(n, r.items[r.worst]) {
		r.items[r.worst] = n
		r.findWorst()
	}
}

func (r *Results) findWorst() {
	r.worst = 0
	for i := 1; i < len(r.items); i++ {
		if less(r.items[r.worst], r.items[i]) {
			r.worst = i
		}
	}
}

// Sorted returns the kept entries nearest first; ties break on train index.
func (r *Results) Sorted() []feature.Neighbor {
	out := append([]feature.Neighbor(nil), r.items...)
	sort.Slice(out, func(a, b int) bool { return less(out[a], out[b]) })
	return out
}

func less(a, b feature.Neighbor) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.TrainIdx < b.TrainIdx
}
