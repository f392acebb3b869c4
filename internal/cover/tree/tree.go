package tree

import (
	"container/heap"
	"math"
	"sort"
)

// Tree is a cover tree answering exact Euclidean kNN queries. Pruning uses
// the cached subtree radius of each node, so results do not depend on how
// well insertion kept the cover invariants.
type Tree struct {
	root         *Node
	base         float32
	distanceFunc DistanceFunc
	points       []*Point
	version      uint64
}

// NewTree constructs a cover tree with the provided expansion base. A base
// not greater than 1 falls back to 1.3.
func NewTree(base float32) *Tree {
	if base <= 1 {
		base = 1.3
	}
	return &Tree{base: base, distanceFunc: EuclideanDistance}
}

// Len returns the number of inserted points.
func (t *Tree) Len() int { return len(t.points) }

// Insert adds a point to the tree and returns its index. Indexes are
// assigned in insertion order starting at 0.
func (t *Tree) Insert(point *Point) int32 {
	point.index = int32(len(t.points))
	t.points = append(t.points, point)
	if t.root == nil {
		node := NewNode(point, 0)
		t.root = &node
	} else {
		t.insert(t.root, point, 0)
	}
	t.version++
	return point.index
}

// PointByIndex returns the point for a stored index.
func (t *Tree) PointByIndex(index int32) *Point {
	if index < 0 || int(index) >= len(t.points) {
		return nil
	}
	return t.points[index]
}

func (t *Tree) insert(node *Node, point *Point, level int32) {
	for {
		baseLevel := float32(math.Pow(float64(t.base), float64(level)))
		distance := t.distanceFunc(point, node.point)
		if distance < baseLevel {
			inserted := false
			for i := range node.children {
				child := &node.children[i]
				if t.distanceFunc(point, child.point) < baseLevel {
					node = child
					level--
					inserted = true
					break
				}
			}
			if !inserted {
				node.children = append(node.children, NewNode(point, level-1))
				return
			}
		} else {
			level++
			if level > node.level {
				newRoot := NewNode(point, level)
				newRoot.children = append(newRoot.children, *t.root)
				t.root = &newRoot
				return
			}
		}
	}
}

// KNearestNeighbors runs a depth-first kNN search. Results are ordered by
// increasing distance.
func (t *Tree) KNearestNeighbors(point *Point, k int) []*Neighbor {
	if t.root == nil || k <= 0 {
		return nil
	}
	h := &Neighbors{}
	heap.Init(h)
	t.kNearestNeighbors(t.root, point, k, h)
	return drain(h)
}

func (t *Tree) kNearestNeighbors(node *Node, point *Point, k int, h *Neighbors) {
	dc := t.distanceFunc(point, node.point)
	offer(h, k, Neighbor{Point: node.point, Distance: dc})
	if len(node.children) == 0 {
		return
	}
	type childDist struct {
		child *Node
		dist  float32
	}
	cds := make([]childDist, 0, len(node.children))
	for i := range node.children {
		child := &node.children[i]
		cds = append(cds, childDist{child: child, dist: t.distanceFunc(point, child.point)})
	}
	sort.Slice(cds, func(i, j int) bool { return cds[i].dist < cds[j].dist })
	for _, cd := range cds {
		if h.Len() == k && cd.dist-t.ensureRadius(cd.child) > (*h)[0].Distance {
			continue
		}
		t.kNearestNeighbors(cd.child, point, k, h)
	}
}

// KNearestNeighborsBestFirst performs a best-first search with a node
// priority queue ordered by lower-bound distance.
func (t *Tree) KNearestNeighborsBestFirst(point *Point, k int) []*Neighbor {
	if t.root == nil || k <= 0 {
		return nil
	}
	nh := &Neighbors{}
	heap.Init(nh)
	pq := &nodeQueue{}
	heap.Init(pq)
	rootDist := t.distanceFunc(point, t.root.point)
	heap.Push(pq, nodeItem{node: t.root, lb: rootDist - t.ensureRadius(t.root), centerDist: rootDist})

	for pq.Len() > 0 {
		top := heap.Pop(pq).(nodeItem)
		if nh.Len() == k && top.lb > (*nh)[0].Distance {
			break
		}
		offer(nh, k, Neighbor{Point: top.node.point, Distance: top.centerDist})
		for i := range top.node.children {
			child := &top.node.children[i]
			cd := t.distanceFunc(point, child.point)
			lb := cd - t.ensureRadius(child)
			if nh.Len() == k && lb > (*nh)[0].Distance {
				continue
			}
			heap.Push(pq, nodeItem{node: child, lb: lb, centerDist: cd})
		}
	}
	return drain(nh)
}

func offer(h *Neighbors, k int, n Neighbor) {
	if h.Len() < k {
		heap.Push(h, n)
		return
	}
	top := (*h)[0]
	if n.Distance < top.Distance || (n.Distance == top.Distance && n.Point.index < top.Point.index) {
		heap.Pop(h)
		heap.Push(h, n)
	}
}

func drain(h *Neighbors) []*Neighbor {
	result := make([]*Neighbor, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		n := heap.Pop(h).(Neighbor)
		result[i] = &n
	}
	return result
}

// ensureRadius returns the largest distance from n to any descendant,
// recomputing it when the tree changed since the last call.
func (t *Tree) ensureRadius(n *Node) float32 {
	if n == nil {
		return 0
	}
	if n.radiusComputed == t.version {
		return n.radius
	}
	maxR := float32(0)
	for i := range n.children {
		child := &n.children[i]
		d := t.distanceFunc(n.point, child.point) + t.ensureRadius(child)
		if d > maxR {
			maxR = d
		}
	}
	n.radius = maxR
	n.radiusComputed = t.version
	return maxR
}

type nodeItem struct {
	node       *Node
	lb         float32
	centerDist float32
}

type nodeQueue []nodeItem

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].lb < q[j].lb }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(nodeItem)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}
