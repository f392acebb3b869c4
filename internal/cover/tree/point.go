package tree

// Point is a descriptor stored in the cover tree.
type Point struct {
	index  int32
	Vector []float32
}

// Index returns the insertion index of the point, or -1 if it was never
// inserted.
func (p *Point) Index() int32 {
	if p == nil {
		return -1
	}
	return p.index
}

// NewPoint constructs a point for the given vector.
func NewPoint(vector ...float32) *Point {
	return &Point{index: -1, Vector: vector}
}
