package feature

import (
	"fmt"
	"math"
)

// L2Distance computes the Euclidean (L2) distance between two descriptors. It
// returns an error if the descriptors have different lengths.
func L2Distance(a, b Descriptor) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("feature: L2 distance dimension mismatch: %d vs %d", len(a), len(b))
	}
	return math.Sqrt(SquaredL2(a, b)), nil
}

// SquaredL2 returns the squared Euclidean distance without a dimension check.
// Callers must pass descriptors of equal length.
func SquaredL2(a, b Descriptor) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// Norm returns the L2 magnitude of d.
func Norm(d Descriptor) float64 {
	var sum float64
	for _, v := range d {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
