package score

// Similarity returns accepted / min(sizeA, sizeB) * 100, clamped to [0, 100].
// It returns 0 when either set is empty.
func Similarity(accepted, sizeA, sizeB int) float64 {
	total := min(sizeA, sizeB)
	if total <= 0 || accepted <= 0 {
		return 0
	}
	if accepted >= total {
		return 100
	}
	return float64(accepted) / float64(total) * 100
}
