package match

import (
	"fmt"

	"github.com/viant/imgsim/feature"
)

// IndexMatcher adapts an Index into a Matcher. A fresh index is built for
// every KnnMatch call, so no state survives between comparisons.
type IndexMatcher struct {
	Name     string
	NewIndex func() Index
}

// KnnMatch builds an index over train and queries it with every query
// descriptor in order.
func (m *IndexMatcher) KnnMatch(query, train []feature.Descriptor, k int) ([]feature.Candidate, error) {
	if k < 1 {
		return nil, fmt.Errorf("match: k must be positive, got %d", k)
	}
	if len(query) == 0 {
		return nil, nil
	}
	idx := m.NewIndex()
	if err := idx.Build(train); err != nil {
		return nil, fmt.Errorf("match: %s build: %w", m.Name, err)
	}
	out := make([]feature.Candidate, len(query))
	for i, q := range query {
		neighbors, err := idx.Query(q, k)
		if err != nil {
			return nil, fmt.Errorf("match: %s query %d: %w", m.Name, i, err)
		}
		out[i] = feature.Candidate{QueryIdx: i, Neighbors: neighbors}
	}
	return out, nil
}

// String returns the matcher name.
func (m *IndexMatcher) String() string { return m.Name }
