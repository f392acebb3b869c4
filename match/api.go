package match

import "github.com/viant/imgsim/feature"

// Index answers kNN queries over a fixed set of train descriptors.
type Index interface {
	// Build constructs the index from the train descriptors. All descriptors
	// must have the same dimension.
	Build(train []feature.Descriptor) error

	// Query returns up to k train descriptors nearest to query, nearest
	// first, with their L2 distances.
	Query(query feature.Descriptor, k int) ([]feature.Neighbor, error)
}

// Matcher returns, for each query descriptor, its k nearest train
// descriptors. A candidate carries min(k, len(train)) neighbors.
type Matcher interface {
	KnnMatch(query, train []feature.Descriptor, k int) ([]feature.Candidate, error)
}
