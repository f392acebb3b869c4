package kdforest

import (
	"math/rand"
	"testing"

	"github.com/viant/imgsim/feature"
	"github.com/viant/imgsim/match/bruteforce"
)

func randomSet(rng *rand.Rand, n, dim int) []feature.Descriptor {
	out := make([]feature.Descriptor, n)
	for i := range out {
		d := make(feature.Descriptor, dim)
		for j := range d {
			d[j] = rng.Float32()
		}
		out[i] = d
	}
	return out
}

func TestIndex_FindsExactDuplicates(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	train := randomSet(rng, 1000, 128)

	idx := New(DefaultTrees, DefaultChecks)
	if err := idx.Build(train); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for j := range train {
		got, err := idx.Query(train[j], 2)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("query %d: got %d neighbors, want 2", j, len(got))
		}
		if got[0].TrainIdx != j || got[0].Distance != 0 {
			t.Fatalf("query %d: nearest = %+v, want itself at distance 0", j, got[0])
		}
		if got[1].Distance < got[0].Distance {
			t.Fatalf("query %d: neighbors not ordered: %+v", j, got)
		}
	}
}

func TestIndex_RecallOnPerturbedQueries(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	train := randomSet(rng, 1000, 128)

	idx := New(DefaultTrees, DefaultChecks)
	if err := idx.Build(train); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	hits := 0
	for j := range train {
		q := make(feature.Descriptor, len(train[j]))
		for d, v := range train[j] {
			q[d] = v + (rng.Float32()-0.5)*0.002
		}
		got, err := idx.Query(q, 2)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(got) > 0 && got[0].TrainIdx == j {
			hits++
		}
	}
	if recall := float64(hits) / float64(len(train)); recall < 0.95 {
		t.Fatalf("recall = %.3f, want >= 0.95", recall)
	}
}

func TestIndex_UnlimitedChecksIsExact(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	train := randomSet(rng, 300, 16)
	query := randomSet(rng, 40, 16)

	idx := New(4, 0)
	if err := idx.Build(train); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	bf := &bruteforce.Index{}
	if err := bf.Build(train); err != nil {
		t.Fatalf("bruteforce Build failed: %v", err)
	}
	for q := range query {
		got, err := idx.Query(query[q], 2)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		want, _ := bf.Query(query[q], 2)
		for n := range want {
			if got[n].TrainIdx != want[n].TrainIdx {
				t.Fatalf("query %d rank %d: got %d, want %d", q, n, got[n].TrainIdx, want[n].TrainIdx)
			}
		}
	}
}

func TestIndex_DuplicatesAndSmallSets(t *testing.T) {
	idx := New(0, 0)
	if err := idx.Build(nil); err != nil {
		t.Fatalf("Build(nil) failed: %v", err)
	}
	if got, err := idx.Query(feature.Descriptor{1}, 2); err != nil || got != nil {
		t.Fatalf("Query on empty = %v, %v", got, err)
	}

	same := []feature.Descriptor{{1, 1}, {1, 1}, {1, 1}}
	if err := idx.Build(same); err != nil {
		t.Fatalf("Build(duplicates) failed: %v", err)
	}
	got, err := idx.Query(feature.Descriptor{1, 1}, 2)
	if err != nil || len(got) != 2 || got[0].TrainIdx != 0 || got[1].TrainIdx != 1 {
		t.Fatalf("Query = %+v, %v; want train 0 and 1", got, err)
	}

	if err := idx.Build([]feature.Descriptor{{1, 0}, {0}}); err == nil {
		t.Fatalf("expected inconsistent dims error")
	}
	if err := idx.Build([]feature.Descriptor{{1, 0}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := idx.Query(feature.Descriptor{1}, 2); err == nil {
		t.Fatalf("expected query dim mismatch error")
	}
}
