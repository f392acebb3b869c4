package filter

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/viant/imgsim/feature"
)

func pair(q int, d1, d2 float64) feature.Candidate {
	return feature.Candidate{
		QueryIdx: q,
		Neighbors: []feature.Neighbor{
			{TrainIdx: q * 10, Distance: d1},
			{TrainIdx: q*10 + 1, Distance: d2},
		},
	}
}

func TestRatio_Scenario(t *testing.T) {
	candidates := []feature.Candidate{pair(0, 1.0, 4.0), pair(1, 3.0, 3.1)}

	got, err := Ratio(candidates, 0.75, Reject)
	if err != nil {
		t.Fatalf("Ratio failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("accepted %d matches, want 1", len(got))
	}
	if got[0].QueryIdx != 0 || got[0].TrainIdx != 0 || got[0].Distance != 1.0 {
		t.Fatalf("accepted match = %+v, want query 0 -> train 0 at 1.0", got[0])
	}
}

func TestRatio_Empty(t *testing.T) {
	got, err := Ratio(nil, DefaultRatio, Reject)
	if err != nil {
		t.Fatalf("Ratio(nil) failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Ratio(nil) returned %d matches, want 0", len(got))
	}
}

func TestRatio_StrictInequality(t *testing.T) {
	// 3 == 0.75*4 must be rejected.
	got, err := Ratio([]feature.Candidate{pair(0, 3, 4)}, 0.75, Reject)
	if err != nil {
		t.Fatalf("Ratio failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("boundary candidate accepted: %+v", got)
	}
	// Two zero distances can never pass.
	got, _ = Ratio([]feature.Candidate{pair(0, 0, 0)}, 1, Reject)
	if len(got) != 0 {
		t.Fatalf("tied zero distances accepted: %+v", got)
	}
}

func TestRatio_InvalidRatio(t *testing.T) {
	for _, r := range []float64{0, -0.5, 1.01} {
		if _, err := Ratio([]feature.Candidate{pair(0, 1, 2)}, r, Reject); !errors.Is(err, ErrInvalidRatio) {
			t.Fatalf("Ratio(r=%v) err = %v, want ErrInvalidRatio", r, err)
		}
	}
}

func TestRatio_MalformedReject(t *testing.T) {
	candidates := []feature.Candidate{
		pair(0, 1, 4),
		{QueryIdx: 1, Neighbors: []feature.Neighbor{{TrainIdx: 0, Distance: 1}}},
	}
	got, err := Ratio(candidates, 0.75, Reject)
	if !errors.Is(err, ErrMalformedCandidate) {
		t.Fatalf("err = %v, want ErrMalformedCandidate", err)
	}
	if got != nil {
		t.Fatalf("expected no partial output, got %+v", got)
	}
}

func TestRatio_MalformedExclude(t *testing.T) {
	candidates := []feature.Candidate{
		{QueryIdx: 0},
		pair(1, 1, 4),
		{QueryIdx: 2, Neighbors: []feature.Neighbor{{TrainIdx: 3, Distance: 0.1}}},
	}
	got, stats, err := RatioStats(candidates, 0.75, Exclude)
	if err != nil {
		t.Fatalf("RatioStats failed: %v", err)
	}
	if len(got) != 1 || got[0].QueryIdx != 1 {
		t.Fatalf("accepted = %+v, want only query 1", got)
	}
	if stats.Excluded != 2 || stats.Accepted != 1 || stats.Candidates != 3 {
		t.Fatalf("stats = %+v, want 3 candidates, 1 accepted, 2 excluded", stats)
	}
}

func TestRatio_ExtraNeighborsIgnored(t *testing.T) {
	c := pair(0, 1, 4)
	c.Neighbors = append(c.Neighbors, feature.Neighbor{TrainIdx: 99, Distance: 0.5})
	got, err := Ratio([]feature.Candidate{c}, 0.75, Reject)
	if err != nil || len(got) != 1 || got[0].TrainIdx != 0 {
		t.Fatalf("Ratio = %+v, %v; want first neighbor accepted", got, err)
	}
}

// TestRatio_SubsequenceProperty checks on random input that the output is an
// order-preserving subsequence and that every accepted match passes the test.
func TestRatio_SubsequenceProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		ratio := 0.05 + rng.Float64()*0.95
		n := rng.Intn(50)
		candidates := make([]feature.Candidate, n)
		for i := range candidates {
			d1 := rng.Float64() * 10
			candidates[i] = pair(i, d1, d1+rng.Float64()*10)
		}
		got, err := Ratio(candidates, ratio, Reject)
		if err != nil {
			t.Fatalf("Ratio failed: %v", err)
		}
		last := -1
		for _, m := range got {
			if m.QueryIdx <= last {
				t.Fatalf("output not order preserving: %d after %d", m.QueryIdx, last)
			}
			last = m.QueryIdx
			c := candidates[m.QueryIdx]
			if !(c.Neighbors[0].Distance < ratio*c.Neighbors[1].Distance) {
				t.Fatalf("accepted match violates ratio %v: %+v", ratio, c)
			}
			if m.TrainIdx != c.Neighbors[0].TrainIdx {
				t.Fatalf("accepted match is not the nearest neighbor: %+v", m)
			}
		}
		want := 0
		for _, c := range candidates {
			if c.Neighbors[0].Distance < ratio*c.Neighbors[1].Distance {
				want++
			}
		}
		if len(got) != want {
			t.Fatalf("accepted %d, want %d", len(got), want)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	cases := map[string]Policy{"": Reject, "reject": Reject, "Exclude": Exclude, "skip": Exclude}
	for in, want := range cases {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParsePolicy(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParsePolicy("ignore"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
