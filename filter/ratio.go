package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/viant/imgsim/feature"
)

// DefaultRatio is the conventional ratio-test threshold.
const DefaultRatio = 0.75

var (
	// ErrInvalidRatio is returned for a ratio outside (0, 1].
	ErrInvalidRatio = errors.New("filter: ratio must be in (0, 1]")

	// ErrMalformedCandidate is returned when a candidate lacks a second
	// neighbor and the policy is Reject.
	ErrMalformedCandidate = errors.New("filter: candidate has fewer than two neighbors")
)

// Policy decides what happens to candidates with fewer than two neighbors.
type Policy int

const (
	// Reject fails the whole filter call.
	Reject Policy = iota
	// Exclude drops the candidate and continues.
	Exclude
)

func (p Policy) String() string {
	switch p {
	case Reject:
		return "reject"
	case Exclude:
		return "exclude"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy resolves a policy name. The empty string maps to Reject.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "reject", "error":
		return Reject, nil
	case "exclude", "skip":
		return Exclude, nil
	default:
		return Reject, fmt.Errorf("filter: unknown malformed-candidate policy %q", name)
	}
}

// Stats describes a filter pass.
type Stats struct {
	Candidates int
	Accepted   int
	Excluded   int
}

// Ratio returns, in input order, the nearest neighbors that satisfy
// nearest < ratio * second. Only the first two neighbors of a candidate are
// considered.
func Ratio(candidates []feature.Candidate, ratio float64, policy Policy) ([]feature.Match, error) {
	matches, _, err := RatioStats(candidates, ratio, policy)
	return matches, err
}

// RatioStats is Ratio that also reports how many candidates were accepted
// and excluded.
func RatioStats(candidates []feature.Candidate, ratio float64, policy Policy) ([]feature.Match, Stats, error) {
	stats := Stats{Candidates: len(candidates)}
	if !(ratio > 0 && ratio <= 1) {
		return nil, stats, fmt.Errorf("%w: got %v", ErrInvalidRatio, ratio)
	}
	matches := make([]feature.Match, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if len(c.Neighbors) < 2 {
			if policy == Exclude {
				stats.Excluded++
				continue
			}
			return nil, stats, fmt.Errorf("%w: query %d has %d", ErrMalformedCandidate, c.QueryIdx, len(c.Neighbors))
		}
		nearest, second := c.Neighbors[0], c.Neighbors[1]
		if nearest.Distance < ratio*second.Distance {
			matches = append(matches, feature.Match{
				QueryIdx: c.QueryIdx,
				TrainIdx: nearest.TrainIdx,
				Distance: nearest.Distance,
			})
		}
	}
	stats.Accepted = len(matches)
	return matches, stats, nil
}
