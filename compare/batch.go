package compare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/alitto/pond/v2"
	"github.com/viant/imgsim/metrics"
)

// Pair names two images to compare; A is the query side.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Outcome is the result of one pair. Exactly one of Result and Err is set.
type Outcome struct {
	Pair
	Result *Result
	Err    error
}

// Batch compares independent pairs concurrently.
type Batch struct {
	Comparator *Comparator
	// Workers bounds concurrency; 0 means GOMAXPROCS.
	Workers int
}

// Pairs builds reference-vs-candidate pairs, skipping a candidate equal to
// the reference.
func Pairs(reference string, candidates []string) []Pair {
	out := make([]Pair, 0, len(candidates))
	for _, c := range candidates {
		if c == reference {
			continue
		}
		out = append(out, Pair{A: reference, B: c})
	}
	return out
}

// Run compares every pair and returns outcomes in input order. A failing
// pair does not stop the others. Pairs not yet started when ctx is
// cancelled fail with the context error, and a panicking comparison fails
// its own pair with an error wrapping pond.ErrPanic.
func (b *Batch) Run(ctx context.Context, pairs []Pair) []Outcome {
	outcomes := make([]Outcome, len(pairs))
	if len(pairs) == 0 {
		return outcomes
	}
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(pairs) {
		workers = len(pairs)
	}
	pool := pond.NewPool(workers)
	tasks := make([]pond.Task, len(pairs))
	for i, p := range pairs {
		tasks[i] = pool.Submit(func() {
			res, err := b.Comparator.Compare(ctx, p.A, p.B)
			outcomes[i] = Outcome{Pair: p, Result: res, Err: err}
		})
	}
	pool.StopAndWait()
	for i, task := range tasks {
		if err := task.Wait(); err != nil {
			metrics.IncrCounter(keyCount, 1)
			metrics.IncrCounter(keyFailed, 1)
			b.Comparator.logger().Debug("comparison panicked", "a", pairs[i].A, "b", pairs[i].B, "error", err)
			outcomes[i] = Outcome{Pair: pairs[i], Err: taskError(pairs[i], err)}
		}
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	b.Comparator.logger().Log(ctx, levelFor(failed), "batch finished", "pairs", len(pairs), "failed", failed, "workers", workers)
	return outcomes
}

// taskError wraps a failed pool task for p. Panic errors carry a goroutine
// stack after the panic value; only the value is kept.
func taskError(p Pair, err error) error {
	if !errors.Is(err, pond.ErrPanic) {
		return fmt.Errorf("compare: %s vs %s: %w", p.A, p.B, err)
	}
	detail, _, _ := strings.Cut(err.Error(), ", goroutine ")
	detail = strings.TrimPrefix(detail, pond.ErrPanic.Error()+": ")
	return fmt.Errorf("compare: %s vs %s: %w: %s", p.A, p.B, pond.ErrPanic, detail)
}

func levelFor(failed int) slog.Level {
	if failed > 0 {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
