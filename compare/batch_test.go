package compare

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/alitto/pond/v2"
	"github.com/viant/imgsim/feature"
	"github.com/viant/imgsim/imageio"
)

func TestPairs(t *testing.T) {
	got := Pairs("ref.png", []string{"a.png", "ref.png", "b.png"})
	assert.Equal(t, []Pair{{A: "ref.png", B: "a.png"}, {A: "ref.png", B: "b.png"}}, got)
	assert.Empty(t, Pairs("ref.png", nil))
}

func TestBatch_RunKeepsOrder(t *testing.T) {
	loader := memLoader{
		"ref": withCount(10),
		"x":   withCount(20),
		"y":   withCount(5),
		"z":   withCount(0),
	}
	b := &Batch{
		Comparator: New(loader, countExtractor{}, bruteforce(t), WithLogger(quiet)),
		Workers:    3,
	}
	pairs := Pairs("ref", []string{"x", "missing", "y", "z"})

	outcomes := b.Run(context.Background(), pairs)
	require.Len(t, outcomes, 4)
	for i, o := range outcomes {
		assert.Equal(t, pairs[i], o.Pair)
	}

	require.NoError(t, outcomes[0].Err)
	assert.Equal(t, 100.0, outcomes[0].Result.Score)

	require.Error(t, outcomes[1].Err)
	assert.True(t, errors.Is(outcomes[1].Err, imageio.ErrInputNotFound))
	assert.Nil(t, outcomes[1].Result)

	require.NoError(t, outcomes[2].Err)
	assert.Equal(t, 5, outcomes[2].Result.KeypointsB)
	assert.Equal(t, 100.0, outcomes[2].Result.Score)

	require.NoError(t, outcomes[3].Err)
	assert.True(t, outcomes[3].Result.Degenerate)
}

func TestBatch_Empty(t *testing.T) {
	b := &Batch{Comparator: New(memLoader{}, countExtractor{}, bruteforce(t), WithLogger(quiet))}
	assert.Empty(t, b.Run(context.Background(), nil))
}

func TestBatch_Cancelled(t *testing.T) {
	loader := memLoader{"ref": withCount(4), "x": withCount(4)}
	b := &Batch{Comparator: New(loader, countExtractor{}, bruteforce(t), WithLogger(quiet)), Workers: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := b.Run(ctx, Pairs("ref", []string{"x", "x"}))
	for _, o := range outcomes {
		assert.True(t, errors.Is(o.Err, context.Canceled))
	}
}

// panicExtractor panics on images whose first pixel is 99.
type panicExtractor struct{}

func (panicExtractor) Extract(img *image.Gray) (*feature.Set, error) {
	if img.Pix[0] == 99 {
		panic("extractor exploded")
	}
	return countExtractor{}.Extract(img)
}

func TestBatch_PanickingComparison(t *testing.T) {
	loader := memLoader{"ref": withCount(6), "bad": withCount(99), "ok": withCount(6)}
	b := &Batch{Comparator: New(loader, panicExtractor{}, bruteforce(t), WithLogger(quiet)), Workers: 2}
	pairs := Pairs("ref", []string{"bad", "ok"})

	outcomes := b.Run(context.Background(), pairs)
	require.Len(t, outcomes, 2)

	assert.Equal(t, pairs[0], outcomes[0].Pair)
	require.Error(t, outcomes[0].Err)
	assert.True(t, errors.Is(outcomes[0].Err, pond.ErrPanic))
	assert.Equal(t, "compare: ref vs bad: task panicked: extractor exploded", outcomes[0].Err.Error())
	assert.Nil(t, outcomes[0].Result)

	assert.Equal(t, pairs[1], outcomes[1].Pair)
	require.NoError(t, outcomes[1].Err)
	assert.Equal(t, 100.0, outcomes[1].Result.Score)
}
