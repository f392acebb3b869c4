package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSummary(t *testing.T) {
	sink, err := Initialize()
	require.NoError(t, err)

	IncrCounter([]string{"compare", "count"}, 1)
	IncrCounter([]string{"compare", "count"}, 1)
	MeasureSince([]string{"compare", "match"}, time.Now().Add(-5*time.Millisecond))

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, sink))
	out := buf.String()
	assert.Contains(t, out, "imgsim.compare.count")
	assert.Contains(t, out, "count=2")
	assert.Contains(t, out, "imgsim.compare.match")
	assert.Contains(t, out, "n=1")
}
