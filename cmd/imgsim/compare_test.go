package main

import (
	"encoding/json"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareCmd_Text(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeBlobs(t, fs, "/img/a.png", 3)

	out, _, err := run(t, fs, "compare", "/img/a.png", "/img/a.png")
	require.NoError(t, err)
	assert.Contains(t, out, "Comparing:")
	assert.Contains(t, out, "Keypoints:")
	assert.Contains(t, out, "Similarity Score:")
	assert.Contains(t, out, "Good matches:")
}

func TestCompareCmd_JSONAndRender(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeBlobs(t, fs, "/img/a.png", 3)
	writeBlobs(t, fs, "/img/b.png", 4)

	out, _, err := run(t, fs, "compare", "/img/a.png", "/img/a.png", "--json", "--matcher", "vptree", "--render", "/out/self.png")
	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.GreaterOrEqual(t, res["score"].(float64), 95.0)
	assert.Equal(t, "vptree", res["matcher"])

	f, err := fs.Open("/out/self.png")
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 224, img.Bounds().Dx())

	out, _, err = run(t, fs, "compare", "/img/a.png", "/img/b.png", "--json", "--ratio", "0.6")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 0.6, res["ratio"])
	assert.Less(t, res["score"].(float64), 95.0)
}

func TestCompareCmd_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeBlobs(t, fs, "/img/a.png", 3)

	_, _, err := run(t, fs, "compare", "/img/a.png", "/img/missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.png")

	_, _, err = run(t, fs, "compare", "/img/a.png", "/img/a.png", "--ratio", "1.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ratio")

	_, _, err = run(t, fs, "compare", "/img/a.png", "/img/a.png", "--matcher", "nope")
	assert.Error(t, err)

	_, _, err = run(t, fs, "compare", "/img/a.png")
	assert.Error(t, err)
}

func TestCompareCmd_ConfigFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeBlobs(t, fs, "/img/a.png", 3)
	require.NoError(t, afero.WriteFile(fs, "/etc/imgsim.yaml", []byte("ratio: 0.7\nmatcher:\n  kind: cover\n"), 0o644))

	out, _, err := run(t, fs, "compare", "/img/a.png", "/img/a.png", "--json", "--config", "/etc/imgsim.yaml")
	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "cover", res["matcher"])
	assert.Equal(t, 0.7, res["ratio"])
}

func TestCompareCmd_HistoryAndList(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeBlobs(t, fs, "/img/a.png", 3)
	db := filepath.Join(t.TempDir(), "history.db")

	_, _, err := run(t, fs, "compare", "/img/a.png", "/img/a.png", "--history", db)
	require.NoError(t, err)
	_, _, err = run(t, fs, "compare", "/img/a.png", "/img/gone.png", "--history", db)
	require.Error(t, err)

	out, _, err := run(t, fs, "history", "--history", db, "--json")
	require.NoError(t, err)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "/img/gone.png", entries[0]["path_b"])
	assert.NotEmpty(t, entries[0]["error"])
	assert.GreaterOrEqual(t, entries[1]["score"].(float64), 95.0)

	out, _, err = run(t, fs, "history", "--history", db, "--min-score", "90")
	require.NoError(t, err)
	assert.Contains(t, out, "/img/a.png")
	assert.NotContains(t, out, "gone.png")

	_, _, err = run(t, fs, "history")
	assert.Error(t, err)
}

func TestCompareCmd_Stats(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeBlobs(t, fs, "/img/a.png", 3)

	_, errOut, err := run(t, fs, "compare", "/img/a.png", "/img/a.png", "--stats")
	require.NoError(t, err)
	assert.Contains(t, errOut, "imgsim.compare.extract")
}
