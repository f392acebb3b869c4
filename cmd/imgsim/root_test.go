package main

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/imgsim/internal/testimg"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd("1.0.0", newApp(afero.NewMemMapFs()))

	assert.Equal(t, "imgsim", cmd.Use)
	assert.Equal(t, "1.0.0", cmd.Version)
	for _, name := range []string{"compare", "batch", "watch", "history"} {
		found, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, found.Name())
	}
}

func TestRootCmdHasFlags(t *testing.T) {
	cmd := NewRootCmd("dev", newApp(afero.NewMemMapFs()))

	for _, name := range []string{"config", "log-level", "history", "json", "stats"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "persistent flag %q", name)
	}
}

// writeBlobs stores a deterministic textured PNG on fs.
func writeBlobs(t *testing.T, fs afero.Fs, path string, seed int64) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testimg.Blobs(112, 112, 24, seed)))
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
}

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, fs afero.Fs, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd("test", newApp(fs))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeBlobs(t, fs, "/a.png", 1)
	_, _, err := run(t, fs, "compare", "/a.png", "/a.png", "--log-level", "chatty")
	assert.Error(t, err)
}
