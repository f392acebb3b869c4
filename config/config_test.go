package config

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/imgsim/filter"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0.75, cfg.Ratio)
	assert.Equal(t, "reject", cfg.Malformed)
	assert.Equal(t, "bruteforce", cfg.Matcher.Kind)
	assert.Equal(t, 5, cfg.Matcher.Trees)
	assert.Equal(t, 50, cfg.Matcher.Checks)
	assert.Equal(t, "dog", cfg.Extractor.Kind)
	assert.Equal(t, 3, cfg.Extractor.Intervals)
	assert.Positive(t, cfg.Workers)
	assert.Empty(t, cfg.History)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "/etc/imgsim.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := []byte("ratio: 0.6\nmatcher:\n  kind: kdforest\n  trees: 8\nloader:\n  max_dimension: 640\n")
	require.NoError(t, afero.WriteFile(fs, "/cfg.yaml", data, 0o644))

	cfg, err := Load(fs, "/cfg.yaml")
	require.NoError(t, err)
	assert.Equal(t, 0.6, cfg.Ratio)
	assert.Equal(t, "kdforest", cfg.Matcher.Kind)
	assert.Equal(t, 8, cfg.Matcher.Trees)
	assert.Equal(t, 50, cfg.Matcher.Checks)
	assert.Equal(t, uint(640), cfg.Loader.MaxDimension)
	assert.Equal(t, 1.6, cfg.Extractor.Sigma)
}

func TestLoad_ParseError(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg.yaml", []byte("ratio: [1, 2"), 0o644))

	_, err := Load(fs, "/cfg.yaml")
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := DefaultConfig()
	cfg.Malformed = "exclude"
	cfg.History = "/var/imgsim/history.db"
	require.NoError(t, Save(fs, "/cfg.yaml", cfg))

	loaded, err := Load(fs, "/cfg.yaml")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	policy, err := loaded.Policy()
	require.NoError(t, err)
	assert.Equal(t, filter.Exclude, policy)
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ratio = 1.5
	cfg.Malformed = "shrug"
	cfg.Matcher.Trees = 0
	cfg.Extractor.Sigma = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, filter.ErrInvalidRatio))
	assert.Contains(t, err.Error(), "malformed")
	assert.Contains(t, err.Error(), "matcher.trees")
	assert.Contains(t, err.Error(), "sigma")
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extractor.MaxFeatures = 500
	cfg.Matcher.Checks = 32

	assert.Equal(t, 500, cfg.ExtractOptions().MaxFeatures)
	assert.Equal(t, 32, cfg.MatchOptions().Checks)
}
