// Package config loads imgsim settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/afero"
	"github.com/viant/imgsim/extract"
	"github.com/viant/imgsim/filter"
	"github.com/viant/imgsim/match"
	"gopkg.in/yaml.v3"
)

type MatcherConfig struct {
	Kind   string `yaml:"kind"`
	Trees  int    `yaml:"trees"`
	Checks int    `yaml:"checks"`
}

type ExtractorConfig struct {
	Kind              string  `yaml:"kind"`
	MaxFeatures       int     `yaml:"max_features"`
	ContrastThreshold float64 `yaml:"contrast_threshold"`
	EdgeThreshold     float64 `yaml:"edge_threshold"`
	Sigma             float64 `yaml:"sigma"`
	Intervals         int     `yaml:"intervals"`
}

type LoaderConfig struct {
	MaxDimension uint `yaml:"max_dimension"`
}

type Config struct {
	Ratio     float64         `yaml:"ratio"`
	Malformed string          `yaml:"malformed"`
	Matcher   MatcherConfig   `yaml:"matcher"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Loader    LoaderConfig    `yaml:"loader"`
	Workers   int             `yaml:"workers"`
	// History is the SQLite file recording comparison outcomes; empty disables it.
	History string `yaml:"history,omitempty"`
}

func DefaultConfig() *Config {
	mo := match.DefaultOptions()
	eo := extract.DefaultOptions()
	return &Config{
		Ratio:     filter.DefaultRatio,
		Malformed: filter.Reject.String(),
		Matcher: MatcherConfig{
			Kind:   "bruteforce",
			Trees:  mo.Trees,
			Checks: mo.Checks,
		},
		Extractor: ExtractorConfig{
			Kind:              "dog",
			MaxFeatures:       eo.MaxFeatures,
			ContrastThreshold: eo.ContrastThreshold,
			EdgeThreshold:     eo.EdgeThreshold,
			Sigma:             eo.Sigma,
			Intervals:         eo.Intervals,
		},
		Workers: runtime.GOMAXPROCS(0),
	}
}

// Load reads path from fs on top of the defaults. A missing file yields the
// defaults; an empty path does too.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(fs afero.Fs, path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if !(c.Ratio > 0 && c.Ratio <= 1) {
		errs = append(errs, fmt.Errorf("ratio: %w: got %v", filter.ErrInvalidRatio, c.Ratio))
	}
	if _, err := filter.ParsePolicy(c.Malformed); err != nil {
		errs = append(errs, fmt.Errorf("malformed: %w", err))
	}
	if c.Matcher.Trees <= 0 {
		errs = append(errs, fmt.Errorf("matcher.trees must be positive, got %d", c.Matcher.Trees))
	}
	if c.Matcher.Checks <= 0 {
		errs = append(errs, fmt.Errorf("matcher.checks must be positive, got %d", c.Matcher.Checks))
	}
	if err := c.ExtractOptions().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("extractor: %w", err))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// Policy returns the parsed malformed-candidate policy.
func (c *Config) Policy() (filter.Policy, error) {
	return filter.ParsePolicy(c.Malformed)
}

func (c *Config) ExtractOptions() extract.Options {
	return extract.Options{
		MaxFeatures:       c.Extractor.MaxFeatures,
		ContrastThreshold: c.Extractor.ContrastThreshold,
		EdgeThreshold:     c.Extractor.EdgeThreshold,
		Sigma:             c.Extractor.Sigma,
		Intervals:         c.Extractor.Intervals,
	}
}

func (c *Config) MatchOptions() match.Options {
	return match.Options{Trees: c.Matcher.Trees, Checks: c.Matcher.Checks}
}
