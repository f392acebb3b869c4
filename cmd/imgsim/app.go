package main

import (
	"fmt"

	gometrics "github.com/armon/go-metrics"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/viant/imgsim/compare"
	"github.com/viant/imgsim/config"
	"github.com/viant/imgsim/extract"
	"github.com/viant/imgsim/imageio"
	"github.com/viant/imgsim/logging"
	"github.com/viant/imgsim/match"
	"github.com/viant/imgsim/report"
)

type app struct {
	fs    afero.Fs
	stats *gometrics.InmemSink
}

func newApp(fs afero.Fs) *app {
	return &app{fs: fs}
}

// addPipelineFlags registers the flags that override pipeline config values.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().String("matcher", "", "Matcher kind (bruteforce|vptree|cover|kdforest|flann)")
	cmd.Flags().String("extractor", "", "Extractor kind (dog|sift)")
	cmd.Flags().Float64("ratio", 0, "Lowe ratio-test threshold in (0,1]")
	cmd.Flags().String("malformed", "", "Candidates with fewer than two neighbors (reject|exclude)")
	cmd.Flags().Uint("max-dimension", 0, "Downscale images whose larger side exceeds this")
	cmd.Flags().Int("max-features", 0, "Keep only the strongest keypoints per image")
}

// loadConfig reads --config and applies every flag the user set explicitly.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(a.fs, path)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("history") {
		cfg.History, _ = flags.GetString("history")
	}
	if flags.Lookup("matcher") != nil {
		if flags.Changed("matcher") {
			cfg.Matcher.Kind, _ = flags.GetString("matcher")
		}
		if flags.Changed("extractor") {
			cfg.Extractor.Kind, _ = flags.GetString("extractor")
		}
		if flags.Changed("ratio") {
			cfg.Ratio, _ = flags.GetFloat64("ratio")
		}
		if flags.Changed("malformed") {
			cfg.Malformed, _ = flags.GetString("malformed")
		}
		if flags.Changed("max-dimension") {
			cfg.Loader.MaxDimension, _ = flags.GetUint("max-dimension")
		}
		if flags.Changed("max-features") {
			cfg.Extractor.MaxFeatures, _ = flags.GetInt("max-features")
		}
	}
	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (a *app) comparator(cfg *config.Config) (*compare.Comparator, error) {
	ext, err := extract.New(cfg.Extractor.Kind, cfg.ExtractOptions())
	if err != nil {
		return nil, err
	}
	matcher, err := match.New(cfg.Matcher.Kind, cfg.MatchOptions())
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	return compare.New(
		imageio.NewFileLoader(a.fs, cfg.Loader.MaxDimension),
		ext,
		matcher,
		compare.WithRatio(cfg.Ratio),
		compare.WithPolicy(policy),
		compare.WithLogger(logging.GetLogger()),
	), nil
}

// openHistory returns nil when no history file is configured.
func (a *app) openHistory(cfg *config.Config) (*report.History, error) {
	if cfg.History == "" {
		return nil, nil
	}
	h, err := report.OpenHistory(cfg.History)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return h, nil
}
