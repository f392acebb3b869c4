package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/viant/imgsim/compare"
	"github.com/viant/imgsim/config"
	"github.com/viant/imgsim/imageio"
	"github.com/viant/imgsim/report"
)

func NewBatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <reference> <image|dir>...",
		Short: "Compare a reference image against many images",
		Long: `Compare the reference image against every listed image and every image
found under listed directories. Pairs run concurrently; a failing pair is
reported without stopping the others.`,
		Args: cobra.MinimumNArgs(2),
		RunE: makeBatchRunner(a),
	}

	addPipelineFlags(cmd)
	cmd.Flags().Int("workers", 0, "Concurrent comparisons (default from config, GOMAXPROCS)")
	return cmd
}

func makeBatchRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := a.loadConfig(cmd)
		if err != nil {
			return err
		}
		candidates, err := collectImages(a.fs, args[1:])
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return fmt.Errorf("no images found in %s", strings.Join(args[1:], ", "))
		}
		outcomes, err := a.runBatch(cmd, cfg, compare.Pairs(args[0], candidates))
		if err != nil {
			return err
		}
		failed := 0
		for _, o := range outcomes {
			if o.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d comparisons failed", failed, len(outcomes))
		}
		return nil
	}
}

// runBatch compares pairs, records them in the history and prints them.
func (a *app) runBatch(cmd *cobra.Command, cfg *config.Config, pairs []compare.Pair) ([]compare.Outcome, error) {
	comparator, err := a.comparator(cfg)
	if err != nil {
		return nil, err
	}
	history, err := a.openHistory(cfg)
	if err != nil {
		return nil, err
	}
	if history != nil {
		defer history.Close()
	}

	b := &compare.Batch{Comparator: comparator, Workers: cfg.Workers}
	outcomes := b.Run(cmd.Context(), pairs)
	if history != nil {
		if err := history.Record(cmd.Context(), outcomes...); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "history: %v\n", err)
		}
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return outcomes, report.OutcomesJSON(cmd.OutOrStdout(), outcomes)
	}
	return outcomes, report.Outcomes(cmd.OutOrStdout(), outcomes)
}

// collectImages expands directories into the supported images below them,
// skipping hidden directories. Other arguments are kept as given so missing
// files show up as failed pairs.
func collectImages(fs afero.Fs, args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := fs.Stat(arg)
		if err != nil || !info.IsDir() {
			out = append(out, arg)
			continue
		}
		var found []string
		err = afero.Walk(fs, arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if path != arg && strings.HasPrefix(filepath.Base(path), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if imageio.IsImage(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}
