package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/imgsim/logging"
	"github.com/viant/imgsim/metrics"
)

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "imgsim",
		Short: "Feature-based image similarity",
		Long: `Compare images by matching scale-invariant keypoints. The score is the share
of ratio-test matches relative to the smaller keypoint set, in percent.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			levelName, _ := cmd.Flags().GetString("log-level")
			level, err := logging.ParseLevel(levelName)
			if err != nil {
				return err
			}
			logging.Init(level, cmd.ErrOrStderr())
			if stats, _ := cmd.Flags().GetBool("stats"); stats {
				sink, err := metrics.Initialize()
				if err != nil {
					return err
				}
				a.stats = sink
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.stats == nil {
				return nil
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "\nStage timings:")
			return metrics.WriteSummary(cmd.ErrOrStderr(), a.stats)
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	rootCmd.AddCommand(
		NewCompareCmd(a),
		NewBatchCmd(a),
		NewWatchCmd(a),
		NewHistoryCmd(a),
	)
	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	cmd.PersistentFlags().String("log-level", "warn", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().String("history", "", "SQLite file recording comparison outcomes")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().Bool("stats", false, "Print stage timings after the run")
}
