package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/viant/imgsim/report"
)

func NewHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded comparisons",
		Long:  `List comparisons recorded in the SQLite history, newest first.`,
		Args:  cobra.NoArgs,
		RunE:  makeHistoryRunner(a),
	}

	cmd.Flags().Int("limit", 50, "Maximum number of entries")
	cmd.Flags().String("path", "", "Only entries involving this image")
	cmd.Flags().Float64("min-score", 0, "Only successful entries scoring at least this")
	return cmd
}

func makeHistoryRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := a.loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.History == "" {
			return errors.New("no history configured; set --history or history in the config file")
		}
		history, err := a.openHistory(cfg)
		if err != nil {
			return err
		}
		defer history.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		path, _ := cmd.Flags().GetString("path")
		minScore, _ := cmd.Flags().GetFloat64("min-score")
		entries, err := history.List(cmd.Context(), report.Query{Limit: limit, Path: path, MinScore: minScore})
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return report.JSON(cmd.OutOrStdout(), entries)
		}
		return report.Entries(cmd.OutOrStdout(), entries)
	}
}
