package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/imgsim/compare"
	"github.com/viant/imgsim/render"
	"github.com/viant/imgsim/report"
)

func NewCompareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <imageA> <imageB>",
		Short: "Compare two images",
		Long: `Detect keypoints in both images, match A against B and print the
similarity score with the keypoint and good-match counts.`,
		Args: cobra.ExactArgs(2),
		RunE: makeCompareRunner(a),
	}

	addPipelineFlags(cmd)
	cmd.Flags().String("render", "", "Write a side-by-side match visualization PNG to this path")
	cmd.Flags().Bool("keypoints", false, "Draw unmatched keypoints in the visualization")
	return cmd
}

func makeCompareRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := a.loadConfig(cmd)
		if err != nil {
			return err
		}
		comparator, err := a.comparator(cfg)
		if err != nil {
			return err
		}
		history, err := a.openHistory(cfg)
		if err != nil {
			return err
		}
		if history != nil {
			defer history.Close()
		}

		res, cmpErr := comparator.Compare(cmd.Context(), args[0], args[1])
		if history != nil {
			outcome := compare.Outcome{Pair: compare.Pair{A: args[0], B: args[1]}, Result: res, Err: cmpErr}
			if err := history.Record(cmd.Context(), outcome); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "history: %v\n", err)
			}
		}
		if cmpErr != nil {
			return cmpErr
		}

		if out, _ := cmd.Flags().GetString("render"); out != "" {
			if err := renderResult(a, cmd, comparator, res, out); err != nil {
				return err
			}
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return report.JSON(cmd.OutOrStdout(), res)
		}
		return report.Text(cmd.OutOrStdout(), res)
	}
}

func renderResult(a *app, cmd *cobra.Command, c *compare.Comparator, res *compare.Result, out string) error {
	imgA, err := c.Loader.Load(res.PathA)
	if err != nil {
		return err
	}
	imgB, err := c.Loader.Load(res.PathB)
	if err != nil {
		return err
	}
	showAll, _ := cmd.Flags().GetBool("keypoints")
	opts := render.Options{
		Keypoints: showAll,
		Caption:   fmt.Sprintf("%.2f%%  %d good / %d vs %d keypoints", res.Score, res.Good, res.KeypointsA, res.KeypointsB),
	}
	if err := render.RenderFile(a.fs, out, imgA, res.SetA, imgB, res.SetB, res.Matches, opts); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
