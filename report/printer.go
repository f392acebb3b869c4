package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/viant/imgsim/compare"
)

// Text prints a single comparison the way a person reads it.
func Text(w io.Writer, res *compare.Result) error {
	_, err := fmt.Fprintf(w, "Comparing:\n - %s\n - %s\nKeypoints: %d vs %d\nSimilarity Score: %.2f%%\nGood matches: %d\n",
		res.PathA, res.PathB, res.KeypointsA, res.KeypointsB, res.Score, res.Good)
	if err != nil {
		return err
	}
	if res.Degenerate {
		if _, err := fmt.Fprintln(w, "Note: not enough keypoints for a ratio test"); err != nil {
			return err
		}
	}
	if res.Excluded > 0 {
		if _, err := fmt.Fprintf(w, "Excluded candidates: %d\n", res.Excluded); err != nil {
			return err
		}
	}
	return nil
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type outcomeJSON struct {
	compare.Pair
	Result *compare.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// OutcomesJSON writes batch outcomes as a JSON array.
func OutcomesJSON(w io.Writer, outcomes []compare.Outcome) error {
	out := make([]outcomeJSON, len(outcomes))
	for i, o := range outcomes {
		out[i] = outcomeJSON{Pair: o.Pair, Result: o.Result}
		if o.Err != nil {
			out[i].Error = o.Err.Error()
		}
	}
	return JSON(w, out)
}

// Outcomes prints one row per batch outcome.
func Outcomes(w io.Writer, outcomes []compare.Outcome) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tGOOD\tKP_A\tKP_B\tIMAGE")
	for _, o := range outcomes {
		r := o.Result
		if o.Err != nil || r == nil {
			reason := "no result"
			if o.Err != nil {
				reason = o.Err.Error()
			}
			fmt.Fprintf(tw, "-\t-\t-\t-\t%s (error: %s)\n", o.B, reason)
			continue
		}
		fmt.Fprintf(tw, "%.2f%%\t%d\t%d\t%d\t%s\n", r.Score, r.Good, r.KeypointsA, r.KeypointsB, o.B)
	}
	return tw.Flush()
}

// Entries prints history entries, newest first.
func Entries(w io.Writer, entries []Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tSCORE\tGOOD\tMATCHER\tA\tB")
	for _, e := range entries {
		score := fmt.Sprintf("%.2f%%", e.Score)
		if e.Error != "" {
			score = "error"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n", e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			score, e.Good, e.Matcher, e.PathA, e.PathB)
	}
	return tw.Flush()
}
