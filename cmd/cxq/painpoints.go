package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abelbrown/cxdash/internal/fanout"
	"github.com/abelbrown/cxdash/internal/fetch"
	"github.com/abelbrown/cxdash/internal/guard"
	"github.com/abelbrown/cxdash/internal/metrics"
	"github.com/abelbrown/cxdash/internal/model"
	"github.com/abelbrown/cxdash/internal/viewstate"
)

// painPoint is the JSON form of one bank's result.
type painPoint struct {
	Bank   string        `json:"bank"`
	Themes []model.Theme `json:"themes,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func (c *cli) painPointsCmd() *cobra.Command {
	var (
		bank string
		top  int
	)
	cmd := &cobra.Command{
		Use:   "painpoints",
		Short: "Show the most negative themes of every bank",
		Long: "Queries themes for each bank in parallel. Banks are printed as their\n" +
			"results arrive; a bank that fails does not stop the others.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.api()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			banks := []string{bank}
			if model.Scope(bank).IsAll() {
				banks, err = timed(c, ctx, "banks", api.Banks)
				if err != nil {
					return err
				}
			}

			agg := fanout.New[[]model.Theme](guard.New(), "painpoints")
			fetchThemes := func(ctx context.Context, b string) ([]model.Theme, error) {
				themes, err := api.Themes(ctx, model.Scope(b))
				return metrics.SortThemesBySentiment(themes), err
			}

			out := cmd.OutOrStdout()
			var onResult func(fanout.Entry[[]model.Theme])
			if !c.jsonOut {
				onResult = func(e fanout.Entry[[]model.Theme]) {
					printPainPoint(out, e, top)
				}
			}
			entries := fanout.Collect(ctx, agg, banks, c.cfg.API.FanoutLimit, fetchThemes, onResult)

			failed := 0
			results := make([]painPoint, len(entries))
			for i, e := range entries {
				results[i] = painPoint{Bank: e.Entity, Themes: limitThemes(e.Value, top)}
				if e.Status == viewstate.Failed {
					failed++
					results[i].Error = fetch.Describe(e.Err)
					c.log.Warn("pain points failed", "bank", e.Entity, "error", e.Err)
				}
			}
			if c.jsonOut {
				if err := printJSON(out, results); err != nil {
					return err
				}
			}
			if failed > 0 && failed == len(entries) {
				return fmt.Errorf("pain points failed for every bank")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&bank, "bank", "b", "", "Single bank (default every bank)")
	cmd.Flags().IntVarP(&top, "top", "n", 5, "Themes shown per bank; 0 shows all")
	return cmd
}

func limitThemes(themes []model.Theme, n int) []model.Theme {
	if n > 0 && len(themes) > n {
		return themes[:n]
	}
	return themes
}

func printPainPoint(w io.Writer, e fanout.Entry[[]model.Theme], top int) {
	fmt.Fprintf(w, "== %s\n", e.Entity)
	if e.Status == viewstate.Failed {
		fmt.Fprintf(w, "   error: %s\n", fetch.Describe(e.Err))
		return
	}
	themes := limitThemes(e.Value, top)
	if len(themes) == 0 {
		fmt.Fprintln(w, "   no themes")
		return
	}
	for _, t := range themes {
		fmt.Fprintf(w, "   %-28s %+.2f %s\n", t.DisplayName(), t.AvgSentiment, metrics.Classify(t.AvgSentiment))
	}
}
