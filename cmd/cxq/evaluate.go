package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/abelbrown/cxdash/internal/analysis"
	"github.com/abelbrown/cxdash/internal/fixture"
	"github.com/abelbrown/cxdash/internal/model"
	"github.com/abelbrown/cxdash/internal/store"
)

func (c *cli) evaluateCmd() *cobra.Command {
	var (
		dbPath string
		sample bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate [reviews.json]",
		Short: "Check sentiment labels against star ratings",
		Long: "Treats 1-2 stars as negative, 3 as neutral and 4-5 as positive, and\n" +
			"reports accuracy plus per-class precision, recall and F1 for the\n" +
			"stored sentiment labels.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reviews []model.Review
			switch {
			case sample:
				reviews = fixture.Sample().All()
			case dbPath != "":
				st, err := store.Open(dbPath)
				if err != nil {
					return err
				}
				reviews, err = st.Reviews()
				st.Close()
				if err != nil {
					return fmt.Errorf("load reviews: %w", err)
				}
			case len(args) == 1:
				data, err := readDataset(args[0])
				if err != nil {
					return err
				}
				reviews = data.All()
			default:
				return fmt.Errorf("give a reviews file, --db or --sample")
			}

			report := analysis.Evaluate(reviews)
			c.log.Debug("evaluated", "reviews", report.Evaluated, "skipped", report.Skipped)
			if report.Evaluated == 0 {
				return fmt.Errorf("no reviews with both a rating and a sentiment label")
			}
			if c.jsonOut {
				return printJSON(cmd.OutOrStdout(), report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database written by import")
	cmd.Flags().BoolVar(&sample, "sample", false, "Evaluate the built-in sample dataset")
	return cmd
}

func printReport(w io.Writer, r analysis.Report) {
	fmt.Fprintf(w, "Evaluated:  %s reviews", humanize.Comma(int64(r.Evaluated)))
	if r.Skipped > 0 {
		fmt.Fprintf(w, " (%s skipped)", humanize.Comma(int64(r.Skipped)))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Accuracy:   %.1f%%\n", r.Accuracy*100)
	fmt.Fprintf(w, "Macro F1:   %.3f\n\n", r.MacroF1())

	fmt.Fprintf(w, "%-10s %9s %7s %7s %8s\n", "CLASS", "PRECISION", "RECALL", "F1", "SUPPORT")
	for _, c := range r.Classes {
		fmt.Fprintf(w, "%-10s %9.3f %7.3f %7.3f %8d\n", c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}

	fmt.Fprintf(w, "\n%-10s", "STARS\\PRED")
	for _, l := range analysis.Labels {
		fmt.Fprintf(w, " %8s", l)
	}
	fmt.Fprintln(w)
	for i, l := range analysis.Labels {
		fmt.Fprintf(w, "%-10s", l)
		for j := range analysis.Labels {
			fmt.Fprintf(w, " %8d", r.Confusion[i][j])
		}
		fmt.Fprintln(w)
	}
}
