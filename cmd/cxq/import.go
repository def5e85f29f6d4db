package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/abelbrown/cxdash/internal/analysis"
	"github.com/abelbrown/cxdash/internal/fixture"
	"github.com/abelbrown/cxdash/internal/store"
)

func (c *cli) importCmd() *cobra.Command {
	var (
		dbPath       string
		sample       bool
		assignThemes bool
	)
	cmd := &cobra.Command{
		Use:   "import [reviews.json]",
		Short: "Load reviews into a SQLite database for serve-fixture",
		Long: "Reads a JSON array of reviews (or the built-in sample with --sample) and\n" +
			"stores it in the banks/reviews tables. Reviews already present are kept.\n" +
			"Missing sentiment labels are derived from the score; with --assign-themes\n" +
			"reviews without a theme get one from the keyword rules.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data *fixture.Dataset
			switch {
			case sample:
				data = fixture.Sample()
			case len(args) == 1:
				var err error
				if data, err = readDataset(args[0]); err != nil {
					return err
				}
			default:
				return fmt.Errorf("give a reviews file or --sample")
			}

			reviews, filled := analysis.NewAnalyzer(nil).Annotate(data.All(), analysis.AnnotateOptions{Themes: assignThemes})
			if filled.Labels > 0 || filled.Themes > 0 {
				c.log.Info("annotated reviews", "labels", filled.Labels, "themes", filled.Themes)
			}

			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if _, err := st.AddBanks(data.Banks()); err != nil {
				return err
			}
			added, err := st.SaveReviews(reviews)
			if err != nil {
				return err
			}
			total, err := st.Count()
			if err != nil {
				return err
			}
			c.log.Info("import complete", "db", dbPath, "new", added, "total", total)
			fmt.Fprintf(cmd.OutOrStdout(), "%s new reviews, %s total\n",
				humanize.Comma(int64(added)), humanize.Comma(int64(total)))
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "reviews.db", "SQLite database path")
	cmd.Flags().BoolVar(&sample, "sample", false, "Import the built-in sample dataset")
	cmd.Flags().BoolVar(&assignThemes, "assign-themes", false, "Assign themes to reviews that have none")
	return cmd
}

// readDataset loads a JSON array of reviews from path.
func readDataset(path string) (*fixture.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reviews: %w", err)
	}
	defer f.Close()
	return fixture.LoadDataset(f)
}
