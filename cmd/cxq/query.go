package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/abelbrown/cxdash/internal/metrics"
	"github.com/abelbrown/cxdash/internal/model"
	"github.com/abelbrown/cxdash/internal/query"
)

func (c *cli) banksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "banks",
		Short: "List bank names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.api()
			if err != nil {
				return err
			}
			banks, err := timed(c, cmd.Context(), "banks", api.Banks)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return printJSON(cmd.OutOrStdout(), banks)
			}
			for _, b := range banks {
				fmt.Fprintln(cmd.OutOrStdout(), b)
			}
			return nil
		},
	}
}

// scoped builds a command that fetches one per-scope aggregate and prints
// it with text.
func scoped[T any](c *cli, use, short string,
	get func(ctx context.Context, scope model.Scope) (T, error),
	text func(w io.Writer, v T)) *cobra.Command {
	var bank string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scope := model.Scope(bank)
			v, err := timed(c, cmd.Context(), use+" "+scope.String(), func(ctx context.Context) (T, error) {
				return get(ctx, scope)
			})
			if err != nil {
				return err
			}
			if c.jsonOut {
				return printJSON(cmd.OutOrStdout(), v)
			}
			text(cmd.OutOrStdout(), v)
			return nil
		},
	}
	cmd.Flags().StringVarP(&bank, "bank", "b", "", "Bank name (default all banks)")
	return cmd
}

func (c *cli) summaryCmd() *cobra.Command {
	return scoped(c, "summary", "Show review KPIs",
		func(ctx context.Context, scope model.Scope) (model.Summary, error) {
			api, err := c.api()
			if err != nil {
				return model.Summary{}, err
			}
			return api.Summary(ctx, scope)
		},
		func(w io.Writer, s model.Summary) {
			fmt.Fprintf(w, "Total reviews:  %s\n", humanize.Comma(int64(s.TotalReviews)))
			fmt.Fprintf(w, "Average rating: %.2f %s\n", s.AvgRating, metrics.Stars(int(s.AvgRating+0.5)))
			fmt.Fprintf(w, "Avg sentiment:  %+.2f\n", s.AvgSentiment)
			fmt.Fprintf(w, "Positive:       %.1f%%\n", s.PctPositive)
			fmt.Fprintf(w, "Negative:       %.1f%%\n", s.PctNegative)
		})
}

func (c *cli) themesCmd() *cobra.Command {
	return scoped(c, "themes", "List themes, most negative first",
		func(ctx context.Context, scope model.Scope) ([]model.Theme, error) {
			api, err := c.api()
			if err != nil {
				return nil, err
			}
			themes, err := api.Themes(ctx, scope)
			return metrics.SortThemesBySentiment(themes), err
		},
		func(w io.Writer, themes []model.Theme) {
			if len(themes) == 0 {
				fmt.Fprintln(w, "No themes.")
				return
			}
			for _, t := range themes {
				fmt.Fprintf(w, "%-28s %+.2f  %8s reviews  %s\n",
					t.DisplayName(), t.AvgSentiment, humanize.Comma(int64(t.ReviewCount)), metrics.Classify(t.AvgSentiment))
			}
		})
}

func (c *cli) sentimentCmd() *cobra.Command {
	return scoped(c, "sentiment", "Show the sentiment breakdown",
		func(ctx context.Context, scope model.Scope) (model.SentimentBreakdown, error) {
			api, err := c.api()
			if err != nil {
				return model.SentimentBreakdown{}, err
			}
			return api.Sentiment(ctx, scope)
		},
		func(w io.Writer, b model.SentimentBreakdown) {
			p := metrics.BreakdownPercents(b)
			fmt.Fprintf(w, "positive %8s  %5.1f%%\n", humanize.Comma(int64(b.Positive)), p.PctPositive)
			fmt.Fprintf(w, "neutral  %8s  %5.1f%%\n", humanize.Comma(int64(b.Neutral)), p.PctNeutral)
			fmt.Fprintf(w, "negative %8s  %5.1f%%\n", humanize.Comma(int64(b.Negative)), p.PctNegative)
		})
}

func (c *cli) matrixCmd() *cobra.Command {
	return scoped(c, "matrix", "Show review counts per theme and sentiment",
		func(ctx context.Context, scope model.Scope) (model.ThemeSentimentMatrix, error) {
			api, err := c.api()
			if err != nil {
				return model.ThemeSentimentMatrix{}, err
			}
			return api.ThemeSentiment(ctx, scope)
		},
		func(w io.Writer, m model.ThemeSentimentMatrix) {
			fmt.Fprintf(w, "%-28s %8s %8s %8s\n", "THEME", "POS", "NEU", "NEG")
			for _, th := range m.Themes {
				fmt.Fprintf(w, "%-28s %8d %8d %8d\n", model.Theme{Name: th}.DisplayName(),
					m.Count(th, model.Positive), m.Count(th, model.Neutral), m.Count(th, model.Negative))
			}
			for _, label := range []model.SentimentLabel{model.Positive, model.Negative} {
				top := metrics.TopThemesFor(m, label)
				if len(top) == 0 {
					continue
				}
				names := make([]string, 0, 3)
				for _, lc := range top[:min(3, len(top))] {
					names = append(names, fmt.Sprintf("%s (%d)", model.Theme{Name: lc.Theme}.DisplayName(), lc.Count))
				}
				fmt.Fprintf(w, "top %s: %s\n", label, strings.Join(names, ", "))
			}
		})
}

func (c *cli) reviewsCmd() *cobra.Command {
	var (
		bank, theme, sentiment string
		page, limit            int
	)
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Show one page of reviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			label := model.SentimentLabel(strings.ToLower(sentiment))
			if label != "" && !label.Valid() {
				return fmt.Errorf("invalid sentiment %q: want positive, neutral or negative", sentiment)
			}
			if limit <= 0 {
				limit = c.cfg.UI.PageSize
			}
			f := query.Filter{Scope: model.Scope(bank), Theme: theme, Sentiment: label, Page: page, PageSize: limit}
			api, err := c.api()
			if err != nil {
				return err
			}
			rp, err := timed(c, cmd.Context(), "reviews", func(ctx context.Context) (model.ReviewPage, error) {
				return api.Reviews(ctx, f)
			})
			if err != nil {
				return err
			}
			if c.jsonOut {
				return printJSON(cmd.OutOrStdout(), rp)
			}
			printReviews(cmd.OutOrStdout(), rp, label, limit)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&bank, "bank", "b", "", "Bank name (default all banks)")
	fl.StringVarP(&theme, "theme", "t", "", "Theme name")
	fl.StringVarP(&sentiment, "sentiment", "s", "", "positive, neutral or negative")
	fl.IntVarP(&page, "page", "p", 1, "Page number")
	fl.IntVarP(&limit, "limit", "n", 0, "Page size (default from config)")
	return cmd
}

func printReviews(w io.Writer, rp model.ReviewPage, label model.SentimentLabel, pageSize int) {
	if len(rp.Reviews) == 0 {
		if label != "" {
			fmt.Fprintf(w, "No %s reviews for this theme.\n", label)
		} else {
			fmt.Fprintln(w, "No reviews.")
		}
		return
	}
	for _, r := range rp.Reviews {
		fmt.Fprintf(w, "%s  %-8s %3d%%  %s  %s\n", metrics.Stars(r.Rating), r.SentimentLabel,
			metrics.ConfidencePercent(r.TopicConfidence), r.BankName, r.Date)
		fmt.Fprintf(w, "    %s\n", r.Text)
	}
	pager := metrics.NewPager(rp.Page, rp.Total, pageSize)
	fmt.Fprintf(w, "Page %d of %d (%s reviews)\n", pager.Page, pager.TotalPages, humanize.Comma(int64(rp.Total)))
}
