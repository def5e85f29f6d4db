// Command cxq queries the review aggregation API from the command line.
//
// Usage:
//
//	cxq summary --bank CBE       KPIs for one bank
//	cxq themes                   Themes sorted by sentiment
//	cxq painpoints               Per-bank pain points, streamed as they land
//	cxq reviews --theme Fees     One page of reviews
//	cxq import --sample          Seed reviews.db with the sample dataset
//	cxq evaluate --db reviews.db Score sentiment labels against star ratings
//	cxq serve-fixture            Serve the sample dataset on :8000
//	cxq events -f                Follow the dashboard event log
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/abelbrown/cxdash/internal/config"
	"github.com/abelbrown/cxdash/internal/fetch"
	"github.com/abelbrown/cxdash/internal/fixture"
	"github.com/abelbrown/cxdash/internal/logging"
)

// cli holds the flags and lazily built dependencies shared by subcommands.
type cli struct {
	cfgPath string
	baseURL string
	demo    bool
	jsonOut bool
	verbose bool

	cfg     *config.Config
	log     *log.Logger
	client  *fetch.Client
	closers []func()
}

func main() {
	c := &cli{}
	root := c.rootCmd()
	err := root.Execute()
	c.close()
	if err != nil {
		os.Exit(1)
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cxq",
		Short:         "Query bank review aggregates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.SetErr(os.Stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&c.cfgPath, "config", "c", "", "Path to config file (default ~/.cxdash/config.json)")
	pf.StringVar(&c.baseURL, "base-url", "", "API base URL (overrides config)")
	pf.BoolVar(&c.demo, "demo", false, "Query the built-in sample dataset")
	pf.BoolVar(&c.jsonOut, "json", false, "Print JSON instead of text")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "Log requests to stderr")

	root.AddCommand(
		c.banksCmd(),
		c.summaryCmd(),
		c.themesCmd(),
		c.sentimentCmd(),
		c.matrixCmd(),
		c.reviewsCmd(),
		c.painPointsCmd(),
		c.importCmd(),
		c.evaluateCmd(),
		c.serveFixtureCmd(),
		c.eventsCmd(),
	)
	return root
}

// setup loads config and the stderr logger. The API client is built on
// first use by api.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.cfgPath)
	if err != nil {
		return err
	}
	if c.baseURL != "" {
		cfg.API.BaseURL = c.baseURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := cfg.LogLevel()
	if c.verbose {
		level = log.DebugLevel
	}
	c.cfg = cfg
	c.log = logging.New(cmd.ErrOrStderr(), level)
	return nil
}

// api returns the client for the configured (or demo) API.
func (c *cli) api() (*fetch.Client, error) {
	if c.client != nil {
		return c.client, nil
	}
	base := c.cfg.API.BaseURL
	if c.demo {
		srv, url, err := fixture.NewServer(fixture.Sample()).Listen("127.0.0.1:0")
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() { srv.Close() })
		base = url
		c.log.Debug("demo API started", "url", url)
	}
	c.client = fetch.NewClient(base, c.cfg.FetchOptions())
	return c.client, nil
}

func (c *cli) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// timed runs fn and logs how long it took at debug level.
func timed[T any](c *cli, ctx context.Context, what string, fn func(ctx context.Context) (T, error)) (T, error) {
	start := time.Now()
	v, err := fn(ctx)
	if err != nil {
		c.log.Debug("request failed", "what", what, "error", fetch.Describe(err), "dur", time.Since(start))
		return v, fmt.Errorf("%s: %w", what, err)
	}
	c.log.Debug("request done", "what", what, "dur", time.Since(start))
	return v, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// eventLogPath returns the configured event log, or the default one under
// ~/.cxdash.
func (c *cli) eventLogPath() string {
	if c.cfg != nil && c.cfg.Log.EventLog != "" {
		return c.cfg.Log.EventLog
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "cxdash.events.jsonl"
	}
	return filepath.Join(home, ".cxdash", "cxdash.events.jsonl")
}

// listenAndServe serves h on addr until ctx is done.
func listenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
