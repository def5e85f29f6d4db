// Command cxdash is the terminal customer-experience dashboard. It queries
// the review aggregation API and renders bank KPIs, theme sentiment, pain
// points and a paged reviews explorer.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/cxdash/internal/config"
	"github.com/abelbrown/cxdash/internal/coord"
	"github.com/abelbrown/cxdash/internal/dashboard"
	"github.com/abelbrown/cxdash/internal/fetch"
	"github.com/abelbrown/cxdash/internal/fixture"
	"github.com/abelbrown/cxdash/internal/logging"
	"github.com/abelbrown/cxdash/internal/otel"
	"github.com/abelbrown/cxdash/internal/ui"
)

var (
	cfgPath     string
	baseURL     string
	demo        bool
	demoLatency time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "cxdash",
		Short:        "Terminal dashboard for bank review sentiment",
		SilenceUsage: true,
		RunE:         run,
	}
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file (default ~/.cxdash/config.json)")
	rootCmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL (overrides config)")
	rootCmd.Flags().BoolVar(&demo, "demo", false, "Serve a built-in sample dataset instead of a real API")
	rootCmd.Flags().DurationVar(&demoLatency, "demo-latency", 400*time.Millisecond, "Maximum random latency of demo responses")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := cfg.LogLevel()

	if err := logging.Init(cfg.Log.File, level); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	events, closeEvents := openEvents(cfg.Log.EventLog)
	defer closeEvents()
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events.SetRingBuffer(ring)

	if demo {
		srv := fixture.NewServer(fixture.Sample())
		srv.SetLatency(fixture.JitterLatency(0, demoLatency))
		httpSrv, url, err := srv.Listen("127.0.0.1:0")
		if err != nil {
			return err
		}
		defer httpSrv.Close()
		cfg.API.BaseURL = url
		logging.Info("Demo API started", "url", url)
	}

	opts := cfg.FetchOptions()
	opts.Events = events
	client := fetch.NewClient(cfg.API.BaseURL, opts)

	state := dashboard.New(dashboard.Options{
		Palette:  cfg.MetricsPalette(),
		PageSize: cfg.UI.PageSize,
		Events:   events,
	})

	coordinator := coord.NewCoordinator(client, cfg.API.FanoutLimit)
	app := ui.NewApp(state, coordinator.Dispatch, ui.Options{
		Ring:    ring,
		Events:  events,
		Compact: cfg.Compact(),
	})

	program := tea.NewProgram(app, tea.WithAltScreen())
	coordinator.Start(ctx, program)

	logging.Info("cxdash starting", "api", cfg.API.BaseURL, "fanout", cfg.API.FanoutLimit)
	events.Info(otel.KindStartup, "main", cfg.API.BaseURL)

	// Run UI (blocks until quit)
	_, runErr := program.Run()
	if runErr != nil {
		logging.Error("Application error", "error", runErr)
		events.Error(otel.KindError, "main", runErr)
	}

	// Graceful shutdown
	cancel()
	coordinator.Wait()
	events.Info(otel.KindShutdown, "main", "")
	return runErr
}

// openEvents opens the JSONL event log at path. An empty path keeps events
// in memory only, for the debug overlay.
func openEvents(path string) (*otel.Logger, func()) {
	if path == "" {
		l := otel.NewLogger(io.Discard)
		return l, l.Close
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logging.Warn("Failed to create event log directory", "error", err)
		l := otel.NewLogger(io.Discard)
		return l, l.Close
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logging.Warn("Failed to open event log", "path", path, "error", err)
		l := otel.NewLogger(io.Discard)
		return l, l.Close
	}
	l := otel.NewLogger(f)
	return l, func() {
		l.Close()
		f.Close()
	}
}
