package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/cxdash/internal/fixture"
	"github.com/abelbrown/cxdash/internal/store"
)

func (c *cli) serveFixtureCmd() *cobra.Command {
	var (
		addr     string
		dataPath string
		dbPath   string
		latency  time.Duration
		failBank []string
	)
	cmd := &cobra.Command{
		Use:   "serve-fixture",
		Short: "Serve the aggregation API from a local dataset",
		Long: "Serves the six aggregation endpoints from the built-in sample, a JSON\n" +
			"array of reviews or a database written by import. Latency and failures\n" +
			"can be injected to exercise the dashboard's error and staleness handling.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data := fixture.Sample()
			switch {
			case dbPath != "":
				st, err := store.Open(dbPath)
				if err != nil {
					return err
				}
				data, err = fixture.LoadStore(st)
				st.Close()
				if err != nil {
					return err
				}
			case dataPath != "":
				var err error
				if data, err = readDataset(dataPath); err != nil {
					return err
				}
			}

			srv := fixture.NewServer(data)
			if latency > 0 {
				srv.SetLatency(fixture.JitterLatency(0, latency))
			}
			for _, spec := range failBank {
				bank, status, err := parseFailBank(spec)
				if err != nil {
					return err
				}
				srv.FailBank(bank, status)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			c.log.Info("serving fixture API", "addr", addr, "banks", len(data.Banks()), "latency", latency)
			return listenAndServe(ctx, addr, srv)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&addr, "addr", "127.0.0.1:8000", "Listen address")
	fl.StringVar(&dataPath, "data", "", "JSON file with an array of reviews (default built-in sample)")
	fl.StringVar(&dbPath, "db", "", "SQLite database written by import")
	fl.DurationVar(&latency, "latency", 0, "Maximum random latency per request")
	fl.StringArrayVar(&failBank, "fail-bank", nil, "Fail requests for a bank, as BANK=STATUS (repeatable)")
	return cmd
}

// parseFailBank splits "BANK=STATUS". A missing status means 500.
func parseFailBank(spec string) (string, int, error) {
	bank, status, found := strings.Cut(spec, "=")
	if bank == "" {
		return "", 0, fmt.Errorf("invalid --fail-bank %q", spec)
	}
	if !found {
		return bank, 500, nil
	}
	code, err := strconv.Atoi(status)
	if err != nil || code < 400 || code > 599 {
		return "", 0, fmt.Errorf("invalid --fail-bank status %q", status)
	}
	return bank, code, nil
}
