package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// eventRecord mirrors otel.Event for JSON decoding, so older logs with
// unknown fields still read.
type eventRecord struct {
	Time      time.Time      `json:"t"`
	Level     string         `json:"level"`
	Kind      string         `json:"kind"`
	Comp      string         `json:"comp"`
	SessionID string         `json:"session_id"`
	Slot      string         `json:"slot"`
	Seq       uint64         `json:"seq"`
	Bank      string         `json:"bank"`
	URL       string         `json:"url"`
	Status    int            `json:"status"`
	DurMs     float64        `json:"dur_ms"`
	Count     int            `json:"count"`
	Err       string         `json:"err"`
	Msg       string         `json:"msg"`
	Extra     map[string]any `json:"extra"`
}

// eventFilter selects which records are shown.
type eventFilter struct {
	kind  string
	level string
	comp  string
	bank  string
	slot  string
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "debug":
		return 0
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

func (f eventFilter) match(ev eventRecord) bool {
	if f.kind != "" && !strings.HasPrefix(ev.Kind, f.kind) {
		return false
	}
	if f.level != "" && levelRank(ev.Level) < levelRank(f.level) {
		return false
	}
	if f.comp != "" && ev.Comp != f.comp {
		return false
	}
	if f.bank != "" && ev.Bank != f.bank {
		return false
	}
	if f.slot != "" && !strings.HasPrefix(ev.Slot, f.slot) {
		return false
	}
	return true
}

func formatEvent(ev eventRecord) string {
	ts := ev.Time.Format("15:04:05.000")
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}

	parts := []string{fmt.Sprintf("%s %-5s [%-9s] %-18s", ts, lvl, ev.Comp, ev.Kind)}

	if ev.Slot != "" {
		parts = append(parts, fmt.Sprintf("%s#%d", ev.Slot, ev.Seq))
	}
	if ev.Bank != "" {
		parts = append(parts, "bank="+ev.Bank)
	}
	if ev.Status != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", ev.Status))
	}
	if ev.Msg != "" {
		parts = append(parts, "- "+ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}

	return strings.Join(parts, " ")
}

func (c *cli) eventsCmd() *cobra.Command {
	var (
		filter  eventFilter
		tail    int
		follow  bool
		logPath string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the dashboard event log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if logPath == "" {
				logPath = c.eventLogPath()
			}
			f, err := os.Open(logPath)
			if err != nil {
				return fmt.Errorf("event log not found at %s (set log.event_log and run cxdash first): %w", logPath, err)
			}
			defer f.Close()

			out := cmd.OutOrStdout()
			emit := func(ev eventRecord, raw []byte) {
				if c.jsonOut {
					fmt.Fprintln(out, string(raw))
					return
				}
				fmt.Fprintln(out, formatEvent(ev))
			}

			for _, l := range readTailLines(f, tail, filter.match) {
				emit(l.ev, l.raw)
			}
			if !follow {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return followLines(ctx, f, filter.match, emit)
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&tail, "tail", 50, "Number of recent lines to show")
	fl.BoolVarP(&follow, "follow", "f", false, "Follow mode (like tail -f)")
	fl.StringVar(&filter.kind, "kind", "", "Filter by event kind prefix (e.g. 'fetch')")
	fl.StringVar(&filter.level, "level", "", "Minimum level: debug, info, warn, error")
	fl.StringVar(&filter.comp, "comp", "", "Filter by component name")
	fl.StringVar(&filter.bank, "bank", "", "Filter by bank")
	fl.StringVar(&filter.slot, "slot", "", "Filter by slot key prefix")
	fl.StringVar(&logPath, "file", "", "Event log path (default from config)")
	return cmd
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// readTailLines reads r and returns the last n lines matching the filter.
func readTailLines(r io.Reader, n int, match func(eventRecord) bool) []parsedLine {
	scanner := bufio.NewScanner(r)
	// Allow large lines (some events may have big Extra maps)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	var ring []parsedLine
	if n > 0 {
		ring = make([]parsedLine, 0, n)
	}

	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(raw, &ev) != nil {
			continue
		}
		if !match(ev) || n <= 0 {
			continue
		}
		// Make a copy of raw since scanner reuses the buffer
		rawCopy := make([]byte, len(raw))
		copy(rawCopy, raw)

		if len(ring) < n {
			ring = append(ring, parsedLine{ev: ev, raw: rawCopy})
		} else {
			copy(ring, ring[1:])
			ring[n-1] = parsedLine{ev: ev, raw: rawCopy}
		}
	}

	return ring
}

// followLines polls r for appended lines until ctx is done.
func followLines(ctx context.Context, r io.Reader, match func(eventRecord) bool, emit func(eventRecord, []byte)) error {
	reader := bufio.NewReader(r)
	var pending []byte
	for {
		chunk, err := reader.ReadBytes('\n')
		pending = append(pending, chunk...)
		if err != nil {
			if err != io.EOF {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		line := trimLine(pending)
		pending = nil
		if len(line) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(line, &ev) != nil {
			continue
		}
		if match(ev) {
			emit(ev, line)
		}
	}
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
