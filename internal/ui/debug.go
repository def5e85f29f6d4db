package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/cxdash/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing query stats and recent events.
// Pure function with no side effects. Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	// --- Stats section (keyed lookups, not map iteration) ---
	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Query Stats"))
	lines = append(lines, fmt.Sprintf("  Fetches:    %d started, %d complete, %d errors",
		stats[otel.KindFetchStart], stats[otel.KindFetchComplete], stats[otel.KindFetchError]))
	lines = append(lines, fmt.Sprintf("  Slots:      %d applied, %d stale, %d abandoned",
		stats[otel.KindSlotApplied], stats[otel.KindSlotStale], stats[otel.KindSlotAbandon]))
	lines = append(lines, fmt.Sprintf("  Fan-out:    %d rounds, %d partial, %d done",
		stats[otel.KindFanoutBegin], stats[otel.KindFanoutPartial], stats[otel.KindFanoutDone]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	// --- Recent events section ---
	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		ageStr := formatAge(time.Since(e.Time))

		line := fmt.Sprintf("  %6s  %-18s", ageStr, string(e.Kind))
		if e.Slot != "" {
			line += fmt.Sprintf("  %s#%d", truncateRunes(e.Slot, 24), e.Seq)
		}
		if e.Bank != "" {
			line += "  " + truncateRunes(e.Bank, 16)
		}
		if e.Status != 0 {
			line += fmt.Sprintf("  %d", e.Status)
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		lines = append(lines, line)
	}

	// Truncate to fit terminal height (subtract chrome added by DebugPanel border/padding)
	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 96
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	content := strings.Join(lines, "\n")
	return DebugPanel.Width(panelWidth).Render(content)
}

// staleSummary counts discarded responses among recent events, for the
// status bar.
func staleSummary(ring *otel.RingBuffer) int {
	if ring == nil {
		return 0
	}
	return len(ring.LastOf(ring.Cap(), otel.KindSlotStale))
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	keys := StatusBarKey.Render("D") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}
