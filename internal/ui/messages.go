// Package ui provides the Bubble Tea TUI for the review dashboard.
package ui

import "github.com/abelbrown/cxdash/internal/dashboard"

// ResponseMsg is sent when one dashboard call finishes, in whatever order
// calls happen to finish.
type ResponseMsg struct {
	Response dashboard.Response
}
