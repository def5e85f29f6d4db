package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/cxdash/internal/dashboard"
	"github.com/abelbrown/cxdash/internal/model"
	"github.com/abelbrown/cxdash/internal/otel"
)

// Focus is the part of the screen receiving navigation keys.
type Focus int

const (
	FocusBanks Focus = iota
	FocusExplorer
)

// sidebarWidth is the bank list column, border included.
const sidebarWidth = 26

// Options configures an App.
type Options struct {
	Ring    *otel.RingBuffer // debug overlay source; nil disables the overlay
	Events  *otel.Logger
	Compact bool
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold the HTTP client. It hands calls to dispatch
// and receives their outcomes as ResponseMsg.
type App struct {
	state    *dashboard.State
	dispatch func([]dashboard.Call) tea.Cmd
	ring     *otel.RingBuffer
	events   *otel.Logger
	compact  bool

	spinner     spinner.Model
	focus       Focus
	bankCursor  int // 0 is "All"
	themeCursor int
	showDebug   bool
	width       int
	height      int
	ready       bool
}

// NewApp creates an App over state. dispatch turns calls into a command
// that executes them; each outcome must come back as a ResponseMsg.
func NewApp(state *dashboard.State, dispatch func([]dashboard.Call) tea.Cmd, opts Options) App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StatusBarKey

	return App{
		state:    state,
		dispatch: dispatch,
		ring:     opts.Ring,
		events:   opts.Events,
		compact:  opts.Compact,
		spinner:  s,
	}
}

// run dispatches calls, or returns nil when there is nothing to do.
func (a App) run(calls []dashboard.Call) tea.Cmd {
	if len(calls) == 0 || a.dispatch == nil {
		return nil
	}
	return a.dispatch(calls)
}

// Init loads the bank list and every panel for the All scope.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.run(a.state.Init()))
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case ResponseMsg:
		if otel.TraceEnabled() {
			a.events.Emit(otel.Event{
				Level: otel.LevelDebug,
				Kind:  otel.KindMsgReceived,
				Comp:  "ui",
				Slot:  string(msg.Response.Call.Token.Key),
				Seq:   msg.Response.Call.Token.Seq,
			})
		}
		_, next := a.state.Apply(msg.Response)
		a.clampCursors()
		return a, a.run(next)

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)
	}

	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Comp: "ui", Msg: msg.String()})

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Debug):
		if a.ring != nil {
			a.showDebug = !a.showDebug
		}
		return a, nil
	case key.Matches(msg, keys.Focus):
		if a.focus == FocusBanks {
			a.focus = FocusExplorer
		} else {
			a.focus = FocusBanks
		}
		return a, nil
	case key.Matches(msg, keys.Retry):
		return a, a.run(a.state.Retry())
	}

	if a.focus == FocusBanks {
		return a.handleBankKey(msg)
	}
	return a.handleExplorerKey(msg)
}

func (a App) handleBankKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.bankCursor > 0 {
			a.bankCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.bankCursor < len(a.state.Banks().Value) {
			a.bankCursor++
		}
	case key.Matches(msg, keys.Select):
		scope := model.AllBanks
		if a.bankCursor > 0 {
			scope = model.Scope(a.state.Banks().Value[a.bankCursor-1].Name)
		}
		a.themeCursor = 0
		return a, a.run(a.state.SelectScope(scope))
	}
	return a, nil
}

func (a App) handleExplorerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	theme, ok := a.selectedTheme()
	switch {
	case key.Matches(msg, keys.Up):
		if a.themeCursor > 0 {
			a.themeCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.themeCursor < len(a.state.Themes().Value)-1 {
			a.themeCursor++
		}
	case !ok:
	case key.Matches(msg, keys.Toggle):
		return a, a.run(a.state.ToggleTheme(theme))
	case key.Matches(msg, keys.TabPos):
		return a, a.run(a.state.SetTab(theme, model.Positive))
	case key.Matches(msg, keys.TabNeg):
		return a, a.run(a.state.SetTab(theme, model.Negative))
	case key.Matches(msg, keys.Prev):
		return a, a.run(a.state.PrevPage(theme))
	case key.Matches(msg, keys.Next):
		return a, a.run(a.state.NextPage(theme))
	}
	return a, nil
}

// selectedTheme returns the theme under the explorer cursor.
func (a App) selectedTheme() (string, bool) {
	themes := a.state.Themes().Value
	if a.themeCursor < 0 || a.themeCursor >= len(themes) {
		return "", false
	}
	return themes[a.themeCursor].Name, true
}

// clampCursors keeps cursors inside lists that were just replaced.
func (a *App) clampCursors() {
	if n := len(a.state.Banks().Value); a.bankCursor > n {
		a.bankCursor = n
	}
	if n := len(a.state.Themes().Value); a.themeCursor >= n {
		a.themeCursor = max(n-1, 0)
	}
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.showDebug {
		return debugOverlay(a.ring, a.width, a.height-1) + "\n" + debugStatusBar(a.width)
	}

	bodyHeight := max(a.height-2, 1)
	spin := a.spinner.View()
	sidebar := renderSidebar(a.state.Banks(), a.state.Scope(), a.bankCursor, a.focus == FocusBanks, spin, bodyHeight)

	mainWidth := max(a.width-sidebarWidth-1, 30)
	var main string
	if a.focus == FocusExplorer {
		main = a.viewExplorer(mainWidth, bodyHeight)
	} else {
		main = a.viewOverview(mainWidth)
	}
	main = cropLines(main, bodyHeight)

	body := lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(sidebarWidth).Render(sidebar), " ", main)
	return a.viewHeader() + "\n" + body + "\n" + a.viewStatusBar()
}

func (a App) viewHeader() string {
	title := "Customer Experience Dashboard · " + a.state.Scope().String()
	if a.state.Loading() {
		title += " " + a.spinner.View()
	}
	return Header.Width(a.width).Render(title)
}

func (a App) viewOverview(width int) string {
	gap := "\n\n"
	if a.compact {
		gap = "\n"
	}
	themes := a.state.Themes()
	sections := []string{
		renderKPIs(a.state.Summary(), a.spinner.View()),
		lipgloss.JoinHorizontal(lipgloss.Top,
			renderThemeBars(themes.Status, themes.Err, a.state.ThemeBars(), width*3/5, a.spinner.View()),
			"   ",
			renderDonut(a.state.Donut(), a.state.Palette(), width*2/5-4, a.spinner.View()),
		),
		renderPainPoints(a.state.PainPoints(), width, a.spinner.View()),
		renderDrivers(a.state.Matrix(), a.state.Palette(), a.spinner.View()),
	}
	return strings.Join(sections, gap)
}

// viewExplorer renders the theme cards, scrolled so the selected card is
// visible.
func (a App) viewExplorer(width, height int) string {
	title := SectionTitle.Render("Reviews Explorer")
	themes := a.state.Themes()
	if st := statusLine(themes.Status, themes.Err, a.spinner.View()); st != "" {
		return title + "\n" + st
	}
	cards := a.state.Cards()
	if len(cards) == 0 {
		return title + "\n" + Muted.Render("No themes for this bank.")
	}

	blocks := make([]string, len(cards))
	for i, v := range cards {
		blocks[i] = renderCard(v, a.state.Palette(), i == a.themeCursor, width, a.spinner.View())
	}

	avail := height - 1
	start := min(a.themeCursor, len(blocks)-1)
	used := lipgloss.Height(blocks[start])
	for start > 0 && used+lipgloss.Height(blocks[start-1]) <= avail {
		start--
		used += lipgloss.Height(blocks[start])
	}
	return title + "\n" + strings.Join(blocks[start:], "\n")
}

func (a App) viewStatusBar() string {
	var h string
	if a.focus == FocusBanks {
		h = hints(keys.Up, keys.Down, keys.Select, keys.Focus, keys.Retry, keys.Quit)
	} else {
		h = hints(keys.Up, keys.Down, keys.Toggle, keys.TabPos, keys.TabNeg, keys.Prev, keys.Next, keys.Focus, keys.Quit)
	}
	if n := staleSummary(a.ring); n > 0 {
		h += StatusBarText.Render(fmt.Sprintf("stale dropped: %d", n))
	}
	return StatusBar.Width(a.width).Render(h)
}

// cropLines keeps the first n lines of s.
func cropLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

// Focus returns the focused area (for testing).
func (a App) Focus() Focus {
	return a.focus
}

// BankCursor returns the sidebar cursor (for testing).
func (a App) BankCursor() int {
	return a.bankCursor
}

// ThemeCursor returns the explorer cursor (for testing).
func (a App) ThemeCursor() int {
	return a.themeCursor
}

// State returns the dashboard state (for testing).
func (a App) State() *dashboard.State {
	return a.state
}
