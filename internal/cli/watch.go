package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pkgtrack/pkg/errors"
	"github.com/matzehuels/pkgtrack/pkg/integrations"
	"github.com/matzehuels/pkgtrack/pkg/querysync"
	"github.com/matzehuels/pkgtrack/pkg/tracker"
)

// watchCommand creates the interactive watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "watch [package...]",
		Short: "Interactively track packages in the terminal",
		Long: `Open an interactive view of tracked packages.

Keys in the list:
  ↑/↓ j/k   move
  r         refresh the selected package
  R         refresh, bypassing caches
  d         stop tracking the selected package
  c         clear the selected package's error
  a, tab    type a package name to add
  q         quit

In the input, enter adds the package and esc returns to the list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			names := tracker.NormalizeAll(append(querysync.Parse(query), args...))
			return c.runWatch(ctx, querysync.Build(query, names))
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "shared query string to load packages from")
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, query string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	rt, err := newRuntime(ctx, cfg, c.Logger)
	if err != nil {
		return err
	}
	defer rt.close()

	loc := querysync.NewMemoryLocation(query)
	model := newWatchModel(ctx, rt.store, loc)

	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	unsubscribe := rt.store.Subscribe(func(st, _ tracker.State) {
		p.Send(stateMsg(st))
	})
	defer unsubscribe()

	final, err := p.Run()
	if m, ok := final.(watchModel); ok && m.stopSync != nil {
		m.stopSync()
	}
	if err != nil && ctx.Err() == nil {
		return err
	}

	if q := loc.Query(); q != "" {
		printNextStep("Share", "pkgtrack watch --query '"+q+"'")
	}
	return ctx.Err()
}

// =============================================================================
// watchModel
// =============================================================================

type watchFocus int

const (
	focusList watchFocus = iota
	focusInput
)

// stateMsg carries a store snapshot into the event loop.
type stateMsg tracker.State

// syncedMsg reports that the location has been hydrated into the store.
type syncedMsg struct {
	stop func()
	err  error
}

// actionMsg reports a finished store action.
type actionMsg struct {
	action string
	name   string
	err    error
}

// watchModel is the bubbletea model of the watch command. Store actions run
// as commands, never inside Update, because store listeners feed the event
// loop.
type watchModel struct {
	ctx      context.Context
	store    *tracker.Store
	location querysync.Location
	stopSync func()

	input  textinput.Model
	focus  watchFocus
	state  tracker.State
	cursor int
	status string
	width  int
}

func newWatchModel(ctx context.Context, store *tracker.Store, loc querysync.Location) watchModel {
	ti := textinput.New()
	ti.Placeholder = "package name"
	ti.Prompt = "+ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorCyan)
	ti.CharLimit = 214

	m := watchModel{
		ctx:      ctx,
		store:    store,
		location: loc,
		input:    ti,
		state:    store.State(),
	}
	if len(querysync.Parse(loc.Query())) == 0 {
		m.focus = focusInput
		m.input.Focus()
	}
	return m
}

func (m watchModel) Init() tea.Cmd {
	ctx, store, loc := m.ctx, m.store, m.location
	return tea.Batch(textinput.Blink, func() tea.Msg {
		stop, err := querysync.Sync(ctx, store, loc)
		return syncedMsg{stop: stop, err: err}
	})
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = tracker.State(msg)
		m.clampCursor()
		return m, nil

	case syncedMsg:
		m.stopSync = msg.stop
		if msg.err != nil {
			m.status = StyleError.Render(msg.err.Error())
		}
		m.state = m.store.State()
		return m, nil

	case actionMsg:
		m.status = describeAction(msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(10, msg.Width-4)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.focus == focusInput {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m watchModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := integrations.NormalizePkgName(m.input.Value())
		m.input.Reset()
		if name == "" {
			return m, nil
		}
		if err := errors.ValidatePackageName(name); err != nil {
			m.status = StyleError.Render(errors.UserMessage(err))
			return m, nil
		}
		if m.state.Tracked(name) {
			m.status = StyleDim.Render(name + " is already tracked")
			return m, nil
		}
		m.status = StyleDim.Render("adding " + name + "...")
		return m, m.action("add", name, func(ctx context.Context) error { return m.store.Add(ctx, name) })
	case "esc", "tab":
		if len(m.state.Packages) > 0 {
			m.focus = focusList
			m.input.Blur()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m watchModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Packages)-1 {
			m.cursor++
		}
	case "a", "tab", "/":
		m.focus = focusInput
		return m, m.input.Focus()
	case "r":
		if name, ok := m.selected(); ok {
			return m, m.action("refresh", name, func(ctx context.Context) error { return m.store.Refresh(ctx, name) })
		}
	case "R":
		if name, ok := m.selected(); ok {
			return m, m.action("fresh refresh", name, func(ctx context.Context) error { return m.store.RefreshFresh(ctx, name) })
		}
	case "d", "delete", "backspace":
		if name, ok := m.selected(); ok {
			return m, m.action("remove", name, func(context.Context) error {
				m.store.Remove(name)
				return nil
			})
		}
	case "c":
		if name, ok := m.selected(); ok {
			return m, m.action("clear error", name, func(context.Context) error {
				m.store.ClearError(name)
				return nil
			})
		}
	}
	return m, nil
}

// action runs fn off the event loop and reports the result as an actionMsg.
func (m watchModel) action(action, name string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionMsg{action: action, name: name, err: fn(ctx)}
	}
}

func (m watchModel) selected() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Packages) {
		return "", false
	}
	return m.state.Packages[m.cursor], true
}

func (m *watchModel) clampCursor() {
	if n := len(m.state.Packages); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	if len(m.state.Packages) == 0 && m.focus == focusList {
		m.focus = focusInput
		m.input.Focus()
	}
}

func describeAction(msg actionMsg) string {
	if msg.err != nil {
		return StyleError.Render(fmt.Sprintf("%s %s: %v", msg.action, msg.name, msg.err))
	}
	switch msg.action {
	case "add":
		return StyleSuccess.Render("added " + msg.name)
	case "remove":
		return StyleDim.Render("removed " + msg.name)
	default:
		return StyleDim.Render(msg.action + " " + msg.name + " done")
	}
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("pkgtrack watch"))
	if tracker.IsAnyLoading(m.state) {
		b.WriteString("  " + StyleWarning.Render("loading…"))
	}
	b.WriteString("\n\n")

	if m.focus == focusInput {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(StyleDim.Render("+ press a to add a package"))
	}
	b.WriteString("\n\n")

	if len(m.state.Packages) == 0 {
		b.WriteString(StyleDim.Render("No packages tracked yet."))
	} else {
		cursor := -1
		if m.focus == focusList {
			cursor = m.cursor
		}
		b.WriteString(summaryTable(tracker.Summaries(m.state), cursor))
		if name, ok := m.selected(); ok && m.state.Errors[name] != "" {
			b.WriteString("\n" + styleIconError.Render(iconError) + " " + StyleError.Render(m.state.Errors[name]))
		}
	}
	b.WriteString("\n\n")

	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	if q := m.location.Query(); q != "" {
		b.WriteString(StyleDim.Render("share: ") + styleCommand.Render("?"+q) + "\n")
	}

	help := "↑/↓ move  r refresh  R fresh  d remove  c clear error  a add  q quit"
	if m.focus == focusInput {
		help = "⏎ add  esc list  ctrl+c quit"
	}
	b.WriteString(StyleDim.Render(help))
	return b.String()
}
