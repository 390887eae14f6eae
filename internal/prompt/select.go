// Package prompt implements the single-line interactive selector with
// remote-backed incremental autocomplete. Each keystroke change spawns one
// background fetch for the current prefix; a newer keystroke supersedes it
// and its late result is discarded, never applied. In non-interactive
// contexts the selector is bypassed entirely.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/merkle-dx/adopr/internal/logging"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ErrSelectionCancelled is returned when the operator aborts the prompt
var ErrSelectionCancelled = errors.New("selection cancelled")

// FetchFunc loads suggestions for a query prefix from the remote service
type FetchFunc func(ctx context.Context, query string) ([]Suggestion, error)

// Options configures a Select run
type Options struct {
	// Title is shown above the input line
	Title string
	// Placeholder is the input placeholder text
	Placeholder string
	// Default is returned unchanged when the selector is bypassed, and
	// pre-filled otherwise
	Default string
	// Fetch loads remote suggestions; nil disables autocomplete
	Fetch FetchFunc
	// Initial suggestions shown before the first fetch returns
	// (e.g., recently used tickets)
	Initial []Suggestion
	// MaxVisible caps the rendered suggestion list
	MaxVisible int
}

// Interactive decides once at startup whether prompting is possible.
// An explicit disable always wins, even on a terminal; an explicit enable
// wins otherwise; the default is whether stdin is a terminal.
func Interactive(explicit, disabled bool) bool {
	if disabled {
		return false
	}
	if explicit {
		return true
	}
	return isatty.IsTerminal(os.Stdin.Fd())
}

// Select runs the prompt and returns the confirmed value. Callers that
// already decided against interactivity must not call this; they use their
// default directly.
func Select(ctx context.Context, opts Options) (string, error) {
	if opts.MaxVisible == 0 {
		opts.MaxVisible = 8
	}

	m := newSelectModel(ctx, opts)
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return "", ErrSelectionCancelled
		}
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	result := final.(selectModel)
	if result.cancelled {
		return "", ErrSelectionCancelled
	}
	logging.Logger.Debug("prompt confirmed", "title", opts.Title, "value", result.value)
	return result.value, nil
}

type suggestionsMsg struct {
	generation  int
	suggestions []Suggestion
}

type selectModel struct {
	ctx  context.Context
	opts Options

	input       textinput.Model
	spin        spinner.Model
	store       *suggestionStore
	cancelFetch context.CancelFunc
	initFetch   tea.Cmd

	cursor    int
	fetching  bool
	value     string
	cancelled bool
}

func newSelectModel(ctx context.Context, opts Options) selectModel {
	ti := textinput.New()
	ti.Placeholder = opts.Placeholder
	ti.SetValue(opts.Default)
	ti.Focus()
	ti.CharLimit = 120
	ti.Width = 48

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	store := &suggestionStore{}

	m := selectModel{
		ctx:    ctx,
		opts:   opts,
		input:  ti,
		spin:   sp,
		store:  store,
		cursor: -1,
	}
	if opts.Fetch != nil {
		// Register the initial fetch first, then seed under its generation:
		// the pre-loaded suggestions stay visible until the fetch result
		// replaces them.
		m.initFetch = m.fetchCmd(m.input.Value())
		store.seed(opts.Initial)
	} else {
		store.commit(store.next(opts.Default), opts.Initial)
	}
	return m
}

func (m selectModel) Init() tea.Cmd {
	if m.initFetch != nil {
		return tea.Batch(textinput.Blink, m.initFetch)
	}
	return textinput.Blink
}

// fetchCmd spawns the background worker for the current prefix. The worker
// commits through the store's mutex; a result that lost the generation race
// is dropped there and never reaches the visible list.
func (m *selectModel) fetchCmd(query string) tea.Cmd {
	if m.cancelFetch != nil {
		m.cancelFetch()
	}
	fetchCtx, cancel := context.WithCancel(m.ctx)
	m.cancelFetch = cancel
	generation := m.store.next(query)
	m.fetching = true

	fetch := m.opts.Fetch
	store := m.store
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		defer cancel()
		suggestions, err := fetch(fetchCtx, query)
		if err != nil {
			logging.Logger.Debug("suggestion fetch failed", "query", query, "error", err)
			suggestions = nil
		}
		if !store.commit(generation, suggestions) {
			return nil // superseded by a newer keystroke
		}
		return suggestionsMsg{generation: generation, suggestions: suggestions}
	})
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			if m.cancelFetch != nil {
				m.cancelFetch()
			}
			return m, tea.Quit

		case "enter":
			_, suggestions := m.store.snapshot()
			if m.cursor >= 0 && m.cursor < len(suggestions) {
				m.value = suggestions[m.cursor].Value
			} else {
				m.value = strings.TrimSpace(m.input.Value())
			}
			if m.cancelFetch != nil {
				m.cancelFetch()
			}
			return m, tea.Quit

		case "up":
			if m.cursor > -1 {
				m.cursor--
			}
			return m, nil

		case "down":
			_, suggestions := m.store.snapshot()
			if m.cursor < len(suggestions)-1 && m.cursor < m.opts.MaxVisible-1 {
				m.cursor++
			}
			return m, nil
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			m.cursor = -1
			if m.opts.Fetch != nil {
				return m, tea.Batch(cmd, m.fetchCmd(m.input.Value()))
			}
		}
		return m, cmd

	case suggestionsMsg:
		// Generation already checked under the store mutex; reaching here
		// means the result is current.
		m.fetching = false
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.fetching {
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

var (
	promptTitleStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF")).Bold(true)
	suggestionStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	suggestionLabelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedSuggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#00FF00")).Bold(true)
	helpStyle               = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (m selectModel) View() string {
	var b strings.Builder

	b.WriteString(promptTitleStyle.Render(m.opts.Title))
	if m.fetching {
		b.WriteString(" " + m.spin.View())
	}
	b.WriteString("\n" + m.input.View() + "\n")

	_, suggestions := m.store.snapshot()
	for i, s := range suggestions {
		if i >= m.opts.MaxVisible {
			break
		}
		line := s.Value
		if s.Label != "" {
			line += "  " + suggestionLabelStyle.Render(truncateLabel(s.Label, 50))
		}
		if i == m.cursor {
			b.WriteString("  " + selectedSuggestionStyle.Render("> "+s.Value))
			if s.Label != "" {
				b.WriteString("  " + suggestionLabelStyle.Render(truncateLabel(s.Label, 50)))
			}
			b.WriteString("\n")
		} else {
			b.WriteString("    " + suggestionStyle.Render(line) + "\n")
		}
	}

	b.WriteString(helpStyle.Render("\n↑/↓ select • enter confirm • esc cancel") + "\n")
	return b.String()
}

func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
