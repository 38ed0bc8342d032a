package model

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/modoterra/catlog/pkg/core"
	"github.com/modoterra/catlog/pkg/render"
)

// Mode identifies the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
)

// DefaultHistory is how many records are kept for scrollback and filtering.
const DefaultHistory = 5000

// entry is a record with its formatted lines and search key, both computed
// once on arrival.
type entry struct {
	rec  core.LogRecord
	text string // formatted lines without the final newline
	key  string // lower-cased tag, message and process name
}

// App is the root Bubble Tea model of the follow view.
type App struct {
	// State
	records []entry
	history int
	paused  bool
	pending int // records received while paused
	done    bool

	// Rendering
	format func(core.LogRecord) string
	width  *int

	// UI
	mode     Mode
	viewport viewport.Model
	search   textinput.Model
	help     help.Model
	keys     keyMap
	title    string
	height   int

	statusMsg string
}

// New creates the follow view. Records are formatted with layout and
// coloured with profile; the message column wraps at the window width.
func New(title string, layout render.Layout, profile termenv.Profile) App {
	width := new(int)
	term := render.New(io.Discard, layout, render.Options{
		Profile: profile,
		Width:   func() (int, bool) { return *width, *width > 0 },
	})

	si := textinput.New()
	si.Placeholder = "filter..."
	si.CharLimit = 64
	si.Prompt = "/"

	return App{
		history:  DefaultHistory,
		format:   term.Format,
		width:    width,
		mode:     ModeNormal,
		viewport: viewport.New(0, 0),
		search:   si,
		help:     help.New(),
		keys:     defaultKeyMap(),
		title:    title,
	}
}

// RecordMsg delivers one enriched record to the view.
type RecordMsg core.LogRecord

// StreamDoneMsg reports that the log stream has ended. Err is nil on a clean
// shutdown.
type StreamDoneMsg struct{ Err error }

// Init sets the window title.
func (a App) Init() tea.Cmd {
	return tea.SetWindowTitle(a.title)
}

// Update handles messages.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		resized := *a.width != msg.Width
		*a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.viewport.Width = msg.Width
		a.viewport.Height = max(msg.Height-headerHeight-footerHeight, 1)
		if resized {
			// Wrapping depends on the width.
			for i := range a.records {
				a.records[i].text = a.render(a.records[i].rec)
			}
		}
		a.refresh()
		return a, nil

	case RecordMsg:
		rec := core.LogRecord(msg)
		a.records = append(a.records, entry{
			rec:  rec,
			text: a.render(rec),
			key:  strings.ToLower(rec.Tag + "\x00" + rec.Message + "\x00" + rec.ProcessName),
		})
		if len(a.records) > a.history {
			a.records = a.records[len(a.records)-a.history:]
		}
		if a.paused {
			a.pending++
			return a, nil
		}
		a.refresh()
		return a, nil

	case StreamDoneMsg:
		a.done = true
		if msg.Err != nil {
			a.statusMsg = "stream ended: " + msg.Err.Error()
		} else {
			a.statusMsg = "stream ended"
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Search mode
	if a.mode == ModeSearch {
		switch msg.String() {
		case "esc":
			a.mode = ModeNormal
			a.search.SetValue("")
			a.search.Blur()
			a.refresh()
			return a, nil
		case "enter":
			a.mode = ModeNormal
			a.search.Blur()
			a.refresh()
			return a, nil
		default:
			var cmd tea.Cmd
			a.search, cmd = a.search.Update(msg)
			a.refresh()
			return a, cmd
		}
	}

	// Normal mode
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Pause):
		a.paused = !a.paused
		if !a.paused {
			a.pending = 0
			a.refresh()
		}
		return a, nil

	case key.Matches(msg, a.keys.Search):
		a.mode = ModeSearch
		a.search.Focus()
		return a, textinput.Blink

	case key.Matches(msg, a.keys.Clear):
		a.records = nil
		a.pending = 0
		a.refresh()
		return a, nil

	case key.Matches(msg, a.keys.Top):
		a.viewport.GotoTop()
		return a, nil

	case key.Matches(msg, a.keys.Bottom):
		a.viewport.GotoBottom()
		return a, nil

	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a App) render(rec core.LogRecord) string {
	return strings.TrimSuffix(a.format(rec), "\n")
}

// refresh rebuilds the viewport from the cached lines of the visible records.
// The view stays pinned to the newest line unless the user has scrolled up.
func (a *App) refresh() {
	follow := a.viewport.AtBottom() || a.viewport.TotalLineCount() == 0

	visible := a.filteredRecords()
	var size int
	for _, e := range visible {
		size += len(e.text) + 1
	}
	var b strings.Builder
	b.Grow(size)
	for i, e := range visible {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.text)
	}
	a.viewport.SetContent(b.String())

	if follow {
		a.viewport.GotoBottom()
	}
}

func (a App) filteredRecords() []entry {
	q := strings.ToLower(a.search.Value())
	if q == "" {
		return a.records
	}
	var filtered []entry
	for _, e := range a.records {
		if strings.Contains(e.key, q) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Records returns the number of records held.
func (a App) Records() int { return len(a.records) }

// Paused reports whether the view is frozen.
func (a App) Paused() bool { return a.paused }

func (a App) summary() string {
	shown := len(a.filteredRecords())
	s := fmt.Sprintf("%d records", len(a.records))
	if shown != len(a.records) {
		s = fmt.Sprintf("%d/%d records", shown, len(a.records))
	}
	if a.pending > 0 {
		s += fmt.Sprintf(", %d new", a.pending)
	}
	return s
}
