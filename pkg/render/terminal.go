package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/modoterra/catlog/pkg/core"
)

// Options configure a Terminal.
type Options struct {
	// Profile selects the escape sequences emitted. termenv.Ascii disables colour.
	Profile termenv.Profile
	// Width reports the current terminal width. Nil or a false result means
	// messages are never wrapped.
	Width func() (int, bool)
}

// Terminal writes formatted records to a sink.
type Terminal struct {
	mu       sync.Mutex
	w        io.Writer
	renderer *lipgloss.Renderer
	layout   Layout
	width    func() (int, bool)
}

// New creates a terminal that writes to w.
func New(w io.Writer, layout Layout, opts Options) *Terminal {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(opts.Profile)
	return &Terminal{
		w:        w,
		renderer: r,
		layout:   layout,
		width:    opts.Width,
	}
}

// Layout returns the column configuration.
func (t *Terminal) Layout() Layout { return t.layout }

// Print writes every line of rec to the sink in a single write.
func (t *Terminal) Print(rec core.LogRecord) error {
	out := t.Format(rec)

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := io.WriteString(t.w, out); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// Close restores the default terminal colours.
func (t *Terminal) Close() error {
	if t.renderer.ColorProfile() == termenv.Ascii {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := io.WriteString(t.w, termenv.CSI+termenv.ResetSeq+"m"); err != nil {
		return fmt.Errorf("reset colours: %w", err)
	}
	return nil
}

// Format renders rec into one or more newline-terminated lines.
func (t *Terminal) Format(rec core.LogRecord) string {
	l := t.layout

	ts := t.timestampColumn(rec.Timestamp)
	tag := t.tagColumn(rec.Tag)
	identity := t.identityColumn(rec)

	preambleWidth := runeLen(ts) + 1 + runeLen(tag) + 2 + runeLen(identity) + 2 + 3

	tagStyle := t.renderer.NewStyle().Foreground(paletteColor(HashedColor(rec.Tag)))
	identityStyle := t.renderer.NewStyle().Foreground(paletteColor(HashedColor(identity)))
	badgeStyle := t.renderer.NewStyle()
	messageStyle := t.renderer.NewStyle()
	if c, ok := levelColor(rec.Level, false); ok {
		badgeStyle = badgeStyle.Background(c).Foreground(badgeForeground)
	}
	if c, ok := levelColor(rec.Level, l.BrightColors); ok {
		messageStyle = messageStyle.Foreground(c)
	}

	preamble := ts + " " +
		tagStyle.Render(tag) +
		" [" + identityStyle.Render(identity) + "] " +
		badgeStyle.Render(" "+rec.Level.String()+" ")

	chunks := Chunks(stripTabs(rec.Message), t.payload(preambleWidth))

	var b strings.Builder
	for i, chunk := range chunks {
		b.WriteString(preamble)
		b.WriteString(marker(i, len(chunks)))
		if chunk != "" {
			b.WriteString(messageStyle.Render(chunk))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// payload returns the message width per line, or 0 for unbounded.
func (t *Terminal) payload(preambleWidth int) int {
	if t.width == nil {
		return 0
	}
	width, ok := t.width()
	if !ok {
		return 0
	}
	p := width - preambleWidth - 3
	if p < 1 {
		return 0
	}
	return p
}

func (t *Terminal) timestampColumn(ts core.Timestamp) string {
	l := t.layout
	if l.HideTimestamp {
		return ""
	}
	if !ts.Valid {
		return strings.Repeat(" ", l.timestampWidth())
	}
	if l.HideDate {
		return ts.Time.Format(timeFormat)
	}
	return ts.Time.Format(dateTimeFormat)
}

func (t *Terminal) tagColumn(tag string) string {
	l := t.layout
	tag = truncate(stripTabs(tag), l.TagWidth)
	if l.HideTimestamp {
		return fmt.Sprintf("%-*s", l.TagWidth, tag)
	}
	return fmt.Sprintf("%*s", l.TagWidth, tag)
}

func (t *Terminal) identityColumn(rec core.LogRecord) string {
	l := t.layout
	if l.UseProcessName {
		return fmt.Sprintf("%*s", l.ProcessNameWidth, truncate(stripTabs(rec.ProcessName), l.ProcessNameWidth))
	}
	return fmt.Sprintf("%*s", l.PIDWidth, fmt.Sprintf("%d:%d", rec.PID, rec.PID))
}

func truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func runeLen(s string) int {
	return len([]rune(s))
}
