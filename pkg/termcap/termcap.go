// Package termcap answers questions about the output terminal: how wide it
// is and how many colours it takes.
package termcap

import (
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Width returns the column count of the terminal behind f. When f is not a
// terminal the COLUMNS environment variable is consulted. ok is false when
// neither yields a positive width.
func Width(f *os.File) (int, bool) {
	if f != nil {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w, true
		}
	}
	return columnsEnv(os.Getenv)
}

// WidthFunc adapts Width for render.Options, re-reading the size on every
// call so resizes take effect on the next record.
func WidthFunc(f *os.File) func() (int, bool) {
	return func() (int, bool) { return Width(f) }
}

func columnsEnv(getenv func(string) string) (int, bool) {
	v := strings.TrimSpace(getenv("COLUMNS"))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Profile picks the colour profile for mode "auto", "always" or "never".
// Auto disables colour when f is not a terminal and otherwise defers to the
// environment (TERM, NO_COLOR, CLICOLOR_FORCE).
func Profile(mode string, f *os.File) termenv.Profile {
	switch mode {
	case "never":
		return termenv.Ascii
	case "always":
		return termenv.ANSI256
	}
	if !IsTerminal(f) {
		return termenv.Ascii
	}
	return termenv.NewOutput(f).EnvColorProfile()
}
