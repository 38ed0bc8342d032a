package render

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/modoterra/catlog/pkg/core"
)

// HashedColor maps text to a stable ANSI-256 palette index. Indices that are
// hard to read on dark backgrounds are nudged to a neighbour.
func HashedColor(text string) uint8 {
	c := uint8(42)
	for i := 0; i < len(text); i++ {
		c ^= text[i]
	}
	switch {
	case c <= 1:
		return c + 2
	case c >= 16 && c <= 21:
		return c + 6
	case c >= 52 && c <= 55, c >= 126 && c <= 129:
		return c + 4
	case c >= 163 && c <= 165, c >= 200 && c <= 201:
		return c + 3
	case c == 207:
		return c + 1
	case c >= 232 && c <= 240:
		return c + 9
	}
	return c
}

func paletteColor(n uint8) lipgloss.Color {
	return lipgloss.Color(strconv.Itoa(int(n)))
}

// levelColor returns the highlight colour for a severity, or false when the
// level is shown uncoloured.
func levelColor(level core.Level, bright bool) (lipgloss.Color, bool) {
	switch level {
	case core.LevelInfo:
		if bright {
			return "10", true
		}
		return "2", true
	case core.LevelWarn:
		if bright {
			return "11", true
		}
		return "3", true
	case core.LevelError, core.LevelFatal, core.LevelAssert:
		if bright {
			return "9", true
		}
		return "1", true
	}
	return "", false
}

const badgeForeground = lipgloss.Color("0")
