package render

import "strings"

const (
	markerSingle = "   "
	markerFirst  = " ┌ "
	markerMiddle = " ├ "
	markerLast   = " └ "
)

// Chunks splits message into pieces of at most payload runes. A payload below
// one means unbounded. An empty message yields a single empty chunk.
func Chunks(message string, payload int) []string {
	runes := []rune(message)
	if payload < 1 || len(runes) <= payload {
		return []string{message}
	}

	n := (len(runes) + payload - 1) / payload
	out := make([]string, 0, n)
	for start := 0; start < len(runes); start += payload {
		end := min(start+payload, len(runes))
		out = append(out, string(runes[start:end]))
	}
	return out
}

// marker returns the continuation glyph for chunk i of n.
func marker(i, n int) string {
	switch {
	case n == 1:
		return markerSingle
	case i == 0:
		return markerFirst
	case i == n-1:
		return markerLast
	default:
		return markerMiddle
	}
}

// stripTabs removes tab characters, which would break column alignment.
func stripTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "")
}
