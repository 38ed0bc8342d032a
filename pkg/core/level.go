package core

import "fmt"

// Level is the severity of a log record. Levels are ordered, LevelNone lowest.
type Level int

const (
	LevelNone Level = iota
	LevelTrace
	LevelVerbose
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
	LevelAssert
)

var levelChars = [...]string{
	LevelNone:    "-",
	LevelTrace:   "T",
	LevelVerbose: "V",
	LevelDebug:   "D",
	LevelInfo:    "I",
	LevelWarn:    "W",
	LevelError:   "E",
	LevelFatal:   "F",
	LevelAssert:  "A",
}

var levelWords = [...]string{
	LevelNone:    "none",
	LevelTrace:   "trace",
	LevelVerbose: "verbose",
	LevelDebug:   "debug",
	LevelInfo:    "info",
	LevelWarn:    "warn",
	LevelError:   "error",
	LevelFatal:   "fatal",
	LevelAssert:  "assert",
}

// String returns the single-character form used in logcat output.
func (l Level) String() string {
	if l < LevelNone || l > LevelAssert {
		return levelChars[LevelNone]
	}
	return levelChars[l]
}

// Word returns the lowercase long form, e.g. "debug".
func (l Level) Word() string {
	if l < LevelNone || l > LevelAssert {
		return levelWords[LevelNone]
	}
	return levelWords[l]
}

// LevelFromChar maps a logcat severity character. Unknown characters map to LevelNone.
func LevelFromChar(c byte) Level {
	switch c {
	case 'T':
		return LevelTrace
	case 'V':
		return LevelVerbose
	case 'D':
		return LevelDebug
	case 'I':
		return LevelInfo
	case 'W':
		return LevelWarn
	case 'E':
		return LevelError
	case 'F':
		return LevelFatal
	case 'A':
		return LevelAssert
	default:
		return LevelNone
	}
}

// ParseLevel accepts either the single character ("D") or the lowercase word ("debug").
func ParseLevel(s string) Level {
	if len(s) == 1 {
		return LevelFromChar(s[0])
	}
	for l, w := range levelWords {
		if l != int(LevelNone) && w == s {
			return Level(l)
		}
	}
	return LevelNone
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.Word()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input and "none" yield LevelNone.
func (l *Level) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" || s == "none" || s == "-" {
		*l = LevelNone
		return nil
	}
	parsed := ParseLevel(s)
	if parsed == LevelNone {
		return fmt.Errorf("unknown level %q", s)
	}
	*l = parsed
	return nil
}
