// Package parser turns logcat and ps output lines into typed records.
//
// Both grammars are total: a line that does not match yields ok=false and no
// partial record, so a single malformed line never interrupts a stream.
package parser

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/modoterra/catlog/pkg/core"
)

// LogParser parses logcat "threadtime" lines such as
//
//	08-30 18:10:53.566  1904  6916 D NetworkMonitor/139: PROBE_DNS connect.rom.miui.com 27ms OK
//
// An optional four-digit year may prefix the date. The zero value parses in
// time.Local using the wall clock for the default year.
type LogParser struct {
	Location *time.Location
	Now      func() time.Time
}

// ParseLogLine parses line with the zero LogParser.
func ParseLogLine(line string) (core.LogRecord, bool) {
	return LogParser{}.Parse(line)
}

// Parse parses a single logcat line.
func (p LogParser) Parse(line string) (core.LogRecord, bool) {
	c := &cursor{src: line}

	ts, ok := p.timestamp(c)
	if !ok {
		return core.LogRecord{}, false
	}

	pid, ok := c.uint(32)
	if !ok || !c.spaces() {
		return core.LogRecord{}, false
	}
	tid, ok := c.uint(32)
	if !ok || !c.spaces() {
		return core.LogRecord{}, false
	}

	if c.eof() {
		return core.LogRecord{}, false
	}
	r, size := utf8.DecodeRuneInString(c.rest())
	level := core.LevelNone
	if r < utf8.RuneSelf {
		level = core.LevelFromChar(byte(r))
	}
	c.pos += size
	if !c.spaces() {
		return core.LogRecord{}, false
	}

	rest := c.rest()
	idx := strings.Index(rest, ": ")
	if idx <= 0 {
		return core.LogRecord{}, false
	}

	return core.LogRecord{
		Level:     level,
		Tag:       rest[:idx],
		Message:   rest[idx+2:],
		PID:       uint32(pid),
		TID:       uint32(tid),
		Raw:       line,
		Timestamp: core.At(ts),
	}, true
}

func (p LogParser) location() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return time.Local
}

func (p LogParser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// timestamp consumes "[YYYY-]MM-DD HH:MM:SS.fff" and the whitespace after it.
func (p LogParser) timestamp(c *cursor) (time.Time, bool) {
	loc := p.location()
	year := p.now().In(loc).Year()
	if len(c.rest()) > 4 && c.src[c.pos+4] == '-' {
		save := c.pos
		if y, ok := c.fixed(4); ok && c.byteLit('-') {
			year = y
		} else {
			c.pos = save
		}
	}

	month, ok := c.fixed(2)
	if !ok || !c.byteLit('-') {
		return time.Time{}, false
	}
	day, ok := c.fixed(2)
	if !ok || !c.byteLit(' ') {
		return time.Time{}, false
	}
	hour, ok := c.fixed(2)
	if !ok || !c.byteLit(':') {
		return time.Time{}, false
	}
	minute, ok := c.fixed(2)
	if !ok || !c.byteLit(':') {
		return time.Time{}, false
	}
	second, ok := c.fixed(2)
	if !ok || !c.byteLit('.') {
		return time.Time{}, false
	}
	frac, ok := c.digits(0)
	if !ok || !c.spaces() {
		return time.Time{}, false
	}

	return resolveLocal(year, month, day, hour, minute, second, fracNanos(frac), loc)
}

// fracNanos converts the digits after the decimal point into nanoseconds.
func fracNanos(frac string) int {
	ns := 0
	for i := 0; i < 9; i++ {
		ns *= 10
		if i < len(frac) {
			ns += int(frac[i] - '0')
		}
	}
	return ns
}

// resolveLocal maps a wall-clock reading onto an instant in loc. It fails when
// the reading does not exist (a DST gap or an impossible date) and picks the
// earlier instant when the reading occurs twice (a DST fold).
func resolveLocal(year, month, day, hour, minute, second, nsec int, loc *time.Location) (time.Time, bool) {
	wall := time.Date(year, time.Month(month), day, hour, minute, second, nsec, time.UTC)
	if !sameWall(wall, year, month, day, hour, minute, second) {
		return time.Time{}, false
	}

	var (
		best  time.Time
		found bool
		seen  = make(map[int]bool, 3)
	)
	// Offsets two days either side cover both sides of any nearby transition.
	for _, probe := range []time.Duration{-48 * time.Hour, 0, 48 * time.Hour} {
		_, offset := wall.Add(probe).In(loc).Zone()
		if seen[offset] {
			continue
		}
		seen[offset] = true

		candidate := wall.Add(-time.Duration(offset) * time.Second).In(loc)
		if !sameWall(candidate, year, month, day, hour, minute, second) {
			continue
		}
		if !found || candidate.Before(best) {
			best, found = candidate, true
		}
	}
	return best, found
}

func sameWall(t time.Time, year, month, day, hour, minute, second int) bool {
	return t.Year() == year && int(t.Month()) == month && t.Day() == day &&
		t.Hour() == hour && t.Minute() == minute && t.Second() == second
}
