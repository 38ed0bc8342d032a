package parser

import (
	"strings"

	"github.com/modoterra/catlog/pkg/core"
)

// ParsePSLine parses one row of Android ps output:
//
//	USER      PID   PPID  VSIZE    RSS    WCHAN  ADDR S NAME
//	u0_a153   24103 772   16935184 232896 0      0    S com.google.android.GoogleCamera
//
// VSIZE, WCHAN and ADDR must be present but are discarded. NAME is the rest of
// the line and may contain spaces.
func ParsePSLine(line string) (core.ProcessRecord, bool) {
	c := &cursor{src: line}

	user, ok := c.token()
	if !ok || !c.spaces() {
		return core.ProcessRecord{}, false
	}
	pid, ok := c.uint(32)
	if !ok || !c.spaces() {
		return core.ProcessRecord{}, false
	}
	ppid, ok := c.uint(32)
	if !ok || !c.spaces() {
		return core.ProcessRecord{}, false
	}
	if _, ok := c.uint(64); !ok || !c.spaces() {
		return core.ProcessRecord{}, false
	}
	rss, ok := c.uint(64)
	if !ok || !c.spaces() {
		return core.ProcessRecord{}, false
	}
	if _, ok := c.token(); !ok || !c.spaces() {
		return core.ProcessRecord{}, false
	}
	if _, ok := c.token(); !ok || !c.spaces() {
		return core.ProcessRecord{}, false
	}
	pc, ok := c.token()
	if !ok || !c.spaces() {
		return core.ProcessRecord{}, false
	}
	name := strings.TrimRight(c.rest(), " \t\r\n")
	if name == "" {
		return core.ProcessRecord{}, false
	}

	return core.ProcessRecord{
		User: user,
		PID:  uint32(pid),
		PPID: uint32(ppid),
		RSS:  rss,
		PC:   pc,
		Name: name,
	}, true
}

// ParsePSOutput parses a full ps listing. The first line is the header and is
// always skipped. Blank lines are ignored; other rows that fail to parse are
// counted in skipped.
func ParsePSOutput(out string) (records []core.ProcessRecord, skipped int) {
	lines := strings.Split(out, "\n")
	if len(lines) <= 1 {
		return nil, 0
	}
	records = make([]core.ProcessRecord, 0, len(lines)-1)
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, ok := ParsePSLine(line)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}
