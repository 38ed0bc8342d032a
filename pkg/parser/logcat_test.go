package parser

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/modoterra/catlog/pkg/core"
)

const sampleLine = "08-30 18:10:53.566  1904  6916 D NetworkMonitor/139: PROBE_DNS connect.rom.miui.com 27ms OK"

func fixedParser(t *testing.T, zone string, now time.Time) LogParser {
	t.Helper()
	loc, err := time.LoadLocation(zone)
	if err != nil {
		t.Fatalf("LoadLocation(%q): %v", zone, err)
	}
	return LogParser{Location: loc, Now: func() time.Time { return now }}
}

func TestParseLogLine(t *testing.T) {
	rec, ok := ParseLogLine(sampleLine)
	if !ok {
		t.Fatal("expected record")
	}
	if !rec.Timestamp.Valid {
		t.Fatal("expected timestamp")
	}
	ts := rec.Timestamp.Time
	if ts.Day() != 30 || ts.Hour() != 18 || ts.Minute() != 10 || ts.Second() != 53 {
		t.Errorf("timestamp: got %v", ts)
	}
	if rec.PID != 1904 {
		t.Errorf("pid: got %d, want 1904", rec.PID)
	}
	if rec.TID != 6916 {
		t.Errorf("tid: got %d, want 6916", rec.TID)
	}
	if rec.Level != core.LevelDebug {
		t.Errorf("level: got %v, want D", rec.Level)
	}
	if rec.Tag != "NetworkMonitor/139" {
		t.Errorf("tag: got %q", rec.Tag)
	}
	if rec.Message != "PROBE_DNS connect.rom.miui.com 27ms OK" {
		t.Errorf("message: got %q", rec.Message)
	}
	if rec.Raw != sampleLine {
		t.Errorf("raw: got %q", rec.Raw)
	}
	if rec.ProcessName != "" {
		t.Errorf("process name should be empty before enrichment, got %q", rec.ProcessName)
	}
}

func TestParseLogLineWithYear(t *testing.T) {
	line := "2018-" + sampleLine
	withYear, ok := ParseLogLine(line)
	if !ok {
		t.Fatal("expected record")
	}
	without, _ := ParseLogLine(sampleLine)

	if withYear.Timestamp.Time.Year() != 2018 {
		t.Errorf("year: got %d, want 2018", withYear.Timestamp.Time.Year())
	}
	if withYear.Raw != line {
		t.Errorf("raw: got %q", withYear.Raw)
	}
	withYear.Raw, without.Raw = "", ""
	withYear.Timestamp, without.Timestamp = core.Timestamp{}, core.Timestamp{}
	if withYear != without {
		t.Errorf("year prefix changed fields:\n got %+v\nwant %+v", withYear, without)
	}
}

func TestParseLogLineDefaultsToCurrentYear(t *testing.T) {
	now := time.Date(2031, 1, 15, 9, 0, 0, 0, time.UTC)
	p := fixedParser(t, "UTC", now)
	rec, ok := p.Parse(sampleLine)
	if !ok {
		t.Fatal("expected record")
	}
	if got := rec.Timestamp.Time.Year(); got != 2031 {
		t.Errorf("year: got %d, want 2031", got)
	}
}

func TestParseLogLineKeepsMilliseconds(t *testing.T) {
	p := fixedParser(t, "UTC", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	rec, ok := p.Parse(sampleLine)
	if !ok {
		t.Fatal("expected record")
	}
	if got := rec.Timestamp.Time.Nanosecond(); got != 566*int(time.Millisecond) {
		t.Errorf("nanoseconds: got %d", got)
	}
}

func TestParseLogLineMessageWithColons(t *testing.T) {
	line := "08-30 18:10:53.566  1904  6916 W ActivityManager: Slow operation: 83ms so far, now at startProcess: done"
	rec, ok := ParseLogLine(line)
	if !ok {
		t.Fatal("expected record")
	}
	if rec.Tag != "ActivityManager" {
		t.Errorf("tag: got %q", rec.Tag)
	}
	if rec.Message != "Slow operation: 83ms so far, now at startProcess: done" {
		t.Errorf("message: got %q", rec.Message)
	}
	if rec.Level != core.LevelWarn {
		t.Errorf("level: got %v", rec.Level)
	}
}

func TestParseLogLineUnknownLevel(t *testing.T) {
	rec, ok := ParseLogLine("08-30 18:10:53.566  1904  6916 X Tag: hello")
	if !ok {
		t.Fatal("expected record")
	}
	if rec.Level != core.LevelNone {
		t.Errorf("level: got %v, want None", rec.Level)
	}
}

func TestParseLogLineEmptyMessage(t *testing.T) {
	rec, ok := ParseLogLine("08-30 18:10:53.566  1904  6916 I Tag: ")
	if !ok {
		t.Fatal("expected record")
	}
	if rec.Message != "" {
		t.Errorf("message: got %q", rec.Message)
	}
}

func TestParseLogLineMalformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"banner", "--------- beginning of main"},
		{"no millis", "08-30 18:10:53  1904  6916 D Tag: msg"},
		{"non-numeric pid", "08-30 18:10:53.566  abc  6916 D Tag: msg"},
		{"missing tid", "08-30 18:10:53.566  1904 D Tag: msg"},
		{"missing level", "08-30 18:10:53.566  1904  6916 "},
		{"long level word", "08-30 18:10:53.566  1904  6916 debug Tag: msg"},
		{"no tag separator", "08-30 18:10:53.566  1904  6916 D Tag msg"},
		{"colon without space", "08-30 18:10:53.566  1904  6916 D Tag:msg"},
		{"empty tag", "08-30 18:10:53.566  1904  6916 D : msg"},
		{"one-digit month", "8-30 18:10:53.566  1904  6916 D Tag: msg"},
		{"month 13", "13-30 18:10:53.566  1904  6916 D Tag: msg"},
		{"february 30", "2021-02-30 18:10:53.566  1904  6916 D Tag: msg"},
		{"hour 24", "08-30 24:10:53.566  1904  6916 D Tag: msg"},
		{"pid overflow", "08-30 18:10:53.566  99999999999  6916 D Tag: msg"},
		{"truncated", "08-30 18:10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec, ok := ParseLogLine(tt.line); ok {
				t.Errorf("expected no record, got %+v", rec)
			}
		})
	}
}

func TestParseLogLineDSTGapFails(t *testing.T) {
	p := fixedParser(t, "America/New_York", time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC))
	// 02:30 on 2021-03-14 does not exist in New York.
	if _, ok := p.Parse("2021-03-14 02:30:00.000  1  2 I Tag: msg"); ok {
		t.Error("expected nonexistent local time to fail")
	}
}

func TestParseLogLineDSTFoldPicksEarlier(t *testing.T) {
	p := fixedParser(t, "America/New_York", time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC))
	// 01:30 on 2021-11-07 happens twice; EDT (UTC-4) comes first.
	rec, ok := p.Parse("2021-11-07 01:30:00.000  1  2 I Tag: msg")
	if !ok {
		t.Fatal("expected record")
	}
	want := time.Date(2021, 11, 7, 5, 30, 0, 0, time.UTC)
	if !rec.Timestamp.Time.Equal(want) {
		t.Errorf("fold: got %v, want %v", rec.Timestamp.Time.UTC(), want)
	}
}

func TestResolveLocalOrdinary(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatal(err)
	}
	got, ok := resolveLocal(2021, 7, 1, 12, 0, 0, 0, loc)
	if !ok {
		t.Fatal("expected resolution")
	}
	want := time.Date(2021, 7, 1, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got.UTC(), want)
	}
}

func TestFracNanos(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"566", 566000000},
		{"5", 500000000},
		{"000001", 1000},
		{"1234567891", 123456789},
	}
	for _, tt := range tests {
		if got := fracNanos(tt.in); got != tt.want {
			t.Errorf("fracNanos(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
