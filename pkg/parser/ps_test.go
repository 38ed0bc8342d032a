package parser

import (
	"testing"
)

func TestParsePSLine(t *testing.T) {
	line := "u0_a153      24103   772 16935184 232896 0                  0 S com.google.android.GoogleCamera"
	rec, ok := ParsePSLine(line)
	if !ok {
		t.Fatal("expected record")
	}
	if rec.User != "u0_a153" {
		t.Errorf("user: got %q", rec.User)
	}
	if rec.PID != 24103 {
		t.Errorf("pid: got %d", rec.PID)
	}
	if rec.PPID != 772 {
		t.Errorf("ppid: got %d", rec.PPID)
	}
	if rec.RSS != 232896 {
		t.Errorf("rss: got %d", rec.RSS)
	}
	if rec.PC != "S" {
		t.Errorf("pc: got %q", rec.PC)
	}
	if rec.Name != "com.google.android.GoogleCamera" {
		t.Errorf("name: got %q", rec.Name)
	}
}

func TestParsePSLineNameWithSpaces(t *testing.T) {
	line := "root          1234     1  10000   2000 do_epoll_wait  0 S /system/bin/sh -c sleep 10  "
	rec, ok := ParsePSLine(line)
	if !ok {
		t.Fatal("expected record")
	}
	if rec.Name != "/system/bin/sh -c sleep 10" {
		t.Errorf("name: got %q", rec.Name)
	}
}

func TestParsePSLineLargeVsize(t *testing.T) {
	line := "u0_a1 5000 600 15243452416 98765 SyS_epoll_wait 0 S com.example.app"
	rec, ok := ParsePSLine(line)
	if !ok {
		t.Fatal("expected record for 64-bit vsize")
	}
	if rec.PID != 5000 {
		t.Errorf("pid: got %d", rec.PID)
	}
}

func TestParsePSLineMalformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"header", "USER           PID  PPID     VSZ    RSS WCHAN            ADDR S NAME"},
		{"non-numeric pid", "root abc 1 100 200 0 0 S init"},
		{"non-numeric ppid", "root 1 x 100 200 0 0 S init"},
		{"non-numeric rss", "root 1 0 100 big 0 0 S init"},
		{"missing name", "root 1 0 100 200 0 0 S"},
		{"missing name trailing space", "root 1 0 100 200 0 0 S   "},
		{"missing columns", "root 1 0 100"},
		{"leading whitespace", "  root 1 0 100 200 0 0 S init"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec, ok := ParsePSLine(tt.line); ok {
				t.Errorf("expected no record, got %+v", rec)
			}
		})
	}
}

func TestParsePSOutput(t *testing.T) {
	out := "USER           PID  PPID     VSZ    RSS WCHAN            ADDR S NAME\r\n" +
		"root             1     0 10932232  9876 do_epoll_wait       0 S init\r\n" +
		"garbage line\r\n" +
		"\r\n" +
		"u0_a153      24103   772 16935184 232896 0                  0 S com.google.android.GoogleCamera\r\n"

	records, skipped := ParsePSOutput(out)
	if len(records) != 2 {
		t.Fatalf("records: got %d, want 2", len(records))
	}
	if skipped != 1 {
		t.Errorf("skipped: got %d, want 1", skipped)
	}
	if records[0].Name != "init" || records[1].Name != "com.google.android.GoogleCamera" {
		t.Errorf("names: got %q, %q", records[0].Name, records[1].Name)
	}
}

func TestParsePSOutputHeaderOnly(t *testing.T) {
	records, skipped := ParsePSOutput("USER PID PPID VSZ RSS WCHAN ADDR S NAME\n")
	if len(records) != 0 || skipped != 0 {
		t.Errorf("got %d records, %d skipped", len(records), skipped)
	}
	records, skipped = ParsePSOutput("")
	if len(records) != 0 || skipped != 0 {
		t.Errorf("empty: got %d records, %d skipped", len(records), skipped)
	}
}
