package core

import (
	"fmt"
	"time"
)

// Timestamp is an optional wall-clock time. The zero value is "no timestamp".
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// At returns a present timestamp.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: true}
}

// LogRecord is one parsed logcat line.
type LogRecord struct {
	Level       Level
	Tag         string
	Message     string
	PID         uint32
	TID         uint32
	Raw         string
	ProcessName string
	Timestamp   Timestamp
}

// String formats the record on a single line, mainly for diagnostics.
func (r LogRecord) String() string {
	ts := ""
	if r.Timestamp.Valid {
		ts = r.Timestamp.Time.Format("01-02 15:04:05.000")
	}
	return fmt.Sprintf("%s %5d %10s %5s %20s: %s", ts, r.PID, r.ProcessName, r.Level, r.Tag, r.Message)
}

// ProcessRecord is one row of the device process table.
type ProcessRecord struct {
	User string `json:"user" yaml:"user"`
	PID  uint32 `json:"pid" yaml:"pid"`
	PPID uint32 `json:"ppid" yaml:"ppid"`
	RSS  uint64 `json:"rss" yaml:"rss"`
	PC   string `json:"pc" yaml:"pc"`
	Name string `json:"name" yaml:"name"`
}
