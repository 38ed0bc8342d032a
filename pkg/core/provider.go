package core

import "context"

// EventKind identifies what a stream event carries.
type EventKind int

const (
	EventOutput EventKind = iota
	EventError
	EventExit
)

// Event is one item yielded by a StreamSource. The stream ends after an
// EventError or EventExit.
type Event struct {
	Kind EventKind
	Line string // EventOutput
	Err  error  // EventError
	Code int    // EventExit
}

// StreamSource is anything that can produce a stream of log lines.
type StreamSource interface {
	// Stream starts the source. The returned channel is closed after the
	// terminal event or when ctx is cancelled.
	Stream(ctx context.Context) (<-chan Event, error)
}

// ProcessSource answers process-table queries used for record enrichment.
type ProcessSource interface {
	// Name returns the source's identifier (e.g. "adb", "procfs").
	Name() string

	// List returns the full ps-style listing. The first line is a header.
	List(ctx context.Context) (string, error)

	// Cmdline returns the raw command line of a single process.
	Cmdline(ctx context.Context, pid uint32) (string, error)
}
