// Package viewer drives the main loop: read a log line, parse it, attach the
// process name, and print it.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/modoterra/catlog/pkg/core"
	"github.com/modoterra/catlog/pkg/parser"
)

// ErrStreamExit is wrapped by the error Run returns when the log stream ends.
var ErrStreamExit = errors.New("log stream exited")

// ExitError reports the exit code of a finished log stream.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s with code %d", ErrStreamExit, e.Code)
}

func (e *ExitError) Unwrap() error { return ErrStreamExit }

// Printer receives enriched records.
type Printer interface {
	Print(rec core.LogRecord) error
}

// Namer resolves a pid to a display name.
type Namer interface {
	ProcessName(ctx context.Context, pid uint32) string
}

// Stats counts what the loop has seen.
type Stats struct {
	Lines   uint64
	Records uint64
	Skipped uint64
}

// Viewer connects a stream source to a printer.
type Viewer struct {
	source core.StreamSource
	names  Namer
	sink   Printer
	parser parser.LogParser
	logger *slog.Logger

	lines   atomic.Uint64
	records atomic.Uint64
	skipped atomic.Uint64
}

// New creates a viewer. names may be nil, in which case records keep an empty
// process name.
func New(source core.StreamSource, names Namer, sink Printer, logger *slog.Logger) *Viewer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Viewer{
		source: source,
		names:  names,
		sink:   sink,
		logger: logger,
	}
}

// SetParser overrides the line parser, mainly to pin the clock in tests.
func (v *Viewer) SetParser(p parser.LogParser) { v.parser = p }

// Stats returns the current counters.
func (v *Viewer) Stats() Stats {
	return Stats{
		Lines:   v.lines.Load(),
		Records: v.records.Load(),
		Skipped: v.skipped.Load(),
	}
}

// Run processes events until the stream ends, a record cannot be written, or
// ctx is cancelled. Cancellation returns nil. The end of the stream returns
// an error wrapping ErrStreamExit, an *ExitError when the code is known.
func (v *Viewer) Run(ctx context.Context) error {
	events, err := v.source.Stream(ctx)
	if err != nil {
		return fmt.Errorf("start log stream: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrStreamExit
			}
			switch ev.Kind {
			case core.EventOutput:
				if err := v.handleLine(ctx, ev.Line); err != nil {
					return err
				}
			case core.EventError:
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("log stream: %w", ev.Err)
			case core.EventExit:
				if ctx.Err() != nil {
					return nil
				}
				return &ExitError{Code: ev.Code}
			}
		}
	}
}

func (v *Viewer) handleLine(ctx context.Context, line string) error {
	v.lines.Add(1)

	rec, ok := v.parser.Parse(line)
	if !ok {
		v.skipped.Add(1)
		v.logger.Debug("skipped unparsable line", "line", line)
		return nil
	}
	if v.names != nil {
		rec.ProcessName = v.names.ProcessName(ctx, rec.PID)
	}
	if err := v.sink.Print(rec); err != nil {
		return fmt.Errorf("print record: %w", err)
	}
	v.records.Add(1)
	return nil
}
