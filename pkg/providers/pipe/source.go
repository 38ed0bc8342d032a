// Package pipe streams log lines from an already open reader, such as stdin
// fed by `adb logcat | catlog --source stdin`.
package pipe

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/modoterra/catlog/pkg/core"
)

// Source reads newline-delimited text from r.
type Source struct {
	r      io.Reader
	name   string
	logger *slog.Logger
}

// New creates a source over r. name labels the reader in logs.
func New(r io.Reader, name string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Source{r: r, name: name, logger: logger}
}

// Stream delivers each line as EventOutput. End of input yields EventExit with
// code 0 and a read failure yields EventError; the channel is closed after
// either. Cancelling ctx stops delivery, although a read already blocked on r
// only returns when r does.
func (s *Source) Stream(ctx context.Context) (<-chan core.Event, error) {
	ch := make(chan core.Event, 256)

	go func() {
		defer close(ch)

		send := func(ev core.Event) bool {
			select {
			case ch <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		reader := bufio.NewReaderSize(s.r, 64*1024)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				line = strings.TrimRight(line, "\r\n")
				if !send(core.Event{Kind: core.EventOutput, Line: line}) {
					return
				}
			}
			if err == io.EOF {
				s.logger.Debug("input closed", "source", s.name)
				send(core.Event{Kind: core.EventExit, Code: 0})
				return
			}
			if err != nil {
				send(core.Event{Kind: core.EventError, Err: fmt.Errorf("read %s: %w", s.name, err)})
				return
			}
		}
	}()

	return ch, nil
}
