package model

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/modoterra/catlog/pkg/core"
)

// Sender is the part of *tea.Program a Sink needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Sink forwards records into a running program. It satisfies the viewer's
// printer interface.
type Sink struct {
	p Sender
}

// NewSink creates a sink that sends to p.
func NewSink(p Sender) *Sink {
	return &Sink{p: p}
}

// Print hands rec to the program. It never fails; once the program has exited
// records are dropped.
func (s *Sink) Print(rec core.LogRecord) error {
	s.p.Send(RecordMsg(rec))
	return nil
}

// Done reports the end of the stream to the program.
func (s *Sink) Done(err error) {
	s.p.Send(StreamDoneMsg{Err: err})
}
