// Package exec runs external commands and exposes their output as stream
// events or as a single captured string.
package exec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	osexec "os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/modoterra/catlog/pkg/core"
)

// maxLine is the longest output line accepted before the stream fails.
const maxLine = 1024 * 1024

// Command is a long-running child process whose stdout lines are streamed.
type Command struct {
	Path   string
	Args   []string
	logger *slog.Logger
}

// New creates a command. It is not started until Stream is called.
func New(logger *slog.Logger, path string, args ...string) *Command {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Command{Path: path, Args: args, logger: logger}
}

// String returns the command line, for logs.
func (c *Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Stream starts the process. Each stdout line becomes an EventOutput; stderr
// lines are logged. Lines longer than 1 MiB are dropped with a warning. When
// stdout ends the channel receives one EventExit with the exit code, or
// EventError if reading or waiting failed, and is then closed. Cancelling ctx
// kills the process group.
func (c *Command) Stream(ctx context.Context) (<-chan core.Event, error) {
	cmd := osexec.CommandContext(ctx, c.Path, c.Args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return unix.Kill(-cmd.Process.Pid, unix.SIGTERM)
	}
	cmd.WaitDelay = 5 * time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %q: %w", c.String(), err)
	}

	c.logger.Debug("process started", "command", c.String(), "pid", cmd.Process.Pid)

	ch := make(chan core.Event, 256)
	go func() {
		defer close(ch)

		send := func(ev core.Event) {
			select {
			case ch <- ev:
			case <-ctx.Done():
			}
		}

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := scanLines(stderr, func(line string) {
				c.logger.Warn("command stderr", "command", c.Path, "line", line)
			}, c.dropped("stderr"))
			if err != nil {
				io.Copy(io.Discard, stderr)
			}
		}()

		scanErr := scanLines(stdout, func(line string) {
			send(core.Event{Kind: core.EventOutput, Line: line})
		}, c.dropped("stdout"))
		if scanErr != nil {
			// Drain so the child is not blocked on a full pipe while it exits.
			io.Copy(io.Discard, stdout)
		}
		wg.Wait()

		waitErr := cmd.Wait()
		code := -1
		if cmd.ProcessState != nil {
			code = cmd.ProcessState.ExitCode()
		}
		c.logger.Debug("process exited", "command", c.String(), "exit_code", code, "err", waitErr)

		var exitErr *osexec.ExitError
		switch {
		case scanErr != nil:
			send(core.Event{Kind: core.EventError, Err: fmt.Errorf("read output: %w", scanErr)})
		case waitErr == nil || errors.As(waitErr, &exitErr):
			send(core.Event{Kind: core.EventExit, Code: code})
		default:
			send(core.Event{Kind: core.EventError, Err: fmt.Errorf("wait %q: %w", c.String(), waitErr)})
		}
	}()

	return ch, nil
}

// Output runs a short-lived command and returns its stdout. A non-zero exit
// is an error that carries the command's stderr.
func Output(ctx context.Context, path string, args ...string) (string, error) {
	cmd := osexec.CommandContext(ctx, path, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *osexec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(string(exitErr.Stderr)); msg != "" {
				return "", fmt.Errorf("run %s: %w: %s", path, err, msg)
			}
		}
		return "", fmt.Errorf("run %s: %w", path, err)
	}
	return string(out), nil
}

func (c *Command) dropped(stream string) func(int) {
	return func(n int) {
		c.logger.Warn("dropped overlong line", "command", c.Path, "stream", stream, "bytes", n)
	}
}

// scanLines reads lines from r and calls fn for each, without the trailing
// newline or carriage return. A line longer than maxLine is discarded whole
// and reported to drop with its length; reading continues with the next line.
func scanLines(r io.Reader, fn func(string), drop func(int)) error {
	br := bufio.NewReaderSize(r, 64*1024)
	var line []byte
	skipped := 0 // bytes of an overlong line read so far
	for {
		frag, err := br.ReadSlice('\n')
		n := len(frag)
		if err == nil {
			n-- // newline
		}
		switch {
		case skipped > 0:
			skipped += n
		case len(line)+n > maxLine:
			skipped = len(line) + n
			line = line[:0]
		default:
			line = append(line, frag...)
		}

		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil && err != io.EOF {
			return err
		}

		switch {
		case skipped > 0:
			drop(skipped)
			skipped = 0
		case err == nil || len(line) > 0:
			text := strings.TrimSuffix(string(line), "\n")
			fn(strings.TrimSuffix(text, "\r"))
		}
		line = line[:0]
		if err == io.EOF {
			return nil
		}
	}
}
