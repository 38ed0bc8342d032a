package viewer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/muesli/termenv"

	"github.com/modoterra/catlog/pkg/core"
	"github.com/modoterra/catlog/pkg/parser"
	"github.com/modoterra/catlog/pkg/pidcache"
	"github.com/modoterra/catlog/pkg/render"
)

type fakeStream struct {
	events []core.Event
	err    error
	hold   bool // keep the channel open after the scripted events
}

func (f *fakeStream) Stream(ctx context.Context) (<-chan core.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan core.Event, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	if !f.hold {
		close(ch)
	}
	return ch, nil
}

func output(lines ...string) []core.Event {
	events := make([]core.Event, 0, len(lines))
	for _, l := range lines {
		events = append(events, core.Event{Kind: core.EventOutput, Line: l})
	}
	return events
}

type recorder struct {
	mu      sync.Mutex
	records []core.LogRecord
	err     error
}

func (r *recorder) Print(rec core.LogRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

type staticNames map[uint32]string

func (s staticNames) ProcessName(_ context.Context, pid uint32) string {
	if name, ok := s[pid]; ok {
		return name
	}
	return pidcache.Placeholder(pid)
}

const (
	lineA = "08-30 18:10:53.566  1904  6916 D NetworkMonitor/139: PROBE_DNS OK"
	lineB = "08-30 18:10:54.001   777   778 E AndroidRuntime: FATAL EXCEPTION: main"
)

func TestRunExitWithCode(t *testing.T) {
	src := &fakeStream{events: append(output(lineA, "--------- beginning of main", lineB),
		core.Event{Kind: core.EventExit, Code: 1})}
	sink := &recorder{}
	v := New(src, staticNames{1904: "system_server"}, sink, nil)

	err := v.Run(context.Background())
	if !errors.Is(err, ErrStreamExit) {
		t.Fatalf("Run: got %v, want ErrStreamExit", err)
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Errorf("error should carry exit code 1: %v", err)
	}
	if err.Error() != "log stream exited with code 1" {
		t.Errorf("message: got %q", err.Error())
	}

	if len(sink.records) != 2 {
		t.Fatalf("records: got %d, want 2", len(sink.records))
	}
	if sink.records[0].ProcessName != "system_server" {
		t.Errorf("name: got %q", sink.records[0].ProcessName)
	}
	if sink.records[1].ProcessName != "pid-777" || sink.records[1].Level != core.LevelError {
		t.Errorf("second record: got %+v", sink.records[1])
	}

	stats := v.Stats()
	if stats.Lines != 3 || stats.Records != 2 || stats.Skipped != 1 {
		t.Errorf("stats: got %+v", stats)
	}
}

func TestRunStreamError(t *testing.T) {
	boom := errors.New("read failed")
	src := &fakeStream{events: []core.Event{{Kind: core.EventError, Err: boom}}}
	err := New(src, nil, &recorder{}, nil).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want wrapped read error", err)
	}
	if errors.Is(err, ErrStreamExit) {
		t.Error("stream error is not an exit")
	}
}

func TestRunStartError(t *testing.T) {
	src := &fakeStream{err: errors.New("adb not found")}
	if err := New(src, nil, &recorder{}, nil).Run(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestRunClosedWithoutExit(t *testing.T) {
	src := &fakeStream{events: output(lineA)}
	err := New(src, nil, &recorder{}, nil).Run(context.Background())
	if !errors.Is(err, ErrStreamExit) {
		t.Errorf("got %v", err)
	}
}

func TestRunPrintError(t *testing.T) {
	src := &fakeStream{events: output(lineA, lineB), hold: true}
	sink := &recorder{err: errors.New("broken pipe")}
	err := New(src, nil, sink, nil).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "broken pipe") {
		t.Errorf("got %v", err)
	}
}

func TestRunCancel(t *testing.T) {
	src := &fakeStream{events: output(lineA), hold: true}
	sink := &recorder{}
	v := New(src, nil, sink, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for v.Stats().Records < 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("cancel should return nil, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunWithoutNamer(t *testing.T) {
	src := &fakeStream{events: output(lineA)}
	sink := &recorder{}
	New(src, nil, sink, nil).Run(context.Background())
	if len(sink.records) != 1 || sink.records[0].ProcessName != "" {
		t.Errorf("got %+v", sink.records)
	}
}

func TestRunPinnedClock(t *testing.T) {
	src := &fakeStream{events: output(lineA)}
	sink := &recorder{}
	v := New(src, nil, sink, nil)
	v.SetParser(parser.LogParser{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC) },
	})
	v.Run(context.Background())

	want := time.Date(2019, 8, 30, 18, 10, 53, 566_000_000, time.UTC)
	if len(sink.records) != 1 || !sink.records[0].Timestamp.Time.Equal(want) {
		t.Errorf("got %+v", sink.records)
	}
}

type fakeProcesses struct{}

func (fakeProcesses) Name() string { return "fake" }

func (fakeProcesses) List(context.Context) (string, error) {
	return "USER PID PPID VSZ RSS WCHAN ADDR S NAME\n" +
		"system 1904 1 100 200 0 0 S system_server\n", nil
}

func (fakeProcesses) Cmdline(context.Context, uint32) (string, error) {
	return "", errors.New("gone")
}

func TestEndToEnd(t *testing.T) {
	cache := pidcache.New(fakeProcesses{}, pidcache.Options{Enabled: true}, nil)
	if _, err := cache.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	term := render.New(&buf, render.DefaultLayout(), render.Options{Profile: termenv.Ascii})
	src := &fakeStream{events: output(lineA, lineB)}

	v := New(src, cache, term, nil)
	v.SetParser(parser.LogParser{Location: time.UTC})
	v.Run(context.Background())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines: got %d\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "18:10:53 ") || !strings.Contains(lines[0], "[       system_server]  D    PROBE_DNS OK") {
		t.Errorf("line 0: got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[             pid-777]  E    FATAL EXCEPTION: main") {
		t.Errorf("line 1: got %q", lines[1])
	}
}
