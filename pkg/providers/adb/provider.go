// Package adb talks to an Android device through the adb command-line tool.
package adb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	osexec "os/exec"
	"strconv"
	"strings"

	"github.com/modoterra/catlog/pkg/core"
	"github.com/modoterra/catlog/pkg/providers/exec"
)

// Provider issues adb commands against one device.
type Provider struct {
	path   string
	serial string
	logger *slog.Logger
}

// Locate returns the adb executable to use. An explicit path wins; otherwise
// adb is looked up on PATH.
func Locate(explicit string) (string, error) {
	if explicit != "" {
		path, err := osexec.LookPath(explicit)
		if err != nil {
			return "", fmt.Errorf("find adb %q: %w", explicit, err)
		}
		return path, nil
	}
	path, err := osexec.LookPath("adb")
	if err != nil {
		return "", fmt.Errorf("find adb on PATH: %w", err)
	}
	return path, nil
}

// New creates a provider that runs path, targeting serial when non-empty.
func New(path, serial string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Provider{path: path, serial: serial, logger: logger}
}

func (p *Provider) Name() string { return "adb" }

// args prefixes the device selector.
func (p *Provider) args(rest ...string) []string {
	if p.serial == "" {
		return rest
	}
	return append([]string{"-s", p.serial}, rest...)
}

// Logcat returns a stream source for `adb logcat` with filters passed through
// verbatim.
func (p *Provider) Logcat(filters []string) core.StreamSource {
	args := p.args(append([]string{"logcat"}, filters...)...)
	p.logger.Debug("logcat command", "path", p.path, "args", args)
	return exec.New(p.logger, p.path, args...)
}

// List returns the device process table as ps text. Older devices list every
// process with plain `ps`; newer toybox ps needs -A and prints only a header
// without it.
func (p *Provider) List(ctx context.Context) (string, error) {
	out, err := exec.Output(ctx, p.path, p.args("shell", "ps")...)
	if err != nil {
		return "", fmt.Errorf("adb shell ps: %w", err)
	}
	if rowCount(out) > 0 {
		return out, nil
	}

	out, err = exec.Output(ctx, p.path, p.args("shell", "ps", "-A")...)
	if err != nil {
		return "", fmt.Errorf("adb shell ps -A: %w", err)
	}
	return out, nil
}

// Cmdline returns the raw /proc/<pid>/cmdline of a device process.
func (p *Provider) Cmdline(ctx context.Context, pid uint32) (string, error) {
	path := "/proc/" + strconv.FormatUint(uint64(pid), 10) + "/cmdline"
	out, err := exec.Output(ctx, p.path, p.args("shell", "cat", path)...)
	if err != nil {
		return "", fmt.Errorf("adb shell cat %s: %w", path, err)
	}
	if strings.Contains(out, "No such file or directory") {
		return "", fmt.Errorf("process %d not found", pid)
	}
	return out, nil
}

// rowCount counts non-blank lines after the header.
func rowCount(out string) int {
	lines := strings.Split(out, "\n")
	n := 0
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
