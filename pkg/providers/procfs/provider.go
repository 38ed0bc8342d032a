// Package procfs reads the local process table from /proc. It serves hosts
// where logcat runs directly, such as a shell on the device itself.
package procfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/sys/unix"
)

// DefaultRoot is the procfs mount point.
const DefaultRoot = "/proc"

// Provider lists processes from a procfs tree.
type Provider struct {
	root   string
	logger *slog.Logger
}

// New creates a provider reading from root. An empty root uses DefaultRoot.
func New(root string, logger *slog.Logger) *Provider {
	if root == "" {
		root = DefaultRoot
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Provider{root: root, logger: logger}
}

func (p *Provider) Name() string { return "procfs" }

// stat holds the fields of /proc/<pid>/stat that ps shows.
type stat struct {
	comm  string
	state string
	ppid  uint64
	vsize uint64 // bytes
	rss   uint64 // pages
}

// List renders the process table in the same column layout as Android ps,
// header first, so it can be parsed like device output.
func (p *Provider) List(_ context.Context) (string, error) {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", p.root, err)
	}

	pids := make([]uint64, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.ParseUint(e.Name(), 10, 32)
		if err != nil {
			continue
		}
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })

	pageKB := uint64(unix.Getpagesize()) / 1024
	users := make(map[string]string)

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 1, ' ', 0)
	fmt.Fprintln(w, "USER\tPID\tPPID\tVSZ\tRSS\tWCHAN\tADDR\tS\tNAME")
	for _, pid := range pids {
		dir := filepath.Join(p.root, strconv.FormatUint(pid, 10))
		st, err := readStat(filepath.Join(dir, "stat"))
		if err != nil {
			// Processes exit between ReadDir and here.
			continue
		}
		name := p.displayName(dir, st.comm)
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t0\t0\t%s\t%s\n",
			p.owner(dir, users), pid, st.ppid, st.vsize/1024, st.rss*pageKB, st.state, name)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("format process table: %w", err)
	}
	return b.String(), nil
}

// Cmdline returns the raw contents of /proc/<pid>/cmdline.
func (p *Provider) Cmdline(_ context.Context, pid uint32) (string, error) {
	path := filepath.Join(p.root, strconv.FormatUint(uint64(pid), 10), "cmdline")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// displayName prefers the command line and falls back to [comm] for kernel
// threads, as ps does.
func (p *Provider) displayName(dir, comm string) string {
	data, err := os.ReadFile(filepath.Join(dir, "cmdline"))
	if err == nil {
		cmd := strings.TrimSpace(strings.ReplaceAll(string(data), "\x00", " "))
		if cmd != "" {
			return cmd
		}
	}
	return "[" + comm + "]"
}

// owner resolves the real uid of a process to a user name.
func (p *Provider) owner(dir string, cache map[string]string) string {
	uid := readUID(filepath.Join(dir, "status"))
	if uid == "" {
		return "?"
	}
	if name, ok := cache[uid]; ok {
		return name
	}
	name := uid
	if u, err := user.LookupId(uid); err == nil {
		name = u.Username
	}
	cache[uid] = name
	return name
}

func readUID(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		rest, ok := strings.CutPrefix(line, "Uid:")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return ""
		}
		return fields[0]
	}
	return ""
}

// readStat parses /proc/<pid>/stat. The comm field is enclosed in parentheses
// and may itself contain spaces and parentheses, so fields are split after the
// last ')'.
func readStat(path string) (stat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return stat{}, err
	}
	return parseStat(string(data))
}

func parseStat(s string) (stat, error) {
	open := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return stat{}, fmt.Errorf("malformed stat: missing comm")
	}
	fields := strings.Fields(s[end+1:])
	// fields[0] is field 3 (state) of proc(5).
	if len(fields) < 22 {
		return stat{}, fmt.Errorf("malformed stat: %d fields", len(fields))
	}

	var err error
	st := stat{comm: s[open+1 : end], state: fields[0]}
	if st.ppid, err = strconv.ParseUint(fields[1], 10, 32); err != nil {
		return stat{}, fmt.Errorf("parse ppid: %w", err)
	}
	if st.vsize, err = strconv.ParseUint(fields[20], 10, 64); err != nil {
		return stat{}, fmt.Errorf("parse vsize: %w", err)
	}
	if st.rss, err = strconv.ParseUint(fields[21], 10, 64); err != nil {
		return stat{}, fmt.Errorf("parse rss: %w", err)
	}
	return st, nil
}
