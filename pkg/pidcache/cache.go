// Package pidcache maps process ids to process records for log enrichment.
//
// The table is written by two paths: a periodic bulk refresh that replaces
// the whole snapshot, and an on-demand point lookup that inserts a single
// entry when the viewer meets a pid the last snapshot did not contain.
package pidcache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/modoterra/catlog/pkg/core"
)

// DefaultInterval is the pause between bulk refreshes.
const DefaultInterval = 1000 * time.Millisecond

// Options configure a Cache.
type Options struct {
	Enabled  bool
	Interval time.Duration // zero uses DefaultInterval
}

// Cache is a pid -> ProcessRecord table shared by the viewer and the refresher.
type Cache struct {
	records  map[uint32]core.ProcessRecord
	mu       sync.RWMutex
	enabled  bool
	interval time.Duration
	source   core.ProcessSource
	logger   *slog.Logger
}

// New creates a cache backed by source. The enabled flag is fixed for the
// cache's lifetime.
func New(source core.ProcessSource, opts Options, logger *slog.Logger) *Cache {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{
		records:  make(map[uint32]core.ProcessRecord),
		enabled:  opts.Enabled && source != nil,
		interval: interval,
		source:   source,
		logger:   logger,
	}
}

// Enabled reports whether enrichment is active.
func (c *Cache) Enabled() bool { return c.enabled }

// Placeholder is the name used when no process name is available.
func Placeholder(pid uint32) string {
	return fmt.Sprintf("pid-%d", pid)
}

// ProcessName returns the display name for pid. A disabled cache always
// answers with the placeholder. A miss queries the source for the single
// process and caches a successful answer; failures are not cached so the next
// call retries.
func (c *Cache) ProcessName(ctx context.Context, pid uint32) string {
	if !c.enabled {
		return Placeholder(pid)
	}
	if rec, ok := c.Get(pid); ok {
		return rec.Name
	}

	raw, err := c.source.Cmdline(ctx, pid)
	if err != nil {
		c.logger.Debug("cmdline lookup failed", "pid", pid, "source", c.source.Name(), "err", err)
		return Placeholder(pid)
	}
	name := cleanCmdline(raw)
	if name == "" {
		c.logger.Debug("cmdline lookup empty", "pid", pid, "source", c.source.Name())
		return Placeholder(pid)
	}

	c.Upsert(core.ProcessRecord{PID: pid, Name: name})
	return name
}

// Get returns the cached record for pid.
func (c *Cache) Get(pid uint32) (core.ProcessRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[pid]
	return rec, ok
}

// Upsert inserts or overwrites a single record.
func (c *Cache) Upsert(rec core.ProcessRecord) {
	c.mu.Lock()
	c.records[rec.PID] = rec
	c.mu.Unlock()
}

// Replace swaps in a new snapshot. Entries absent from records are dropped.
func (c *Cache) Replace(records []core.ProcessRecord) {
	next := make(map[uint32]core.ProcessRecord, len(records))
	for _, rec := range records {
		next[rec.PID] = rec
	}

	c.mu.Lock()
	c.records = next
	c.mu.Unlock()
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Snapshot returns a copy of the cached records sorted by pid.
func (c *Cache) Snapshot() []core.ProcessRecord {
	c.mu.RLock()
	out := make([]core.ProcessRecord, 0, len(c.records))
	for _, rec := range c.records {
		out = append(out, rec)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// cleanCmdline turns /proc/<pid>/cmdline content into a display string.
func cleanCmdline(raw string) string {
	raw = strings.ReplaceAll(raw, "\x00", " ")
	return strings.TrimSpace(raw)
}
