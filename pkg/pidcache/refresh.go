package pidcache

import (
	"context"
	"fmt"
	"time"

	"github.com/modoterra/catlog/pkg/parser"
)

// Refresh runs one bulk query and replaces the snapshot with its rows. When
// the query fails the snapshot is replaced with zero rows and the error is
// returned for logging. It returns the number of records now cached.
func (c *Cache) Refresh(ctx context.Context) (int, error) {
	out, err := c.source.List(ctx)
	if err != nil {
		c.Replace(nil)
		return 0, fmt.Errorf("list processes: %w", err)
	}

	records, skipped := parser.ParsePSOutput(out)
	if skipped > 0 {
		c.logger.Debug("skipped malformed ps rows", "source", c.source.Name(), "skipped", skipped)
	}
	c.Replace(records)
	return len(records), nil
}

// Run refreshes the cache immediately and then once per interval until ctx
// is cancelled. A disabled cache returns at once. Refresh failures are logged
// and retried on the next tick.
func (c *Cache) Run(ctx context.Context) {
	if !c.enabled {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	failures := 0
	for {
		n, err := c.Refresh(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			failures++
			if failures == 1 {
				c.logger.Warn("process refresh failed", "source", c.source.Name(), "err", err)
			} else {
				c.logger.Debug("process refresh failed", "source", c.source.Name(), "attempt", failures, "err", err)
			}
		case err == nil:
			if failures > 0 {
				c.logger.Info("process refresh recovered", "source", c.source.Name(), "after", failures)
			}
			failures = 0
			c.logger.Debug("process refresh", "source", c.source.Name(), "records", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
