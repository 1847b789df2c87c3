package collector

import (
	"context"
	"log/slog"

	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
)

// Composite gathers items from every configured source in order. Collection
// is best-effort: a failing source is logged and skipped so one broken feed
// never aborts the run.
type Composite struct {
	sources []ports.ItemSource
	logger  *slog.Logger
}

var _ ports.Collector = (*Composite)(nil)

// NewComposite wires the configured sources, feeds first then sites.
func NewComposite(sources []ports.ItemSource, log *slog.Logger) *Composite {
	return &Composite{sources: sources, logger: log}
}

// Collect returns the combined items in source order.
func (c *Composite) Collect(ctx context.Context) []domain.Item {
	var aggregated []domain.Item
	for _, src := range c.sources {
		items, err := src.Collect(ctx)
		if err != nil {
			c.warn("source failed, skipping", "source", src.Name(), "error", err)
			continue
		}
		c.debug("source collected", "source", src.Name(), "count", len(items))
		aggregated = append(aggregated, items...)
	}
	c.debug("collection done", "total_items", len(aggregated))
	return aggregated
}

func (c *Composite) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Composite) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
