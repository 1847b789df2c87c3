package ports

import (
	"context"
	"time"

	"newsbrief/internal/domain"
)

// Collector aggregates items across all configured sources, best-effort.
type Collector interface {
	Collect(ctx context.Context) []domain.Item
}

// ItemSource pulls fresh items from one upstream provider (a feed or a site).
type ItemSource interface {
	Name() string
	Collect(ctx context.Context) ([]domain.Item, error)
}

// Scorer rates a single item for topical relevance via an external service.
type Scorer interface {
	Score(ctx context.Context, item domain.Item) (domain.ScoredItem, error)
}

// Deliverer sends the rendered digest to a list of recipient addresses.
type Deliverer interface {
	Send(ctx context.Context, digest string, recipients []string) error
}

// ItemLog appends curated items to a persistent side log (spreadsheet, DB).
type ItemLog interface {
	Append(ctx context.Context, runDate time.Time, items []domain.ScoredItem) error
}

// SubscriberSource yields the active recipient addresses for a run.
type SubscriberSource interface {
	Active(ctx context.Context) ([]string, error)
}

// DigestWriter persists the rendered document for review and returns its path.
type DigestWriter interface {
	Write(runDate time.Time, digest string) (string, error)
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
