package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
)

// Archive persists curated items into Postgres as a per-run history.
type Archive struct {
	db *sql.DB
}

var _ ports.ItemLog = (*Archive)(nil)

// NewArchive wires a sql.DB implementation.
func NewArchive(db *sql.DB) *Archive {
	return &Archive{db: db}
}

// EnsureSchema creates the backing table when absent.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	if a.db == nil {
		return nil
	}

	query := `CREATE TABLE IF NOT EXISTS curated_items (
	              run_date date NOT NULL,
	              title text NOT NULL,
	              url text NOT NULL,
	              source text,
	              score double precision NOT NULL,
	              tags text[],
	              summary text,
	              created_at timestamptz NOT NULL DEFAULT NOW(),
	              PRIMARY KEY (run_date, url)
	          )`

	if _, err := a.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Append upserts one row per curated item keyed by run date and URL, so a
// re-run of the same day refreshes scores instead of duplicating rows.
func (a *Archive) Append(ctx context.Context, runDate time.Time, items []domain.ScoredItem) error {
	if a.db == nil || len(items) == 0 {
		return nil
	}

	builder := sq.Insert("curated_items").
		Columns("run_date", "title", "url", "source", "score", "tags", "summary").
		PlaceholderFormat(sq.Dollar).
		Suffix(`ON CONFLICT (run_date, url) DO UPDATE
		        SET title = EXCLUDED.title,
		            score = EXCLUDED.score,
		            tags = EXCLUDED.tags,
		            summary = EXCLUDED.summary`)

	date := runDate.Format("2006-01-02")
	for _, it := range items {
		builder = builder.Values(
			date,
			it.Item.Title,
			it.Item.URL,
			it.Item.Source,
			it.Score,
			pq.Array(it.Tags),
			it.Item.Summary,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build archive insert: %w", err)
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("archive curated items: %w", err)
	}
	return nil
}
