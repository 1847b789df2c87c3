package subscribers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"newsbrief/internal/ports"
)

// CSVSource reads the recipient roster from a CSV file with an email column
// and an optional status column.
type CSVSource struct {
	path string
}

var _ ports.SubscriberSource = (*CSVSource)(nil)

// NewCSVSource targets one roster file.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

type row struct {
	Email  string `csv:"email"`
	Status string `csv:"status"`
}

// Active returns the addresses of rows whose status is "active"; rows with
// no status default to active.
func (s *CSVSource) Active(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open subscribers file: %w", err)
	}
	defer f.Close()

	var rows []row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse subscribers file: %w", err)
	}

	active := make([]string, 0, len(rows))
	for _, r := range rows {
		email := strings.TrimSpace(r.Email)
		if email == "" {
			continue
		}
		status := strings.ToLower(strings.TrimSpace(r.Status))
		if status != "" && status != "active" {
			continue
		}
		active = append(active, email)
	}

	return active, nil
}
