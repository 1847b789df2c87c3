package feed

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
)

const summaryLimit = 300

// RSSSource collects the most recent entries of one RSS/Atom feed.
type RSSSource struct {
	feedURL string
	parser  *gofeed.Parser
	cap     int
}

var _ ports.ItemSource = (*RSSSource)(nil)

// NewRSSSource builds a source for a single feed; cap bounds the entries
// taken per run and defaults to 5.
func NewRSSSource(feedURL string, cap int) *RSSSource {
	if cap <= 0 {
		cap = 5
	}
	return &RSSSource{
		feedURL: feedURL,
		parser:  gofeed.NewParser(),
		cap:     cap,
	}
}

// Name identifies the source in logs.
func (s *RSSSource) Name() string {
	return "rss:" + s.feedURL
}

// Collect parses the feed and maps its leading entries, preserving feed
// order. Entries without a published date fall back to collection time.
func (s *RSSSource) Collect(ctx context.Context) ([]domain.Item, error) {
	parsed, err := s.parser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	label := strings.TrimSpace(parsed.Title)
	if label == "" {
		label = hostLabel(s.feedURL)
	}

	now := time.Now()
	items := make([]domain.Item, 0, s.cap)
	for _, entry := range parsed.Items {
		if len(items) >= s.cap {
			break
		}
		if entry == nil || entry.Title == "" || entry.Link == "" {
			continue
		}

		publishedAt := now
		if entry.PublishedParsed != nil {
			publishedAt = *entry.PublishedParsed
		}

		items = append(items, domain.Item{
			Title:       strings.TrimSpace(entry.Title),
			URL:         entry.Link,
			Summary:     truncateRunes(cleanText(entry.Description), summaryLimit),
			Source:      label,
			PublishedAt: publishedAt,
		})
	}

	return items, nil
}

func hostLabel(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Host
	}
	return raw
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
