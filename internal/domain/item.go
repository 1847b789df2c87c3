package domain

import "time"

// Item is a single collected news entry before scoring.
type Item struct {
	Title       string
	URL         string
	Summary     string
	Source      string
	PublishedAt time.Time
}

// ScoredItem pairs an item with its relevance rating. Scoring produces a new
// ScoredItem instead of mutating the collected record.
type ScoredItem struct {
	Item  Item
	Score float64
	Tags  []string
}

const (
	// FallbackScore is assigned when an individual scoring call fails, so the
	// item stays in the ranking instead of being dropped silently.
	FallbackScore = 5.0
)
