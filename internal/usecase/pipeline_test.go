package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"newsbrief/internal/curator"
	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
	"newsbrief/internal/render"
)

var runDate = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

type fakeCollector struct {
	items []domain.Item
}

func (f fakeCollector) Collect(ctx context.Context) []domain.Item { return f.items }

type fakeScorer struct {
	scores   map[string]float64
	failURLs map[string]bool
}

func (f fakeScorer) Score(ctx context.Context, item domain.Item) (domain.ScoredItem, error) {
	if f.failURLs[item.URL] {
		return domain.ScoredItem{}, errors.New("scoring service unavailable")
	}
	return domain.ScoredItem{Item: item, Score: f.scores[item.URL], Tags: []string{"tag"}}, nil
}

type fakeWriter struct {
	digest string
}

func (f *fakeWriter) Write(runDate time.Time, digest string) (string, error) {
	f.digest = digest
	return "newsletter_20260302.html", nil
}

type fakeSubscribers struct {
	list []string
	err  error
}

func (f fakeSubscribers) Active(ctx context.Context) ([]string, error) { return f.list, f.err }

type fakeDeliverer struct {
	sent []string
}

func (f *fakeDeliverer) Send(ctx context.Context, digest string, recipients []string) error {
	f.sent = append(f.sent, recipients...)
	return nil
}

type fakeItemLog struct {
	appended []domain.ScoredItem
	calls    int
}

func (f *fakeItemLog) Append(ctx context.Context, runDate time.Time, items []domain.ScoredItem) error {
	f.calls++
	f.appended = append(f.appended, items...)
	return nil
}

func item(url string) domain.Item {
	return domain.Item{Title: "t-" + url, URL: url, Source: "test"}
}

func newTestPipeline(deps PipelineDeps) *Pipeline {
	if deps.Renderer == nil {
		deps.Renderer = render.New(7.0)
	}
	if deps.Policy.MaxItems == 0 {
		deps.Policy = curator.DefaultPolicy()
	}
	return NewPipeline(deps)
}

func TestRunScoringFallbackOnFailure(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	itemLog := &fakeItemLog{}
	p := newTestPipeline(PipelineDeps{
		Collector: fakeCollector{items: []domain.Item{item("https://e.com/ok"), item("https://e.com/bad")}},
		Scorer: fakeScorer{
			scores:   map[string]float64{"https://e.com/ok": 8},
			failURLs: map[string]bool{"https://e.com/bad": true},
		},
		DigestWriter: writer,
		Subscribers:  fakeSubscribers{},
		ItemLogs:     []ports.ItemLog{itemLog},
	})

	result, err := p.Run(context.Background(), runDate, false)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.Curated != 2 {
		t.Fatalf("expected both items curated, got %d", result.Curated)
	}

	var fallback *domain.ScoredItem
	for i := range itemLog.appended {
		if itemLog.appended[i].Item.URL == "https://e.com/bad" {
			fallback = &itemLog.appended[i]
		}
	}
	if fallback == nil {
		t.Fatalf("failed item missing from curated output")
	}
	if fallback.Score != 5.0 {
		t.Fatalf("fallback score = %v, want 5.0", fallback.Score)
	}
	if len(fallback.Tags) != 0 {
		t.Fatalf("fallback tags should be empty, got %v", fallback.Tags)
	}
}

func TestRunTestModeSuppressesDeliveryAndLogs(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	deliverer := &fakeDeliverer{}
	itemLog := &fakeItemLog{}
	p := newTestPipeline(PipelineDeps{
		Collector:    fakeCollector{items: []domain.Item{item("https://e.com/a")}},
		Scorer:       fakeScorer{scores: map[string]float64{"https://e.com/a": 9}},
		DigestWriter: writer,
		Subscribers:  fakeSubscribers{list: []string{"a@example.com"}},
		Deliverer:    deliverer,
		ItemLogs:     []ports.ItemLog{itemLog},
	})

	result, err := p.Run(context.Background(), runDate, true)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if writer.digest == "" {
		t.Fatalf("digest file should still be written in test mode")
	}
	if len(deliverer.sent) != 0 {
		t.Fatalf("test mode must not deliver, sent to %v", deliverer.sent)
	}
	if itemLog.calls != 0 {
		t.Fatalf("test mode must not append item logs")
	}
	if result.Recipients != 0 {
		t.Fatalf("recipients = %d, want 0", result.Recipients)
	}
}

func TestRunWithoutScorerIsPassthrough(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	p := newTestPipeline(PipelineDeps{
		Collector:    fakeCollector{items: []domain.Item{item("https://e.com/a")}},
		DigestWriter: writer,
		Subscribers:  fakeSubscribers{},
	})

	result, err := p.Run(context.Background(), runDate, false)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	// Unscored items keep the 0.0 sentinel and fall below the threshold.
	if result.Curated != 0 {
		t.Fatalf("expected empty curation for unscored items, got %d", result.Curated)
	}
	if strings.Contains(writer.digest, "Top Stories") || strings.Contains(writer.digest, "Other Updates") {
		t.Fatalf("digest should have no sections: %s", writer.digest)
	}
}

func TestRunDeliversToActiveSubscribers(t *testing.T) {
	t.Parallel()

	deliverer := &fakeDeliverer{}
	p := newTestPipeline(PipelineDeps{
		Collector:    fakeCollector{items: []domain.Item{item("https://e.com/a")}},
		Scorer:       fakeScorer{scores: map[string]float64{"https://e.com/a": 8}},
		DigestWriter: &fakeWriter{},
		Subscribers:  fakeSubscribers{list: []string{"a@example.com", "b@example.com"}},
		Deliverer:    deliverer,
	})

	result, err := p.Run(context.Background(), runDate, false)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.Recipients != 2 {
		t.Fatalf("recipients = %d, want 2", result.Recipients)
	}
	if len(deliverer.sent) != 2 {
		t.Fatalf("expected 2 sends, got %v", deliverer.sent)
	}
}

func TestRunSubscriberLoadFailureMeansZeroSends(t *testing.T) {
	t.Parallel()

	deliverer := &fakeDeliverer{}
	p := newTestPipeline(PipelineDeps{
		Collector:    fakeCollector{items: []domain.Item{item("https://e.com/a")}},
		Scorer:       fakeScorer{scores: map[string]float64{"https://e.com/a": 8}},
		DigestWriter: &fakeWriter{},
		Subscribers:  fakeSubscribers{err: errors.New("no such file")},
		Deliverer:    deliverer,
	})

	result, err := p.Run(context.Background(), runDate, false)
	if err != nil {
		t.Fatalf("subscriber failure must not fail the run: %v", err)
	}
	if result.Recipients != 0 || len(deliverer.sent) != 0 {
		t.Fatalf("expected zero sends, got %d / %v", result.Recipients, deliverer.sent)
	}
}

func TestRunCountsCollectedAndCurated(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(PipelineDeps{
		Collector: fakeCollector{items: []domain.Item{
			item("https://e.com/a"),
			item("https://e.com/b"),
			item("https://e.com/a"), // duplicate, dropped by curation
		}},
		Scorer: fakeScorer{scores: map[string]float64{
			"https://e.com/a": 8,
			"https://e.com/b": 2, // below threshold
		}},
		DigestWriter: &fakeWriter{},
		Subscribers:  fakeSubscribers{},
	})

	result, err := p.Run(context.Background(), runDate, false)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.Collected != 3 {
		t.Fatalf("collected = %d, want 3", result.Collected)
	}
	if result.Curated != 1 {
		t.Fatalf("curated = %d, want 1", result.Curated)
	}
	if result.DigestPath == "" {
		t.Fatalf("digest path missing")
	}
}
