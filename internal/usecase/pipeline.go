package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsbrief/internal/curator"
	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
)

// PipelineDeps wires all driven adapters into the curation pipeline.
// Scorer, Subscribers, Deliverer, and ItemLogs are optional; the pipeline
// degrades gracefully when they are absent.
type PipelineDeps struct {
	Collector    ports.Collector
	Scorer       ports.Scorer
	Policy       curator.Policy
	Renderer     Renderer
	DigestWriter ports.DigestWriter
	Subscribers  ports.SubscriberSource
	Deliverer    ports.Deliverer
	ItemLogs     []ports.ItemLog
	Logger       *slog.Logger
}

// Renderer turns a curated list into the digest document.
type Renderer interface {
	Render(items []domain.ScoredItem, now time.Time) (string, error)
}

// Pipeline implements one collection-to-delivery run.
type Pipeline struct {
	collector   ports.Collector
	scorer      ports.Scorer
	policy      curator.Policy
	renderer    Renderer
	writer      ports.DigestWriter
	subscribers ports.SubscriberSource
	deliverer   ports.Deliverer
	itemLogs    []ports.ItemLog
	logger      *slog.Logger
}

// RunResult reports what a run produced, for operator output.
type RunResult struct {
	Collected  int
	Curated    int
	Recipients int
	DigestPath string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		collector:   deps.Collector,
		scorer:      deps.Scorer,
		policy:      deps.Policy,
		renderer:    deps.Renderer,
		writer:      deps.DigestWriter,
		subscribers: deps.Subscribers,
		deliverer:   deps.Deliverer,
		itemLogs:    deps.ItemLogs,
		logger:      deps.Logger,
	}
}

// Run executes one batch: collect, score, curate, render, write the review
// file, then (unless testMode) deliver to active subscribers and append the
// item logs. Collection and scoring failures are isolated per source/item;
// delivery and log failures are logged and never undo the written file.
func (p *Pipeline) Run(ctx context.Context, now time.Time, testMode bool) (RunResult, error) {
	var result RunResult
	if p.collector == nil || p.renderer == nil || p.writer == nil {
		return result, fmt.Errorf("pipeline misconfigured")
	}

	items := p.collector.Collect(ctx)
	result.Collected = len(items)
	p.info("collection finished", "items", len(items))

	scored := p.scoreAll(ctx, items)

	curated := curator.Curate(scored, p.policy)
	result.Curated = len(curated)
	p.info("curation finished", "kept", len(curated), "dropped", len(scored)-len(curated))

	digest, err := p.renderer.Render(curated, now)
	if err != nil {
		return result, fmt.Errorf("render digest: %w", err)
	}

	path, err := p.writer.Write(now, digest)
	if err != nil {
		return result, fmt.Errorf("write digest: %w", err)
	}
	result.DigestPath = path
	p.info("digest written", "path", path)

	if testMode {
		p.info("test mode: delivery and logging suppressed")
		return result, nil
	}

	result.Recipients = p.deliver(ctx, digest)
	p.appendLogs(ctx, now, curated)

	p.info("run completed",
		"collected", result.Collected,
		"curated", result.Curated,
		"recipients", result.Recipients)
	return result, nil
}

// scoreAll rates each item independently. Without a scorer the step is a
// logged no-op passthrough and items keep the unscored sentinel. A failed
// call falls back to the neutral score so the item is not dropped silently.
func (p *Pipeline) scoreAll(ctx context.Context, items []domain.Item) []domain.ScoredItem {
	scored := make([]domain.ScoredItem, 0, len(items))

	if p.scorer == nil {
		p.info("scoring skipped: no scoring service configured")
		for _, it := range items {
			scored = append(scored, domain.ScoredItem{Item: it})
		}
		return scored
	}

	for _, it := range items {
		s, err := p.scorer.Score(ctx, it)
		if err != nil {
			p.warn("scoring failed, using fallback", "url", it.URL, "error", err)
			s = domain.ScoredItem{Item: it, Score: domain.FallbackScore}
		}
		scored = append(scored, s)
	}
	return scored
}

func (p *Pipeline) deliver(ctx context.Context, digest string) int {
	if p.subscribers == nil || p.deliverer == nil {
		p.info("delivery skipped: no subscriber source or deliverer configured")
		return 0
	}

	recipients, err := p.subscribers.Active(ctx)
	if err != nil {
		p.warn("cannot load subscribers, nothing sent", "error", err)
		return 0
	}
	if len(recipients) == 0 {
		p.info("no active subscribers")
		return 0
	}

	if err := p.deliverer.Send(ctx, digest, recipients); err != nil {
		p.warn("delivery failed", "error", err)
		return 0
	}
	return len(recipients)
}

func (p *Pipeline) appendLogs(ctx context.Context, now time.Time, curated []domain.ScoredItem) {
	for _, sink := range p.itemLogs {
		if err := sink.Append(ctx, now, curated); err != nil {
			p.warn("item log failed", "error", err)
		}
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
