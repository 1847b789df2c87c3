package app

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"newsbrief/internal/collector"
	"newsbrief/internal/config"
	"newsbrief/internal/curator"
	"newsbrief/internal/infrastructure/feed"
	"newsbrief/internal/infrastructure/llm"
	"newsbrief/internal/infrastructure/mail"
	"newsbrief/internal/infrastructure/report"
	"newsbrief/internal/infrastructure/scheduler"
	"newsbrief/internal/infrastructure/scrape"
	"newsbrief/internal/infrastructure/sheet"
	"newsbrief/internal/infrastructure/storage"
	"newsbrief/internal/infrastructure/subscribers"
	"newsbrief/internal/logging"
	"newsbrief/internal/ports"
	"newsbrief/internal/render"
	"newsbrief/internal/usecase"
)

// Application wires configuration to the pipeline and its collaborators.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	sources := make([]ports.ItemSource, 0, len(cfg.Feeds)+len(cfg.Sites))
	for _, feedURL := range cfg.Feeds {
		sources = append(sources, feed.NewRSSSource(feedURL, cfg.Curation.PerSourceCap))
	}
	for _, site := range cfg.Sites {
		sources = append(sources, scrape.NewSiteSource(site, nil, cfg.Curation.PerSourceCap))
	}
	composite := collector.NewComposite(sources, baseLogger.With("component", "collector"))

	var scorer ports.Scorer
	if cfg.Scoring.APIKey != "" {
		scorer = llm.NewRelevanceScorer(cfg.Scoring)
	}

	var deliverer ports.Deliverer
	if cfg.Mail.Host != "" {
		deliverer = mail.NewSender(cfg.Mail, baseLogger.With("component", "mail"))
	}

	itemLogs := []ports.ItemLog{sheet.NewLog(cfg.Sheet.Path, cfg.Sheet.Sheet)}
	if cfg.Database.DSN != "" {
		if db, err := sql.Open("postgres", cfg.Database.DSN); err != nil {
			baseLogger.Warn("archive disabled: cannot open database", "error", err)
		} else {
			archive := storage.NewArchive(db)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := archive.EnsureSchema(ctx); err != nil {
				baseLogger.Warn("archive disabled: cannot ensure schema", "error", err)
			} else {
				itemLogs = append(itemLogs, archive)
			}
			cancel()
		}
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Collector: composite,
		Scorer:    scorer,
		Policy: curator.Policy{
			MinScore:      cfg.Curation.MinScore,
			TopStoryScore: cfg.Curation.TopStoryScore,
			MaxItems:      cfg.Curation.MaxItems,
		},
		Renderer:     render.New(cfg.Curation.TopStoryScore),
		DigestWriter: report.NewFileWriter(cfg.Output.Dir),
		Subscribers:  subscribers.NewCSVSource(cfg.Subscribers.Path),
		Deliverer:    deliverer,
		ItemLogs:     itemLogs,
		Logger:       baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline}
}

// RunOnce performs a single pipeline execution.
func (a *Application) RunOnce(ctx context.Context, testMode bool) (usecase.RunResult, error) {
	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.pipeline.Run(ctx, now, testMode)
}

// RunScheduled starts cron-driven runs and blocks until ctx is cancelled.
func (a *Application) RunScheduled(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, a.pipeline)

	if err := sched.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "timezone", a.cfg.Scheduler.Timezone)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sched.Stop(stopCtx)
}
