package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ASongADay/internal/catalog"
	"ASongADay/internal/config"
	"ASongADay/internal/domain"
	"ASongADay/internal/infrastructure/parser"
	"ASongADay/internal/infrastructure/scheduler"
	"ASongADay/internal/infrastructure/spotify"
	"ASongADay/internal/infrastructure/storage"
	"ASongADay/internal/infrastructure/telegram"
	"ASongADay/internal/infrastructure/twitter"
	"ASongADay/internal/logging"
	"ASongADay/internal/metrics"
	"ASongADay/internal/ports"
	"ASongADay/internal/usecase"
)

// Options tweak a single process invocation.
type Options struct {
	DryRun bool
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	sink     ports.CredentialSink
	pipeline *usecase.Pipeline
	metrics  *metrics.Collector
	db       *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger, metrics: metrics.NewCollector()}

	sink, err := a.buildSink()
	if err != nil {
		return nil, err
	}
	a.sink = sink

	tw := twitter.NewClient(cfg.Twitter, nil)

	registry := catalog.NewRegistry()
	registry.Register(spotify.NewPlaylistCatalog(cfg.Catalog.Spotify, nil))
	registry.Register(parser.NewFeedCatalog(nil, cfg.Catalog.Feed))
	registry.Register(parser.NewHTMLCatalog(nil, cfg.Catalog.HTML))
	source := parser.NewStrategySource(registry, cfg.Catalog.Kind, baseLogger.With("component", "catalog"))

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Credentials: usecase.NewCredentialStore(tw, sink, baseLogger.With("component", "credentials")),
		History: usecase.NewHistoryCollector(tw, cfg.History.PageSize, cfg.History.SeriesMarkers,
			baseLogger.With("component", "history")),
		Source:    source,
		Composer:  usecase.NewComposer(cfg.Compose.Epoch, cfg.Compose.Header),
		Publisher: tw,
		Notifier:  notifier,
		Observer:  a.metrics,
		Separator: cfg.History.Separator,
		ReplyTo:   cfg.Twitter.ReplyTo,
		DryRun:    opts.DryRun,
		Logger:    baseLogger.With("component", "pipeline"),
	})
	return a, nil
}

func (a *Application) buildSink() (ports.CredentialSink, error) {
	switch a.cfg.Credentials.Store {
	case config.StorePostgres:
		db, err := storage.OpenPostgres(a.cfg.Credentials.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		return storage.NewPostgresCredentialStore(db, a.cfg.Credentials.Database.Table, a.cfg.Credentials.Database.Account), nil
	case config.StoreFile, "":
		return storage.NewFileCredentialStore(a.cfg.Credentials.File), nil
	default:
		return nil, fmt.Errorf("unknown credential store %q", a.cfg.Credentials.Store)
	}
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) (usecase.Report, error) {
	if err := a.ensureSchema(ctx); err != nil {
		return usecase.Report{}, err
	}
	return a.pipeline.Run(ctx, time.Now().UTC())
}

// Schedule runs the pipeline daily until ctx is cancelled. Metrics are
// served when an address is configured.
func (a *Application) Schedule(ctx context.Context) error {
	if err := a.ensureSchema(ctx); err != nil {
		return err
	}

	driver, err := scheduler.NewDailyScheduler(a.cfg.Scheduler.DailyAt, a.cfg.Scheduler.Location())
	if err != nil {
		return err
	}
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))

	var srv *http.Server
	if a.cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics.Handler())
		srv = &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "daily_at", a.cfg.Scheduler.DailyAt, "timezone", a.cfg.Scheduler.Location().String())

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if srv != nil {
		_ = srv.Shutdown(shutdownCtx)
	}
	return sched.Stop(shutdownCtx)
}

// SeedCredential stores an operator-provided credential, typically the
// output of the one-time authorization handshake.
func (a *Application) SeedCredential(ctx context.Context, cred domain.Credential) error {
	if err := a.ensureSchema(ctx); err != nil {
		return err
	}
	if err := a.sink.Save(ctx, cred); err != nil {
		return fmt.Errorf("seed credential: %w", err)
	}
	a.logger.Info("credential seeded", "store", a.cfg.Credentials.Store)
	return nil
}

// Close releases the database handle if one was opened.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *Application) ensureSchema(ctx context.Context) error {
	pg, ok := a.sink.(*storage.PostgresCredentialStore)
	if !ok {
		return nil
	}
	return pg.EnsureSchema(ctx)
}
