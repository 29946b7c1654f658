package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ASongADay/internal/domain"
	"ASongADay/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Credentials *CredentialStore
	History     *HistoryCollector
	Source      ports.CandidateSource
	Composer    *Composer
	Publisher   ports.Publisher
	Notifier    ports.Notifier
	Observer    ports.RunObserver
	Separator   string
	ReplyTo     string
	DryRun      bool
	Logger      *slog.Logger
}

// Pipeline implements the daily select-and-publish workflow.
type Pipeline struct {
	credentials *CredentialStore
	history     *HistoryCollector
	source      ports.CandidateSource
	composer    *Composer
	publisher   ports.Publisher
	notifier    ports.Notifier
	observer    ports.RunObserver
	separator   string
	replyTo     string
	dryRun      bool
	logger      *slog.Logger
}

// Report describes how far a run got. Trail lists every stage entered, in
// order, ending with Stage.
type Report struct {
	RunID    string
	Stage    domain.Stage
	Trail    []domain.Stage
	Selected domain.Candidate
	Text     string
	PostID   string
}

func (r *Report) enter(stage domain.Stage) {
	r.Stage = stage
	r.Trail = append(r.Trail, stage)
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	separator := deps.Separator
	if separator == "" {
		separator = DefaultSeparator
	}
	composer := deps.Composer
	if composer == nil {
		composer = NewComposer(time.Time{}, "")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		credentials: deps.Credentials,
		history:     deps.History,
		source:      deps.Source,
		composer:    composer,
		publisher:   deps.Publisher,
		notifier:    deps.Notifier,
		observer:    deps.Observer,
		separator:   separator,
		replyTo:     deps.ReplyTo,
		dryRun:      deps.DryRun,
		logger:      logger,
	}
}

// Run executes one end-to-end pass. Any error is terminal for the run; the
// report carries the stage reached.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (Report, error) {
	if p.credentials == nil || p.history == nil || p.source == nil || p.publisher == nil {
		return Report{Stage: domain.StageStart}, errors.New("pipeline is not fully configured")
	}

	report := Report{RunID: uuid.NewString()}
	report.enter(domain.StageStart)
	log := p.logger.With("run_id", report.RunID)
	started := time.Now()

	err := p.run(ctx, now, &report, log)

	if p.observer != nil {
		p.observer.ObserveRun(report.Stage, time.Since(started))
	}
	if err != nil {
		log.Error("run failed", "stage", report.Stage, "error", err)
		p.notify(ctx, log, report, err)
		return report, err
	}

	log.Info("run finished", "stage", report.Stage, "title", report.Selected.Title, "post_id", report.PostID)
	return report, nil
}

func (p *Pipeline) run(ctx context.Context, now time.Time, report *Report, log *slog.Logger) error {
	current, err := p.credentials.Current(ctx)
	if err != nil {
		report.enter(domain.StageAuthFailed)
		return err
	}
	cred, err := p.credentials.Refresh(ctx, current)
	if err != nil {
		report.enter(domain.StageAuthFailed)
		return err
	}
	report.enter(domain.StageCredentialRefreshed)

	var (
		history    []string
		candidates []domain.Candidate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		texts, err := p.history.Collect(gctx, cred.AccessToken)
		if err != nil {
			return fmt.Errorf("collect history: %w", err)
		}
		history = texts
		return nil
	})
	g.Go(func() error {
		items, err := p.source.FetchCandidates(gctx)
		if err != nil {
			return fmt.Errorf("fetch candidates: %w", err)
		}
		candidates = items
		return nil
	})
	if err := g.Wait(); err != nil {
		report.enter(domain.StageFetchFailed)
		return err
	}
	report.enter(domain.StageHistoryCollected)
	report.enter(domain.StageCandidatesFetched)
	log.Debug("inputs fetched", "history", len(history), "candidates", len(candidates))

	eligible := Eligible(candidates, history, p.separator)
	report.enter(domain.StageDeduplicated)
	log.Debug("candidates deduplicated", "eligible", len(eligible))

	selected, err := earliest(eligible, len(candidates))
	if err != nil {
		report.enter(domain.StageNoCandidate)
		return err
	}
	report.Selected = selected
	report.enter(domain.StageSelected)

	report.Text = p.composer.Render(selected, now)
	report.enter(domain.StageRendered)

	if p.dryRun {
		log.Info("dry run, skipping publish", "text", report.Text)
		return nil
	}

	id, err := p.publisher.Publish(ctx, cred.AccessToken, domain.Post{Text: report.Text, ReplyTo: p.replyTo})
	if err != nil {
		report.enter(domain.StagePublishFailed)
		return fmt.Errorf("publish: %w", err)
	}
	report.PostID = id
	report.enter(domain.StagePublished)
	return nil
}

func (p *Pipeline) notify(ctx context.Context, log *slog.Logger, report Report, runErr error) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, buildFailureMessage(report, runErr)); err != nil {
		log.Warn("notify operator", "error", err)
	}
}

func buildFailureMessage(report Report, runErr error) string {
	var empty *domain.EmptyQueueError
	if errors.As(runErr, &empty) {
		return fmt.Sprintf("Run %s: the catalog is exhausted (%d candidates, all published). Add new items.",
			report.RunID, empty.Candidates)
	}
	return fmt.Sprintf("Run %s failed at %s: %v", report.RunID, report.Stage, runErr)
}
