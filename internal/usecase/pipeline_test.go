package usecase

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ASongADay/internal/domain"
)

type pipelineFixture struct {
	log       *eventLog
	issuer    *fakeIssuer
	sink      *fakeSink
	pager     *fakePager
	source    *fakeSource
	publisher *fakePublisher
	notifier  *fakeNotifier
	observer  *fakeObserver
}

func newFixture() *pipelineFixture {
	log := &eventLog{}
	return &pipelineFixture{
		log:    log,
		issuer: &fakeIssuer{log: log, fresh: domain.Credential{AccessToken: "a2", RefreshToken: "r2"}},
		sink:   &fakeSink{log: log, current: domain.Credential{AccessToken: "a1", RefreshToken: "r1"}},
		pager: &fakePager{log: log, pages: []domain.HistoryPage{
			{Records: []domain.PublicationRecord{{Text: "a song a day, day 1\nAlpha - Bob\nlink1"}}},
		}},
		source: &fakeSource{log: log, candidates: []domain.Candidate{
			candidate("Alpha", "2023-01-01T00:00:00Z", "Bob"),
			candidate("Beta", "2023-01-02T00:00:00Z", "Carol", "Dan"),
		}},
		publisher: &fakePublisher{log: log},
		notifier:  &fakeNotifier{},
		observer:  &fakeObserver{},
	}
}

func (f *pipelineFixture) pipeline(dryRun bool) *Pipeline {
	return NewPipeline(PipelineDeps{
		Credentials: NewCredentialStore(f.issuer, f.sink, nil),
		History:     NewHistoryCollector(f.pager, 100, nil, nil),
		Source:      f.source,
		Composer:    NewComposer(time.Date(2023, time.January, 8, 0, 0, 0, 0, time.UTC), ""),
		Publisher:   f.publisher,
		Notifier:    f.notifier,
		Observer:    f.observer,
		DryRun:      dryRun,
	})
}

var runTime = time.Date(2023, time.January, 12, 12, 15, 0, 0, time.UTC)

func TestPipelinePublishesNextCandidate(t *testing.T) {
	t.Parallel()

	f := newFixture()
	report, err := f.pipeline(false).Run(context.Background(), runTime)
	require.NoError(t, err)

	assert.Equal(t, domain.StagePublished, report.Stage)
	assert.Equal(t, "Beta", report.Selected.Title)
	assert.Equal(t, "post-1", report.PostID)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, []domain.Stage{
		domain.StageStart,
		domain.StageCredentialRefreshed,
		domain.StageHistoryCollected,
		domain.StageCandidatesFetched,
		domain.StageDeduplicated,
		domain.StageSelected,
		domain.StageRendered,
		domain.StagePublished,
	}, report.Trail)
	require.Len(t, f.publisher.posts, 1)
	assert.Equal(t, "a song a day, day 5\nBeta - Carol, Dan\nhttps://example.org/Beta", f.publisher.posts[0].Text)
	assert.Equal(t, "a2", f.publisher.token, "publisher must use the refreshed access token")
	assert.Equal(t, []string{"a2"}, f.pager.tokens)
	assert.Equal(t, []domain.Stage{domain.StagePublished}, f.observer.stages)
	assert.Empty(t, f.notifier.messages)
}

func TestPipelinePersistsCredentialBeforePublishing(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, err := f.pipeline(false).Run(context.Background(), runTime)
	require.NoError(t, err)

	events := f.log.list()
	saveIdx := slices.Index(events, "sink.save r2")
	publishIdx := slices.Index(events, "publisher.publish")
	require.NotEqual(t, -1, saveIdx)
	require.NotEqual(t, -1, publishIdx)
	assert.Less(t, saveIdx, publishIdx)

	for i, e := range events {
		if e == "source.fetch" || e == `history.page ""` {
			assert.Greater(t, i, saveIdx, "%s ran before the credential was persisted", e)
		}
	}
	require.Len(t, f.sink.saved, 1)
	assert.Equal(t, "r2", f.sink.saved[0].RefreshToken)
}

func TestPipelineAuthFailureStopsEarly(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.issuer.err = &domain.AuthError{Status: 401, Body: "unauthorized"}

	report, err := f.pipeline(false).Run(context.Background(), runTime)
	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, domain.StageAuthFailed, report.Stage)
	assert.Empty(t, f.sink.saved)
	assert.Empty(t, f.pager.cursor, "history must not be collected")
	assert.Empty(t, f.publisher.posts)
	assert.Len(t, f.notifier.messages, 1)
	assert.Equal(t, []domain.Stage{domain.StageAuthFailed}, f.observer.stages)
}

func TestPipelineFetchFailureKeepsRefreshedCredential(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.source.err = &domain.APIError{Endpoint: "catalog", Status: 500, Body: "boom"}

	report, err := f.pipeline(false).Run(context.Background(), runTime)
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "catalog", apiErr.Endpoint)
	assert.Equal(t, domain.StageFetchFailed, report.Stage)
	assert.Equal(t, []domain.Stage{domain.StageStart, domain.StageCredentialRefreshed, domain.StageFetchFailed}, report.Trail)
	assert.NotContains(t, report.Trail, domain.StageHistoryCollected)
	assert.Len(t, f.sink.saved, 1)
	assert.Equal(t, "r2", f.sink.current.RefreshToken)
	assert.Empty(t, f.publisher.posts)
}

func TestPipelineNoCandidate(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.pager.pages = []domain.HistoryPage{{Records: []domain.PublicationRecord{{Text: "Alpha"}, {Text: "Beta"}}}}

	report, err := f.pipeline(false).Run(context.Background(), runTime)
	var empty *domain.EmptyQueueError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, domain.StageNoCandidate, report.Stage)
	assert.Empty(t, f.publisher.posts)
	require.Len(t, f.notifier.messages, 1)
	assert.Contains(t, f.notifier.messages[0], "catalog is exhausted")
}

func TestPipelinePublishFailure(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.publisher.err = &domain.APIError{Endpoint: "publish", Status: 403, Body: "duplicate content"}

	report, err := f.pipeline(false).Run(context.Background(), runTime)
	require.Error(t, err)
	assert.Equal(t, domain.StagePublishFailed, report.Stage)
	assert.Equal(t, "Beta", report.Selected.Title)
	assert.True(t, report.Stage.Failed())
}

func TestPipelineDryRun(t *testing.T) {
	t.Parallel()

	f := newFixture()
	report, err := f.pipeline(true).Run(context.Background(), runTime)
	require.NoError(t, err)
	assert.Equal(t, domain.StageRendered, report.Stage)
	assert.Contains(t, report.Text, "Beta - Carol, Dan")
	assert.Empty(t, f.publisher.posts)
	assert.Len(t, f.sink.saved, 1, "dry runs still rotate the credential")
}

func TestPipelineNotConfigured(t *testing.T) {
	t.Parallel()

	_, err := NewPipeline(PipelineDeps{}).Run(context.Background(), runTime)
	require.Error(t, err)
}

func TestFailureMessage(t *testing.T) {
	t.Parallel()

	msg := buildFailureMessage(Report{RunID: "r", Stage: domain.StageFetchFailed}, errors.New("timeout"))
	assert.Equal(t, "Run r failed at FETCH_FAILED: timeout", msg)
}
