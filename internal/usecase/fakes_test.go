package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ASongADay/internal/domain"
)

// eventLog records calls across fakes so tests can assert ordering.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type fakeIssuer struct {
	log   *eventLog
	fresh domain.Credential
	err   error
	calls int
}

func (f *fakeIssuer) Refresh(_ context.Context, refreshToken string) (domain.Credential, error) {
	f.calls++
	f.log.add("issuer.refresh %s", refreshToken)
	if f.err != nil {
		return domain.Credential{}, f.err
	}
	return f.fresh, nil
}

type fakeSink struct {
	log     *eventLog
	current domain.Credential
	saved   []domain.Credential
	saveErr error
}

func (f *fakeSink) Load(context.Context) (domain.Credential, error) {
	f.log.add("sink.load")
	return f.current, nil
}

func (f *fakeSink) Save(_ context.Context, cred domain.Credential) error {
	f.log.add("sink.save %s", cred.RefreshToken)
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, cred)
	f.current = cred
	return nil
}

type fakePager struct {
	log    *eventLog
	pages  []domain.HistoryPage
	failAt int
	err    error
	tokens []string
	cursor []string
}

func (f *fakePager) HistoryPage(_ context.Context, accessToken, cursor string, _ int) (domain.HistoryPage, error) {
	if f.log != nil {
		f.log.add("history.page %q", cursor)
	}
	f.tokens = append(f.tokens, accessToken)
	f.cursor = append(f.cursor, cursor)
	idx := len(f.cursor) - 1
	if f.err != nil && idx == f.failAt {
		return domain.HistoryPage{}, f.err
	}
	if idx >= len(f.pages) {
		return domain.HistoryPage{}, nil
	}
	return f.pages[idx], nil
}

type fakeSource struct {
	log        *eventLog
	candidates []domain.Candidate
	err        error
}

func (f *fakeSource) FetchCandidates(context.Context) ([]domain.Candidate, error) {
	if f.log != nil {
		f.log.add("source.fetch")
	}
	return f.candidates, f.err
}

type fakePublisher struct {
	log   *eventLog
	posts []domain.Post
	token string
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, accessToken string, post domain.Post) (string, error) {
	f.log.add("publisher.publish")
	f.token = accessToken
	if f.err != nil {
		return "", f.err
	}
	f.posts = append(f.posts, post)
	return "post-1", nil
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Notify(_ context.Context, message string) error {
	f.messages = append(f.messages, message)
	return nil
}

type fakeObserver struct {
	stages []domain.Stage
}

func (f *fakeObserver) ObserveRun(stage domain.Stage, _ time.Duration) {
	f.stages = append(f.stages, stage)
}

func candidate(title, ts string, contributors ...string) domain.Candidate {
	return domain.Candidate{
		Title:        title,
		Contributors: contributors,
		URL:          "https://example.org/" + title,
		Timestamp:    ts,
	}
}
