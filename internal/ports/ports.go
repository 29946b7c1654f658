package ports

import (
	"context"
	"time"

	"ASongADay/internal/domain"
)

// CandidateSource pulls the ordered candidate list from the catalog.
type CandidateSource interface {
	FetchCandidates(ctx context.Context) ([]domain.Candidate, error)
}

// TokenIssuer exchanges a refresh token for a new credential pair.
type TokenIssuer interface {
	Refresh(ctx context.Context, refreshToken string) (domain.Credential, error)
}

// CredentialSink persists the single current credential.
type CredentialSink interface {
	Load(ctx context.Context) (domain.Credential, error)
	Save(ctx context.Context, cred domain.Credential) error
}

// HistoryPager reads one page of the publication history.
type HistoryPager interface {
	HistoryPage(ctx context.Context, accessToken, cursor string, pageSize int) (domain.HistoryPage, error)
}

// Publisher sends rendered text to the target account.
type Publisher interface {
	Publish(ctx context.Context, accessToken string, post domain.Post) (string, error)
}

// Notifier alerts the operator about failed runs.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// RunObserver records run outcomes (metrics).
type RunObserver interface {
	ObserveRun(stage domain.Stage, duration time.Duration)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
