package parser

import (
	"context"
	"fmt"
	"log/slog"

	"ASongADay/internal/catalog"
	"ASongADay/internal/domain"
	"ASongADay/internal/ports"
)

// StrategySource implements CandidateSource via a registered catalog strategy.
type StrategySource struct {
	registry *catalog.Registry
	kind     string
	logger   *slog.Logger
}

var _ ports.CandidateSource = (*StrategySource)(nil)

// NewStrategySource wires the registry with the configured catalog kind.
func NewStrategySource(reg *catalog.Registry, kind string, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		kind:     kind,
		logger:   log,
	}
}

// FetchCandidates runs the configured strategy and returns its items in
// ascending catalog-timestamp order.
func (s *StrategySource) FetchCandidates(ctx context.Context) ([]domain.Candidate, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("catalog registry is not configured")
	}

	strategy, err := s.registry.Resolve(s.kind)
	if err != nil {
		return nil, err
	}

	s.debug("fetch catalog", "catalog", strategy.Name())
	candidates, err := strategy.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", strategy.Name(), err)
	}

	domain.SortCandidates(candidates)
	s.debug("catalog fetched", "catalog", strategy.Name(), "candidates", len(candidates))
	return candidates, nil
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
