package usecase

import (
	"sort"
	"strings"

	"ASongADay/internal/domain"
)

// DefaultSeparator joins history texts before the containment test.
const DefaultSeparator = " | "

// Eligible keeps the candidates whose title does not occur anywhere in the
// joined history, preserving input order.
func Eligible(candidates []domain.Candidate, history []string, separator string) []domain.Candidate {
	corpus := strings.Join(history, separator)

	eligible := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if strings.Contains(corpus, c.Title) {
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible
}

// Select picks the eligible candidate with the earliest catalog timestamp.
// Ties keep catalog order.
func Select(candidates []domain.Candidate, history []string, separator string) (domain.Candidate, error) {
	return earliest(Eligible(candidates, history, separator), len(candidates))
}

func earliest(eligible []domain.Candidate, total int) (domain.Candidate, error) {
	if len(eligible) == 0 {
		return domain.Candidate{}, &domain.EmptyQueueError{Candidates: total}
	}

	eligible = append([]domain.Candidate(nil), eligible...)
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Before(eligible[j])
	})
	return eligible[0], nil
}
