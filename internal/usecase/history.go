package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ASongADay/internal/ports"
)

const (
	// DefaultPageSize is the largest page the history endpoint serves.
	DefaultPageSize = 100
	minPageSize     = 5
)

// HistoryCollector walks every page of the publication history.
type HistoryCollector struct {
	pager    ports.HistoryPager
	pageSize int
	markers  []string
	logger   *slog.Logger
}

// NewHistoryCollector builds a collector. Records must contain every marker
// to count as history; no markers keeps all records.
func NewHistoryCollector(pager ports.HistoryPager, pageSize int, markers []string, logger *slog.Logger) *HistoryCollector {
	if pageSize <= 0 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}
	if pageSize < minPageSize {
		pageSize = minPageSize
	}
	return &HistoryCollector{pager: pager, pageSize: pageSize, markers: markers, logger: logger}
}

// Collect returns the text of every published record. A failing page fails
// the whole collection.
func (h *HistoryCollector) Collect(ctx context.Context, accessToken string) ([]string, error) {
	var (
		texts  []string
		cursor string
		pages  int
	)

	for {
		page, err := h.pager.HistoryPage(ctx, accessToken, cursor, h.pageSize)
		if err != nil {
			return nil, fmt.Errorf("history page %d: %w", pages+1, err)
		}
		pages++

		for _, record := range page.Records {
			if h.matches(record.Text) {
				texts = append(texts, record.Text)
			}
		}

		if page.NextToken == "" {
			break
		}
		cursor = page.NextToken
	}

	h.debug("history collected", "pages", pages, "records", len(texts))
	return texts, nil
}

func (h *HistoryCollector) matches(text string) bool {
	for _, marker := range h.markers {
		if !strings.Contains(text, marker) {
			return false
		}
	}
	return true
}

func (h *HistoryCollector) debug(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Debug(msg, args...)
	}
}
