package parser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"ASongADay/internal/catalog"
	"ASongADay/internal/config"
	"ASongADay/internal/domain"
)

// FeedCatalog reads candidates from an RSS or Atom feed.
type FeedCatalog struct {
	client *http.Client
	url    string
	parser *gofeed.Parser
}

var _ catalog.Strategy = (*FeedCatalog)(nil)

// NewFeedCatalog wires an HTTP client with the feed location.
func NewFeedCatalog(client *http.Client, cfg config.FeedConfig) *FeedCatalog {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &FeedCatalog{client: client, url: cfg.URL, parser: gofeed.NewParser()}
}

// Name identifies the strategy inside the registry.
func (f *FeedCatalog) Name() string {
	return config.CatalogFeed
}

// Fetch downloads and parses the feed.
func (f *FeedCatalog) Fetch(ctx context.Context) ([]domain.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ASongADay/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.APIError{Endpoint: "catalog", Status: resp.StatusCode, Body: resp.Status}
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || strings.TrimSpace(item.Title) == "" {
			continue
		}
		candidates = append(candidates, feedItemToCandidate(feed.Title, item))
	}
	return candidates, nil
}

func feedItemToCandidate(collection string, item *gofeed.Item) domain.Candidate {
	c := domain.Candidate{
		Title:      strings.TrimSpace(item.Title),
		Collection: strings.TrimSpace(collection),
		URL:        strings.TrimSpace(item.Link),
		ID:         strings.TrimSpace(item.GUID),
	}
	if c.ID == "" {
		c.ID = c.URL
	}

	for _, author := range item.Authors {
		if author != nil && strings.TrimSpace(author.Name) != "" {
			c.Contributors = append(c.Contributors, strings.TrimSpace(author.Name))
		}
	}

	switch {
	case item.PublishedParsed != nil:
		c.Timestamp = item.PublishedParsed.UTC().Format(time.RFC3339)
	case item.UpdatedParsed != nil:
		c.Timestamp = item.UpdatedParsed.UTC().Format(time.RFC3339)
	default:
		c.Timestamp = item.Published
	}
	return c
}
