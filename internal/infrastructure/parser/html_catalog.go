package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ASongADay/internal/catalog"
	"ASongADay/internal/config"
	"ASongADay/internal/domain"
)

// HTMLCatalog scrapes candidates from a single page using CSS selectors.
type HTMLCatalog struct {
	client *http.Client
	cfg    config.HTMLConfig
}

var _ catalog.Strategy = (*HTMLCatalog)(nil)

// NewHTMLCatalog wires an HTTP client with the page selectors.
func NewHTMLCatalog(client *http.Client, cfg config.HTMLConfig) *HTMLCatalog {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLCatalog{client: client, cfg: cfg}
}

// Name identifies the strategy inside the registry.
func (h *HTMLCatalog) Name() string {
	return config.CatalogHTML
}

// Fetch downloads the page and extracts one candidate per item node.
func (h *HTMLCatalog) Fetch(ctx context.Context) ([]domain.Candidate, error) {
	base, err := url.Parse(h.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog url %s: %w", h.cfg.URL, err)
	}

	doc, err := h.fetchDocument(ctx, base.String())
	if err != nil {
		return nil, err
	}

	var candidates []domain.Candidate
	doc.Find(h.cfg.Item).Each(func(_ int, item *goquery.Selection) {
		if c, ok := h.parseItem(item, base); ok {
			candidates = append(candidates, c)
		}
	})
	return candidates, nil
}

func (h *HTMLCatalog) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ASongADay/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.APIError{Endpoint: "catalog", Status: resp.StatusCode, Body: resp.Status}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func (h *HTMLCatalog) parseItem(item *goquery.Selection, base *url.URL) (domain.Candidate, bool) {
	title := strings.TrimSpace(item.Find(h.cfg.Title).First().Text())
	if title == "" {
		return domain.Candidate{}, false
	}

	c := domain.Candidate{Title: title}

	if h.cfg.Contributors != "" {
		item.Find(h.cfg.Contributors).Each(func(_ int, s *goquery.Selection) {
			if name := strings.TrimSpace(s.Text()); name != "" {
				c.Contributors = append(c.Contributors, name)
			}
		})
	}

	if h.cfg.Collection != "" {
		c.Collection = strings.TrimSpace(item.Find(h.cfg.Collection).First().Text())
	}

	if h.cfg.Link != "" {
		if href, ok := item.Find(h.cfg.Link).First().Attr("href"); ok {
			c.URL = resolveLink(base, href)
		}
	}
	c.ID = c.URL

	if h.cfg.Timestamp != "" {
		node := item.Find(h.cfg.Timestamp).First()
		if ts, ok := node.Attr("datetime"); ok {
			c.Timestamp = strings.TrimSpace(ts)
		} else {
			c.Timestamp = strings.TrimSpace(node.Text())
		}
	}

	return c, true
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
