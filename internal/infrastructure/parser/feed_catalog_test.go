package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ASongADay/internal/config"
)

const atomFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Weekly picks</title>
  <entry>
    <title>Beta</title>
    <id>urn:track:2</id>
    <link href="https://example.org/beta"/>
    <author><name>Carol</name></author>
    <published>2023-01-02T10:00:00+01:00</published>
  </entry>
  <entry>
    <title>Alpha</title>
    <id>urn:track:1</id>
    <link href="https://example.org/alpha"/>
    <author><name>Bob</name></author>
    <updated>2023-01-01T10:00:00Z</updated>
  </entry>
</feed>`

func TestFeedCatalogFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(atomFeed))
	}))
	defer server.Close()

	f := NewFeedCatalog(server.Client(), config.FeedConfig{URL: server.URL})
	items, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	beta := items[0]
	if beta.Title != "Beta" || beta.URL != "https://example.org/beta" || beta.ID != "urn:track:2" {
		t.Fatalf("unexpected item: %+v", beta)
	}
	if beta.Collection != "Weekly picks" {
		t.Fatalf("unexpected collection: %s", beta.Collection)
	}
	if len(beta.Contributors) != 1 || beta.Contributors[0] != "Carol" {
		t.Fatalf("unexpected contributors: %v", beta.Contributors)
	}
	if beta.Timestamp != "2023-01-02T09:00:00Z" {
		t.Fatalf("published time must be normalized to UTC, got %s", beta.Timestamp)
	}
	if items[1].Timestamp != "2023-01-01T10:00:00Z" {
		t.Fatalf("updated time fallback failed: %s", items[1].Timestamp)
	}
}

func TestFeedCatalogStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := NewFeedCatalog(server.Client(), config.FeedConfig{URL: server.URL})
	if _, err := f.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for status 502")
	}
}
