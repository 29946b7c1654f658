package domain

import (
	"sort"
	"time"
)

// Candidate is one catalog item that may be published.
type Candidate struct {
	Title        string
	Contributors []string
	Collection   string
	ID           string
	URL          string
	// Timestamp is the ISO 8601 time the item entered the catalog.
	Timestamp string
}

// PublicationRecord is a previously published post.
type PublicationRecord struct {
	ID   string
	Text string
}

// HistoryPage is one page of the publication history endpoint.
type HistoryPage struct {
	Records   []PublicationRecord
	NextToken string
}

// Post is the payload handed to the publisher.
type Post struct {
	Text    string
	ReplyTo string
}

// timestampLayouts are the ISO 8601 forms catalogs are known to emit.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseTimestamp reads an ISO 8601 timestamp. Forms without a zone are UTC.
func ParseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Before reports whether a sorts ahead of b in catalog order. Parseable
// timestamps compare by instant and sort ahead of unparseable ones, which
// compare lexically.
func (a Candidate) Before(b Candidate) bool {
	ta, okA := ParseTimestamp(a.Timestamp)
	tb, okB := ParseTimestamp(b.Timestamp)
	switch {
	case okA && okB:
		return ta.Before(tb)
	case okA != okB:
		return okA
	default:
		return a.Timestamp < b.Timestamp
	}
}

// SortCandidates orders candidates ascending by catalog timestamp, keeping
// arrival order for equal timestamps.
func SortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Before(candidates[j])
	})
}
