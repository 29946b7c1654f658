package catalog

import (
	"context"
	"reflect"
	"testing"

	"ASongADay/internal/domain"
)

type namedStrategy string

func (n namedStrategy) Name() string { return string(n) }

func (n namedStrategy) Fetch(context.Context) ([]domain.Candidate, error) {
	return []domain.Candidate{{Title: string(n)}}, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(namedStrategy("spotify"))
	reg.Register(namedStrategy("feed"))

	strategy, err := reg.Resolve("feed")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	items, _ := strategy.Fetch(context.Background())
	if len(items) != 1 || items[0].Title != "feed" {
		t.Fatalf("resolved wrong strategy: %+v", items)
	}

	if got := reg.Names(); !reflect.DeepEqual(got, []string{"feed", "spotify"}) {
		t.Fatalf("unexpected names: %v", got)
	}
}

func TestRegistryUnknown(t *testing.T) {
	t.Parallel()

	var reg Registry
	reg.Register(namedStrategy("html"))
	if _, err := reg.Resolve("spotify"); err == nil {
		t.Fatalf("expected error for unknown catalog")
	}
}
