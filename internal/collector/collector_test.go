package collector

import (
	"context"
	"errors"
	"testing"

	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
)

type stubSource struct {
	name  string
	items []domain.Item
	err   error
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Collect(ctx context.Context) ([]domain.Item, error) {
	return s.items, s.err
}

func TestCompositeSkipsFailingSource(t *testing.T) {
	t.Parallel()

	sources := []ports.ItemSource{
		stubSource{name: "a", items: []domain.Item{{Title: "A1", URL: "https://e.com/a1"}}},
		stubSource{name: "broken", err: errors.New("connection refused")},
		stubSource{name: "b", items: []domain.Item{{Title: "B1", URL: "https://e.com/b1"}}},
	}

	got := NewComposite(sources, nil).Collect(context.Background())
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	if got[0].Title != "A1" || got[1].Title != "B1" {
		t.Fatalf("unexpected items: %+v", got)
	}
}

func TestCompositePreservesSourceOrder(t *testing.T) {
	t.Parallel()

	sources := []ports.ItemSource{
		stubSource{name: "feed", items: []domain.Item{
			{Title: "F1", URL: "https://e.com/f1"},
			{Title: "F2", URL: "https://e.com/f2"},
		}},
		stubSource{name: "site", items: []domain.Item{
			{Title: "S1", URL: "https://e.com/s1"},
		}},
	}

	got := NewComposite(sources, nil).Collect(context.Background())
	want := []string{"F1", "F2", "S1"}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Fatalf("position %d: got %s, want %s", i, got[i].Title, title)
		}
	}
}

func TestCompositeAllSourcesFailing(t *testing.T) {
	t.Parallel()

	sources := []ports.ItemSource{
		stubSource{name: "x", err: errors.New("boom")},
		stubSource{name: "y", err: errors.New("boom")},
	}

	if got := NewComposite(sources, nil).Collect(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty result, got %d items", len(got))
	}
}
