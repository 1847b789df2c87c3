package curator

import (
	"testing"

	"newsbrief/internal/domain"
)

func scoredItem(url string, score float64) domain.ScoredItem {
	return domain.ScoredItem{
		Item:  domain.Item{Title: "t-" + url, URL: url, Source: "test"},
		Score: score,
	}
}

func TestCurateDeduplicatesByURLFirstWins(t *testing.T) {
	t.Parallel()

	in := []domain.ScoredItem{
		scoredItem("https://e.com/a", 8),
		scoredItem("https://e.com/a", 3),
		scoredItem("https://e.com/b", 5),
	}

	out := Curate(in, DefaultPolicy())
	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}
	if out[0].Item.URL != "https://e.com/a" || out[0].Score != 8 {
		t.Fatalf("first occurrence should win: %+v", out[0])
	}
}

func TestCurateFiltersBelowThreshold(t *testing.T) {
	t.Parallel()

	in := []domain.ScoredItem{
		scoredItem("https://e.com/a", 3.9),
		scoredItem("https://e.com/b", 4.0),
		scoredItem("https://e.com/c", 0),
	}

	out := Curate(in, DefaultPolicy())
	if len(out) != 1 {
		t.Fatalf("expected 1 item, got %d", len(out))
	}
	for _, it := range out {
		if it.Score < 4.0 {
			t.Fatalf("item below threshold survived: %+v", it)
		}
	}
}

func TestCurateSortsDescendingStable(t *testing.T) {
	t.Parallel()

	in := []domain.ScoredItem{
		scoredItem("https://e.com/a", 5),
		scoredItem("https://e.com/b", 9),
		scoredItem("https://e.com/c", 5),
		scoredItem("https://e.com/d", 7),
	}

	out := Curate(in, DefaultPolicy())
	want := []string{"https://e.com/b", "https://e.com/d", "https://e.com/a", "https://e.com/c"}
	if len(out) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(out))
	}
	for i, url := range want {
		if out[i].Item.URL != url {
			t.Fatalf("position %d: got %s, want %s", i, out[i].Item.URL, url)
		}
	}
	for i := 1; i < len(out); i++ {
		if out[i].Score > out[i-1].Score {
			t.Fatalf("output not sorted descending at %d", i)
		}
	}
}

func TestCurateTruncatesEqualScoresInInputOrder(t *testing.T) {
	t.Parallel()

	in := make([]domain.ScoredItem, 0, 20)
	for i := 0; i < 20; i++ {
		in = append(in, scoredItem(urlN(i), 6.0))
	}

	out := Curate(in, DefaultPolicy())
	if len(out) != 15 {
		t.Fatalf("expected 15 items, got %d", len(out))
	}
	for i, it := range out {
		if it.Score != 6.0 {
			t.Fatalf("unexpected score at %d: %v", i, it.Score)
		}
		if it.Item.URL != urlN(i) {
			t.Fatalf("relative order broken at %d: %s", i, it.Item.URL)
		}
	}
}

func TestCurateEmptyAndAllBelowThreshold(t *testing.T) {
	t.Parallel()

	if out := Curate(nil, DefaultPolicy()); len(out) != 0 {
		t.Fatalf("empty input should yield empty output, got %d", len(out))
	}

	in := []domain.ScoredItem{
		scoredItem("https://e.com/a", 1),
		scoredItem("https://e.com/b", 2),
	}
	if out := Curate(in, DefaultPolicy()); len(out) != 0 {
		t.Fatalf("all-below-threshold input should yield empty output, got %d", len(out))
	}
}

func urlN(i int) string {
	return "https://e.com/item-" + string(rune('a'+i%26)) + string(rune('0'+i/26))
}
