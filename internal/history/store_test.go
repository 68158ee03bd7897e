package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ctabot-go/internal/signal"
)

func TestStoreSaveAndLoad(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "bars.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer store.Close()

	now := time.Date(2016, 3, 22, 15, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	bars := []signal.Bar{
		{Symbol: "IF1604", Exchange: "CFFEX", Open: 1, High: 2, Low: 0.5, Close: 1.5, Ts: now.AddDate(0, 0, -20)},
		{Symbol: "IF1604", Exchange: "CFFEX", Open: 2, High: 3, Low: 1, Close: 2.5, Ts: now.Add(-2 * time.Minute)},
		{Symbol: "IF1604", Exchange: "CFFEX", Open: 3, High: 4, Low: 2, Close: 3.5, Ts: now.Add(-time.Minute)},
		{Symbol: "IH1604", Exchange: "CFFEX", Open: 9, High: 9, Low: 9, Close: 9, Ts: now.Add(-time.Minute)},
	}
	// inserted out of order on purpose
	for _, i := range []int{2, 0, 3, 1} {
		if err := store.Save(ctx, bars[i]); err != nil {
			t.Fatalf("Save error: %v", err)
		}
	}

	got, err := store.LoadDays(ctx, "IF1604", 10)
	if err != nil {
		t.Fatalf("LoadDays error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 bars in window, got %d", len(got))
	}
	if got[0].Close != 2.5 || got[1].Close != 3.5 {
		t.Fatalf("bars not ordered oldest first: %+v", got)
	}
	if !got[1].Ts.Equal(bars[2].Ts) || got[1].Exchange != "CFFEX" {
		t.Fatalf("round trip lost fields: %+v", got[1])
	}
}

func TestStoreUpsert(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	ts := time.Now().Truncate(time.Minute)
	_ = store.Save(ctx, signal.Bar{Symbol: "X", Close: 1, Ts: ts})
	_ = store.Save(ctx, signal.Bar{Symbol: "X", Close: 2, Ts: ts})

	got, err := store.Since(ctx, "X", ts.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Since error: %v", err)
	}
	if len(got) != 1 || got[0].Close != 2 {
		t.Fatalf("expected single updated bar, got %+v", got)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
