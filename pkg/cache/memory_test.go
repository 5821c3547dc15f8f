package cache

import (
	"context"
	"testing"
	"time"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.SetJSON(ctx, "k", payload{Name: "sync", Count: 3}, time.Minute); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	var got payload
	found, err := c.GetJSON(ctx, "k", &got)
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if !found {
		t.Fatal("expected a hit")
	}
	if got.Name != "sync" || got.Count != 3 {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache()

	var got payload
	found, err := c.GetJSON(context.Background(), "absent", &got)
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if found {
		t.Error("expected a miss for an unknown key")
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	if err := c.SetJSON(ctx, "k", payload{Name: "short-lived"}, 10*time.Minute); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	var got payload
	if found, _ := c.GetJSON(ctx, "k", &got); !found {
		t.Fatal("expected a hit before expiry")
	}

	now = now.Add(11 * time.Minute)
	if found, _ := c.GetJSON(ctx, "k", &got); found {
		t.Error("expected entry to expire after its TTL")
	}
}

func TestMemoryCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	if err := c.SetJSON(ctx, "k", payload{Name: "pinned"}, 0); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	now = now.Add(1000 * time.Hour)
	var got payload
	if found, _ := c.GetJSON(ctx, "k", &got); !found {
		t.Error("expected zero-TTL entry to survive")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.SetJSON(ctx, "k", payload{}, time.Minute); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var got payload
	if found, _ := c.GetJSON(ctx, "k", &got); found {
		t.Error("expected deleted key to miss")
	}
}
