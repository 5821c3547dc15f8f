package repository

import (
	"context"
	"testing"
	"time"

	"prepmail-backend/internal/sync/domain"
	"prepmail-backend/pkg/cache"
)

func TestStatusStoreReadDefault(t *testing.T) {
	store := NewStatusStore(cache.NewMemoryCache(), time.Minute)

	status, err := store.Read(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if status == nil {
		t.Fatal("expected a zeroed status, got nil")
	}
	if status.IsProcessing {
		t.Error("default status must be idle")
	}
	if status.CurrentStep != domain.StepIdle {
		t.Errorf("expected step %q, got %q", domain.StepIdle, status.CurrentStep)
	}
	if status.LastSync != nil {
		t.Error("default status must have no lastSync")
	}
}

func TestStatusStoreMergePartialUpdate(t *testing.T) {
	store := NewStatusStore(cache.NewMemoryCache(), time.Minute)
	ctx := context.Background()

	_, err := store.Merge(ctx, "user-1", domain.StatusUpdate{
		IsProcessing: domain.Bool(true),
		Progress:     domain.Int(10),
		CurrentStep:  domain.Str(domain.StepFetching),
		TotalEmails:  domain.Int(9),
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	// second merge only touches progress, the rest must survive
	status, err := store.Merge(ctx, "user-1", domain.StatusUpdate{
		Progress: domain.Int(40),
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if status.Progress != 40 {
		t.Errorf("expected progress 40, got %d", status.Progress)
	}
	if !status.IsProcessing {
		t.Error("isProcessing must survive a partial merge")
	}
	if status.TotalEmails != 9 {
		t.Errorf("totalEmails must survive a partial merge, got %d", status.TotalEmails)
	}
	if status.CurrentStep != domain.StepFetching {
		t.Errorf("currentStep must survive a partial merge, got %q", status.CurrentStep)
	}
}

func TestStatusStoreStampsLastSyncOnCompletion(t *testing.T) {
	store := NewStatusStore(cache.NewMemoryCache(), time.Minute).(*cacheStatusStore)
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	ctx := context.Background()

	if _, err := store.Merge(ctx, "user-1", domain.StatusUpdate{IsProcessing: domain.Bool(true)}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	// progress merge while still processing must not stamp
	status, err := store.Merge(ctx, "user-1", domain.StatusUpdate{Progress: domain.Int(50)})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if status.LastSync != nil {
		t.Error("lastSync must not be stamped while processing")
	}

	status, err = store.Merge(ctx, "user-1", domain.StatusUpdate{
		IsProcessing: domain.Bool(false),
		Progress:     domain.Int(100),
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if status.LastSync == nil || !status.LastSync.Equal(fixed) {
		t.Errorf("expected lastSync stamped with %v, got %v", fixed, status.LastSync)
	}

	// a merge on an already idle status must not re-stamp
	later := fixed.Add(time.Hour)
	store.now = func() time.Time { return later }
	status, err = store.Merge(ctx, "user-1", domain.StatusUpdate{Progress: domain.Int(100)})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if !status.LastSync.Equal(fixed) {
		t.Errorf("lastSync must only change on a processing to idle transition, got %v", status.LastSync)
	}
}

func TestStatusStoreClear(t *testing.T) {
	store := NewStatusStore(cache.NewMemoryCache(), time.Minute)
	ctx := context.Background()

	if _, err := store.Merge(ctx, "user-1", domain.StatusUpdate{Progress: domain.Int(80)}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if err := store.Clear(ctx, "user-1"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	status, err := store.Read(ctx, "user-1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if status.Progress != 0 {
		t.Errorf("expected zeroed status after clear, got progress %d", status.Progress)
	}
}
