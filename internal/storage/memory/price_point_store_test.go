package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/HeroDappDev/Claude-Fun/internal/domain"
	"github.com/HeroDappDev/Claude-Fun/internal/storage"
)

func TestPricePointStore_InsertAndRange(t *testing.T) {
	store := NewPricePointStore()
	ctx := context.Background()

	points := []*domain.PricePoint{
		{LaunchID: "l1", Signature: "s3", TimestampMs: 3000, Price: 3},
		{LaunchID: "l1", Signature: "s1", TimestampMs: 1000, Price: 1},
		{LaunchID: "l1", Signature: "s2", TimestampMs: 2000, Price: 2},
		{LaunchID: "l2", Signature: "s1", TimestampMs: 1000, Price: 9},
	}
	for _, p := range points {
		if err := store.Insert(ctx, p); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	all, err := store.GetByLaunchID(ctx, "l1")
	if err != nil {
		t.Fatalf("GetByLaunchID failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(all))
	}
	for i, p := range all {
		if p.Price != float64(i+1) {
			t.Errorf("points not sorted by timestamp: index %d price %f", i, p.Price)
		}
	}

	ranged, err := store.GetByTimeRange(ctx, "l1", 2000, 3000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(ranged) != 2 {
		t.Errorf("Expected 2 points in range, got %d", len(ranged))
	}
}

func TestPricePointStore_DuplicateKey(t *testing.T) {
	store := NewPricePointStore()
	ctx := context.Background()

	p := &domain.PricePoint{LaunchID: "l1", Signature: "s1", TimestampMs: 1000}
	if err := store.Insert(ctx, p); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if err := store.Insert(ctx, p); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
