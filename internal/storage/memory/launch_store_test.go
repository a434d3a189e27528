package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/HeroDappDev/Claude-Fun/internal/domain"
	"github.com/HeroDappDev/Claude-Fun/internal/storage"
)

func newTestLaunch(id, mint string) *domain.Launch {
	return &domain.Launch{
		ID:                id,
		Mint:              mint,
		Creator:           "creator1",
		CreationSignature: "create-" + id,
		CurveType:         domain.CurveLinear,
		TotalSupply:       1_000_000_000,
		FundraisingTarget: 100,
		Status:            domain.StatusActive,
		Version:           1,
		CreatedAt:         1704067200000,
		UpdatedAt:         1704067200000,
	}
}

func newTestTrade(sig, launchID string, slot int64) *domain.TradeRecord {
	return &domain.TradeRecord{
		Signature:   sig,
		LaunchID:    launchID,
		Mint:        "mint1",
		Actor:       "actor1",
		Direction:   domain.DirectionBuy,
		SolAmount:   1,
		TokenAmount: 1000,
		Slot:        slot,
		BlockTime:   1704067200,
		AppliedAt:   1704067200000,
	}
}

func TestLaunchStore_InsertAndGet(t *testing.T) {
	store := NewLaunchStore(NewTradeStore())
	ctx := context.Background()

	l := newTestLaunch("l1", "mint1")
	if err := store.Insert(ctx, l); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "l1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Mint != "mint1" {
		t.Errorf("Mint mismatch: got %s, want mint1", got.Mint)
	}

	byMint, err := store.GetByMint(ctx, "mint1")
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}
	if byMint.ID != "l1" {
		t.Errorf("ID mismatch: got %s, want l1", byMint.ID)
	}

	// Mutating the returned copy must not affect the store
	got.CurrentRaised = 99
	again, _ := store.GetByID(ctx, "l1")
	if again.CurrentRaised != 0 {
		t.Error("store returned a shared pointer")
	}
}

func TestLaunchStore_DuplicateKey(t *testing.T) {
	store := NewLaunchStore(NewTradeStore())
	ctx := context.Background()

	if err := store.Insert(ctx, newTestLaunch("l1", "mint1")); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	if err := store.Insert(ctx, newTestLaunch("l1", "mint2")); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for id, got %v", err)
	}
	if err := store.Insert(ctx, newTestLaunch("l2", "mint1")); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for mint, got %v", err)
	}
}

func TestLaunchStore_NotFound(t *testing.T) {
	store := NewLaunchStore(NewTradeStore())
	ctx := context.Background()

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetByMint(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLaunchStore_List(t *testing.T) {
	store := NewLaunchStore(NewTradeStore())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		l := newTestLaunch(fmt.Sprintf("l%d", i), fmt.Sprintf("mint%d", i))
		l.CreatedAt = int64(1000 + i)
		if err := store.Insert(ctx, l); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	page, err := store.List(ctx, 2, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("Expected 2 launches, got %d", len(page))
	}
	// Newest first, offset skips l4
	if page[0].ID != "l3" || page[1].ID != "l2" {
		t.Errorf("Unexpected order: %s, %s", page[0].ID, page[1].ID)
	}

	empty, err := store.List(ctx, 10, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected empty page, got %d", len(empty))
	}
}

func TestLaunchStore_CommitTrade(t *testing.T) {
	trades := NewTradeStore()
	store := NewLaunchStore(trades)
	ctx := context.Background()

	if err := store.Insert(ctx, newTestLaunch("l1", "mint1")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	next := newTestLaunch("l1", "mint1")
	next.CurrentRaised = 1
	next.Version = 2

	if err := store.CommitTrade(ctx, next, 1, newTestTrade("sig1", "l1", 10)); err != nil {
		t.Fatalf("CommitTrade failed: %v", err)
	}

	got, _ := store.GetByID(ctx, "l1")
	if got.Version != 2 || got.CurrentRaised != 1 {
		t.Errorf("Launch not updated: version=%d raised=%f", got.Version, got.CurrentRaised)
	}
	if _, err := trades.GetBySignature(ctx, "sig1"); err != nil {
		t.Errorf("Trade not recorded: %v", err)
	}
}

func TestLaunchStore_CommitTrade_VersionConflict(t *testing.T) {
	trades := NewTradeStore()
	store := NewLaunchStore(trades)
	ctx := context.Background()

	if err := store.Insert(ctx, newTestLaunch("l1", "mint1")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	next := newTestLaunch("l1", "mint1")
	next.Version = 6
	err := store.CommitTrade(ctx, next, 5, newTestTrade("sig1", "l1", 10))
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}

	// Nothing written
	if _, err := trades.GetBySignature(ctx, "sig1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Trade should not be recorded on conflict, got %v", err)
	}
}

func TestLaunchStore_CommitTrade_ConsumedSignature(t *testing.T) {
	store := NewLaunchStore(NewTradeStore())
	ctx := context.Background()

	if err := store.Insert(ctx, newTestLaunch("l1", "mint1")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	next := newTestLaunch("l1", "mint1")
	next.Version = 2
	if err := store.CommitTrade(ctx, next, 1, newTestTrade("sig1", "l1", 10)); err != nil {
		t.Fatalf("CommitTrade failed: %v", err)
	}

	replay := newTestLaunch("l1", "mint1")
	replay.Version = 3
	err := store.CommitTrade(ctx, replay, 2, newTestTrade("sig1", "l1", 10))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}

	got, _ := store.GetByID(ctx, "l1")
	if got.Version != 2 {
		t.Errorf("Version moved on rejected replay: %d", got.Version)
	}
}

func TestLaunchStore_CommitTrade_InvalidInput(t *testing.T) {
	store := NewLaunchStore(NewTradeStore())
	ctx := context.Background()

	next := newTestLaunch("l1", "mint1")
	if err := store.CommitTrade(ctx, next, 1, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil trade, got %v", err)
	}
	if err := store.CommitTrade(ctx, next, 1, newTestTrade("sig1", "other", 1)); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for mismatched launch, got %v", err)
	}
	if err := store.CommitTrade(ctx, next, 1, newTestTrade("sig1", "l1", 1)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing launch, got %v", err)
	}
}

func TestLaunchStore_CommitTrade_ConcurrentSingleWinner(t *testing.T) {
	store := NewLaunchStore(NewTradeStore())
	ctx := context.Background()

	if err := store.Insert(ctx, newTestLaunch("l1", "mint1")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			next := newTestLaunch("l1", "mint1")
			next.Version = 2
			err := store.CommitTrade(ctx, next, 1, newTestTrade(fmt.Sprintf("sig%d", i), "l1", 1))
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("Expected exactly 1 successful commit, got %d", successes)
	}
}

func TestLaunchStore_DeleteCascadesTrades(t *testing.T) {
	trades := NewTradeStore()
	store := NewLaunchStore(trades)
	ctx := context.Background()

	if err := store.Insert(ctx, newTestLaunch("l1", "mint1")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	next := newTestLaunch("l1", "mint1")
	next.Version = 2
	if err := store.CommitTrade(ctx, next, 1, newTestTrade("sig1", "l1", 10)); err != nil {
		t.Fatalf("CommitTrade failed: %v", err)
	}

	if err := store.Delete(ctx, "l1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByMint(ctx, "mint1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if _, err := trades.GetBySignature(ctx, "sig1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected trades removed with launch, got %v", err)
	}

	// Mint is free again
	if err := store.Insert(ctx, newTestLaunch("l2", "mint1")); err != nil {
		t.Errorf("Re-insert after delete failed: %v", err)
	}
}
