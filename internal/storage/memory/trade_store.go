package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/HeroDappDev/Claude-Fun/internal/domain"
	"github.com/HeroDappDev/Claude-Fun/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
// Writes go through LaunchStore.CommitTrade.
type TradeStore struct {
	mu          sync.RWMutex
	bySignature map[string]*domain.TradeRecord
	byLaunch    map[string][]string // launch_id -> signatures
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		bySignature: make(map[string]*domain.TradeRecord),
		byLaunch:    make(map[string][]string),
	}
}

// GetBySignature retrieves a trade by transaction signature. Returns ErrNotFound if not exists.
func (s *TradeStore) GetBySignature(_ context.Context, signature string) (*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.bySignature[signature]
	if !exists {
		return nil, storage.ErrNotFound
	}

	tradeCopy := *t
	return &tradeCopy, nil
}

// GetByLaunchID retrieves trades for a launch ordered by slot ASC, signature ASC.
func (s *TradeStore) GetByLaunchID(_ context.Context, launchID string, limit int) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sigs := s.byLaunch[launchID]
	result := make([]*domain.TradeRecord, 0, len(sigs))
	for _, sig := range sigs {
		tradeCopy := *s.bySignature[sig]
		result = append(result, &tradeCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Slot != result[j].Slot {
			return result[i].Slot < result[j].Slot
		}
		return result[i].Signature < result[j].Signature
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// hasLocked reports whether the signature was consumed. Caller holds s.mu.
func (s *TradeStore) hasLocked(signature string) bool {
	_, exists := s.bySignature[signature]
	return exists
}

// insertLocked stores a trade. Caller holds s.mu and checked hasLocked.
func (s *TradeStore) insertLocked(t *domain.TradeRecord) {
	tradeCopy := *t
	s.bySignature[t.Signature] = &tradeCopy
	s.byLaunch[t.LaunchID] = append(s.byLaunch[t.LaunchID], t.Signature)
}

// deleteLaunchLocked removes all trades of a launch. Caller holds s.mu.
func (s *TradeStore) deleteLaunchLocked(launchID string) {
	for _, sig := range s.byLaunch[launchID] {
		delete(s.bySignature, sig)
	}
	delete(s.byLaunch, launchID)
}

var _ storage.TradeStore = (*TradeStore)(nil)
