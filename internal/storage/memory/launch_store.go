package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/HeroDappDev/Claude-Fun/internal/domain"
	"github.com/HeroDappDev/Claude-Fun/internal/storage"
)

// LaunchStore is an in-memory implementation of storage.LaunchStore.
type LaunchStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Launch
	byMint map[string]string // mint -> id
	trades *TradeStore
}

// NewLaunchStore creates a new in-memory launch store.
// Trades committed through CommitTrade become visible in trades.
func NewLaunchStore(trades *TradeStore) *LaunchStore {
	return &LaunchStore{
		byID:   make(map[string]*domain.Launch),
		byMint: make(map[string]string),
		trades: trades,
	}
}

// Insert adds a new launch. Returns ErrDuplicateKey if id or mint exists.
func (s *LaunchStore) Insert(_ context.Context, l *domain.Launch) error {
	if l == nil || l.ID == "" || l.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[l.ID]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.byMint[l.Mint]; exists {
		return storage.ErrDuplicateKey
	}

	launchCopy := *l
	s.byID[l.ID] = &launchCopy
	s.byMint[l.Mint] = l.ID
	return nil
}

// GetByID retrieves a launch by its ID. Returns ErrNotFound if not exists.
func (s *LaunchStore) GetByID(_ context.Context, id string) (*domain.Launch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, exists := s.byID[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyLaunch(l), nil
}

// GetByMint retrieves a launch by mint address. Returns ErrNotFound if not exists.
func (s *LaunchStore) GetByMint(_ context.Context, mint string) (*domain.Launch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byMint[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyLaunch(s.byID[id]), nil
}

// List returns launches ordered by created_at DESC, id ASC.
func (s *LaunchStore) List(_ context.Context, limit, offset int) ([]*domain.Launch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Launch, 0, len(s.byID))
	for _, l := range s.byID {
		all = append(all, copyLaunch(l))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt != all[j].CreatedAt {
			return all[i].CreatedAt > all[j].CreatedAt
		}
		return all[i].ID < all[j].ID
	})

	if offset > 0 {
		if offset >= len(all) {
			return []*domain.Launch{}, nil
		}
		all = all[offset:]
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// CommitTrade atomically records trade and replaces the launch with next
// if the stored version equals expectedVersion.
func (s *LaunchStore) CommitTrade(_ context.Context, next *domain.Launch, expectedVersion int64, trade *domain.TradeRecord) error {
	if next == nil || trade == nil || trade.Signature == "" || trade.LaunchID != next.ID {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades.mu.Lock()
	defer s.trades.mu.Unlock()

	current, exists := s.byID[next.ID]
	if !exists {
		return storage.ErrNotFound
	}
	if s.trades.hasLocked(trade.Signature) {
		return storage.ErrDuplicateKey
	}
	if current.Version != expectedVersion {
		return storage.ErrConflict
	}

	s.byID[next.ID] = copyLaunch(next)
	s.trades.insertLocked(trade)
	return nil
}

// Delete removes a launch and its trades. Returns ErrNotFound if not exists.
func (s *LaunchStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades.mu.Lock()
	defer s.trades.mu.Unlock()

	l, exists := s.byID[id]
	if !exists {
		return storage.ErrNotFound
	}
	delete(s.byMint, l.Mint)
	delete(s.byID, id)
	s.trades.deleteLaunchLocked(id)
	return nil
}

func copyLaunch(l *domain.Launch) *domain.Launch {
	launchCopy := *l
	if l.GraduatedAt != nil {
		ts := *l.GraduatedAt
		launchCopy.GraduatedAt = &ts
	}
	return &launchCopy
}

var _ storage.LaunchStore = (*LaunchStore)(nil)
