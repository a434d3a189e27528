package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/HeroDappDev/Claude-Fun/internal/domain"
	"github.com/HeroDappDev/Claude-Fun/internal/storage"
)

// PricePointStore is an in-memory implementation of storage.PricePointStore.
type PricePointStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.PricePoint // launch_id -> signature -> point
}

// NewPricePointStore creates a new in-memory price point store.
func NewPricePointStore() *PricePointStore {
	return &PricePointStore{
		data: make(map[string]map[string]*domain.PricePoint),
	}
}

// Insert adds a point. Returns ErrDuplicateKey if (launch_id, signature) exists.
func (s *PricePointStore) Insert(_ context.Context, p *domain.PricePoint) error {
	if p == nil || p.LaunchID == "" || p.Signature == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	points, ok := s.data[p.LaunchID]
	if !ok {
		points = make(map[string]*domain.PricePoint)
		s.data[p.LaunchID] = points
	}
	if _, exists := points[p.Signature]; exists {
		return storage.ErrDuplicateKey
	}

	pointCopy := *p
	points[p.Signature] = &pointCopy
	return nil
}

// GetByLaunchID retrieves all points for a launch, ordered by timestamp ASC.
func (s *PricePointStore) GetByLaunchID(_ context.Context, launchID string) ([]*domain.PricePoint, error) {
	return s.filter(launchID, func(*domain.PricePoint) bool { return true }), nil
}

// GetByTimeRange retrieves points for a launch within [start, end] (inclusive).
func (s *PricePointStore) GetByTimeRange(_ context.Context, launchID string, start, end int64) ([]*domain.PricePoint, error) {
	return s.filter(launchID, func(p *domain.PricePoint) bool {
		return p.TimestampMs >= start && p.TimestampMs <= end
	}), nil
}

func (s *PricePointStore) filter(launchID string, keep func(*domain.PricePoint) bool) []*domain.PricePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.PricePoint, 0, len(s.data[launchID]))
	for _, p := range s.data[launchID] {
		if keep(p) {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TimestampMs != result[j].TimestampMs {
			return result[i].TimestampMs < result[j].TimestampMs
		}
		return result[i].Signature < result[j].Signature
	})
	return result
}

var _ storage.PricePointStore = (*PricePointStore)(nil)
