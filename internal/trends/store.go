package trends

import (
	"context"
	"sync"

	"resume-insights/internal/contract"
)

// DefaultWindow is the number of points returned when the caller gives no limit.
const DefaultWindow = 50

// Store is the append-only trend history.
type Store interface {
	Append(ctx context.Context, userID string, point contract.TrendPoint) error
	// Recent returns up to limit of the user's latest points, oldest first.
	Recent(ctx context.Context, userID string, limit int) ([]contract.TrendPoint, error)
}

// MemoryStore keeps a bounded history per user and is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	byUser   map[string][]contract.TrendPoint
}

// NewMemoryStore keeps at most capacity points per user.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 10 * DefaultWindow
	}
	return &MemoryStore{capacity: capacity, byUser: make(map[string][]contract.TrendPoint)}
}

func (s *MemoryStore) Append(ctx context.Context, userID string, point contract.TrendPoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	points := append(s.byUser[userID], point)
	if len(points) > s.capacity {
		points = append([]contract.TrendPoint(nil), points[len(points)-s.capacity:]...)
	}
	s.byUser[userID] = points
	return nil
}

func (s *MemoryStore) Recent(ctx context.Context, userID string, limit int) ([]contract.TrendPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)
	s.mu.RLock()
	defer s.mu.RUnlock()
	points := s.byUser[userID]
	if len(points) > limit {
		points = points[len(points)-limit:]
	}
	return append([]contract.TrendPoint{}, points...), nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultWindow
	}
	return min(limit, 500)
}

var _ Store = (*MemoryStore)(nil)
