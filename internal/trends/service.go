package trends

import (
	"context"
	"fmt"

	"resume-insights/internal/contract"
)

// Publisher fans a stored point out to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, userID string, point contract.TrendPoint) error
}

// Service stores trend points and pushes them to subscribers. Without a Relay, points
// go straight to the local Registry.
type Service struct {
	Store    Store
	Registry *Registry
	Relay    Publisher
}

// Record appends point to the history and then publishes it.
func (s *Service) Record(ctx context.Context, userID string, point contract.TrendPoint) error {
	if err := s.Store.Append(ctx, userID, point); err != nil {
		return fmt.Errorf("append trend point: %w", err)
	}
	if s.Relay != nil {
		return s.Relay.Publish(ctx, userID, point)
	}
	if s.Registry != nil {
		s.Registry.Publish(userID, point)
	}
	return nil
}

// Recent returns the user's rolling window, oldest first.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]contract.TrendPoint, error) {
	return s.Store.Recent(ctx, userID, limit)
}
