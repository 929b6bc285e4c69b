package trends

import (
	"sync"

	"resume-insights/internal/contract"
)

// Registry holds live trend subscriptions per user. Subscribers that fall behind
// lose points rather than block publishers.
type Registry struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string]map[uint64]chan contract.TrendPoint
}

func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]map[uint64]chan contract.TrendPoint)}
}

// Subscribe registers a listener for userID. The returned disposer unregisters it and
// closes the channel; calling it more than once is safe.
func (r *Registry) Subscribe(userID string, buffer int) (<-chan contract.TrendPoint, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan contract.TrendPoint, buffer)

	r.mu.Lock()
	r.nextID++
	id := r.nextID
	if r.subs[userID] == nil {
		r.subs[userID] = make(map[uint64]chan contract.TrendPoint)
	}
	r.subs[userID][id] = ch
	r.mu.Unlock()

	var once sync.Once
	dispose := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.subs[userID], id)
			if len(r.subs[userID]) == 0 {
				delete(r.subs, userID)
			}
			close(ch)
		})
	}
	return ch, dispose
}

// Publish delivers point to every current subscriber of userID and reports how many
// received it.
func (r *Registry) Publish(userID string, point contract.TrendPoint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delivered := 0
	for _, ch := range r.subs[userID] {
		select {
		case ch <- point:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the number of live subscriptions for userID.
func (r *Registry) Subscribers(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[userID])
}
