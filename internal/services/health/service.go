package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

const defaultCheckTimeout = 2 * time.Second

// Check probes one dependency.
type Check func(ctx context.Context) error

// Service encapsulates health-related checks.
type Service struct {
	mu      sync.RWMutex
	checks  map[string]Check
	timeout time.Duration
}

// NewService constructs a health service with no checks registered.
func NewService() *Service {
	return &Service{checks: map[string]Check{}, timeout: defaultCheckTimeout}
}

// Register adds a named dependency check.
func (s *Service) Register(name string, check Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Status runs every check concurrently and reports "ok" or the error text per dependency.
func (s *Service) Status(ctx context.Context) (map[string]string, bool) {
	s.mu.RLock()
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	checks := make([]Check, len(names))
	for i, name := range names {
		checks[i] = s.checks[name]
	}
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results := make([]error, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = check(ctx)
		}()
	}
	wg.Wait()

	status := make(map[string]string, len(names))
	healthy := true
	for i, name := range names {
		if results[i] != nil {
			status[name] = results[i].Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	return status, healthy
}
