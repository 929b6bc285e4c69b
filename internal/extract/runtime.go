package extract

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"resume-insights/internal/shared/telemetry"
)

const (
	defaultMaxConcurrent = 4
	defaultSniffLimit    = 64 * 1024
)

// RuntimeOptions configures the process-wide parse runtime.
type RuntimeOptions struct {
	MaxConcurrent int64
	SniffLimit    uint32
}

func DefaultRuntimeOptions() RuntimeOptions {
	return RuntimeOptions{MaxConcurrent: defaultMaxConcurrent, SniffLimit: defaultSniffLimit}
}

// Runtime is the shared parsing runtime. It bounds how many documents are parsed at once.
type Runtime struct {
	slots         *semaphore.Weighted
	maxConcurrent int64
}

var (
	runtimeMu    sync.Mutex
	runtimeGroup singleflight.Group
	shared       *Runtime
)

// SharedRuntime returns the process-wide runtime, initializing it on first use. Concurrent
// callers share one in-flight initialization; a failed initialization is retried by the next caller.
func SharedRuntime(ctx context.Context, opts RuntimeOptions) (*Runtime, error) {
	if rt := loadShared(); rt != nil {
		return rt, nil
	}

	ch := runtimeGroup.DoChan("runtime", func() (any, error) {
		if rt := loadShared(); rt != nil {
			return rt, nil
		}
		rt, err := newRuntime(opts)
		if err != nil {
			telemetry.Error("extract.runtime.init_failed", map[string]any{"error": err.Error()})
			return nil, err
		}
		runtimeMu.Lock()
		shared = rt
		runtimeMu.Unlock()
		telemetry.Info("extract.runtime.ready", map[string]any{"max_concurrent": rt.maxConcurrent})
		return rt, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Runtime), nil
	}
}

func loadShared() *Runtime {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	return shared
}

// resetSharedRuntime drops the cached runtime. Tests only.
func resetSharedRuntime() {
	runtimeMu.Lock()
	shared = nil
	runtimeMu.Unlock()
}

func newRuntime(opts RuntimeOptions) (*Runtime, error) {
	if opts.MaxConcurrent <= 0 {
		return nil, fmt.Errorf("extract runtime: max concurrent must be positive, got %d", opts.MaxConcurrent)
	}
	if opts.SniffLimit > 0 {
		mimetype.SetLimit(opts.SniffLimit)
	}
	return &Runtime{
		slots:         semaphore.NewWeighted(opts.MaxConcurrent),
		maxConcurrent: opts.MaxConcurrent,
	}, nil
}

// acquire blocks for a parse slot. The returned release func is safe to call more than once.
func (r *Runtime) acquire(ctx context.Context) (func(), error) {
	if r == nil || r.slots == nil {
		return nil, errors.New("extract runtime not initialized")
	}
	if err := r.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	var once sync.Once
	return func() { once.Do(func() { r.slots.Release(1) }) }, nil
}
