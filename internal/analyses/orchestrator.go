package analyses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-insights/internal/contract"
	"resume-insights/internal/extract"
	"resume-insights/internal/llm"
	"resume-insights/internal/shared/metrics"
	"resume-insights/internal/shared/telemetry"
)

// RetryPolicy bounds the attempts made against a single provider.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Timeout     time.Duration
	MinTimeout  time.Duration
}

// DefaultRetryPolicy returns the policy used when configuration leaves a field unset.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Timeout:     60 * time.Second,
		MinTimeout:  10 * time.Second,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.Timeout <= 0 {
		p.Timeout = def.Timeout
	}
	if p.MinTimeout <= 0 {
		p.MinTimeout = def.MinTimeout
	}
	if p.MinTimeout > p.Timeout {
		p.MinTimeout = p.Timeout
	}
	return p
}

// AttemptTimeout is the ceiling for the given 1-based attempt: timeout/attempt, floored at MinTimeout.
func (p RetryPolicy) AttemptTimeout(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return max(p.Timeout/time.Duration(attempt), p.MinTimeout)
}

// Backoff is the wait before the attempt following the given 1-based attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BaseDelay << (attempt - 1)
}

// ProviderAttempt describes one call to one provider. It is logged and then dropped.
type ProviderAttempt struct {
	ProviderID    string        `json:"providerId"`
	StartedAt     time.Time     `json:"startedAt"`
	Timeout       time.Duration `json:"timeout"`
	AttemptNumber int           `json:"attemptNumber"`
}

// Outcome is the orchestrator's view of a provider call.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeRetryable
	OutcomeFatal
)

// Classify tags a provider error. Retry and failover decisions depend only on the tag.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	if llm.KindOf(err).Retryable() {
		return OutcomeRetryable
	}
	return OutcomeFatal
}

// Run is the raw outcome of an orchestration, before reconciliation. On failure only
// Attempts is set.
type Run struct {
	Partial  contract.Partial
	Provider string
	Attempts int
}

// Orchestrator calls providers in order with per-provider retries and failover.
type Orchestrator struct {
	providers []llm.Provider
	policy    RetryPolicy
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
}

// NewOrchestrator returns an orchestrator over providers, primary first.
func NewOrchestrator(providers []llm.Provider, policy RetryPolicy) *Orchestrator {
	return &Orchestrator{
		providers: append([]llm.Provider(nil), providers...),
		policy:    policy.withDefaults(),
		sleep:     sleepContext,
		now:       time.Now,
	}
}

// Providers returns the configured provider names in order.
func (o *Orchestrator) Providers() []string {
	names := make([]string, 0, len(o.providers))
	for _, p := range o.providers {
		names = append(names, p.Name())
	}
	return names
}

// Run analyzes doc with the first provider that succeeds. Attempts are strictly sequential.
// It fails with ErrAllProvidersExhausted, joined with each provider's last error, when every
// provider has used up its budget; a cancelled ctx ends the run with ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, doc extract.Document, jobRole string) (Run, error) {
	if len(o.providers) == 0 {
		return Run{}, ErrNoProviders
	}
	requestID := RequestIDFromContext(ctx)

	var causes []error
	total := 0
	for i, provider := range o.providers {
		if i > 0 {
			metrics.IncFailover()
			telemetry.Warn("llm.failover", map[string]any{
				"request_id": requestID,
				"from":       o.providers[i-1].Name(),
				"to":         provider.Name(),
			})
		}

		partial, attempts, err := o.runProvider(ctx, provider, doc, jobRole, requestID)
		total += attempts
		if err == nil {
			return Run{Partial: partial, Provider: provider.Name(), Attempts: total}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Run{Attempts: total}, ctxErr
		}
		causes = append(causes, err)
	}

	return Run{Attempts: total}, errors.Join(append([]error{ErrAllProvidersExhausted}, causes...)...)
}

func (o *Orchestrator) runProvider(ctx context.Context, provider llm.Provider, doc extract.Document, jobRole, requestID string) (contract.Partial, int, error) {
	var lastErr error
	for attempt := 1; attempt <= o.policy.MaxAttempts; attempt++ {
		info := ProviderAttempt{
			ProviderID:    provider.Name(),
			StartedAt:     o.now(),
			Timeout:       o.policy.AttemptTimeout(attempt),
			AttemptNumber: attempt,
		}

		partial, err := o.call(ctx, provider, doc, jobRole, info.Timeout)
		outcome := Classify(err)
		fields := map[string]any{
			"request_id":  requestID,
			"provider":    info.ProviderID,
			"attempt":     info.AttemptNumber,
			"timeout_ms":  info.Timeout.Milliseconds(),
			"duration_ms": o.now().Sub(info.StartedAt).Milliseconds(),
		}
		if outcome == OutcomeOK {
			metrics.IncProviderAttempt(info.ProviderID, "ok")
			telemetry.Info("llm.attempt.succeeded", fields)
			return partial, attempt, nil
		}

		kind := llm.KindOf(err)
		metrics.IncProviderAttempt(info.ProviderID, string(kind))
		fields["kind"] = string(kind)
		fields["error"] = err.Error()
		telemetry.Warn("llm.attempt.failed", fields)
		lastErr = err

		if ctx.Err() != nil {
			return contract.Partial{}, attempt, ctx.Err()
		}
		if outcome == OutcomeFatal || attempt == o.policy.MaxAttempts {
			return contract.Partial{}, attempt, lastErr
		}
		if err := o.sleep(ctx, o.policy.Backoff(attempt)); err != nil {
			return contract.Partial{}, attempt, err
		}
	}
	return contract.Partial{}, o.policy.MaxAttempts, lastErr
}

type reply struct {
	partial contract.Partial
	err     error
}

// call races one provider call against its timeout. A reply that arrives after the
// deadline lands in the buffered channel and is dropped.
func (o *Orchestrator) call(ctx context.Context, provider llm.Provider, doc extract.Document, jobRole string, timeout time.Duration) (contract.Partial, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan reply, 1)
	go func() {
		partial, err := provider.Analyze(attemptCtx, doc, jobRole)
		ch <- reply{partial: partial, err: err}
	}()

	select {
	case r := <-ch:
		return r.partial, r.err
	case <-attemptCtx.Done():
		if err := ctx.Err(); err != nil {
			return contract.Partial{}, err
		}
		return contract.Partial{}, llm.NewError(provider.Name(), llm.KindTimeout, fmt.Errorf("no response within %s: %w", timeout, attemptCtx.Err()))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
