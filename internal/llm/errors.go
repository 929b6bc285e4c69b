package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a provider failure.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindRateLimited Kind = "rate_limited"
	KindMalformed   Kind = "malformed_response"
	KindAuth        Kind = "auth"
	KindUnavailable Kind = "unavailable"
)

// Retryable reports whether another attempt against the same provider can succeed.
// Rate limits and auth failures do not clear within a retry budget; malformed output is
// treated as permanent for the provider that produced it.
func (k Kind) Retryable() bool {
	return k == KindTimeout || k == KindUnavailable
}

var (
	ErrEmptyResponse = errors.New("provider returned empty content")
	ErrMissingAPIKey = errors.New("provider api key is required")
)

// ProviderError is the single error type returned by Provider.Analyze.
type ProviderError struct {
	Provider string
	Kind     Kind
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s %s (status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewError wraps err as a provider failure of the given kind.
func NewError(provider string, kind Kind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// StatusError classifies an HTTP status returned by a vendor API.
func StatusError(provider string, status int, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindForStatus(status), Status: status, Err: err}
}

// KindForStatus maps vendor HTTP status codes onto the failure taxonomy.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= 500:
		return KindUnavailable
	case status >= 400:
		return KindMalformed
	default:
		return KindUnavailable
	}
}

// TransportError classifies an error that carried no vendor status.
func TransportError(provider string, err error) *ProviderError {
	if isTimeout(err) {
		return NewError(provider, KindTimeout, err)
	}
	return NewError(provider, KindUnavailable, err)
}

// KindOf extracts the failure kind from err. Errors that are not ProviderErrors are
// classified as timeouts when they carry a deadline, otherwise as unavailability.
func KindOf(err error) Kind {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	if isTimeout(err) {
		return KindTimeout
	}
	return KindUnavailable
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
