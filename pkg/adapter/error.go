package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FailureKind groups provider failures for logging. Every kind leads to
// the same local fallback; callers only record it.
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureTimeout     FailureKind = "timeout"
	FailureCanceled    FailureKind = "canceled"
	FailureRateLimited FailureKind = "rate_limited"
	FailureAuth        FailureKind = "auth"
	FailureUpstream    FailureKind = "upstream"
	FailureRequest     FailureKind = "request"
	FailureOther       FailureKind = "other"
)

// AdapterError carries the provider and HTTP status of a failed call.
type AdapterError struct {
	Provider string
	Status   int
	Err      error
}

func (e *AdapterError) Error() string {
	if e == nil {
		return "adapter error"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: status %d", e.Provider, e.Status)
}

func (e *AdapterError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func providerError(provider string, status int, err error) *AdapterError {
	return &AdapterError{
		Provider: provider,
		Status:   status,
		Err:      fmt.Errorf("%s API error: %w", provider, err),
	}
}

// Classify maps an adapter error to a FailureKind.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	if errors.Is(err, context.Canceled) {
		return FailureCanceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		switch s := adapterErr.Status; {
		case s == 429:
			return FailureRateLimited
		case s == 401 || s == 403:
			return FailureAuth
		case s >= 500 && s <= 599:
			return FailureUpstream
		case s >= 400 && s <= 499:
			return FailureRequest
		}
	}
	return FailureOther
}

// IsTransient reports whether a later identical call could succeed.
func IsTransient(err error) bool {
	switch Classify(err) {
	case FailureTimeout, FailureRateLimited, FailureUpstream:
		return true
	default:
		return false
	}
}
