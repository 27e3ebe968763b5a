package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorKind classifies a fetch failure for downstream reporting.
type ErrorKind string

const (
	KindSkipped  ErrorKind = "skipped"
	KindNotFound ErrorKind = "not_found"
	KindClient   ErrorKind = "client"
	KindServer   ErrorKind = "server"
	KindBlocked  ErrorKind = "blocked"
	KindTimeout  ErrorKind = "timeout"
	KindNetwork  ErrorKind = "network"
)

// Error is the typed failure returned by the fetch service. Tier names the
// strategy that produced the failure, StatusCode is zero when no HTTP
// response was received.
type Error struct {
	Tier       string
	StatusCode int
	Kind       ErrorKind
	Message    string
	cause      error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: %s (status %d)", e.Tier, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s", e.Tier, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Terminal reports whether the failure should stop tier escalation.
func (e *Error) Terminal() bool {
	return e.Kind == KindNotFound || e.Kind == KindSkipped
}

func newStatusError(tier string, status int) *Error {
	kind := KindClient
	switch {
	case status == 404:
		kind = KindNotFound
	case status == 403 || status == 429:
		kind = KindBlocked
	case status >= 500:
		kind = KindServer
	}
	return &Error{
		Tier:       tier,
		StatusCode: status,
		Kind:       kind,
		Message:    "unexpected status",
	}
}

func wrapTierError(tier string, err error) *Error {
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	kind := KindNetwork
	if isTimeout(err) {
		kind = KindTimeout
	}
	return &Error{
		Tier:    tier,
		Kind:    kind,
		Message: err.Error(),
		cause:   err,
	}
}

// isTimeout detects timeout-shaped failures, which gate the final tier.
func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded")
}
