package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a failure so callers can decide between retry, skip and abort.
type Kind int

const (
	KindTransientNetwork Kind = iota + 1
	KindAuthRejected
	KindRequestRejected
	KindSourceBlocked
	KindParseFailure
	KindConfigMissing
)

func (k Kind) String() string {
	switch k {
	case KindTransientNetwork:
		return "transient_network"
	case KindAuthRejected:
		return "auth_rejected"
	case KindRequestRejected:
		return "request_rejected"
	case KindSourceBlocked:
		return "source_blocked"
	case KindParseFailure:
		return "parse_failure"
	case KindConfigMissing:
		return "config_missing"
	default:
		return "unknown"
	}
}

// Sentinels matched by APIError.Is on kind.
var (
	ErrTransient     = errors.New("transient network failure")
	ErrAuthRejected  = errors.New("authentication rejected")
	ErrRejected      = errors.New("request rejected")
	ErrSourceBlocked = errors.New("source blocked automated access")
	ErrParse         = errors.New("unexpected response shape")
	ErrConfigMissing = errors.New("credentials not configured")
)

const maxBodyContext = 512

// APIError is the single error type returned by drivers built on Client.
type APIError struct {
	Kind      Kind
	Source    string
	Status    int
	Retryable bool

	// Body holds a truncated copy of the raw payload for log context.
	Body string
	Err  error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Source, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match an APIError against the kind sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrTransient:
		return e.Kind == KindTransientNetwork
	case ErrAuthRejected:
		return e.Kind == KindAuthRejected
	case ErrRejected:
		return e.Kind == KindRequestRejected
	case ErrSourceBlocked:
		return e.Kind == KindSourceBlocked
	case ErrParse:
		return e.Kind == KindParseFailure
	case ErrConfigMissing:
		return e.Kind == KindConfigMissing
	}
	return false
}

// NewError builds an APIError with retryability derived from kind.
func NewError(kind Kind, source string, status int, body []byte, err error) *APIError {
	return &APIError{
		Kind:      kind,
		Source:    source,
		Status:    status,
		Retryable: kind == KindTransientNetwork,
		Body:      truncate(body),
		Err:       err,
	}
}

// ParseError reports an unexpected payload shape with raw context.
func ParseError(source string, body []byte, err error) *APIError {
	return NewError(KindParseFailure, source, 0, body, err)
}

// ConfigError reports a stage that cannot run without credentials.
func ConfigError(source string, missing string) *APIError {
	return NewError(KindConfigMissing, source, 0, nil, fmt.Errorf("missing %s", missing))
}

// BlockedError reports an access-denied page or response.
func BlockedError(source string, err error) *APIError {
	return NewError(KindSourceBlocked, source, 0, nil, err)
}

// KindOf returns the kind of an APIError in err's chain, or 0.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsRetryable reports whether err is worth another attempt. Plain network
// timeouts count as retryable; cancellation never does.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// IsTerminal reports whether err should abort the dependent stage.
func IsTerminal(err error) bool {
	kind := KindOf(err)
	return kind == KindAuthRejected || kind == KindConfigMissing
}

// classifyStatus maps an HTTP status to a kind; 0 means success.
func classifyStatus(status int) Kind {
	switch {
	case status >= 200 && status < 300:
		return 0
	case status == 401 || status == 403:
		return KindAuthRejected
	case status == 408 || status == 429 || status >= 500:
		return KindTransientNetwork
	default:
		return KindRequestRejected
	}
}

func truncate(body []byte) string {
	if len(body) > maxBodyContext {
		return string(body[:maxBodyContext]) + "..."
	}
	return string(body)
}
