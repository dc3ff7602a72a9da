// Backend error classification.
//
// Information Hiding:
// - Mapping of HTTP statuses and provider messages to error kinds
// - Scrubbing of API keys from error text

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// ErrEmptyResponse is returned when a backend answers without any choices
// or text.
var ErrEmptyResponse = errors.New("no response generated")

// ErrorKind classifies a backend failure.
type ErrorKind string

const (
	KindAuth      ErrorKind = "auth"
	KindQuota     ErrorKind = "quota"
	KindRateLimit ErrorKind = "rate_limit"
	KindNetwork   ErrorKind = "network"
	KindResponse  ErrorKind = "response"
	KindUnknown   ErrorKind = "unknown"
)

// APIError is a classified backend failure. Its text never contains the
// API key used for the call.
type APIError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// newAPIError wraps err, replacing any occurrence of apiKey in its text.
func newAPIError(provider string, kind ErrorKind, err error, apiKey string) *APIError {
	if apiKey != "" && strings.Contains(err.Error(), apiKey) {
		err = &scrubbedError{err: err, key: apiKey}
	}
	return &APIError{Provider: provider, Kind: kind, Err: err}
}

type scrubbedError struct {
	err error
	key string
}

func (e *scrubbedError) Error() string {
	return strings.ReplaceAll(e.err.Error(), e.key, "[REDACTED]")
}

func (e *scrubbedError) Unwrap() error {
	return e.err
}

func kindFromStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusPaymentRequired:
		return KindQuota
	case code == http.StatusTooManyRequests:
		return KindRateLimit
	case code >= 400:
		return KindResponse
	default:
		return KindUnknown
	}
}

// kindFromMessage classifies by provider message text, for SDKs that do not
// expose a status code.
func kindFromMessage(msg string) ErrorKind {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "API_KEY") || strings.Contains(lower, "api key"):
		return KindAuth
	case strings.Contains(lower, "quota"):
		return KindQuota
	case strings.Contains(lower, "rate limit"):
		return KindRateLimit
	default:
		return KindUnknown
	}
}

func kindFromTransport(err error) ErrorKind {
	var urlErr *url.Error
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindNetwork
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		return KindNetwork
	default:
		return kindFromMessage(err.Error())
	}
}
