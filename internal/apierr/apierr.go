// Package apierr defines the error taxonomy surfaced by the HTTP API.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies an error and determines its HTTP status.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindAuthorization Kind = "authorization"
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindGeneration    Kind = "generation"
	KindPersistence   Kind = "persistence"
	KindRateLimit     Kind = "rate_limit"
	KindInternal      Kind = "internal"
)

var kindStatus = map[Kind]int{
	KindConfiguration: http.StatusInternalServerError,
	KindAuthorization: http.StatusUnauthorized,
	KindValidation:    http.StatusBadRequest,
	KindNotFound:      http.StatusNotFound,
	KindGeneration:    http.StatusInternalServerError,
	KindPersistence:   http.StatusInternalServerError,
	KindRateLimit:     http.StatusTooManyRequests,
	KindInternal:      http.StatusInternalServerError,
}

// Error is an API-facing error. Message is the internal description; the
// client-facing text comes from the code's message table.
type Error struct {
	Kind       Kind
	Code       Code
	Message    string
	Err        error
	Details    any
	RetryAfter time.Duration // only for KindRateLimit
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.Message(true)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	if s, ok := kindStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Is matches another *Error with the same code, so callers can write
// errors.Is(err, apierr.New(apierr.KindValidation, apierr.CodeValidation, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New creates an error of the given kind and code.
func New(kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap creates an error of the given kind and code around err.
func Wrap(kind Kind, code Code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Configuration(code Code, message string) *Error {
	return New(KindConfiguration, code, message)
}

func Unauthorized(code Code, message string) *Error {
	return New(KindAuthorization, code, message)
}

// Validation creates a 400 error carrying the individual field issues.
func Validation(message string, details any) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: message, Details: details}
}

func NotFound(code Code, message string) *Error {
	return New(KindNotFound, code, message)
}

func Generation(code Code, message string, err error) *Error {
	return Wrap(KindGeneration, code, message, err)
}

func Persistence(message string, err error) *Error {
	return Wrap(KindPersistence, CodeFetchFailed, message, err)
}

// RateLimited creates a 429 error that tells the client when to retry.
func RateLimited(retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimit, Code: CodeRateLimitExceeded, RetryAfter: retryAfter}
}

// From converts any error into an *Error. Plain errors become internal errors.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Wrap(KindInternal, CodeServerError, "", err)
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == k
}
