// Package result provides the success/failure envelope returned by every
// service method, replacing exception-style control flow with error codes
// callers branch on.
package result

import (
	"fmt"
)

// Error codes shared across services. Handlers map these to HTTP statuses.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeMissingContactID  = "MISSING_CONTACT_ID"
	CodeMissingCampaignID = "MISSING_CAMPAIGN_ID"
	CodeInvalidValue      = "INVALID_VALUE"
	CodeInvalidType       = "INVALID_TYPE"
	CodeNotFound          = "NOT_FOUND"
	CodeDuplicateEvent    = "DUPLICATE_EVENT"
	CodeDatabase          = "DATABASE_ERROR"
	CodeCache             = "CACHE_ERROR"
	CodePublish           = "PUBLISH_ERROR"
)

// Result wraps a service outcome: either data, or an error message with a code.
type Result[T any] struct {
	ok   bool
	data T
	err  string
	code string
	meta map[string]any
}

func Success[T any](data T) Result[T] {
	return Result[T]{ok: true, data: data}
}

func Failure[T any](code, message string) Result[T] {
	return Result[T]{ok: false, code: code, err: message}
}

// Failuref is Failure with fmt-style message formatting.
func Failuref[T any](code, format string, args ...any) Result[T] {
	return Failure[T](code, fmt.Sprintf(format, args...))
}

func (r Result[T]) OK() bool      { return r.ok }
func (r Result[T]) Error() string { return r.err }
func (r Result[T]) Code() string  { return r.code }

// Data returns the payload; the zero value on failure.
func (r Result[T]) Data() T { return r.data }

// Meta returns the metadata value for a key, if present.
func (r Result[T]) Meta(key string) (any, bool) {
	v, ok := r.meta[key]
	return v, ok
}

// WithMeta attaches a metadata entry and returns the updated result.
func (r Result[T]) WithMeta(key string, value any) Result[T] {
	meta := make(map[string]any, len(r.meta)+1)
	for k, v := range r.meta {
		meta[k] = v
	}
	meta[key] = value
	r.meta = meta
	return r
}

// Unwrap returns the payload or panics on a failure result. Reserved for
// call sites that have already checked OK.
func (r Result[T]) Unwrap() T {
	if !r.ok {
		panic(fmt.Sprintf("result: unwrap of failure [%s] %s", r.code, r.err))
	}
	return r.data
}

// UnwrapOr returns the payload, or fallback on failure.
func (r Result[T]) UnwrapOr(fallback T) T {
	if !r.ok {
		return fallback
	}
	return r.data
}

// Map transforms the payload of a success; failures pass through with
// their code, message, and metadata intact.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.ok {
		return Result[U]{ok: false, code: r.code, err: r.err, meta: r.meta}
	}
	return Result[U]{ok: true, data: fn(r.data), meta: r.meta}
}
