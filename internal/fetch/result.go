// Package fetch turns unreliable upstream calls into explicit results that
// carry their provenance, so callers branch on data instead of exceptions.
package fetch

// Source says where a value came from.
type Source string

const (
	// SourceNone marks a failed fetch.
	SourceNone     Source = ""
	SourceLive     Source = "live"
	SourceCached   Source = "cached"
	SourceFallback Source = "fallback"
	SourceDefault  Source = "default"
)

// Result is the outcome of a fetch. A failed result has SourceNone and a
// non-nil Err. Fallback and default results may also carry the Err that
// caused them.
type Result[T any] struct {
	Value  T
	Source Source
	Err    error
}

// Live wraps a fresh upstream value.
func Live[T any](v T) Result[T] { return Result[T]{Value: v, Source: SourceLive} }

// Cached wraps a cache hit.
func Cached[T any](v T) Result[T] { return Result[T]{Value: v, Source: SourceCached} }

// Fallback wraps a substitute value used because of cause.
func Fallback[T any](v T, cause error) Result[T] {
	return Result[T]{Value: v, Source: SourceFallback, Err: cause}
}

// Default wraps a hard coded value used because of cause.
func Default[T any](v T, cause error) Result[T] {
	return Result[T]{Value: v, Source: SourceDefault, Err: cause}
}

// Failed wraps an error with no usable value.
func Failed[T any](err error) Result[T] { return Result[T]{Err: err} }

// Failed reports whether no value is available.
func (r Result[T]) Failed() bool { return r.Source == SourceNone }

// Degraded reports whether the value is a substitute.
func (r Result[T]) Degraded() bool {
	return r.Source == SourceFallback || r.Source == SourceDefault
}

// OrElse returns r unless it failed, in which case v is used with source src.
func (r Result[T]) OrElse(v T, src Source) Result[T] {
	if !r.Failed() {
		return r
	}
	return Result[T]{Value: v, Source: src, Err: r.Err}
}

// Map converts a successful value, keeping source and error.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.Failed() {
		return Failed[U](r.Err)
	}
	return Result[U]{Value: fn(r.Value), Source: r.Source, Err: r.Err}
}
