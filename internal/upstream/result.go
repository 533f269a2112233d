package upstream

// Result is the tagged outcome of one upstream fetch. Clients never
// panic across their boundary: every call settles to either a value or
// an error, and the caller chooses the degraded branch explicitly.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail wraps a fetch error.
func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// OK reports whether the fetch succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}
