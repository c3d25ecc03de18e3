package domain

// Result carries either a stage's value or the fault that replaced it.
// A faulted result still holds the fallback value the pipeline continues with.
type Result[T any] struct {
	Value T
	Fault Fault
	Err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Degraded wraps a fallback value together with the fault that produced it.
func Degraded[T any](fallback T, fault Fault, err error) Result[T] {
	return Result[T]{Value: fallback, Fault: fault, Err: err}
}

// OK reports whether the stage succeeded without degradation.
func (r Result[T]) OK() bool {
	return r.Fault == FaultNone
}
