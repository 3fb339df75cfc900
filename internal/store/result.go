package store

// Status is the tri-state outcome of a safe read, plus Unsupported for reads
// that need an index the store does not have.
type Status string

const (
	StatusOK          Status = "ok"
	StatusEmpty       Status = "empty"
	StatusUnavailable Status = "unavailable"
	StatusUnsupported Status = "unsupported"
)

// Reasons attached to unavailable and unsupported results.
const (
	ReasonNoDatabase   = "no-database"
	ReasonNoBlobStore  = "no-blob-store"
	ReasonReadFailed   = "read-failed"
	ReasonScanCeiling  = "scan-ceiling"
	ReasonMissingIndex = "missing-index"
	ReasonMalformed    = "malformed"
	ReasonFault        = "fault"
)

// Result carries a value read from an external store. Value is only
// meaningful when Known reports true.
type Result[T any] struct {
	Status Status
	Value  T
	Reason string
}

func OK[T any](value T) Result[T] {
	return Result[T]{Status: StatusOK, Value: value}
}

// Empty is a successful read that found nothing; value is the known-zero.
func Empty[T any](value T) Result[T] {
	return Result[T]{Status: StatusEmpty, Value: value}
}

func Unavailable[T any](reason string) Result[T] {
	return Result[T]{Status: StatusUnavailable, Reason: reason}
}

func Unsupported[T any](reason string) Result[T] {
	return Result[T]{Status: StatusUnsupported, Reason: reason}
}

// Known reports whether the read succeeded (ok or empty).
func (r Result[T]) Known() bool {
	return r.Status == StatusOK || r.Status == StatusEmpty
}

func (r Result[T]) IsUnsupported() bool {
	return r.Status == StatusUnsupported
}

// Map converts a known value, keeping the status and reason of degraded
// results.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.Known() {
		return Result[U]{Status: r.Status, Reason: r.Reason}
	}
	return Result[U]{Status: r.Status, Value: fn(r.Value)}
}
