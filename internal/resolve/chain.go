// Package resolve evaluates ordered fallback chains for values that live in
// several possible schema locations, reporting which location won.
package resolve

// SourceNone is reported when no candidate produced a valid value.
const SourceNone = "none"

// Candidate is one schema location. Extract returns false when the location
// is absent or holds an invalid value.
type Candidate[In, T any] struct {
	Source  string
	Extract func(In) (T, bool)
}

// Chain is evaluated in order; the first valid hit wins.
type Chain[In, T any] []Candidate[In, T]

type Resolution[T any] struct {
	Value  T
	Source string
	OK     bool
}

func (c Chain[In, T]) Resolve(in In) Resolution[T] {
	for _, candidate := range c {
		if value, ok := extract(candidate, in); ok {
			return Resolution[T]{Value: value, Source: candidate.Source, OK: true}
		}
	}
	return Resolution[T]{Source: SourceNone}
}

func extract[In, T any](c Candidate[In, T], in In) (value T, ok bool) {
	if c.Extract == nil {
		return value, false
	}
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value, ok = zero, false
		}
	}()
	return c.Extract(in)
}
