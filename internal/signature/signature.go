// Package signature derives content signatures used as cache-key components.
// A signature hashes a canonical JSON encoding of named fields, so edits that
// do not bump a timestamp still change it.
package signature

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// UnsignedPrefix marks the signature of fields that could not be encoded.
// Each such signature is unique, so it never matches a cached entry.
const UnsignedPrefix = "unsigned-"

// Builder collects named fingerprint fields. The zero value is not usable;
// call New.
type Builder struct {
	fields map[string]any
}

func New() *Builder {
	return &Builder{fields: map[string]any{}}
}

// Time records t in unix milliseconds; the zero time is recorded as 0.
func (b *Builder) Time(name string, t time.Time) *Builder {
	if t.IsZero() {
		b.fields[name] = int64(0)
		return b
	}
	b.fields[name] = t.UnixMilli()
	return b
}

func (b *Builder) Int(name string, n int) *Builder {
	b.fields[name] = n
	return b
}

func (b *Builder) String(name, s string) *Builder {
	b.fields[name] = s
	return b
}

// Counts records a map of per-key counts, e.g. checked ids per day.
func (b *Builder) Counts(name string, counts map[string]int) *Builder {
	copied := make(map[string]int, len(counts))
	for k, v := range counts {
		copied[k] = v
	}
	b.fields[name] = copied
	return b
}

// Value records any JSON-encodable value, such as a computed result whose
// content should drive invalidation.
func (b *Builder) Value(name string, v any) *Builder {
	b.fields[name] = v
	return b
}

// Sum hashes the canonical encoding. encoding/json sorts map keys, so field
// insertion order does not matter. Fields that cannot be encoded get a fresh
// UnsignedPrefix value on every call.
func (b *Builder) Sum() string {
	raw, err := json.Marshal(b.fields)
	if err != nil {
		return UnsignedPrefix + uuid.NewString()
	}
	return strconv.FormatUint(xxhash.Sum64(raw), 16)
}

// Combine folds several signatures into one, order-sensitive.
func Combine(parts ...string) string {
	d := xxhash.New()
	for _, part := range parts {
		_, _ = d.WriteString(strconv.Itoa(len(part)))
		_, _ = d.WriteString(":")
		_, _ = d.WriteString(part)
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
