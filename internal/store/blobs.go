package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/Arcano33sa/suitea33-sub002/pkg/logger"
	"github.com/Arcano33sa/suitea33-sub002/pkg/metrics"
	"github.com/Arcano33sa/suitea33-sub002/pkg/redis"
	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
)

// Blobs reads the JSON blobs persisted by sibling modules. A missing key is
// Empty; no client, read errors and undecodable payloads are unavailable.
type Blobs struct {
	client  *redis.Client
	logg    *logger.Logger
	metrics *metrics.DashboardMetrics
}

func NewBlobs(client *redis.Client, logg *logger.Logger, m *metrics.DashboardMetrics) *Blobs {
	return &Blobs{client: client, logg: logg, metrics: m}
}

// Raw returns the decoded JSON value of a named blob.
func (b *Blobs) Raw(ctx context.Context, name string) Result[any] {
	if b == nil || b.client == nil {
		return b.fail(ctx, name, ReasonNoBlobStore)
	}
	return b.read(ctx, name, b.client.BlobKey(name))
}

// Document returns a named blob that must be a JSON object.
func (b *Blobs) Document(ctx context.Context, name string) Result[types.Document] {
	raw := b.Raw(ctx, name)
	if !raw.Known() || raw.Status == StatusEmpty {
		return Result[types.Document]{Status: raw.Status, Reason: raw.Reason}
	}
	m, ok := types.AsMap(raw.Value)
	if !ok {
		b.degraded(ctx, name, ReasonMalformed)
		return Unavailable[types.Document](ReasonMalformed)
	}
	return OK(types.Document(m))
}

// FX returns the per-event exchange rate cached by the cash module, as
// written (number or string).
func (b *Blobs) FX(ctx context.Context, eventID int) Result[any] {
	name := "fx"
	if b == nil || b.client == nil {
		return b.fail(ctx, name, ReasonNoBlobStore)
	}
	return b.read(ctx, name, b.client.FXKey(eventID))
}

func (b *Blobs) read(ctx context.Context, name, key string) Result[any] {
	payload, err := b.client.Get(ctx, key)
	if redis.IsMiss(err) {
		return Empty[any](nil)
	}
	if errors.Is(err, redis.ErrNotInitialized) {
		return b.fail(ctx, name, ReasonNoBlobStore)
	}
	if err != nil {
		return b.fail(ctx, name, ReasonReadFailed)
	}
	payload = strings.TrimSpace(payload)
	if payload == "" || payload == "null" {
		return Empty[any](nil)
	}
	var value any
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		return b.fail(ctx, name, ReasonMalformed)
	}
	return OK(value)
}

func (b *Blobs) fail(ctx context.Context, name, reason string) Result[any] {
	b.degraded(ctx, name, reason)
	return Unavailable[any](reason)
}

func (b *Blobs) degraded(ctx context.Context, name, reason string) {
	if b == nil {
		return
	}
	b.metrics.DegradedRead("blob:"+name, reason)
	if b.logg == nil {
		return
	}
	b.logg.Warn(b.logg.WithFields(ctx, map[string]any{"blob": name, "reason": reason}), "degraded blob read")
}
