package cash

import (
	"context"

	"github.com/Arcano33sa/suitea33-sub002/internal/resolve"
	"github.com/Arcano33sa/suitea33-sub002/internal/sales"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"github.com/Arcano33sa/suitea33-sub002/pkg/redis"
	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
)

// Loader gathers the records Compute needs from the POS store and blobs.
type Loader struct {
	acc     *store.Accessor
	blobs   *store.Blobs
	sales   *sales.Reader
	base    string
	foreign string
}

func NewLoader(acc *store.Accessor, blobs *store.Blobs, salesReader *sales.Reader, base, foreign string) *Loader {
	return &Loader{acc: acc, blobs: blobs, sales: salesReader, base: base, foreign: foreign}
}

// Load reconciles the drawer of event for day.
func (l *Loader) Load(ctx context.Context, event models.Event, day string) store.Result[Kpis] {
	overrides := l.overrides(ctx)
	in := Input{
		Event:     event,
		DayKey:    day,
		Overrides: overrides,
		Base:      l.base,
		Foreign:   l.foreign,
		CachedFX: func() (any, bool) {
			res := l.blobs.FX(ctx, event.ID)
			return res.Value, res.Status == store.StatusOK
		},
		SalesRows: func(day string) store.Result[[]models.Sale] {
			return l.sales.Rows(ctx, event.ID, day)
		},
	}

	// Disabled drawers never touch the ledger.
	enabled := resolve.CashEnabled(resolve.CashEnabledInput{EventID: event.ID, Event: event.Data, Overrides: overrides})
	if !enabled.Value {
		return Compute(in)
	}

	records := store.ListByIndex[models.CashDay](ctx, l.acc, models.IndexCashByEvent, store.Range{
		Column:  "event_id",
		Eq:      event.ID,
		OrderBy: "day_key",
	})
	if !records.Known() {
		return store.Result[Kpis]{Status: store.StatusUnavailable, Reason: records.Reason}
	}
	in.Records = records.Value
	return Compute(in)
}

// The override map is optional; when it cannot be read the resolver falls
// through to its default.
func (l *Loader) overrides(ctx context.Context) types.Document {
	res := l.blobs.Document(ctx, redis.BlobCashEnabledOver)
	if res.Status != store.StatusOK {
		return nil
	}
	return res.Value
}
