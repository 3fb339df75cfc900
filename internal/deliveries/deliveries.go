// Package deliveries counts open customer orders that are overdue or due
// today.
package deliveries

import (
	"context"
	"time"

	"github.com/Arcano33sa/suitea33-sub002/internal/daykey"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"github.com/Arcano33sa/suitea33-sub002/pkg/enums"
)

// DefaultLookback bounds how far back overdue orders are searched.
const DefaultLookback = 30 * 24 * time.Hour

type Counts struct {
	Overdue  int `json:"overdue"`
	DueToday int `json:"dueToday"`
}

type Reader struct {
	acc      *store.Accessor
	lookback time.Duration
	loc      *time.Location
}

func NewReader(acc *store.Accessor, lookback time.Duration, loc *time.Location) *Reader {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Reader{acc: acc, lookback: lookback, loc: loc}
}

// Counts reads the event's orders and classifies those delivered from the
// lookback start onward. Stored dates are free-form, so the lookback is
// applied after normalizing rather than as a lexical bound in the query.
func (r *Reader) Counts(ctx context.Context, eventID int, today string) store.Result[Counts] {
	start, ok := daykey.Start(today, r.loc)
	if !ok {
		return store.Unavailable[Counts](store.ReasonMalformed)
	}
	rows := store.ListByIndex[models.Order](ctx, r.acc, models.IndexOrdersByDelivery, store.Range{
		Column:  "delivery_date",
		Filter:  map[string]any{"event_id": eventID},
		OrderBy: "id",
	})
	if !rows.Known() {
		return store.Result[Counts]{Status: store.StatusUnavailable, Reason: rows.Reason}
	}
	since := daykey.FromTime(start.Add(-r.lookback), r.loc)
	return Classify(within(rows.Value, since, r.loc), today, r.loc)
}

// within drops orders dated before since. Unreadable dates are kept so
// Classify can judge them.
func within(orders []models.Order, since string, loc *time.Location) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		if day, ok := daykey.Normalize(order.DeliveryDate, loc); ok && daykey.Before(day, since) {
			continue
		}
		out = append(out, order)
	}
	return out
}

// Classify counts open orders by delivery day. One order with an unknown
// status or an unreadable date makes the whole count unavailable.
func Classify(orders []models.Order, today string, loc *time.Location) store.Result[Counts] {
	var out Counts
	for _, order := range orders {
		status, ok := enums.ParseDeliveryStatus(order.Status)
		if !ok {
			return store.Unavailable[Counts](store.ReasonMalformed)
		}
		if !status.Open() {
			continue
		}
		day, ok := daykey.Normalize(order.DeliveryDate, loc)
		if !ok {
			return store.Unavailable[Counts](store.ReasonMalformed)
		}
		switch {
		case day == today:
			out.DueToday++
		case daykey.Before(day, today):
			out.Overdue++
		}
	}
	if out.Overdue == 0 && out.DueToday == 0 {
		return store.Empty(out)
	}
	return store.OK(out)
}
