package dashboard

import (
	"context"
	"strconv"
	"time"

	"github.com/Arcano33sa/suitea33-sub002/internal/alerts"
	"github.com/Arcano33sa/suitea33-sub002/internal/cash"
	"github.com/Arcano33sa/suitea33-sub002/internal/deliveries"
	"github.com/Arcano33sa/suitea33-sub002/internal/purchases"
	"github.com/Arcano33sa/suitea33-sub002/internal/reminders"
	"github.com/Arcano33sa/suitea33-sub002/internal/sales"
	"github.com/Arcano33sa/suitea33-sub002/internal/signature"
	"github.com/Arcano33sa/suitea33-sub002/internal/snapcache"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"github.com/Arcano33sa/suitea33-sub002/pkg/redis"
)

// dynamicFields are revalidated on the short TTL even when the event itself
// has not changed: money, sales and counts fed by other records.
type dynamicFields struct {
	Sales      store.Result[sales.Summary]
	Cash       store.Result[cash.Kpis]
	Deliveries store.Result[deliveries.Counts]
	Reminders  store.Result[reminders.Counts]
	Purchases  store.Result[purchases.Pending]
	Analytics  store.Result[[]alerts.AnalyticsRec]
}

func (d dynamicFields) signature() string {
	return signature.New().Value("dynamic", d).Sum()
}

// headlineFields are the part of dynamicFields a collapsed card shows.
type headlineFields struct {
	Sales store.Result[sales.Summary]
	Cash  store.Result[cash.Kpis]
}

// flightTimeout bounds a shared load once it no longer follows the caller
// that started it.
const flightTimeout = 30 * time.Second

// detach gives a shared load its own lifetime; callers joining a singleflight
// call never inherit the first caller's cancellation. Request values are kept.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
}

// eventSignature covers the event fields that dynamic reads depend on
// (fx, cash-enabled flag) plus the name shown on the card.
func eventSignature(event models.Event) string {
	return signature.New().
		Time("updatedAt", event.UpdatedAt).
		String("name", event.Name).
		Value("data", event.Data).
		Sum()
}

func (s *Service) dynamicFor(ctx context.Context, event models.Event, day string) dynamicFields {
	key := snapcache.NewKey(event.ID, eventSignature(event), s.salt(), day)
	if cached, freshness := s.dynamic.GetFresh(key); freshness == snapcache.Fresh {
		return cached
	}
	v, _, _ := s.flight.Do("dynamic:"+strconv.Itoa(event.ID)+":"+day+":"+key.Signature, func() (any, error) {
		fctx, cancel := detach(ctx)
		defer cancel()
		fields := s.loadDynamic(fctx, event, day)
		if fctx.Err() == nil {
			s.dynamic.ForgetStale(event.ID, key.Signature)
			s.dynamic.Put(key, fields)
		}
		return fields, nil
	})
	return v.(dynamicFields)
}

// headlineFor serves collapsed cards. A fresh full entry is reused; otherwise
// only sales and cash are read.
func (s *Service) headlineFor(ctx context.Context, event models.Event, day string) headlineFields {
	key := snapcache.NewKey(event.ID, eventSignature(event), s.salt(), day)
	if cached, freshness := s.dynamic.GetFresh(key); freshness == snapcache.Fresh {
		return headlineFields{Sales: cached.Sales, Cash: cached.Cash}
	}
	if cached, freshness := s.headlines.GetFresh(key); freshness == snapcache.Fresh {
		return cached
	}
	v, _, _ := s.flight.Do("headline:"+strconv.Itoa(event.ID)+":"+day+":"+key.Signature, func() (any, error) {
		fctx, cancel := detach(ctx)
		defer cancel()
		fields := s.loadHeadline(fctx, event, day)
		if fctx.Err() == nil {
			s.headlines.ForgetStale(event.ID, key.Signature)
			s.headlines.Put(key, fields)
		}
		return fields, nil
	})
	return v.(headlineFields)
}

func (s *Service) loadHeadline(ctx context.Context, event models.Event, day string) headlineFields {
	return headlineFields{
		Sales: s.salesFor(ctx, event.ID, day),
		Cash:  s.cash.Load(ctx, event, day),
	}
}

func (s *Service) loadDynamic(ctx context.Context, event models.Event, day string) dynamicFields {
	headline := s.loadHeadline(ctx, event, day)
	return dynamicFields{
		Sales:      headline.Sales,
		Cash:       headline.Cash,
		Deliveries: s.deliveries.Counts(ctx, event.ID, day),
		Reminders:  s.reminders.Pending(ctx, event.ID, day),
		Purchases:  s.pendingPurchases(ctx),
		Analytics:  alerts.ParseAnalytics(s.blobs.Raw(ctx, redis.BlobAnalyticsRecs)),
	}
}

// salesDay reads the whole day once for every event and shares it until the
// dynamic TTL runs out.
func (s *Service) salesDay(ctx context.Context, day string) store.Result[sales.Day] {
	key := snapcache.NewKey(0, "", "", day)
	if cached, freshness := s.salesDays.GetFresh(key); freshness == snapcache.Fresh {
		return cached
	}
	v, _, _ := s.flight.Do("sales-day:"+day, func() (any, error) {
		fctx, cancel := detach(ctx)
		defer cancel()
		res := s.sales.ForDay(fctx, day)
		if fctx.Err() == nil {
			s.salesDays.Put(key, res)
		}
		return res, nil
	})
	return v.(store.Result[sales.Day])
}

// salesFor picks the event out of the shared day read. Without a date index
// it falls back to a per-event read.
func (s *Service) salesFor(ctx context.Context, eventID int, day string) store.Result[sales.Summary] {
	shared := s.salesDay(ctx, day)
	switch {
	case shared.Known():
		summary := shared.Value.Event(eventID)
		if summary.Count == 0 {
			return store.Empty(summary)
		}
		return store.OK(summary)
	case shared.IsUnsupported():
		return s.sales.ForEvent(ctx, eventID, day)
	default:
		return store.Result[sales.Summary]{Status: shared.Status, Reason: shared.Reason}
	}
}

func (s *Service) pendingPurchases(ctx context.Context) store.Result[purchases.Pending] {
	doc := s.blobs.Document(ctx, redis.BlobPurchasePlan)
	if !doc.Known() {
		return store.Result[purchases.Pending]{Status: doc.Status, Reason: doc.Reason}
	}
	if doc.Status == store.StatusEmpty {
		return store.Empty(purchases.Pending{Lines: []purchases.Line{}})
	}
	return purchases.Extract(doc.Value, s.acc.ScanLimit())
}

// invalidateDynamic drops the TTL-bound entries so the next read goes to the
// stores. Static entries stay until their signature changes.
func (s *Service) invalidateDynamic(eventIDs []int) {
	for _, id := range eventIDs {
		s.dynamic.Forget(id)
		s.headlines.Forget(id)
	}
	s.salesDays.Forget(0)
}
