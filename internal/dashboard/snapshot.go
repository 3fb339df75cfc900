package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Arcano33sa/suitea33-sub002/internal/alerts"
	"github.com/Arcano33sa/suitea33-sub002/internal/cash"
	"github.com/Arcano33sa/suitea33-sub002/internal/checklist"
	"github.com/Arcano33sa/suitea33-sub002/internal/sales"
	"github.com/Arcano33sa/suitea33-sub002/internal/signature"
	"github.com/Arcano33sa/suitea33-sub002/internal/snapcache"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"github.com/shopspring/decimal"
)

// Snapshot build outcomes, used as metric labels.
const (
	BuildBuilt  = "built"
	BuildCached = "cached"
	BuildFault  = "fault"
)

// Section is a value that may not be available. Value is null whenever
// Available is false, so a missing figure never renders as zero.
type Section[T any] struct {
	Available bool   `json:"available"`
	Value     *T     `json:"value"`
	Reason    string `json:"reason,omitempty"`
}

// SectionOf converts a read result, mapping degraded reads to an unavailable
// section.
func SectionOf[T any](r store.Result[T]) Section[T] {
	if !r.Known() {
		reason := r.Reason
		if reason == "" {
			reason = alerts.ReasonNotLoaded
		}
		return Section[T]{Reason: reason}
	}
	value := r.Value
	return Section[T]{Available: true, Value: &value}
}

// Snapshot is the per-event, per-day aggregate shown on a dashboard card.
// Callers always receive a copy.
type Snapshot struct {
	EventID            int                          `json:"eventId"`
	EventName          string                       `json:"eventName"`
	DayKey             string                       `json:"dayKey"`
	ChecklistDayKey    string                       `json:"checklistDayKey,omitempty"`
	ChecklistDaySource string                       `json:"checklistDaySource,omitempty"`
	PendingAlerts      int                          `json:"pendingAlerts"`
	Cash               Section[cash.Kpis]           `json:"cash"`
	SalesToday         Section[decimal.Decimal]     `json:"salesToday"`
	TopProducts        Section[[]sales.ProductQty]  `json:"topProducts"`
	Checklist          Section[checklist.Breakdown] `json:"checklist"`
	HasChecklistItems  bool                         `json:"hasChecklistItems"`
	Alerts             []alerts.Alert               `json:"alerts"`
	Unavailable        []alerts.Unavailable         `json:"unavailable"`
	Recommendations    []alerts.Recommendation      `json:"recommendations"`
	Signature          string                       `json:"signature"`
	BuiltAt            time.Time                    `json:"builtAt"`
	Fault              string                       `json:"fault,omitempty"`
}

// Clone deep-copies every slice and pointer of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Cash.Value != nil {
		v := *s.Cash.Value
		out.Cash.Value = &v
	}
	if s.SalesToday.Value != nil {
		v := *s.SalesToday.Value
		out.SalesToday.Value = &v
	}
	if s.TopProducts.Value != nil {
		v := append([]sales.ProductQty{}, (*s.TopProducts.Value)...)
		out.TopProducts.Value = &v
	}
	if s.Checklist.Value != nil {
		v := s.Checklist.Value.Clone()
		out.Checklist.Value = &v
	}
	out.Alerts = make([]alerts.Alert, len(s.Alerts))
	for i, a := range s.Alerts {
		if a.CTA != nil {
			cta := *a.CTA
			a.CTA = &cta
		}
		if a.Phases != nil {
			a.Phases = checklist.Breakdown{Phases: a.Phases}.Clone().Phases
		}
		out.Alerts[i] = a
	}
	out.Unavailable = append([]alerts.Unavailable{}, s.Unavailable...)
	out.Recommendations = append([]alerts.Recommendation{}, s.Recommendations...)
	return out
}

// GetSnapshot returns today's snapshot of an event, building it only when the
// checklist signature or the revalidated dynamic fields changed.
func (s *Service) GetSnapshot(ctx context.Context, eventID int) (Snapshot, error) {
	event, err := eventOrError(s.loadEvent(ctx, eventID), eventID)
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshotFor(ctx, event, s.Today()).Clone(), nil
}

// snapshotFor joins concurrent requests for the same event and day.
func (s *Service) snapshotFor(ctx context.Context, event models.Event, day string) Snapshot {
	key := "snapshot:" + strconv.Itoa(event.ID) + ":" + day
	v, _, _ := s.flight.Do(key, func() (any, error) {
		fctx, cancel := detach(ctx)
		defer cancel()
		return s.buildSnapshot(fctx, event, day), nil
	})
	return v.(Snapshot)
}

func (s *Service) buildSnapshot(ctx context.Context, event models.Event, day string) (snap Snapshot) {
	started := time.Now()
	outcome := BuildBuilt
	defer func() {
		if r := recover(); r != nil {
			outcome = BuildFault
			logCtx := s.logg.WithDayKey(s.logg.WithEventID(ctx, event.ID), day)
			s.logg.Error(logCtx, "snapshot build failed", fmt.Errorf("panic: %v", r))
			snap = s.faultSnapshot(event, day, fmt.Sprint(r))
		}
		s.metrics.ObserveSnapshotBuild(outcome, time.Since(started))
	}()

	checklistRes, checklistSig := s.checklistFor(event, day)
	dynamic := s.dynamicFor(ctx, event, day)
	sig := signature.Combine(eventSignature(event), checklistSig, dynamic.signature())

	key := snapcache.NewKey(event.ID, sig, s.salt(), day)
	if cached, ok := s.snapshots.Get(key); ok {
		outcome = BuildCached
		return cached
	}
	snap = s.assemble(event, day, checklistRes, dynamic)
	snap.Signature = sig
	if ctx.Err() == nil {
		s.snapshots.ForgetStale(event.ID, sig)
		s.snapshots.Put(key, snap)
	}
	return snap
}

// checklistFor is the static tier: trusted until the checklist signature
// changes.
func (s *Service) checklistFor(event models.Event, day string) (store.Result[checklist.Breakdown], string) {
	sig := checklist.Signature(event, s.loc)
	key := snapcache.NewKey(event.ID, sig, s.salt(), day)
	if cached, ok := s.checklists.Get(key); ok {
		return cached, sig
	}
	res := checklist.Compute(event, day, s.loc, s.cfg.PendingTextLimit)
	s.checklists.ForgetStale(event.ID, sig)
	s.checklists.Put(key, res)
	return res, sig
}

func (s *Service) evaluate(event models.Event, day string, checklistRes store.Result[checklist.Breakdown], dynamic dynamicFields) alerts.Result {
	return s.engine.Evaluate(alerts.Input{
		Event:      &event,
		DayKey:     day,
		Today:      s.Today(),
		Cash:       dynamic.Cash,
		Checklist:  checklistRes,
		Deliveries: dynamic.Deliveries,
		Reminders:  dynamic.Reminders,
		Purchases:  dynamic.Purchases,
	})
}

func (s *Service) assemble(event models.Event, day string, checklistRes store.Result[checklist.Breakdown], dynamic dynamicFields) Snapshot {
	evaluated := s.evaluate(event, day, checklistRes, dynamic)
	var analytics []alerts.AnalyticsRec
	if dynamic.Analytics.Known() {
		analytics = dynamic.Analytics.Value
	}

	snap := Snapshot{
		EventID:       event.ID,
		EventName:     event.Name,
		DayKey:        day,
		PendingAlerts: len(evaluated.Alerts),
		Cash:          SectionOf(dynamic.Cash),
		SalesToday: SectionOf(store.Map(dynamic.Sales, func(v sales.Summary) decimal.Decimal {
			return v.Total
		})),
		TopProducts: SectionOf(store.Map(dynamic.Sales, func(v sales.Summary) []sales.ProductQty {
			return append([]sales.ProductQty{}, v.TopProducts...)
		})),
		Checklist:       SectionOf(store.Map(checklistRes, checklist.Breakdown.Clone)),
		Alerts:          evaluated.Alerts,
		Unavailable:     evaluated.Unavailable,
		Recommendations: alerts.Recommend(evaluated.Alerts, analytics, s.cfg.RecommendLimit),
		BuiltAt:         s.now(),
	}
	if checklistRes.Known() {
		b := checklistRes.Value
		snap.ChecklistDayKey = b.DayKey
		snap.ChecklistDaySource = b.DaySource
		snap.HasChecklistItems = b.HasItems
		if snap.ChecklistDayKey == "" {
			snap.ChecklistDayKey = day
			snap.ChecklistDaySource = checklist.DaySourceDefault
		}
	}
	return snap
}

// faultSnapshot isolates a corrupt event: its card shows every section as
// unavailable and the rest of the dashboard is unaffected.
func (s *Service) faultSnapshot(event models.Event, day, fault string) Snapshot {
	return Snapshot{
		EventID:         event.ID,
		EventName:       event.Name,
		DayKey:          day,
		Cash:            Section[cash.Kpis]{Reason: store.ReasonFault},
		SalesToday:      Section[decimal.Decimal]{Reason: store.ReasonFault},
		TopProducts:     Section[[]sales.ProductQty]{Reason: store.ReasonFault},
		Checklist:       Section[checklist.Breakdown]{Reason: store.ReasonFault},
		Alerts:          []alerts.Alert{},
		Unavailable:     s.engine.Unavailable(store.ReasonFault).Unavailable,
		Recommendations: []alerts.Recommendation{},
		BuiltAt:         s.now(),
		Fault:           fault,
	}
}
