package dashboard

import (
	"context"
	"errors"

	"github.com/Arcano33sa/suitea33-sub002/internal/cash"
	"github.com/Arcano33sa/suitea33-sub002/internal/sales"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"github.com/Arcano33sa/suitea33-sub002/pkg/enums"
	pkgerrors "github.com/Arcano33sa/suitea33-sub002/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ErrSuperseded is returned by Expand when the card was toggled while its
// snapshot was being built; the result is discarded.
var ErrSuperseded = errors.New("card toggled during expansion")

// Card is the headline of one active event. Only expanded cards carry a full
// snapshot; collapsed cards never trigger checklist or alert work.
type Card struct {
	EventID    int                      `json:"eventId"`
	EventName  string                   `json:"eventName"`
	GroupName  string                   `json:"groupName,omitempty"`
	State      enums.CardState          `json:"state"`
	Focused    bool                     `json:"focused"`
	DayKey     string                   `json:"dayKey"`
	SalesToday Section[decimal.Decimal] `json:"salesToday"`
	Cash       Section[cash.Kpis]       `json:"cash"`
	Snapshot   *Snapshot                `json:"snapshot,omitempty"`
}

// Expand builds the full snapshot of a card. If the card is collapsed or
// expanded again before the build finishes, the work is abandoned with
// ErrSuperseded and the state is left to the newer toggle.
func (s *Service) Expand(ctx context.Context, eventID int) (Snapshot, error) {
	token := s.state.beginExpand(eventID)
	snap, err := s.GetSnapshot(ctx, eventID)
	if err != nil {
		s.state.abortExpand(eventID, token)
		return Snapshot{}, err
	}
	if !s.state.finishExpand(eventID, token) {
		return Snapshot{}, ErrSuperseded
	}
	return snap, nil
}

// Collapse hides a card. Its cache entries are kept so expanding again is
// cheap.
func (s *Service) Collapse(eventID int) enums.CardState {
	s.state.collapse(eventID)
	return enums.CardCollapsed
}

// fanOut runs fn over events with at most workers in flight. Results keep the
// order of events.
func fanOut[R any](ctx context.Context, workers int, events []models.Event, fn func(context.Context, models.Event) R) ([]R, error) {
	results := make([]R, len(events))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, event := range events {
		i, event := i, event
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = fn(gctx, event)
			return nil
		})
	}
	return results, g.Wait()
}

// queue caps the working set handed to the workers.
func (s *Service) queue(ctx context.Context, events []models.Event) []models.Event {
	if s.cfg.QueueCap <= 0 || len(events) <= s.cfg.QueueCap {
		return events
	}
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"queued":  s.cfg.QueueCap,
		"dropped": len(events) - s.cfg.QueueCap,
	}), "snapshot queue full")
	return events[:s.cfg.QueueCap]
}

// BuildSnapshots builds today's snapshot of every event with bounded
// concurrency. A fault in one event only affects its own snapshot.
func (s *Service) BuildSnapshots(ctx context.Context, events []models.Event) ([]Snapshot, error) {
	day := s.Today()
	built, err := fanOut(ctx, s.cfg.Workers, s.queue(ctx, events), func(ctx context.Context, event models.Event) Snapshot {
		return s.snapshotFor(ctx, event, day).Clone()
	})
	return built, err
}

// Cards returns the headline of every active event, with full snapshots for
// expanded cards.
func (s *Service) Cards(ctx context.Context) (store.Result[[]Card], error) {
	active := s.GetActiveEvents(ctx)
	if !active.Known() {
		return store.Result[[]Card]{Status: active.Status, Reason: active.Reason}, nil
	}
	day := s.Today()
	focus, hasFocus := s.state.Focus()
	cards, err := fanOut(ctx, s.cfg.Workers, s.queue(ctx, active.Value), func(ctx context.Context, event models.Event) Card {
		return s.card(ctx, event, day, hasFocus && focus == event.ID)
	})
	if err != nil {
		return store.Result[[]Card]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build cards")
	}
	if len(cards) == 0 {
		return store.Empty([]Card{}), nil
	}
	return store.OK(cards), nil
}

func (s *Service) card(ctx context.Context, event models.Event, day string, focused bool) (c Card) {
	c = Card{
		EventID:   event.ID,
		EventName: event.Name,
		GroupName: event.GroupName,
		State:     s.state.CardState(event.ID),
		Focused:   focused,
		DayKey:    day,
	}
	defer func() {
		if r := recover(); r != nil {
			s.logg.Warn(s.logg.WithEventID(ctx, event.ID), "card headline failed")
			c.SalesToday = Section[decimal.Decimal]{Reason: store.ReasonFault}
			c.Cash = Section[cash.Kpis]{Reason: store.ReasonFault}
		}
	}()
	if c.State == enums.CardExpanded {
		snap := s.snapshotFor(ctx, event, day).Clone()
		c.Snapshot = &snap
		c.SalesToday = snap.SalesToday
		c.Cash = snap.Cash
		return c
	}
	headline := s.headlineFor(ctx, event, day)
	c.SalesToday = SectionOf(store.Map(headline.Sales, func(v sales.Summary) decimal.Decimal { return v.Total }))
	c.Cash = SectionOf(headline.Cash)
	return c
}
