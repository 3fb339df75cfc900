package dashboard

import (
	"context"
	"errors"

	"github.com/Arcano33sa/suitea33-sub002/internal/resolve"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	pkgerrors "github.com/Arcano33sa/suitea33-sub002/pkg/errors"
	"github.com/graph-gophers/dataloader/v7"
)

var errEventNotFound = errors.New("event not found")

// readError carries the reason of a degraded read through the loader.
type readError struct {
	reason string
}

func (e *readError) Error() string {
	return "event read unavailable: " + e.reason
}

type eventReader struct {
	acc *store.Accessor
}

// getEvents answers one batch of event lookups with a single IN query.
func (r *eventReader) getEvents(ctx context.Context, ids []int) []*dataloader.Result[*models.Event] {
	res := store.GetMany[models.Event](ctx, r.acc, "id", ids)
	if !res.Known() {
		return handleError[*models.Event](len(ids), &readError{reason: res.Reason})
	}
	byID := make(map[int]*models.Event, len(res.Value))
	for i := range res.Value {
		byID[res.Value[i].ID] = &res.Value[i]
	}
	results := make([]*dataloader.Result[*models.Event], 0, len(ids))
	for _, id := range ids {
		event, ok := byID[id]
		if !ok {
			results = append(results, &dataloader.Result[*models.Event]{Error: errEventNotFound})
			continue
		}
		results = append(results, &dataloader.Result[*models.Event]{Data: event})
	}
	return results
}

func handleError[V any](n int, err error) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], n)
	for i := range results {
		results[i] = &dataloader.Result[V]{Error: err}
	}
	return results
}

// newEventLoader batches concurrent event lookups from the fan-out. It keeps
// no cache of its own; the snapshot caches decide what is reused.
func newEventLoader(acc *store.Accessor) *dataloader.Loader[int, *models.Event] {
	reader := &eventReader{acc: acc}
	return dataloader.NewBatchedLoader(
		reader.getEvents,
		dataloader.WithCache[int, *models.Event](&dataloader.NoCache[int, *models.Event]{}),
	)
}

// loadEvent returns a private copy of the event so callers cannot mutate what
// other builds in the same batch see.
func (s *Service) loadEvent(ctx context.Context, eventID int) store.Result[models.Event] {
	event, err := s.events.Load(ctx, eventID)()
	if err != nil {
		var re *readError
		if errors.As(err, &re) {
			return store.Unavailable[models.Event](re.reason)
		}
		if errors.Is(err, errEventNotFound) {
			return store.Empty(models.Event{})
		}
		return store.Unavailable[models.Event](store.ReasonReadFailed)
	}
	copied := *event
	copied.Data = event.Data.Clone()
	return store.OK(copied)
}

// eventOrError maps a degraded event read to a typed error for handlers.
func eventOrError(res store.Result[models.Event], eventID int) (models.Event, error) {
	switch res.Status {
	case store.StatusOK:
		return res.Value, nil
	case store.StatusEmpty:
		return models.Event{}, pkgerrors.New(pkgerrors.CodeNotFound, "event not found").
			WithDetails(map[string]any{"eventId": eventID})
	default:
		return models.Event{}, pkgerrors.New(pkgerrors.CodeUnavailable, "event not available").
			WithDetails(map[string]any{"eventId": eventID, "reason": res.Reason})
	}
}

// GetActiveEvents lists the active working set, most recently active first
// and capped by configuration.
func (s *Service) GetActiveEvents(ctx context.Context) store.Result[[]models.Event] {
	all := store.ListAll[models.Event](ctx, s.acc, "id")
	if !all.Known() {
		return all
	}
	active := resolve.ActiveEvents(all.Value, s.now(), s.cfg.ActiveWindow, s.cfg.ActiveCap)
	if len(active) == 0 {
		return store.Empty([]models.Event{})
	}
	return store.OK(active)
}
