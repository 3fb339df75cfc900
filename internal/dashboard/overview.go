package dashboard

import (
	"context"

	"github.com/Arcano33sa/suitea33-sub002/internal/alerts"
	"github.com/Arcano33sa/suitea33-sub002/internal/inventory"
	"github.com/Arcano33sa/suitea33-sub002/internal/purchases"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	pkgerrors "github.com/Arcano33sa/suitea33-sub002/pkg/errors"
	"github.com/Arcano33sa/suitea33-sub002/pkg/redis"
)

// Overview is the global section of the dashboard, independent of events.
type Overview struct {
	Today           string                         `json:"today"`
	Focus           Section[int]                   `json:"focus"`
	Inventory       Section[inventory.Summary]     `json:"inventory"`
	Purchases       Section[purchases.Pending]     `json:"purchases"`
	Recommendations Section[[]alerts.AnalyticsRec] `json:"recommendations"`
}

func (s *Service) Overview(ctx context.Context) Overview {
	return Overview{
		Today:           s.Today(),
		Focus:           SectionOf(s.FocusEvent(ctx)),
		Inventory:       SectionOf(s.inventory(ctx)),
		Purchases:       SectionOf(s.pendingPurchases(ctx)),
		Recommendations: SectionOf(alerts.ParseAnalytics(s.blobs.Raw(ctx, redis.BlobAnalyticsRecs))),
	}
}

func (s *Service) inventory(ctx context.Context) store.Result[inventory.Summary] {
	doc := s.blobs.Document(ctx, redis.BlobInventory)
	if !doc.Known() {
		return store.Result[inventory.Summary]{Status: doc.Status, Reason: doc.Reason}
	}
	if doc.Status == store.StatusEmpty {
		return store.Empty(inventory.Summary{Rows: []inventory.Row{}})
	}
	return inventory.Classify(doc.Value)
}

// SetFocusEvent persists the focus pointer and updates the state. The event
// must exist.
func (s *Service) SetFocusEvent(ctx context.Context, eventID int) error {
	if eventID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "eventId must be positive")
	}
	if _, err := eventOrError(s.loadEvent(ctx, eventID), eventID); err != nil {
		return err
	}
	if err := s.acc.SetFocusEventID(ctx, eventID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist focus")
	}
	s.state.setFocus(eventID)
	s.logg.Info(s.logg.WithEventID(ctx, eventID), "focus event changed")
	return nil
}

// FocusEvent returns the focus held in memory, reading the persisted pointer
// the first time.
func (s *Service) FocusEvent(ctx context.Context) store.Result[int] {
	if id, ok := s.state.Focus(); ok {
		return store.OK(id)
	}
	return s.SyncFocus(ctx)
}

// SyncFocus reloads the persisted pointer, picking up changes made by the
// POS itself.
func (s *Service) SyncFocus(ctx context.Context) store.Result[int] {
	res := s.acc.FocusEventID(ctx)
	if res.Status == store.StatusOK {
		s.state.setFocus(res.Value)
	}
	return res
}
