package dashboard

import (
	"context"
	"strings"

	"github.com/Arcano33sa/suitea33-sub002/internal/alerts"
	"github.com/Arcano33sa/suitea33-sub002/internal/daykey"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	pkgerrors "github.com/Arcano33sa/suitea33-sub002/pkg/errors"
)

// BuildAlerts evaluates the alert rules of an event for day (today when
// empty). A missing event yields every rule as unavailable rather than an
// error; an unreadable store does the same with the store's reason.
func (s *Service) BuildAlerts(ctx context.Context, eventID int, day string) (alerts.Result, error) {
	today := s.Today()
	if strings.TrimSpace(day) == "" {
		day = today
	} else {
		normalized, ok := daykey.Normalize(day, s.loc)
		if !ok {
			return alerts.Result{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid day key").
				WithDetails(map[string]any{"day": day})
		}
		day = normalized
	}

	res := s.loadEvent(ctx, eventID)
	switch res.Status {
	case store.StatusOK:
	case store.StatusEmpty:
		return s.engine.Evaluate(alerts.Input{DayKey: day, Today: today}), nil
	default:
		return s.engine.Unavailable(res.Reason), nil
	}
	event := res.Value

	if day == today {
		snap := s.snapshotFor(ctx, event, day).Clone()
		return alerts.Result{Alerts: snap.Alerts, Unavailable: snap.Unavailable}, nil
	}
	checklistRes, _ := s.checklistFor(event, day)
	return s.evaluate(event, day, checklistRes, s.loadDynamic(ctx, event, day)), nil
}
