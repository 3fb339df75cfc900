package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Arcano33sa/suitea33-sub002/api/responses"
	"github.com/Arcano33sa/suitea33-sub002/api/validators"
	"github.com/Arcano33sa/suitea33-sub002/internal/alerts"
	"github.com/Arcano33sa/suitea33-sub002/internal/dashboard"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/enums"
	pkgerrors "github.com/Arcano33sa/suitea33-sub002/pkg/errors"
	"github.com/Arcano33sa/suitea33-sub002/pkg/logger"
)

// DashboardService is the surface of *dashboard.Service the HTTP layer uses.
type DashboardService interface {
	Today() string
	Cards(ctx context.Context) (store.Result[[]dashboard.Card], error)
	GetSnapshot(ctx context.Context, eventID int) (dashboard.Snapshot, error)
	BuildAlerts(ctx context.Context, eventID int, day string) (alerts.Result, error)
	Expand(ctx context.Context, eventID int) (dashboard.Snapshot, error)
	Collapse(eventID int) enums.CardState
	FocusEvent(ctx context.Context) store.Result[int]
	SetFocusEvent(ctx context.Context, eventID int) error
	RefreshAll(ctx context.Context) (dashboard.SyncReport, error)
	Overview(ctx context.Context) dashboard.Overview
}

type cardsPayload struct {
	Today string                              `json:"today"`
	Cards dashboard.Section[[]dashboard.Card] `json:"cards"`
}

type alertsPayload struct {
	EventID int    `json:"eventId"`
	DayKey  string `json:"dayKey"`
	alerts.Result
}

type collapsePayload struct {
	EventID int             `json:"eventId"`
	State   enums.CardState `json:"state"`
}

type focusRequest struct {
	EventID int `json:"eventId" validate:"required,gt=0"`
}

func DashboardCards(svc DashboardService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Cards(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cardsPayload{Today: svc.Today(), Cards: dashboard.SectionOf(res)})
	}
}

func DashboardSnapshot(svc DashboardService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseIDParam(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithEventID(ctx, eventID)
		}
		snap, err := svc.GetSnapshot(ctx, eventID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

func DashboardAlerts(svc DashboardService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseIDParam(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		day, err := validators.ParseQueryDay(r, "day", svc.Today())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := svc.BuildAlerts(r.Context(), eventID, day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, alertsPayload{EventID: eventID, DayKey: day, Result: res})
	}
}

func DashboardExpand(svc DashboardService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseIDParam(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snap, err := svc.Expand(r.Context(), eventID)
		if errors.Is(err, dashboard.ErrSuperseded) {
			err = pkgerrors.Wrap(pkgerrors.CodeConflict, err, "card toggled during expansion")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

func DashboardCollapse(svc DashboardService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseIDParam(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, collapsePayload{EventID: eventID, State: svc.Collapse(eventID)})
	}
}

func DashboardFocus(svc DashboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, dashboard.SectionOf(svc.FocusEvent(r.Context())))
	}
}

func DashboardSetFocus(svc DashboardService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req focusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetFocusEvent(r.Context(), req.EventID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard.SectionOf(store.OK(req.EventID)))
	}
}

// DashboardSync rebuilds every active snapshot. Faulted events are listed in
// the report and do not fail the request.
func DashboardSync(svc DashboardService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.RefreshAll(r.Context())
		if err != nil && pkgerrors.As(err) != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err != nil && logg != nil {
			logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "sync completed with faults")
		}
		responses.WriteSuccess(w, report)
	}
}

func DashboardOverview(svc DashboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Overview(r.Context()))
	}
}
