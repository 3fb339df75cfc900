package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	pkgerrors "github.com/Arcano33sa/suitea33-sub002/pkg/errors"
	"go.uber.org/multierr"
)

// SyncReport is the outcome of a manual sync, as a diff of alert keys
// ("<eventId>:<rule>") against the previous sync.
type SyncReport struct {
	Resolved     []string  `json:"resolved"`
	StillPending []string  `json:"stillPending"`
	Added        []string  `json:"added"`
	Unavailable  []string  `json:"unavailable"`
	Events       int       `json:"events"`
	Faults       []string  `json:"faults"`
	First        bool      `json:"first"`
	SyncedAt     time.Time `json:"syncedAt"`
}

func alertKey(eventID int, rule string) string {
	return strconv.Itoa(eventID) + ":" + rule
}

// RefreshAll drops the dynamic tier for the active set, rebuilds every
// snapshot and reports what changed since the previous sync. Faulted events
// are listed in the report and combined into the returned error.
func (s *Service) RefreshAll(ctx context.Context) (SyncReport, error) {
	report := SyncReport{
		Resolved:     []string{},
		StillPending: []string{},
		Added:        []string{},
		Unavailable:  []string{},
		Faults:       []string{},
	}
	active := s.GetActiveEvents(ctx)
	if !active.Known() {
		return report, pkgerrors.New(pkgerrors.CodeUnavailable, "active events not available").
			WithDetails(map[string]any{"reason": active.Reason})
	}

	ids := make([]int, 0, len(active.Value))
	for _, e := range active.Value {
		ids = append(ids, e.ID)
	}
	s.invalidateDynamic(ids)

	snapshots, err := s.BuildSnapshots(ctx, active.Value)
	if err != nil {
		return report, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sync interrupted")
	}

	var faults error
	current := map[string]struct{}{}
	for _, snap := range snapshots {
		if snap.Fault != "" {
			report.Faults = append(report.Faults, strconv.Itoa(snap.EventID))
			faults = multierr.Append(faults, fmt.Errorf("event %d: %s", snap.EventID, snap.Fault))
		}
		for _, a := range snap.Alerts {
			current[alertKey(snap.EventID, a.Key)] = struct{}{}
		}
		for _, u := range snap.Unavailable {
			report.Unavailable = append(report.Unavailable, alertKey(snap.EventID, u.Key))
		}
	}

	report.SyncedAt = s.now()
	report.Events = len(snapshots)
	previous, had := s.state.swapAlertKeys(current, report.SyncedAt)
	report.First = !had
	for key := range current {
		if _, ok := previous[key]; ok {
			report.StillPending = append(report.StillPending, key)
		} else {
			report.Added = append(report.Added, key)
		}
	}
	for key := range previous {
		if _, ok := current[key]; !ok {
			report.Resolved = append(report.Resolved, key)
		}
	}
	sort.Strings(report.Resolved)
	sort.Strings(report.StillPending)
	sort.Strings(report.Added)
	sort.Strings(report.Unavailable)

	if faults != nil {
		s.logg.Warn(s.logg.WithField(ctx, "faults", len(multierr.Errors(faults))), "sync finished with faulted events")
	}
	return report, faults
}
