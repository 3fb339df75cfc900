package resolve

import (
	"sort"
	"time"

	"github.com/Arcano33sa/suitea33-sub002/internal/textnorm"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
)

const SourceRecency = "recency"

var (
	activeStatuses   = []string{"active", "activo", "activa", "open", "abierto", "en curso", "in progress"}
	inactiveStatuses = []string{"inactive", "inactivo", "closed", "cerrado", "archived", "archivado", "finished", "finalizado", "cancelled", "cancelado"}
)

func statusIn(status string, set []string) bool {
	folded := textnorm.Fold(status)
	for _, candidate := range set {
		if folded == candidate {
			return true
		}
	}
	return false
}

// Explicit activity flags, in the order the POS introduced them.
var activeFlagChain = Chain[types.Document, bool]{
	{Source: "active", Extract: func(d types.Document) (bool, bool) { return types.AsBool(d["active"]) }},
	{Source: "isActive", Extract: func(d types.Document) (bool, bool) { return types.AsBool(d["isActive"]) }},
	{Source: "archived", Extract: func(d types.Document) (bool, bool) {
		archived, ok := types.AsBool(d["archived"])
		return !archived, ok
	}},
	{Source: "status", Extract: func(d types.Document) (bool, bool) {
		status, ok := types.AsString(d["status"])
		if !ok {
			return false, false
		}
		switch {
		case statusIn(status, activeStatuses):
			return true, true
		case statusIn(status, inactiveStatuses):
			return false, true
		}
		return false, false
	}},
}

// LastActivity is the most recent timestamp known for an event.
func LastActivity(e models.Event) time.Time {
	latest := e.UpdatedAt
	if e.CreatedAt.After(latest) {
		latest = e.CreatedAt
	}
	for _, field := range []string{"updatedAt", "lastActivityAt", "lastSaleAt"} {
		if t, ok := types.AsTime(e.Data[field]); ok && t.After(latest) {
			latest = t
		}
	}
	return latest
}

// Activity is the classification of a single event.
type Activity struct {
	Active bool
	Source string
	LastAt time.Time
}

// Classify decides whether e is active. Explicit flags win; otherwise the
// event is active when its last activity falls within window of now.
func Classify(e models.Event, now time.Time, window time.Duration) Activity {
	last := LastActivity(e)
	if flag := activeFlagChain.Resolve(e.Data); flag.OK {
		return Activity{Active: flag.Value, Source: flag.Source, LastAt: last}
	}
	return Activity{
		Active: !last.IsZero() && now.Sub(last) <= window,
		Source: SourceRecency,
		LastAt: last,
	}
}

// ActiveEvents filters events to the active ones, most recent first, capped
// at limit.
func ActiveEvents(events []models.Event, now time.Time, window time.Duration, limit int) []models.Event {
	type ranked struct {
		event models.Event
		last  time.Time
	}
	active := make([]ranked, 0, len(events))
	for _, e := range events {
		if a := Classify(e, now, window); a.Active {
			active = append(active, ranked{event: e, last: a.LastAt})
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if !active[i].last.Equal(active[j].last) {
			return active[i].last.After(active[j].last)
		}
		return active[i].event.ID > active[j].event.ID
	})
	if limit > 0 && len(active) > limit {
		active = active[:limit]
	}
	out := make([]models.Event, 0, len(active))
	for _, r := range active {
		out = append(out, r.event)
	}
	return out
}
