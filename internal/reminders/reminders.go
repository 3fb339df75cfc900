// Package reminders counts the pending reminders of an event for a day.
package reminders

import (
	"context"
	"sort"
	"strings"

	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/internal/textnorm"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
)

var highPriorities = map[string]struct{}{"high": {}, "alta": {}, "alto": {}}

type Counts struct {
	Pending      int    `json:"pending"`
	HighPriority int    `json:"highPriority"`
	NextDue      string `json:"nextDue,omitempty"`
}

type Reader struct {
	acc *store.Accessor
}

func NewReader(acc *store.Accessor) *Reader {
	return &Reader{acc: acc}
}

// Pending reads the day through the day index, falling back to a prefix scan
// of the composite "day|id" key when the index is missing.
func (r *Reader) Pending(ctx context.Context, eventID int, day string) store.Result[Counts] {
	filter := map[string]any{"event_id": eventID}
	rows := store.ListByIndex[models.Reminder](ctx, r.acc, models.IndexRemindersByDay, store.Range{
		Column: "day_key",
		Eq:     day,
		Filter: filter,
	})
	if rows.IsUnsupported() {
		rows = store.ListByIndex[models.Reminder](ctx, r.acc, "", store.Range{
			Column: "id",
			Prefix: day + "|",
			Filter: filter,
		})
	}
	if !rows.Known() {
		return store.Result[Counts]{Status: store.StatusUnavailable, Reason: rows.Reason}
	}
	return Count(rows.Value)
}

// Count tallies reminders not marked done.
func Count(rows []models.Reminder) store.Result[Counts] {
	var out Counts
	var due []string
	for _, row := range rows {
		if row.Done {
			continue
		}
		out.Pending++
		if _, ok := highPriorities[textnorm.Fold(row.Priority)]; ok {
			out.HighPriority++
		}
		if t := strings.TrimSpace(row.DueTime); t != "" {
			due = append(due, t)
		}
	}
	if len(due) > 0 {
		sort.Strings(due)
		out.NextDue = due[0]
	}
	if out.Pending == 0 {
		return store.Empty(out)
	}
	return store.OK(out)
}
