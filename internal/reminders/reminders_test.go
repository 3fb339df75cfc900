package reminders

import (
	"context"
	"testing"

	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/internal/store/storetest"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed() []models.Reminder {
	return []models.Reminder{
		{ID: "2026-10-15|1", DayKey: "2026-10-15", EventID: 1, DueTime: "14:00", Priority: "alta"},
		{ID: "2026-10-15|2", DayKey: "2026-10-15", EventID: 1, DueTime: "09:30", Priority: "low"},
		{ID: "2026-10-15|3", DayKey: "2026-10-15", EventID: 1, Done: true, Priority: "high"},
		{ID: "2026-10-15|4", DayKey: "2026-10-15", EventID: 2},
		{ID: "2026-10-16|1", DayKey: "2026-10-16", EventID: 1},
	}
}

func TestPendingByDayIndex(t *testing.T) {
	conn := storetest.Migrated(t)
	rows := seed()
	require.NoError(t, conn.Create(&rows).Error)

	res := NewReader(storetest.Accessor(conn, 100)).Pending(context.Background(), 1, "2026-10-15")
	require.Equal(t, store.StatusOK, res.Status)
	assert.Equal(t, Counts{Pending: 2, HighPriority: 1, NextDue: "09:30"}, res.Value)
}

func TestPendingFallsBackToPrefixScan(t *testing.T) {
	conn := storetest.OpenDB(t)
	require.NoError(t, conn.Exec(`CREATE TABLE reminders (
  id TEXT PRIMARY KEY,
  day_key TEXT,
  event_id INTEGER,
  event_name TEXT,
  due_time TEXT,
  priority TEXT,
  done NUMERIC,
  text TEXT,
  created_at DATETIME,
  updated_at DATETIME
)`).Error)
	rows := seed()
	require.NoError(t, conn.Create(&rows).Error)

	res := NewReader(storetest.Accessor(conn, 100)).Pending(context.Background(), 1, "2026-10-15")
	require.True(t, res.Known())
	assert.Equal(t, 2, res.Value.Pending)
}

func TestPendingEmptyAndUnavailable(t *testing.T) {
	conn := storetest.Migrated(t)
	res := NewReader(storetest.Accessor(conn, 100)).Pending(context.Background(), 9, "2026-10-15")
	assert.Equal(t, store.StatusEmpty, res.Status)
	assert.Zero(t, res.Value.Pending)

	none := NewReader(store.New(nil, store.Options{})).Pending(context.Background(), 9, "2026-10-15")
	assert.Equal(t, store.StatusUnavailable, none.Status)
}
