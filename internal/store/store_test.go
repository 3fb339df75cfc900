package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/internal/store/storetest"
	"github.com/Arcano33sa/suitea33-sub002/pkg/config"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"github.com/Arcano33sa/suitea33-sub002/pkg/redis"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListByIndexTriState(t *testing.T) {
	conn := storetest.Migrated(t)
	acc := storetest.Accessor(conn, 3)
	ctx := context.Background()

	empty := store.ListByIndex[models.Sale](ctx, acc, models.IndexSalesByDate, store.Range{Column: "date", Eq: "2026-10-15"})
	assert.Equal(t, store.StatusEmpty, empty.Status)
	assert.True(t, empty.Known())
	assert.Empty(t, empty.Value)

	for i := 0; i < 3; i++ {
		require.NoError(t, conn.Create(&models.Sale{EventID: 1, Date: "2026-10-15", Total: decimal.NewFromInt(10), Qty: 1}).Error)
	}
	ok := store.ListByIndex[models.Sale](ctx, acc, models.IndexSalesByDate, store.Range{Column: "date", Eq: "2026-10-15"})
	require.Equal(t, store.StatusOK, ok.Status)
	assert.Len(t, ok.Value, 3)

	require.NoError(t, conn.Create(&models.Sale{EventID: 1, Date: "2026-10-15", Total: decimal.NewFromInt(10), Qty: 1}).Error)
	over := store.ListByIndex[models.Sale](ctx, acc, models.IndexSalesByDate, store.Range{Column: "date", Eq: "2026-10-15"})
	assert.Equal(t, store.StatusUnavailable, over.Status)
	assert.Equal(t, store.ReasonScanCeiling, over.Reason)
	assert.Nil(t, over.Value)
}

func TestListByIndexMissingIndexIsUnsupported(t *testing.T) {
	conn := storetest.OpenDB(t)
	require.NoError(t, conn.Exec(`CREATE TABLE sales (
  id INTEGER PRIMARY KEY,
  event_id INTEGER,
  date TEXT,
  total NUMERIC,
  product_name TEXT,
  qty REAL,
  payment TEXT,
  courtesy INTEGER,
  created_at DATETIME
)`).Error)
	acc := storetest.Accessor(conn, 10)

	res := store.ListByIndex[models.Sale](context.Background(), acc, models.IndexSalesByDate, store.Range{Column: "date", Eq: "2026-10-15"})
	assert.Equal(t, store.StatusUnsupported, res.Status)
	assert.True(t, res.IsUnsupported())

	count := store.CountByIndex[models.Sale](context.Background(), acc, models.IndexSalesByEvent, store.Range{Column: "event_id", Eq: 1})
	assert.Equal(t, store.StatusUnsupported, count.Status)
}

func TestRangeBoundsAndPrefix(t *testing.T) {
	conn := storetest.Migrated(t)
	acc := storetest.Accessor(conn, 100)
	ctx := context.Background()

	for _, r := range []models.Reminder{
		{ID: "2026-10-14|a", DayKey: "2026-10-14", EventID: 1},
		{ID: "2026-10-15|a", DayKey: "2026-10-15", EventID: 1},
		{ID: "2026-10-15|b", DayKey: "2026-10-15", EventID: 2},
		{ID: "2026-10-16|a", DayKey: "2026-10-16", EventID: 1},
	} {
		require.NoError(t, conn.Create(&r).Error)
	}

	prefixed := store.ListByIndex[models.Reminder](ctx, acc, "", store.Range{Column: "id", Prefix: "2026-10-15|", OrderBy: "id"})
	require.Equal(t, store.StatusOK, prefixed.Status)
	require.Len(t, prefixed.Value, 2)
	assert.Equal(t, "2026-10-15|a", prefixed.Value[0].ID)

	bounded := store.ListByIndex[models.Reminder](ctx, acc, models.IndexRemindersByDay, store.Range{
		Column: "day_key",
		Lower:  "2026-10-15",
		Upper:  "2026-10-16",
		Filter: map[string]any{"event_id": 1},
	})
	require.Equal(t, store.StatusOK, bounded.Status)
	assert.Len(t, bounded.Value, 2)

	count := store.CountByIndex[models.Reminder](ctx, acc, models.IndexRemindersByDay, store.Range{Column: "day_key", Eq: "2026-10-15"})
	require.True(t, count.Known())
	assert.Equal(t, 2, count.Value)
}

func TestGetFoundAndMissing(t *testing.T) {
	conn := storetest.Migrated(t)
	acc := storetest.Accessor(conn, 10)
	ctx := context.Background()
	require.NoError(t, conn.Create(&models.Event{ID: 7, Name: "Feria"}).Error)

	found := store.Get[models.Event](ctx, acc, "id", 7)
	require.Equal(t, store.StatusOK, found.Status)
	assert.Equal(t, "Feria", found.Value.Name)

	missing := store.Get[models.Event](ctx, acc, "id", 8)
	assert.Equal(t, store.StatusEmpty, missing.Status)
	assert.Nil(t, missing.Value)
}

func TestNoDatabaseModeIsUnavailable(t *testing.T) {
	acc := store.New(nil, store.Options{})
	ctx := context.Background()

	assert.False(t, acc.Available())
	assert.Equal(t, store.DefaultScanLimit, acc.ScanLimit())
	assert.Equal(t, store.ReasonNoDatabase, store.ListAll[models.Event](ctx, acc, "id").Reason)
	assert.Equal(t, store.StatusUnavailable, store.Get[models.Event](ctx, acc, "id", 1).Status)
	assert.Equal(t, store.StatusUnavailable, acc.FocusEventID(ctx).Status)
	assert.Error(t, acc.SetFocusEventID(ctx, 3))
	assert.Error(t, acc.Ping(ctx))
	assert.NoError(t, acc.Close())
}

func TestOpenFailureDegrades(t *testing.T) {
	acc := store.Open(context.Background(), config.DBConfig{
		Driver:      config.DBDriverSQLite,
		DSN:         "file:/nonexistent-dir/x.db?mode=ro",
		OpenTimeout: time.Second,
	}, store.Options{})
	assert.False(t, acc.Available())
}

func TestOpenSQLite(t *testing.T) {
	acc := store.Open(context.Background(), config.DBConfig{
		Driver:      config.DBDriverSQLite,
		DSN:         "file:open_sqlite?mode=memory&cache=shared",
		OpenTimeout: time.Second,
	}, store.Options{ScanLimit: 5})
	t.Cleanup(func() { _ = acc.Close() })
	assert.True(t, acc.Available())
	assert.Equal(t, 5, acc.ScanLimit())
	assert.NoError(t, acc.Ping(context.Background()))
}

func TestFocusPointerRoundTrip(t *testing.T) {
	conn := storetest.Migrated(t)
	acc := storetest.Accessor(conn, 10)
	ctx := context.Background()

	assert.Equal(t, store.StatusEmpty, acc.FocusEventID(ctx).Status)

	require.NoError(t, acc.SetFocusEventID(ctx, 4))
	require.NoError(t, acc.SetFocusEventID(ctx, 9))
	got := acc.FocusEventID(ctx)
	require.Equal(t, store.StatusOK, got.Status)
	assert.Equal(t, 9, got.Value)

	require.NoError(t, conn.Model(&models.Meta{}).Where("1 = 1").Update("value", "abc").Error)
	assert.Equal(t, store.ReasonMalformed, acc.FocusEventID(ctx).Reason)
}

func TestBlobs(t *testing.T) {
	ctx := context.Background()
	blobs, client := storetest.Blobs(t)

	assert.Equal(t, store.StatusEmpty, blobs.Document(ctx, redis.BlobInventory).Status)

	require.NoError(t, client.Set(ctx, client.BlobKey(redis.BlobInventory), `{"liquids":{"vino":{"stock":5,"max":10}}}`, 0))
	doc := blobs.Document(ctx, redis.BlobInventory)
	require.Equal(t, store.StatusOK, doc.Status)
	assert.True(t, doc.Value.Has("liquids"))

	require.NoError(t, client.Set(ctx, client.BlobKey(redis.BlobAnalyticsRecs), `[1,2]`, 0))
	assert.Equal(t, store.ReasonMalformed, blobs.Document(ctx, redis.BlobAnalyticsRecs).Reason)
	assert.Equal(t, store.StatusOK, blobs.Raw(ctx, redis.BlobAnalyticsRecs).Status)

	require.NoError(t, client.Set(ctx, client.BlobKey(redis.BlobPurchasePlan), `{broken`, 0))
	assert.Equal(t, store.ReasonMalformed, blobs.Raw(ctx, redis.BlobPurchasePlan).Reason)

	require.NoError(t, client.Set(ctx, client.FXKey(3), `36.62`, 0))
	fx := blobs.FX(ctx, 3)
	require.Equal(t, store.StatusOK, fx.Status)
	assert.Equal(t, 36.62, fx.Value)
}

func TestBlobsWithoutClientOrOnError(t *testing.T) {
	ctx := context.Background()
	none := store.NewBlobs(nil, nil, nil)
	assert.Equal(t, store.ReasonNoBlobStore, none.Raw(ctx, redis.BlobInventory).Reason)
	assert.Equal(t, store.ReasonNoBlobStore, none.FX(ctx, 1).Reason)

	mock := redis.NewMockCmdable()
	mock.Err = errors.New("connection reset")
	failing := store.NewBlobs(redis.NewWithCmdable(mock), nil, nil)
	assert.Equal(t, store.ReasonReadFailed, failing.Raw(ctx, redis.BlobInventory).Reason)
}

func TestMapKeepsDegradedStatus(t *testing.T) {
	length := func(v []int) int { return len(v) }
	assert.Equal(t, 2, store.Map(store.OK([]int{1, 2}), length).Value)
	mapped := store.Map(store.Unavailable[[]int](store.ReasonScanCeiling), length)
	assert.Equal(t, store.StatusUnavailable, mapped.Status)
	assert.Equal(t, store.ReasonScanCeiling, mapped.Reason)
}

func TestGetManyBatchesKeys(t *testing.T) {
	conn := storetest.Migrated(t)
	acc := storetest.Accessor(conn, 2)
	ctx := context.Background()
	for _, id := range []int{1, 2, 3} {
		require.NoError(t, conn.Create(&models.Event{ID: id, Name: "e"}).Error)
	}

	res := store.GetMany[models.Event](ctx, acc, "id", []int{1, 3, 9})
	require.Equal(t, store.StatusOK, res.Status)
	assert.Len(t, res.Value, 2)

	none := store.GetMany[models.Event](ctx, acc, "id", []int{42})
	assert.Equal(t, store.StatusEmpty, none.Status)

	over := store.GetMany[models.Event](ctx, acc, "id", []int{1, 2, 3})
	assert.Equal(t, store.ReasonScanCeiling, over.Reason)
}
