package dashboard

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Arcano33sa/suitea33-sub002/internal/alerts"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/internal/store/storetest"
	"github.com/Arcano33sa/suitea33-sub002/pkg/config"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"github.com/Arcano33sa/suitea33-sub002/pkg/enums"
	pkgerrors "github.com/Arcano33sa/suitea33-sub002/pkg/errors"
	"github.com/Arcano33sa/suitea33-sub002/pkg/metrics"
	"github.com/Arcano33sa/suitea33-sub002/pkg/redis"
	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const today = "2026-10-15"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type harness struct {
	conn   *gorm.DB
	acc    *store.Accessor
	client *redis.Client
	reg    *prometheus.Registry
	clock  *fakeClock
	cfg    config.DashboardConfig
	svc    *Service
}

func newHarness(t *testing.T, tweak ...func(*config.DashboardConfig)) *harness {
	t.Helper()
	cfg := config.Defaults()
	cfg.Timezone = "UTC"
	for _, fn := range tweak {
		fn(&cfg)
	}
	conn := storetest.Migrated(t)
	blobs, client := storetest.Blobs(t)
	reg := prometheus.NewRegistry()
	h := &harness{
		conn:   conn,
		acc:    storetest.Accessor(conn, cfg.ScanLimit),
		client: client,
		reg:    reg,
		clock:  &fakeClock{now: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)},
		cfg:    cfg,
	}
	h.svc = New(Deps{
		Accessor: h.acc,
		Blobs:    blobs,
		Config:   cfg,
		Metrics:  metrics.NewDashboardMetrics(reg),
		Clock:    h.clock.Now,
	})
	return h
}

func (h *harness) create(t *testing.T, rows ...any) {
	t.Helper()
	for _, row := range rows {
		require.NoError(t, h.conn.Create(row).Error)
	}
}

func (h *harness) event(t *testing.T, id int, name string, data types.Document) {
	t.Helper()
	h.create(t, &models.Event{
		ID:        id,
		Name:      name,
		Data:      data,
		CreatedAt: h.clock.Now().Add(-48 * time.Hour),
		UpdatedAt: h.clock.Now().Add(-time.Duration(id) * time.Hour),
	})
}

func (h *harness) sale(t *testing.T, eventID int, total int64, product string, qty float64) {
	t.Helper()
	h.create(t, &models.Sale{EventID: eventID, Date: today, Total: decimal.NewFromInt(total), ProductName: product, Qty: qty, Payment: "efectivo"})
}

func foreignCashDay(eventID int, day, status string) *models.CashDay {
	return &models.CashDay{EventID: eventID, DayKey: day, Status: status, Data: types.Document{
		"initial":   map[string]any{"NIO": 1000},
		"movements": []any{map[string]any{"kind": "IN", "amount": 20, "currency": "USD"}},
	}}
}

func buildCount(t *testing.T, reg *prometheus.Registry, outcome string) uint64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var found *dto.Metric
	for _, mf := range families {
		if mf.GetName() != "dashboard_snapshot_build_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "outcome" && lp.GetValue() == outcome {
					found = m
				}
			}
		}
	}
	if found == nil {
		return 0
	}
	return found.GetHistogram().GetSampleCount()
}

func TestSnapshotFXMissingScenario(t *testing.T) {
	h := newHarness(t)
	h.event(t, 1, "Feria", types.Document{"active": true})
	h.create(t, foreignCashDay(1, today, "OPEN"))

	snap, err := h.svc.GetSnapshot(context.Background(), 1)
	require.NoError(t, err)

	require.True(t, snap.Cash.Available)
	assert.True(t, snap.Cash.Value.Enabled)
	assert.True(t, snap.Cash.Value.FxMissing)
	assert.False(t, snap.Cash.Value.Closing.Valid)
	require.NotEmpty(t, snap.Alerts)
	assert.Equal(t, alerts.KeyFXMissing, snap.Alerts[0].Key)
	assert.Equal(t, "Falta T/C", snap.Alerts[0].Title)
	assert.Equal(t, len(snap.Alerts), snap.PendingAlerts)
	assert.Equal(t, "Falta T/C", snap.Recommendations[0].Text)

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	cash := decoded["cash"].(map[string]any)["value"].(map[string]any)
	assert.Contains(t, cash, "saldoFinal")
	assert.Nil(t, cash["saldoFinal"])
}

func TestSnapshotIsIdempotentAndCached(t *testing.T) {
	h := newHarness(t)
	h.event(t, 1, "Feria", types.Document{
		"active":            true,
		"checklistTemplate": map[string]any{"pre": []any{map[string]any{"id": "a", "text": "Montar barra"}}},
	})
	h.sale(t, 1, 150, "Vino", 2)
	ctx := context.Background()

	first, err := h.svc.GetSnapshot(ctx, 1)
	require.NoError(t, err)
	h.clock.Advance(10 * time.Second)
	second, err := h.svc.GetSnapshot(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, uint64(1), buildCount(t, h.reg, BuildBuilt))
	assert.Equal(t, uint64(1), buildCount(t, h.reg, BuildCached))
	assert.Equal(t, "150", first.SalesToday.Value.String())
	assert.True(t, first.HasChecklistItems)
	assert.Equal(t, today, first.ChecklistDayKey)

	// Callers get copies.
	second.Alerts[0].Title = "changed"
	third, err := h.svc.GetSnapshot(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", third.Alerts[0].Title)
}

func TestDynamicFieldsRevalidateAfterTTL(t *testing.T) {
	h := newHarness(t)
	h.event(t, 1, "Feria", types.Document{"active": true})
	h.sale(t, 1, 100, "Vino", 1)
	ctx := context.Background()

	first, err := h.svc.GetSnapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "100", first.SalesToday.Value.String())

	h.sale(t, 1, 50, "Agua", 3)
	within, err := h.svc.GetSnapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "100", within.SalesToday.Value.String())

	h.clock.Advance(h.cfg.DynamicTTL + time.Second)
	after, err := h.svc.GetSnapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "150", after.SalesToday.Value.String())
	assert.NotEqual(t, first.Signature, after.Signature)
	require.Len(t, *after.TopProducts.Value, 2)
	assert.Equal(t, "Agua", (*after.TopProducts.Value)[0].Name)
}

func TestChecklistSignatureDetectsEdits(t *testing.T) {
	h := newHarness(t)
	template := map[string]any{"pre": []any{
		map[string]any{"id": "a", "text": "Montar barra"},
		map[string]any{"id": "b", "text": "Nuevo item"},
	}}
	h.event(t, 1, "Feria", types.Document{"active": true, "checklistTemplate": template})
	ctx := context.Background()

	before, err := h.svc.GetSnapshot(ctx, 1)
	require.NoError(t, err)
	pre, ok := before.Checklist.Value.Bucket(enums.PhasePre)
	require.True(t, ok)
	assert.Equal(t, 1, pre.PendingCount)
	assert.Equal(t, 1, pre.Skipped)
	assert.Equal(t, []string{"Montar barra"}, pre.PendingTexts)

	// Same updatedAt, different checked set.
	require.NoError(t, h.conn.Model(&models.Event{}).Where("id = ?", 1).
		UpdateColumn("data", types.Document{
			"active":            true,
			"checklistTemplate": template,
			"days":              map[string]any{today: map[string]any{"checkedIds": []any{"a"}}},
		}).Error)

	after, err := h.svc.GetSnapshot(ctx, 1)
	require.NoError(t, err)
	pre, _ = after.Checklist.Value.Bucket(enums.PhasePre)
	assert.Equal(t, 0, pre.PendingCount)
	assert.Equal(t, 1, pre.Done)
	for _, a := range after.Alerts {
		assert.NotEqual(t, alerts.KeyChecklist, a.Key)
	}
}

func TestMissingEvent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.GetSnapshot(ctx, 404)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	res, err := h.svc.BuildAlerts(ctx, 404, "")
	require.NoError(t, err)
	assert.Empty(t, res.Alerts)
	require.NotEmpty(t, res.Unavailable)
	for _, u := range res.Unavailable {
		assert.Equal(t, alerts.ReasonMissingEvent, u.Reason)
	}
}

func TestBuildAlertsForOtherDayAndValidation(t *testing.T) {
	h := newHarness(t)
	h.event(t, 1, "Feria", types.Document{"active": true, "fx": 36.5})
	h.create(t, foreignCashDay(1, "2026-10-14", "OPEN"))
	ctx := context.Background()

	res, err := h.svc.BuildAlerts(ctx, 1, "")
	require.NoError(t, err)
	keys, unavailable := res.Keys()
	assert.Equal(t, []string{alerts.KeyCashOpen}, keys)
	assert.Equal(t, []string{alerts.KeyInventoryCritical}, unavailable)

	// The OPEN record still wins on the next day.
	res, err = h.svc.BuildAlerts(ctx, 1, "2026-10-16T01:30:00")
	require.NoError(t, err)
	keys, _ = res.Keys()
	assert.Equal(t, []string{alerts.KeyCashOpen}, keys)

	_, err = h.svc.BuildAlerts(ctx, 1, "mañana")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestBuildSnapshotsSharesDayReadAndKeepsOrder(t *testing.T) {
	h := newHarness(t, func(c *config.DashboardConfig) { c.Workers = 2 })
	for id := 1; id <= 4; id++ {
		h.event(t, id, "Evento", types.Document{"active": true})
		h.sale(t, id, int64(id*10), "Vino", 1)
	}
	var events []models.Event
	require.NoError(t, h.conn.Order("id desc").Find(&events).Error)

	snaps, err := h.svc.BuildSnapshots(context.Background(), events)
	require.NoError(t, err)
	require.Len(t, snaps, 4)
	for i, snap := range snaps {
		assert.Equal(t, events[i].ID, snap.EventID)
		assert.Equal(t, decimal.NewFromInt(int64(events[i].ID*10)).String(), snap.SalesToday.Value.String())
	}
	assert.Equal(t, 1, h.svc.salesDays.Len())
}

func TestQueueCapBoundsWorkingSet(t *testing.T) {
	h := newHarness(t, func(c *config.DashboardConfig) {
		c.Workers = 1
		c.QueueCap = 2
	})
	var events []models.Event
	for id := 1; id <= 3; id++ {
		h.event(t, id, "Evento", types.Document{"active": true})
		events = append(events, models.Event{ID: id, Name: "Evento"})
	}
	snaps, err := h.svc.BuildSnapshots(context.Background(), events)
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
}

func TestZeroWorkersStillBuilds(t *testing.T) {
	h := newHarness(t, func(c *config.DashboardConfig) {
		c.Workers = 0
		c.QueueCap = 0
	})
	assert.Equal(t, 1, h.svc.Config().Workers)
	h.event(t, 1, "Feria", types.Document{"active": true})
	h.sale(t, 1, 40, "Vino", 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snaps, err := h.svc.BuildSnapshots(ctx, []models.Event{{ID: 1, Name: "Feria"}})
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "40", snaps[0].SalesToday.Value.String())

	cards, err := h.svc.Cards(ctx)
	require.NoError(t, err)
	require.Equal(t, store.StatusOK, cards.Status)
	assert.Len(t, cards.Value, 1)
}

func TestCardsAndStateMachine(t *testing.T) {
	h := newHarness(t)
	h.event(t, 1, "Reciente", types.Document{})
	h.event(t, 2, "Archivado", types.Document{"archived": true})
	h.event(t, 3, "Activo", types.Document{"status": "Activo"})
	ctx := context.Background()

	snap, err := h.svc.Expand(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.EventID)
	assert.Equal(t, enums.CardExpanded, h.svc.State().CardState(3))

	cards, err := h.svc.Cards(ctx)
	require.NoError(t, err)
	require.Equal(t, store.StatusOK, cards.Status)
	require.Len(t, cards.Value, 2)
	assert.Equal(t, 1, cards.Value[0].EventID)
	assert.Equal(t, enums.CardCollapsed, cards.Value[0].State)
	assert.Nil(t, cards.Value[0].Snapshot)
	assert.True(t, cards.Value[0].SalesToday.Available)
	assert.Equal(t, 3, cards.Value[1].EventID)
	require.NotNil(t, cards.Value[1].Snapshot)

	entries := h.svc.snapshots.Len()
	assert.Equal(t, enums.CardCollapsed, h.svc.Collapse(3))
	assert.Equal(t, entries, h.svc.snapshots.Len())
	assert.Empty(t, h.svc.State().Expanded())

	_, err = h.svc.Expand(ctx, 99)
	require.Error(t, err)
	assert.Equal(t, enums.CardCollapsed, h.svc.State().CardState(99))
}

func TestCancelledCallerDoesNotPoisonSharedCaches(t *testing.T) {
	h := newHarness(t)
	h.event(t, 1, "Feria", types.Document{"active": true})
	h.sale(t, 1, 40, "Vino", 1)
	var event models.Event
	require.NoError(t, h.conn.First(&event, 1).Error)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	fields := h.svc.dynamicFor(cancelled, event, today)
	require.True(t, fields.Sales.Known())
	assert.NotEqual(t, store.ReasonReadFailed, fields.Cash.Reason)

	built := h.svc.snapshotFor(cancelled, event, today)
	require.True(t, built.SalesToday.Available)

	snap, err := h.svc.GetSnapshot(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, snap.SalesToday.Available)
	assert.Equal(t, "40", snap.SalesToday.Value.String())
	assert.NotEqual(t, store.ReasonReadFailed, snap.Cash.Reason)
}

func TestCollapsedCardsReadHeadlineOnly(t *testing.T) {
	h := newHarness(t)
	h.event(t, 1, "Feria", types.Document{"active": true})
	h.sale(t, 1, 25, "Vino", 1)
	ctx := context.Background()

	cards, err := h.svc.Cards(ctx)
	require.NoError(t, err)
	require.Len(t, cards.Value, 1)
	assert.Equal(t, enums.CardCollapsed, cards.Value[0].State)
	require.True(t, cards.Value[0].SalesToday.Available)
	assert.Equal(t, "25", cards.Value[0].SalesToday.Value.String())
	assert.Equal(t, 0, h.svc.dynamic.Len())
	assert.Equal(t, 0, h.svc.snapshots.Len())
	assert.Equal(t, 1, h.svc.headlines.Len())

	// A fresh full entry is shared with the headline.
	_, err = h.svc.Expand(ctx, 1)
	require.NoError(t, err)
	h.svc.Collapse(1)
	h.sale(t, 1, 5, "Agua", 1)
	cards, err = h.svc.Cards(ctx)
	require.NoError(t, err)
	assert.Equal(t, "25", cards.Value[0].SalesToday.Value.String())
	assert.Equal(t, 1, h.svc.dynamic.Len())
}

func TestExpansionIsAbandonedWhenToggled(t *testing.T) {
	st := newState()
	token := st.beginExpand(1)
	assert.Equal(t, enums.CardExpanding, st.CardState(1))

	st.collapse(1)
	assert.False(t, st.finishExpand(1, token))
	assert.Equal(t, enums.CardCollapsed, st.CardState(1))
	assert.Greater(t, st.RefreshToken(), token)

	again := st.beginExpand(1)
	st.abortExpand(1, token)
	assert.Equal(t, enums.CardExpanding, st.CardState(1))
	assert.True(t, st.finishExpand(1, again))
	assert.Equal(t, []int{1}, st.Expanded())
}

func TestRefreshAllReportsDiff(t *testing.T) {
	h := newHarness(t)
	h.event(t, 1, "Feria", types.Document{"active": true})
	h.create(t, foreignCashDay(1, today, "OPEN"))
	ctx := context.Background()

	first, err := h.svc.RefreshAll(ctx)
	require.NoError(t, err)
	assert.True(t, first.First)
	assert.Equal(t, 1, first.Events)
	assert.Equal(t, []string{"1:fx-missing"}, first.Added)
	assert.Contains(t, first.Unavailable, "1:inventory-critical")

	require.NoError(t, h.conn.Model(&models.Event{}).Where("id = ?", 1).
		Updates(map[string]any{
			"data":       types.Document{"active": true, "fx": 36.5},
			"updated_at": h.clock.Now(),
		}).Error)

	second, err := h.svc.RefreshAll(ctx)
	require.NoError(t, err)
	assert.False(t, second.First)
	assert.Equal(t, []string{"1:fx-missing"}, second.Resolved)
	assert.Empty(t, second.Added)
	assert.Empty(t, second.StillPending)
	assert.Empty(t, second.Faults)

	synced, ok := h.svc.State().LastSync()
	assert.True(t, ok)
	assert.Equal(t, h.clock.Now(), synced)
}

func TestFocusPointer(t *testing.T) {
	h := newHarness(t)
	h.event(t, 1, "Feria", types.Document{"active": true})
	ctx := context.Background()

	assert.Equal(t, store.StatusEmpty, h.svc.FocusEvent(ctx).Status)
	require.NoError(t, h.svc.SetFocusEvent(ctx, 1))
	require.NoError(t, h.svc.SetFocusEvent(ctx, 1))

	restarted := New(Deps{Accessor: h.acc, Config: h.cfg, Clock: h.clock.Now})
	focus := restarted.FocusEvent(ctx)
	require.Equal(t, store.StatusOK, focus.Status)
	assert.Equal(t, 1, focus.Value)

	err := h.svc.SetFocusEvent(ctx, 7)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
	err = h.svc.SetFocusEvent(ctx, 0)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestOverviewReadsBlobs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.client.Set(ctx, h.client.BlobKey(redis.BlobInventory),
		`{"liquids":{"vino":{"stock":15,"max":100},"ron":{"stock":50,"max":100}},"bottles":{"agua":{"stock":20}}}`, 0))
	require.NoError(t, h.client.Set(ctx, h.client.BlobKey(redis.BlobPurchasePlan),
		`{"sections":{"byProveedor":[{"supplierName":"Acme","product":"Cups","quantity":"10","purchased":"sí"},{"supplierName":"Acme","product":"Plates","quantity":"5","purchased":"no"}]}}`, 0))
	require.NoError(t, h.client.Set(ctx, h.client.BlobKey(redis.BlobAnalyticsRecs),
		`{"items":[{"title":"Subir precio del vino"}]}`, 0))

	ov := h.svc.Overview(ctx)
	assert.Equal(t, today, ov.Today)
	require.True(t, ov.Inventory.Available)
	assert.Equal(t, 1, ov.Inventory.Value.Red)
	assert.Equal(t, 1, ov.Inventory.Value.Yellow)
	assert.Equal(t, 1, ov.Inventory.Value.Green)
	require.True(t, ov.Purchases.Available)
	assert.Equal(t, 1, ov.Purchases.Value.Count)
	require.True(t, ov.Recommendations.Available)
	assert.Len(t, *ov.Recommendations.Value, 1)
	assert.True(t, ov.Focus.Available)
}

func TestNoDatabaseDegradesEverything(t *testing.T) {
	cfg := config.Defaults()
	cfg.Timezone = "UTC"
	svc := New(Deps{Accessor: store.New(nil, store.Options{}), Config: cfg})
	ctx := context.Background()

	active := svc.GetActiveEvents(ctx)
	assert.Equal(t, store.StatusUnavailable, active.Status)
	assert.Equal(t, store.ReasonNoDatabase, active.Reason)

	res, err := svc.BuildAlerts(ctx, 1, "")
	require.NoError(t, err)
	assert.Empty(t, res.Alerts)
	for _, u := range res.Unavailable {
		assert.Equal(t, store.ReasonNoDatabase, u.Reason)
	}

	_, err = svc.GetSnapshot(ctx, 1)
	assert.Equal(t, pkgerrors.CodeUnavailable, pkgerrors.As(err).Code())

	_, err = svc.RefreshAll(ctx)
	assert.Equal(t, pkgerrors.CodeUnavailable, pkgerrors.As(err).Code())

	ov := svc.Overview(ctx)
	assert.False(t, ov.Inventory.Available)
	assert.Equal(t, store.ReasonNoBlobStore, ov.Inventory.Reason)
	assert.Nil(t, ov.Inventory.Value)
	assert.False(t, ov.Focus.Available)

	cards, err := svc.Cards(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.ReasonNoDatabase, cards.Reason)
}

func TestFaultSnapshotIsolatesEvent(t *testing.T) {
	h := newHarness(t)
	snap := h.svc.faultSnapshot(models.Event{ID: 5, Name: "Roto"}, today, "boom")
	assert.False(t, snap.Cash.Available)
	assert.Nil(t, snap.SalesToday.Value)
	assert.Equal(t, store.ReasonFault, snap.Checklist.Reason)
	assert.Len(t, snap.Unavailable, len(alerts.DefaultRules()))
	assert.Empty(t, snap.Alerts)
}
