package resolve

import (
	"testing"
	"time"

	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainFirstHitWinsAndRecovers(t *testing.T) {
	chain := Chain[int, string]{
		{Source: "boom", Extract: func(int) (string, bool) { panic("bad shape") }},
		{Source: "nil"},
		{Source: "odd", Extract: func(n int) (string, bool) { return "odd", n%2 == 1 }},
		{Source: "any", Extract: func(int) (string, bool) { return "any", true }},
	}
	assert.Equal(t, Resolution[string]{Value: "odd", Source: "odd", OK: true}, chain.Resolve(3))
	assert.Equal(t, "any", chain.Resolve(2).Source)

	none := Chain[int, string]{}.Resolve(1)
	assert.False(t, none.OK)
	assert.Equal(t, SourceNone, none.Source)
}

func TestValidFX(t *testing.T) {
	cases := []struct {
		in   any
		want string
		ok   bool
	}{
		{in: 36.6243, want: "36.62", ok: true},
		{in: "36,5", want: "36.5", ok: true},
		{in: 0.004, ok: false},
		{in: -1, ok: false},
		{in: "abc", ok: false},
		{in: nil, ok: false},
	}
	for _, tc := range cases {
		got, ok := ValidFX(tc.in)
		assert.Equalf(t, tc.ok, ok, "input %v", tc.in)
		if tc.ok {
			assert.Equalf(t, tc.want, got.String(), "input %v", tc.in)
		}
	}
}

func TestFXChainOrder(t *testing.T) {
	cacheCalls := 0
	cached := func() (any, bool) {
		cacheCalls++
		return "37.10", true
	}

	res := FX(FXInput{Event: types.Document{"fx": 0, "tipoCambio": "36.7"}, Cached: cached})
	require.True(t, res.OK)
	assert.Equal(t, "event.tipoCambio", res.Source)
	assert.Equal(t, "36.7", res.Value.String())
	assert.Zero(t, cacheCalls)

	res = FX(FXInput{Event: types.Document{}, CashDay: types.Document{"fx": 36.5}, Cached: cached})
	assert.Equal(t, "cashDay.fx", res.Source)

	res = FX(FXInput{Event: types.Document{}, Cached: cached})
	assert.Equal(t, "cache", res.Source)
	assert.Equal(t, "37.1", res.Value.String())
	assert.Equal(t, 1, cacheCalls)

	res = FX(FXInput{})
	assert.False(t, res.OK)
	assert.Equal(t, SourceNone, res.Source)
}

func TestCashEnabled(t *testing.T) {
	res := CashEnabled(CashEnabledInput{EventID: 2, Event: types.Document{"cashEnabled": false}, Overrides: types.Document{"2": true}})
	assert.False(t, res.Value)
	assert.Equal(t, "event.cashEnabled", res.Source)

	res = CashEnabled(CashEnabledInput{EventID: 2, Event: types.Document{"cash": map[string]any{"enabled": "false"}}})
	assert.False(t, res.Value)
	assert.Equal(t, "event.cash.enabled", res.Source)

	res = CashEnabled(CashEnabledInput{EventID: 2, Overrides: types.Document{"2": false}})
	assert.False(t, res.Value)
	assert.Equal(t, "override", res.Source)

	res = CashEnabled(CashEnabledInput{EventID: 3, Event: types.Document{"cashEnabled": "maybe"}})
	assert.True(t, res.Value)
	assert.Equal(t, SourceDefault, res.Source)
}

func TestChecklistTextSkipsPlaceholders(t *testing.T) {
	res := ChecklistText(TextInput{ID: "a", Overrides: map[string]any{"a": "Comprar hielo"}, Template: "Nuevo item"})
	assert.Equal(t, Resolution[string]{Value: "Comprar hielo", Source: "day", OK: true}, res)

	res = ChecklistText(TextInput{ID: "a", Overrides: map[string]any{"a": "  "}, Template: "Montar barra"})
	assert.Equal(t, "template", res.Source)

	res = ChecklistText(TextInput{ID: "a", Overrides: map[string]any{"a": "New Item"}, Template: "Nueva  Tarea"})
	assert.False(t, res.OK)
	assert.True(t, IsPlaceholder("NUEVO ÍTEM"))
	assert.False(t, IsPlaceholder("Revisar caja"))
}

func TestActiveEvents(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	window := 14 * 24 * time.Hour
	events := []models.Event{
		{ID: 1, UpdatedAt: now.Add(-20 * 24 * time.Hour)},
		{ID: 2, UpdatedAt: now.Add(-2 * time.Hour)},
		{ID: 3, UpdatedAt: now.Add(-30 * 24 * time.Hour), Data: types.Document{"active": true}},
		{ID: 4, UpdatedAt: now.Add(-1 * time.Hour), Data: types.Document{"status": "Cerrado"}},
		{ID: 5, UpdatedAt: now.Add(-40 * 24 * time.Hour), Data: types.Document{"updatedAt": now.Add(-time.Hour * 5).Format(time.RFC3339)}},
		{ID: 6, UpdatedAt: now.Add(-1 * time.Hour), Data: types.Document{"archived": true}},
		{ID: 7, UpdatedAt: now.Add(-3 * time.Hour), Data: types.Document{"status": "something-new"}},
	}

	got := ActiveEvents(events, now, window, 0)
	ids := make([]int, 0, len(got))
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int{2, 7, 5, 3}, ids)

	capped := ActiveEvents(events, now, window, 2)
	require.Len(t, capped, 2)
	assert.Equal(t, 2, capped[0].ID)

	activity := Classify(events[0], now, window)
	assert.False(t, activity.Active)
	assert.Equal(t, SourceRecency, activity.Source)
	assert.Equal(t, "active", Classify(events[2], now, window).Source)
}
