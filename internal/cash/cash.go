// Package cash reconciles the cash drawer of an event for its operative day.
package cash

import (
	"sort"
	"strings"

	"github.com/Arcano33sa/suitea33-sub002/internal/resolve"
	"github.com/Arcano33sa/suitea33-sub002/internal/sales"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"github.com/Arcano33sa/suitea33-sub002/pkg/enums"
	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
	"github.com/shopspring/decimal"
)

// How the operative day was found.
const (
	DaySourceOpen = "open"
	DaySourceDay  = "day"
	DaySourceNone = "none"
)

// StatusNone marks an enabled drawer without any record for the day.
const StatusNone = "NONE"

// Kpis is the drawer reconciliation. Money fields are null whenever they
// cannot be computed without guessing.
type Kpis struct {
	Enabled         bool                `json:"enabled"`
	EnabledSource   string              `json:"enabledSource"`
	Status          string              `json:"status"`
	OperativeDayKey string              `json:"operativeDayKey"`
	DaySource       string              `json:"daySource"`
	Currency        string              `json:"currency"`
	FX              decimal.NullDecimal `json:"fx"`
	FXSource        string              `json:"fxSource"`
	FxMissing       bool                `json:"fxMissing"`
	ForeignActivity bool                `json:"foreignActivity"`
	Opening         decimal.NullDecimal `json:"saldoInicial"`
	CashSales       decimal.NullDecimal `json:"ventasEfectivo"`
	Inflows         decimal.NullDecimal `json:"totalIngresos"`
	Outflows        decimal.NullDecimal `json:"totalEgresos"`
	Adjustments     decimal.NullDecimal `json:"totalAjustes"`
	Closing         decimal.NullDecimal `json:"saldoFinal"`
}

// Input is everything Compute needs. SalesRows is only called when the
// record carries no cash-sales snapshot; CachedFX only when neither the event
// nor the record has a valid rate.
type Input struct {
	Event     models.Event
	DayKey    string
	Records   []models.CashDay
	Overrides types.Document
	CachedFX  func() (any, bool)
	SalesRows func(day string) store.Result[[]models.Sale]
	Base      string
	Foreign   string
}

var (
	openingFields   = []string{"initial", "saldoInicial", "opening", "apertura"}
	movementFields  = []string{"movements", "movimientos"}
	cashSalesFields = []string{"cashSales", "ventasEfectivo"}
)

// Compute reconciles the drawer. Unknown movement kinds or currencies make
// the whole result unavailable instead of silently skipping rows.
func Compute(in Input) (res store.Result[Kpis]) {
	defer func() {
		if r := recover(); r != nil {
			res = store.Unavailable[Kpis](store.ReasonFault)
		}
	}()

	base := normalizeCurrency(in.Base)
	foreign := normalizeCurrency(in.Foreign)

	enabled := resolve.CashEnabled(resolve.CashEnabledInput{EventID: in.Event.ID, Event: in.Event.Data, Overrides: in.Overrides})
	out := Kpis{Enabled: enabled.Value, EnabledSource: enabled.Source, Currency: base, DaySource: DaySourceNone}
	if !enabled.Value {
		return store.OK(out)
	}

	record, daySource := OperativeDay(in.Records, in.DayKey)
	out.DaySource = daySource
	if record == nil {
		out.Status = StatusNone
		return store.OK(out)
	}
	out.Status = enums.ParseCashStatus(record.Status).String()
	out.OperativeDayKey = strings.TrimSpace(record.DayKey)

	fx := resolve.FX(resolve.FXInput{Event: in.Event.Data, CashDay: record.Data, Cached: in.CachedFX})
	out.FXSource = fx.Source
	if fx.OK {
		out.FX = decimal.NewNullDecimal(fx.Value)
	}

	opening, ok := openingBalances(record.Data, base, foreign)
	if !ok {
		return store.Unavailable[Kpis](store.ReasonMalformed)
	}
	moves, ok := movementTotals(record.Data, base, foreign)
	if !ok {
		return store.Unavailable[Kpis](store.ReasonMalformed)
	}

	out.ForeignActivity = !opening[foreign].IsZero() || moves.foreignSeen
	if out.ForeignActivity && !fx.OK {
		out.FxMissing = true
		return store.OK(out)
	}

	rate := decimal.Zero
	if fx.OK {
		rate = fx.Value
	}
	convert := func(perCurrency map[string]decimal.Decimal) decimal.Decimal {
		return perCurrency[base].Add(perCurrency[foreign].Mul(rate)).Round(2)
	}

	out.Opening = decimal.NewNullDecimal(convert(opening))
	out.Inflows = decimal.NewNullDecimal(convert(moves.in))
	out.Outflows = decimal.NewNullDecimal(convert(moves.out))
	out.Adjustments = decimal.NewNullDecimal(convert(moves.adjust))

	if cashSales, ok := cashSalesOf(record, in.SalesRows); ok {
		out.CashSales = decimal.NewNullDecimal(cashSales.Round(2))
		out.Closing = decimal.NewNullDecimal(out.Opening.Decimal.
			Add(out.CashSales.Decimal).
			Add(out.Inflows.Decimal).
			Sub(out.Outflows.Decimal).
			Add(out.Adjustments.Decimal).
			Round(2))
	}
	return store.OK(out)
}

// OperativeDay picks the record the drawer is operating on. An OPEN record
// wins over a record of the literal day, since a cash day can run past
// midnight; among several open records the latest day wins.
func OperativeDay(records []models.CashDay, day string) (*models.CashDay, string) {
	var open []models.CashDay
	var sameDay *models.CashDay
	for i := range records {
		if enums.ParseCashStatus(records[i].Status) == enums.CashStatusOpen {
			open = append(open, records[i])
		}
		if sameDay == nil && strings.TrimSpace(records[i].DayKey) == day {
			sameDay = &records[i]
		}
	}
	if len(open) > 0 {
		sort.SliceStable(open, func(i, j int) bool { return open[i].DayKey > open[j].DayKey })
		return &open[0], DaySourceOpen
	}
	if sameDay != nil {
		return sameDay, DaySourceDay
	}
	return nil, DaySourceNone
}

func cashSalesOf(record *models.CashDay, rows func(string) store.Result[[]models.Sale]) (decimal.Decimal, bool) {
	for _, field := range cashSalesFields {
		if f, ok := types.AsFloat(record.Data[field]); ok {
			return decimal.NewFromFloat(f), true
		}
	}
	if rows == nil {
		return decimal.Decimal{}, false
	}
	res := rows(strings.TrimSpace(record.DayKey))
	if !res.Known() {
		return decimal.Decimal{}, false
	}
	return sales.CashTotal(res.Value), true
}
