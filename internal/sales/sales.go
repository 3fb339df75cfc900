// Package sales aggregates the day's sales per event.
package sales

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Arcano33sa/suitea33-sub002/internal/daykey"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/internal/textnorm"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"github.com/shopspring/decimal"
)

const (
	SourceDateIndex = "date-index"
	SourceEventScan = "event-scan"
)

// Payment labels counted as cash in hand.
var cashPayments = map[string]struct{}{
	"efectivo": {},
	"cash":     {},
	"contado":  {},
}

type ProductQty struct {
	Name string  `json:"name"`
	Qty  float64 `json:"qty"`
}

// Summary is one event's sales for one day.
type Summary struct {
	DayKey      string          `json:"dayKey"`
	Total       decimal.Decimal `json:"total"`
	Count       int             `json:"count"`
	TopProducts []ProductQty    `json:"topProducts"`
	Source      string          `json:"source"`
}

// Day holds every event's summary for a day, built from a single read.
type Day struct {
	DayKey  string
	ByEvent map[int]Summary
	Source  string
}

// Event returns the summary for eventID; events without sales get a known
// zero summary.
func (d Day) Event(eventID int) Summary {
	if s, ok := d.ByEvent[eventID]; ok {
		return s
	}
	return Summary{DayKey: d.DayKey, Total: decimal.Zero, TopProducts: []ProductQty{}, Source: d.Source}
}

type Reader struct {
	acc  *store.Accessor
	topN int
	loc  *time.Location
}

func NewReader(acc *store.Accessor, topN int, loc *time.Location) *Reader {
	if loc == nil {
		loc = time.UTC
	}
	return &Reader{acc: acc, topN: topN, loc: loc}
}

// ForDay reads every sale of day through the date index and groups it by
// event. Without the index the result is Unsupported and callers fall back to
// ForEvent.
func (r *Reader) ForDay(ctx context.Context, day string) store.Result[Day] {
	rows := r.byDate(ctx, day, nil)
	return store.Map(rows, func(rows []models.Sale) Day {
		return GroupByEvent(rows, day, r.topN, SourceDateIndex)
	})
}

// ForEvent aggregates one event's sales for day. It prefers the date index
// and only scans the event's rows when that index is absent.
func (r *Reader) ForEvent(ctx context.Context, eventID int, day string) store.Result[Summary] {
	rows, source := r.rows(ctx, eventID, day)
	return store.Map(rows, func(rows []models.Sale) Summary {
		return Aggregate(rows, day, r.topN, source)
	})
}

// Rows returns one event's sale rows for day, using the same index fallback
// as ForEvent.
func (r *Reader) Rows(ctx context.Context, eventID int, day string) store.Result[[]models.Sale] {
	rows, _ := r.rows(ctx, eventID, day)
	return rows
}

func (r *Reader) rows(ctx context.Context, eventID int, day string) (store.Result[[]models.Sale], string) {
	byDate := r.byDate(ctx, day, map[string]any{"event_id": eventID})
	if !byDate.IsUnsupported() {
		return byDate, SourceDateIndex
	}
	byEvent := store.ListByIndex[models.Sale](ctx, r.acc, models.IndexSalesByEvent, store.Range{
		Column:  "event_id",
		Eq:      eventID,
		OrderBy: "id",
	})
	if byEvent.IsUnsupported() {
		return store.Unavailable[[]models.Sale](byEvent.Reason), SourceEventScan
	}
	filtered := store.Map(byEvent, func(rows []models.Sale) []models.Sale {
		out := make([]models.Sale, 0, len(rows))
		for _, row := range rows {
			if daykey.Matches(row.Date, day, r.loc) {
				out = append(out, row)
			}
		}
		return out
	})
	return filtered, SourceEventScan
}

// byDate collects the day's rows through the date index. Dates are stored as
// typed, so the index is read once per spelling of day and once for values
// with leading whitespace; every candidate is then checked with
// daykey.Matches. The union shares the single scan ceiling.
func (r *Reader) byDate(ctx context.Context, day string, filter map[string]any) store.Result[[]models.Sale] {
	ranges := make([]store.Range, 0, 8)
	for _, prefix := range daykey.Spellings(day) {
		ranges = append(ranges, store.Range{Column: "date", Prefix: prefix, Filter: filter, OrderBy: "id"})
	}
	// Anything sorting at or below "!" starts with whitespace or is blank.
	ranges = append(ranges, store.Range{Column: "date", Upper: "!", Filter: filter, OrderBy: "id"})

	seen := map[int]struct{}{}
	rows := []models.Sale{}
	for _, rng := range ranges {
		res := store.ListByIndex[models.Sale](ctx, r.acc, models.IndexSalesByDate, rng)
		if !res.Known() {
			return res
		}
		for _, row := range res.Value {
			if _, dup := seen[row.ID]; dup {
				continue
			}
			seen[row.ID] = struct{}{}
			if daykey.Matches(row.Date, day, r.loc) {
				rows = append(rows, row)
			}
		}
		if len(seen) > r.acc.ScanLimit() {
			return store.Unavailable[[]models.Sale](store.ReasonScanCeiling)
		}
	}
	if len(rows) == 0 {
		return store.Empty(rows)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return store.OK(rows)
}

// GroupByEvent splits rows by event and aggregates each group.
func GroupByEvent(rows []models.Sale, day string, topN int, source string) Day {
	grouped := map[int][]models.Sale{}
	for _, row := range rows {
		grouped[row.EventID] = append(grouped[row.EventID], row)
	}
	out := Day{DayKey: day, ByEvent: make(map[int]Summary, len(grouped)), Source: source}
	for eventID, eventRows := range grouped {
		out.ByEvent[eventID] = Aggregate(eventRows, day, topN, source)
	}
	return out
}

// Aggregate sums totals and ranks products by quantity. Only positive
// quantities are ranked; ties are broken by name ascending.
func Aggregate(rows []models.Sale, day string, topN int, source string) Summary {
	total := decimal.Zero
	qtyByName := map[string]float64{}
	display := map[string]string{}
	for _, row := range rows {
		total = total.Add(row.Total)
		if row.Qty <= 0 {
			continue
		}
		name := strings.TrimSpace(row.ProductName)
		key := textnorm.Fold(name)
		if key == "" {
			continue
		}
		if _, ok := display[key]; !ok {
			display[key] = name
		}
		qtyByName[key] += row.Qty
	}

	top := make([]ProductQty, 0, len(qtyByName))
	for key, qty := range qtyByName {
		top = append(top, ProductQty{Name: display[key], Qty: qty})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Qty != top[j].Qty {
			return top[i].Qty > top[j].Qty
		}
		return top[i].Name < top[j].Name
	})
	if topN > 0 && len(top) > topN {
		top = top[:topN]
	}
	return Summary{DayKey: day, Total: total, Count: len(rows), TopProducts: top, Source: source}
}

// IsCashPayment reports whether payment is a cash-equivalent method.
func IsCashPayment(payment string) bool {
	_, ok := cashPayments[textnorm.Fold(payment)]
	return ok
}

// CashTotal sums cash-paid, non-courtesy sales.
func CashTotal(rows []models.Sale) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		if row.Courtesy || !IsCashPayment(row.Payment) {
			continue
		}
		total = total.Add(row.Total)
	}
	return total
}
