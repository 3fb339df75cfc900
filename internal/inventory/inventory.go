// Package inventory classifies the inventory blob into traffic-light risk.
package inventory

import (
	"sort"

	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/enums"
	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
	"github.com/shopspring/decimal"
)

const (
	KindLiquid = "liquid"
	KindBottle = "bottle"
)

var (
	liquidRed    = decimal.RequireFromString("0.20")
	liquidYellow = decimal.RequireFromString("0.35")
	bottleRed    = decimal.NewFromInt(10)
	bottleYellow = decimal.NewFromInt(20)
)

type Row struct {
	ID    string              `json:"id"`
	Kind  string              `json:"kind"`
	Stock decimal.NullDecimal `json:"stock"`
	Max   decimal.NullDecimal `json:"max"`
	Light enums.TrafficLight  `json:"light"`
}

type Summary struct {
	Red     int   `json:"red"`
	Yellow  int   `json:"yellow"`
	Green   int   `json:"green"`
	Unknown int   `json:"unknown"`
	Rows    []Row `json:"rows"`
}

// ClassifyLiquid: red when stock <= 0 or ratio <= 0.20, yellow when ratio <=
// 0.35, green above. Without a positive max the ratio is unknown.
func ClassifyLiquid(stock decimal.Decimal, max decimal.NullDecimal) enums.TrafficLight {
	if !stock.IsPositive() {
		return enums.TrafficRed
	}
	if !max.Valid || !max.Decimal.IsPositive() {
		return enums.TrafficUnknown
	}
	ratio := stock.Div(max.Decimal)
	switch {
	case ratio.LessThanOrEqual(liquidRed):
		return enums.TrafficRed
	case ratio.LessThanOrEqual(liquidYellow):
		return enums.TrafficYellow
	default:
		return enums.TrafficGreen
	}
}

// ClassifyBottle: red at or below 10 units, yellow at or below 20.
func ClassifyBottle(stock decimal.Decimal) enums.TrafficLight {
	switch {
	case stock.LessThanOrEqual(bottleRed):
		return enums.TrafficRed
	case stock.LessThanOrEqual(bottleYellow):
		return enums.TrafficYellow
	default:
		return enums.TrafficGreen
	}
}

func number(v any) decimal.NullDecimal {
	f, ok := types.AsFloat(v)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(f))
}

// Classify reads {liquids: {id: {stock, max}}, bottles: {id: {stock}}}.
// Rows whose stock is not a number are unknown. A blob of any other shape is
// unavailable.
func Classify(doc types.Document) store.Result[Summary] {
	out := Summary{Rows: []Row{}}
	sections := []struct {
		field string
		kind  string
	}{{"liquids", KindLiquid}, {"bottles", KindBottle}}

	for _, section := range sections {
		raw, present := doc[section.field]
		if !present || raw == nil {
			continue
		}
		entries, ok := types.AsMap(raw)
		if !ok {
			return store.Unavailable[Summary](store.ReasonMalformed)
		}
		ids := make([]string, 0, len(entries))
		for id := range entries {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			row := Row{ID: id, Kind: section.kind}
			if m, ok := types.AsMap(entries[id]); ok {
				row.Stock = number(m["stock"])
				row.Max = number(m["max"])
			} else {
				row.Stock = number(entries[id])
			}
			row.Light = classifyRow(row)
			out.add(row)
		}
	}
	if len(out.Rows) == 0 {
		return store.Empty(out)
	}
	return store.OK(out)
}

func classifyRow(row Row) enums.TrafficLight {
	if !row.Stock.Valid {
		return enums.TrafficUnknown
	}
	if row.Kind == KindBottle {
		return ClassifyBottle(row.Stock.Decimal)
	}
	return ClassifyLiquid(row.Stock.Decimal, row.Max)
}

func (s *Summary) add(row Row) {
	switch row.Light {
	case enums.TrafficRed:
		s.Red++
	case enums.TrafficYellow:
		s.Yellow++
	case enums.TrafficGreen:
		s.Green++
	default:
		s.Unknown++
	}
	s.Rows = append(s.Rows, row)
}
