package cash

import (
	"sort"
	"strings"

	"github.com/Arcano33sa/suitea33-sub002/internal/textnorm"
	"github.com/Arcano33sa/suitea33-sub002/pkg/enums"
	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
	"github.com/shopspring/decimal"
)

var currencyAliases = map[string]string{
	"c$":       "NIO",
	"cordoba":  "NIO",
	"cordobas": "NIO",
	"us$":      "USD",
	"$":        "USD",
	"dolar":    "USD",
	"dolares":  "USD",
}

func normalizeCurrency(raw string) string {
	if alias, ok := currencyAliases[textnorm.Fold(raw)]; ok {
		return alias
	}
	return strings.ToUpper(strings.TrimSpace(raw))
}

// openingBalances sums the opening balance of each currency. A currency may
// hold a plain total, a {total} object or a denomination -> count map.
func openingBalances(data types.Document, base, foreign string) (map[string]decimal.Decimal, bool) {
	out := map[string]decimal.Decimal{base: decimal.Zero, foreign: decimal.Zero}
	var raw map[string]any
	for _, field := range openingFields {
		if m, ok := types.AsMap(data[field]); ok {
			raw = m
			break
		}
	}
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		currency := normalizeCurrency(key)
		if currency != base && currency != foreign {
			return nil, false
		}
		amount, ok := balanceAmount(raw[key])
		if !ok {
			return nil, false
		}
		out[currency] = out[currency].Add(amount)
	}
	return out, true
}

func balanceAmount(v any) (decimal.Decimal, bool) {
	if f, ok := types.AsFloat(v); ok {
		return decimal.NewFromFloat(f), true
	}
	if v == nil {
		return decimal.Zero, true
	}
	m, ok := types.AsMap(v)
	if !ok {
		return decimal.Decimal{}, false
	}
	if f, ok := types.AsFloat(m["total"]); ok {
		return decimal.NewFromFloat(f), true
	}
	denoms := m
	for _, field := range []string{"denoms", "denominations", "billetes"} {
		if nested, ok := types.AsMap(m[field]); ok {
			denoms = nested
			break
		}
	}
	sum := decimal.Zero
	for denom, count := range denoms {
		value, ok := types.AsFloat(denom)
		if !ok {
			return decimal.Decimal{}, false
		}
		n, ok := types.AsFloat(count)
		if !ok || n < 0 {
			return decimal.Decimal{}, false
		}
		sum = sum.Add(decimal.NewFromFloat(value).Mul(decimal.NewFromFloat(n)))
	}
	return sum, true
}

type movementSums struct {
	in, out, adjust map[string]decimal.Decimal
	foreignSeen     bool
}

// movementTotals sums ledger movements by kind and currency. IN and OUT are
// forced non-negative; ADJUST keeps its sign.
func movementTotals(data types.Document, base, foreign string) (movementSums, bool) {
	sums := movementSums{
		in:     map[string]decimal.Decimal{base: decimal.Zero, foreign: decimal.Zero},
		out:    map[string]decimal.Decimal{base: decimal.Zero, foreign: decimal.Zero},
		adjust: map[string]decimal.Decimal{base: decimal.Zero, foreign: decimal.Zero},
	}
	var list []any
	for _, field := range movementFields {
		if l, ok := types.AsSlice(data[field]); ok {
			list = l
			break
		}
	}
	for _, raw := range list {
		m, ok := types.AsMap(raw)
		if !ok {
			return sums, false
		}
		mv := types.Document(m)
		kind, ok := enums.ParseMovementKind(firstString(mv, "kind", "type", "tipo"))
		if !ok {
			return sums, false
		}
		currency := base
		if label := firstString(mv, "currency", "moneda"); label != "" {
			currency = normalizeCurrency(label)
		}
		if currency != base && currency != foreign {
			return sums, false
		}
		f, ok := types.AsFloat(firstValue(mv, "amount", "monto"))
		if !ok {
			return sums, false
		}
		amount := decimal.NewFromFloat(f)
		if currency == foreign && !amount.IsZero() {
			sums.foreignSeen = true
		}
		switch kind {
		case enums.MovementIn:
			sums.in[currency] = sums.in[currency].Add(amount.Abs())
		case enums.MovementOut:
			sums.out[currency] = sums.out[currency].Add(amount.Abs())
		case enums.MovementAdjust:
			sums.adjust[currency] = sums.adjust[currency].Add(amount)
		}
	}
	return sums, true
}

func firstString(d types.Document, fields ...string) string {
	for _, field := range fields {
		if s, ok := types.AsString(d[field]); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstValue(d types.Document, fields ...string) any {
	for _, field := range fields {
		if v, ok := d[field]; ok && v != nil {
			return v
		}
	}
	return nil
}
