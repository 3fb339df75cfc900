package resolve

import (
	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
	"github.com/shopspring/decimal"
)

// Legacy event fields that carried the exchange rate before "fx".
var legacyFXFields = []string{"fxRate", "tipoCambio", "tc", "exchangeRate"}

// FXInput gathers every place an exchange rate may live. Cached is only
// called when the event and cash day have no valid rate.
type FXInput struct {
	Event   types.Document
	CashDay types.Document
	Cached  func() (any, bool)
}

// ValidFX accepts a rate only if it rounds to a positive two-decimal value.
func ValidFX(v any) (decimal.Decimal, bool) {
	f, ok := types.AsFloat(v)
	if !ok {
		return decimal.Decimal{}, false
	}
	rate := decimal.NewFromFloat(f).Round(2)
	if !rate.IsPositive() {
		return decimal.Decimal{}, false
	}
	return rate, true
}

func documentField(pick func(FXInput) types.Document, field string) func(FXInput) (decimal.Decimal, bool) {
	return func(in FXInput) (decimal.Decimal, bool) {
		doc := pick(in)
		if doc == nil {
			return decimal.Decimal{}, false
		}
		return ValidFX(doc[field])
	}
}

var fxChain = func() Chain[FXInput, decimal.Decimal] {
	event := func(in FXInput) types.Document { return in.Event }
	chain := Chain[FXInput, decimal.Decimal]{
		{Source: "event.fx", Extract: documentField(event, "fx")},
	}
	for _, field := range legacyFXFields {
		chain = append(chain, Candidate[FXInput, decimal.Decimal]{
			Source:  "event." + field,
			Extract: documentField(event, field),
		})
	}
	return append(chain,
		Candidate[FXInput, decimal.Decimal]{
			Source:  "cashDay.fx",
			Extract: documentField(func(in FXInput) types.Document { return in.CashDay }, "fx"),
		},
		Candidate[FXInput, decimal.Decimal]{
			Source: "cache",
			Extract: func(in FXInput) (decimal.Decimal, bool) {
				if in.Cached == nil {
					return decimal.Decimal{}, false
				}
				raw, ok := in.Cached()
				if !ok {
					return decimal.Decimal{}, false
				}
				return ValidFX(raw)
			},
		},
	)
}()

// FX resolves the event's exchange rate.
func FX(in FXInput) Resolution[decimal.Decimal] {
	return fxChain.Resolve(in)
}
