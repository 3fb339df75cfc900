package resolve

import (
	"strconv"

	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
)

const SourceDefault = "default"

type CashEnabledInput struct {
	EventID   int
	Event     types.Document
	Overrides types.Document
}

var cashEnabledChain = Chain[CashEnabledInput, bool]{
	{Source: "event.cashEnabled", Extract: func(in CashEnabledInput) (bool, bool) {
		return types.AsBool(in.Event["cashEnabled"])
	}},
	{Source: "event.cash.enabled", Extract: func(in CashEnabledInput) (bool, bool) {
		v, ok := in.Event.Lookup("cash", "enabled")
		if !ok {
			return false, false
		}
		return types.AsBool(v)
	}},
	{Source: "override", Extract: func(in CashEnabledInput) (bool, bool) {
		return types.AsBool(in.Overrides[strconv.Itoa(in.EventID)])
	}},
	{Source: SourceDefault, Extract: func(CashEnabledInput) (bool, bool) {
		return true, true
	}},
}

// CashEnabled resolves whether the cash drawer is in use for an event.
// Without any evidence it defaults to enabled.
func CashEnabled(in CashEnabledInput) Resolution[bool] {
	return cashEnabledChain.Resolve(in)
}
