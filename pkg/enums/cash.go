package enums

import "strings"

// CashStatus is the lifecycle state of a cash-drawer day.
type CashStatus string

const (
	CashStatusOpen    CashStatus = "OPEN"
	CashStatusClosed  CashStatus = "CLOSED"
	CashStatusUnknown CashStatus = "UNKNOWN"
)

// ParseCashStatus is lenient: the POS has written both cases and Spanish
// labels. Anything unrecognized maps to CashStatusUnknown.
func ParseCashStatus(value string) CashStatus {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "OPEN", "ABIERTO", "ABIERTA":
		return CashStatusOpen
	case "CLOSED", "CERRADO", "CERRADA":
		return CashStatusClosed
	default:
		return CashStatusUnknown
	}
}

func (c CashStatus) String() string {
	return string(c)
}

// MovementKind classifies a cash ledger movement.
type MovementKind string

const (
	MovementIn     MovementKind = "IN"
	MovementOut    MovementKind = "OUT"
	MovementAdjust MovementKind = "ADJUST"
)

var validMovementKinds = []MovementKind{
	MovementIn,
	MovementOut,
	MovementAdjust,
}

func (m MovementKind) String() string {
	return string(m)
}

func (m MovementKind) IsValid() bool {
	for _, candidate := range validMovementKinds {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMovementKind accepts the canonical kinds plus the Spanish aliases used
// by older ledgers. ok is false for anything else.
func ParseMovementKind(value string) (MovementKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "IN", "INGRESO", "ENTRADA":
		return MovementIn, true
	case "OUT", "EGRESO", "SALIDA":
		return MovementOut, true
	case "ADJUST", "AJUSTE":
		return MovementAdjust, true
	default:
		return "", false
	}
}
