package alerts

import (
	"fmt"
	"strconv"

	"github.com/Arcano33sa/suitea33-sub002/internal/daykey"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/enums"
)

func route(path string, in Input) string {
	return path + "?event=" + strconv.Itoa(in.Event.ID)
}

// DefaultRules returns the rule set in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Key: KeyFXMissing, Title: "Falta T/C", Priority: PriorityFXMissing, Evaluate: fxMissing},
		{Key: KeyDeliveriesOverdue, Title: "Entregas atrasadas", Priority: PriorityDeliveriesOverdue, Evaluate: deliveriesOverdue},
		{Key: KeyCashOpen, Title: "Caja abierta", Priority: PriorityCashOpen, Evaluate: cashOpen},
		{Key: KeyChecklist, Title: "Checklist incompleto", Priority: PriorityChecklist, Evaluate: checklistIncomplete},
		{Key: KeyDeliveriesToday, Title: "Entregas de hoy", Priority: PriorityDeliveriesToday, Evaluate: deliveriesToday},
		{Key: KeyInventoryCritical, Title: "Inventario crítico", Priority: PriorityInventoryCritical, Evaluate: inventoryCritical},
		{Key: KeyRemindersPending, Title: "Recordatorios pendientes", Priority: PriorityOther, Evaluate: remindersPending},
		{Key: KeyPurchasesPending, Title: "Compras pendientes", Priority: PriorityOther, Evaluate: purchasesPending},
	}
}

func fxMissing(in Input) Outcome {
	if !in.Cash.Known() {
		return unavailable(in.Cash.Reason)
	}
	k := in.Cash.Value
	if !k.Enabled || !k.FxMissing {
		return none()
	}
	return emit(Alert{
		Title:    "Falta T/C",
		Subtitle: "Hay movimientos en moneda extranjera sin tipo de cambio",
		Icon:     "currency-exchange",
		CTA:      &CTA{Label: "Registrar T/C", Route: route("/caja", in)},
	})
}

func deliveriesOverdue(in Input) Outcome {
	if !in.Deliveries.Known() {
		return unavailable(in.Deliveries.Reason)
	}
	n := in.Deliveries.Value.Overdue
	if n == 0 {
		return none()
	}
	return emit(Alert{
		Subtitle: fmt.Sprintf("%d pedido(s) con fecha de entrega vencida", n),
		Icon:     "truck-alert",
		CTA:      &CTA{Label: "Ver pedidos", Route: route("/pedidos", in)},
	})
}

// cashOpen fires when an OPEN record belongs to a day before today.
func cashOpen(in Input) Outcome {
	if !in.Cash.Known() {
		return unavailable(in.Cash.Reason)
	}
	k := in.Cash.Value
	if !k.Enabled || k.Status != enums.CashStatusOpen.String() {
		return none()
	}
	if !daykey.Valid(k.OperativeDayKey) {
		return unavailable(store.ReasonMalformed)
	}
	if !daykey.Before(k.OperativeDayKey, in.Today) {
		return none()
	}
	return emit(Alert{
		Subtitle: fmt.Sprintf("La caja del %s sigue abierta", k.OperativeDayKey),
		Icon:     "cash-register",
		CTA:      &CTA{Label: "Cerrar caja", Route: route("/caja", in)},
	})
}

func checklistIncomplete(in Input) Outcome {
	if !in.Checklist.Known() {
		return unavailable(in.Checklist.Reason)
	}
	b := in.Checklist.Value
	_, pending, total := b.Totals()
	if pending == 0 {
		return none()
	}
	return emit(Alert{
		Subtitle: fmt.Sprintf("%d de %d tareas pendientes", pending, total),
		Icon:     "checklist",
		CTA:      &CTA{Label: "Abrir checklist", Route: route("/checklist", in)},
		Phases:   b.Clone().Phases,
	})
}

func deliveriesToday(in Input) Outcome {
	if !in.Deliveries.Known() {
		return unavailable(in.Deliveries.Reason)
	}
	n := in.Deliveries.Value.DueToday
	if n == 0 {
		return none()
	}
	return emit(Alert{
		Subtitle: fmt.Sprintf("%d pedido(s) para entregar hoy", n),
		Icon:     "truck",
		CTA:      &CTA{Label: "Ver pedidos", Route: route("/pedidos", in)},
	})
}

// No threshold for "critical" inventory is defined that avoids guessing.
func inventoryCritical(Input) Outcome {
	return unavailable(ReasonNoSafeEvaluate)
}

func remindersPending(in Input) Outcome {
	if !in.Reminders.Known() {
		return unavailable(in.Reminders.Reason)
	}
	r := in.Reminders.Value
	if r.Pending == 0 {
		return none()
	}
	subtitle := fmt.Sprintf("%d pendiente(s)", r.Pending)
	if r.HighPriority > 0 {
		subtitle += fmt.Sprintf(", %d de prioridad alta", r.HighPriority)
	}
	if r.NextDue != "" {
		subtitle += ", próximo " + r.NextDue
	}
	return emit(Alert{
		Subtitle: subtitle,
		Icon:     "bell",
		CTA:      &CTA{Label: "Ver recordatorios", Route: route("/recordatorios", in)},
	})
}

func purchasesPending(in Input) Outcome {
	if !in.Purchases.Known() {
		return unavailable(in.Purchases.Reason)
	}
	n := in.Purchases.Value.Count
	if n == 0 {
		return none()
	}
	return emit(Alert{
		Subtitle: fmt.Sprintf("%d línea(s) por comprar", n),
		Icon:     "cart",
		CTA:      &CTA{Label: "Ver compras", Route: "/compras"},
	})
}
