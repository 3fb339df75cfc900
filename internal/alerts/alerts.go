// Package alerts turns snapshot metrics into prioritized actionable alerts.
// A rule that cannot be evaluated safely reports it on a separate channel;
// it never falls back to "no alert".
package alerts

import (
	"fmt"
	"sort"

	"github.com/Arcano33sa/suitea33-sub002/internal/cash"
	"github.com/Arcano33sa/suitea33-sub002/internal/checklist"
	"github.com/Arcano33sa/suitea33-sub002/internal/deliveries"
	"github.com/Arcano33sa/suitea33-sub002/internal/purchases"
	"github.com/Arcano33sa/suitea33-sub002/internal/reminders"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"github.com/Arcano33sa/suitea33-sub002/pkg/metrics"
)

// Rule keys.
const (
	KeyFXMissing         = "fx-missing"
	KeyDeliveriesOverdue = "deliveries-overdue"
	KeyCashOpen          = "cash-open"
	KeyChecklist         = "checklist-incomplete"
	KeyDeliveriesToday   = "deliveries-today"
	KeyInventoryCritical = "inventory-critical"
	KeyRemindersPending  = "reminders-pending"
	KeyPurchasesPending  = "purchases-pending"
)

// Priorities, highest first.
const (
	PriorityFXMissing         = 100
	PriorityDeliveriesOverdue = 95
	PriorityCashOpen          = 80
	PriorityChecklist         = 60
	PriorityDeliveriesToday   = 55
	PriorityInventoryCritical = 40
	PriorityOther             = 10
)

const (
	ReasonMissingEvent   = "missing-event"
	ReasonNoSafeEvaluate = "no-safe-computation"
	ReasonNotLoaded      = "not-loaded"
)

type CTA struct {
	Label string `json:"label"`
	Route string `json:"route"`
}

type Alert struct {
	Key      string             `json:"key"`
	Title    string             `json:"title"`
	Subtitle string             `json:"subtitle,omitempty"`
	Icon     string             `json:"icon"`
	Priority int                `json:"priority"`
	CTA      *CTA               `json:"cta,omitempty"`
	Phases   []checklist.Bucket `json:"phases,omitempty"`
}

// Unavailable records a rule that could not be evaluated.
type Unavailable struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Reason   string `json:"reason"`
	Priority int    `json:"priority"`
}

type OutcomeKind string

const (
	OutcomeNone        OutcomeKind = "none"
	OutcomeEmit        OutcomeKind = "emit"
	OutcomeUnavailable OutcomeKind = "unavailable"
)

type Outcome struct {
	Kind   OutcomeKind
	Alert  Alert
	Reason string
}

func none() Outcome { return Outcome{Kind: OutcomeNone} }

func emit(a Alert) Outcome { return Outcome{Kind: OutcomeEmit, Alert: a} }

func unavailable(reason string) Outcome {
	if reason == "" {
		reason = ReasonNotLoaded
	}
	return Outcome{Kind: OutcomeUnavailable, Reason: reason}
}

// Input is the metric set of one event and day. Event is nil when the event
// could not be loaded.
type Input struct {
	Event      *models.Event
	DayKey     string
	Today      string
	Cash       store.Result[cash.Kpis]
	Checklist  store.Result[checklist.Breakdown]
	Deliveries store.Result[deliveries.Counts]
	Reminders  store.Result[reminders.Counts]
	Purchases  store.Result[purchases.Pending]
}

type Rule struct {
	Key      string
	Title    string
	Priority int
	Evaluate func(Input) Outcome
}

// Result keeps alerts and unavailable rules apart; a rule lands in at most
// one of them.
type Result struct {
	Alerts      []Alert       `json:"alerts"`
	Unavailable []Unavailable `json:"unavailable"`
}

// Keys lists alert keys then unavailable keys.
func (r Result) Keys() (alerts, unavailable []string) {
	for _, a := range r.Alerts {
		alerts = append(alerts, a.Key)
	}
	for _, u := range r.Unavailable {
		unavailable = append(unavailable, u.Key)
	}
	return alerts, unavailable
}

type Engine struct {
	rules   []Rule
	metrics *metrics.DashboardMetrics
}

func NewEngine(m *metrics.DashboardMetrics) *Engine {
	return NewEngineWithRules(DefaultRules(), m)
}

func NewEngineWithRules(rules []Rule, m *metrics.DashboardMetrics) *Engine {
	return &Engine{rules: rules, metrics: m}
}

// Evaluate runs every rule. A panicking rule is reported unavailable.
func (e *Engine) Evaluate(in Input) Result {
	out := Result{Alerts: []Alert{}, Unavailable: []Unavailable{}}
	for _, rule := range e.rules {
		outcome := e.run(rule, in)
		e.metrics.RuleOutcome(rule.Key, string(outcome.Kind))
		switch outcome.Kind {
		case OutcomeEmit:
			a := outcome.Alert
			a.Key = rule.Key
			a.Priority = rule.Priority
			if a.Title == "" {
				a.Title = rule.Title
			}
			out.Alerts = append(out.Alerts, a)
		case OutcomeUnavailable:
			out.Unavailable = append(out.Unavailable, Unavailable{
				Key:      rule.Key,
				Title:    rule.Title,
				Reason:   outcome.Reason,
				Priority: rule.Priority,
			})
		}
	}
	sort.SliceStable(out.Alerts, func(i, j int) bool {
		return ordered(out.Alerts[i].Priority, out.Alerts[i].Key, out.Alerts[j].Priority, out.Alerts[j].Key)
	})
	sort.SliceStable(out.Unavailable, func(i, j int) bool {
		return ordered(out.Unavailable[i].Priority, out.Unavailable[i].Key, out.Unavailable[j].Priority, out.Unavailable[j].Key)
	})
	return out
}

// Unavailable reports every rule as not evaluable for reason, e.g. when the
// event itself could not be read.
func (e *Engine) Unavailable(reason string) Result {
	out := Result{Alerts: []Alert{}, Unavailable: make([]Unavailable, 0, len(e.rules))}
	for _, rule := range e.rules {
		e.metrics.RuleOutcome(rule.Key, string(OutcomeUnavailable))
		out.Unavailable = append(out.Unavailable, Unavailable{
			Key:      rule.Key,
			Title:    rule.Title,
			Reason:   unavailable(reason).Reason,
			Priority: rule.Priority,
		})
	}
	sort.SliceStable(out.Unavailable, func(i, j int) bool {
		return ordered(out.Unavailable[i].Priority, out.Unavailable[i].Key, out.Unavailable[j].Priority, out.Unavailable[j].Key)
	})
	return out
}

func ordered(pa int, ka string, pb int, kb string) bool {
	if pa != pb {
		return pa > pb
	}
	return ka < kb
}

func (e *Engine) run(rule Rule, in Input) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = unavailable(fmt.Sprintf("%s: %v", store.ReasonFault, r))
		}
	}()
	if in.Event == nil {
		return unavailable(ReasonMissingEvent)
	}
	if rule.Evaluate == nil {
		return none()
	}
	return rule.Evaluate(in)
}
