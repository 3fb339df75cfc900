package checklist

import (
	"time"

	"github.com/Arcano33sa/suitea33-sub002/internal/resolve"
	"github.com/Arcano33sa/suitea33-sub002/internal/signature"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"github.com/Arcano33sa/suitea33-sub002/pkg/enums"
)

// Bucket is the progress of one phase. Done+PendingCount always equals
// Total; placeholder-only items are excluded from all three and counted in
// Skipped.
type Bucket struct {
	Phase        enums.Phase `json:"phase"`
	Done         int         `json:"done"`
	Total        int         `json:"total"`
	PendingCount int         `json:"pendingCount"`
	PendingTexts []string    `json:"pendingTexts"`
	MoreCount    int         `json:"moreCount"`
	Skipped      int         `json:"skipped"`
}

type Breakdown struct {
	DayKey    string   `json:"dayKey"`
	DaySource string   `json:"daySource"`
	Shape     string   `json:"shape"`
	Phases    []Bucket `json:"phases"`
	HasItems  bool     `json:"hasItems"`
}

func (b Breakdown) Totals() (done, pending, total int) {
	for _, bucket := range b.Phases {
		done += bucket.Done
		pending += bucket.PendingCount
		total += bucket.Total
	}
	return done, pending, total
}

func (b Breakdown) Bucket(phase enums.Phase) (Bucket, bool) {
	for _, bucket := range b.Phases {
		if bucket.Phase == phase {
			return bucket, true
		}
	}
	return Bucket{}, false
}

// Clone returns a deep copy so cached breakdowns are never shared.
func (b Breakdown) Clone() Breakdown {
	out := b
	out.Phases = make([]Bucket, len(b.Phases))
	for i, bucket := range b.Phases {
		bucket.PendingTexts = append([]string(nil), bucket.PendingTexts...)
		out.Phases[i] = bucket
	}
	return out
}

// Compute builds the phase breakdown of an event for the checklist day
// resolved around today. textLimit caps PendingTexts per phase.
func Compute(event models.Event, today string, loc *time.Location, textLimit int) (res store.Result[Breakdown]) {
	defer func() {
		if r := recover(); r != nil {
			res = store.Unavailable[Breakdown](store.ReasonFault)
		}
	}()

	tpl := TemplateOf(event.Data)
	if !tpl.Known() {
		return store.Result[Breakdown]{Status: tpl.Status, Reason: tpl.Reason}
	}
	states := DayStates(event.Data, loc)
	day := ChooseDay(states, today)
	state := states[day.Value]

	buckets := make(map[enums.Phase]*Bucket, 3)
	out := Breakdown{DayKey: day.Value, DaySource: day.Source, Shape: tpl.Value.Shape}
	for _, phase := range enums.Phases() {
		buckets[phase] = &Bucket{Phase: phase, PendingTexts: []string{}}
	}

	for _, item := range tpl.Value.Items {
		bucket := buckets[item.Phase]
		if bucket == nil {
			bucket = buckets[enums.PhaseEvent]
		}
		text := resolve.ChecklistText(resolve.TextInput{ID: item.ID, Overrides: state.Texts, Template: item.Text})
		if !text.OK {
			bucket.Skipped++
			continue
		}
		bucket.Total++
		if state.IsChecked(item.ID) {
			bucket.Done++
			continue
		}
		bucket.PendingCount++
		if len(bucket.PendingTexts) < textLimit {
			bucket.PendingTexts = append(bucket.PendingTexts, text.Value)
		}
	}

	for _, phase := range enums.Phases() {
		bucket := buckets[phase]
		bucket.MoreCount = bucket.PendingCount - len(bucket.PendingTexts)
		out.Phases = append(out.Phases, *bucket)
		if bucket.Total > 0 {
			out.HasItems = true
		}
	}
	return store.OK(out)
}

// Signature fingerprints everything Compute reads: the event timestamp, the
// template size and the per-day checked and text counts.
func Signature(event models.Event, loc *time.Location) string {
	b := signature.New().Time("updatedAt", event.UpdatedAt)
	tpl := TemplateOf(event.Data)
	if tpl.Known() {
		b.Int("templateItems", len(tpl.Value.Items))
	} else {
		b.String("template", tpl.Reason)
	}
	checked := map[string]int{}
	texts := map[string]int{}
	for key, state := range DayStates(event.Data, loc) {
		checked[key] = len(state.Checked)
		texts[key] = len(state.Texts)
	}
	return b.Counts("checked", checked).Counts("texts", texts).Sum()
}
