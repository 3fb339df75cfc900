package checklist

import (
	"sort"
	"time"

	"github.com/Arcano33sa/suitea33-sub002/internal/daykey"
	"github.com/Arcano33sa/suitea33-sub002/internal/resolve"
	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
)

// Sources of the checklist day key.
const (
	DaySourceToday   = "today"
	DaySourceLatest  = "latest"
	DaySourceDefault = "default"
)

// DayState is the checklist state recorded for one day.
type DayState struct {
	Checked  map[string]struct{}
	Texts    map[string]any
	HasState bool
}

func (d DayState) IsChecked(id string) bool {
	_, ok := d.Checked[id]
	return ok
}

// DayStates reads the per-day map of an event, normalizing its keys. Entries
// whose key is not a date are ignored.
func DayStates(data types.Document, loc *time.Location) map[string]DayState {
	days, ok := data.Object("days")
	if !ok {
		return map[string]DayState{}
	}
	out := make(map[string]DayState, len(days))
	for raw, value := range days {
		key, ok := daykey.Normalize(raw, loc)
		if !ok {
			continue
		}
		doc, ok := types.AsMap(value)
		if !ok {
			continue
		}
		state := readDayState(types.Document(doc))
		if prev, exists := out[key]; exists {
			state = mergeStates(prev, state)
		}
		out[key] = state
	}
	return out
}

func readDayState(day types.Document) DayState {
	state := DayState{Checked: map[string]struct{}{}, Texts: map[string]any{}}
	containers := []types.Document{day}
	if nested, ok := day.Object("checklist"); ok {
		containers = []types.Document{nested, day}
		state.HasState = true
	}

	for _, container := range containers {
		for _, field := range []string{"checkedIds", "checked"} {
			switch v := container[field].(type) {
			case []any:
				state.HasState = true
				for _, id := range v {
					if s, ok := types.AsString(id); ok && s != "" {
						state.Checked[s] = struct{}{}
					}
				}
			case map[string]any:
				state.HasState = true
				for id, flag := range v {
					if truthy(flag) {
						state.Checked[id] = struct{}{}
					}
				}
			}
		}
		for _, field := range []string{"texts", "textById", "checklistTexts"} {
			m, ok := types.AsMap(container[field])
			if !ok {
				continue
			}
			for id, text := range m {
				if _, exists := state.Texts[id]; !exists {
					state.Texts[id] = text
				}
			}
		}
	}
	return state
}

func truthy(v any) bool {
	if b, ok := types.AsBool(v); ok {
		return b
	}
	n, ok := types.AsFloat(v)
	return ok && n != 0
}

func mergeStates(a, b DayState) DayState {
	for id := range b.Checked {
		a.Checked[id] = struct{}{}
	}
	for id, text := range b.Texts {
		a.Texts[id] = text
	}
	a.HasState = a.HasState || b.HasState
	return a
}

type dayInput struct {
	states map[string]DayState
	today  string
}

var dayChain = resolve.Chain[dayInput, string]{
	{Source: DaySourceToday, Extract: func(in dayInput) (string, bool) {
		return in.today, in.states[in.today].HasState
	}},
	{Source: DaySourceLatest, Extract: func(in dayInput) (string, bool) {
		keys := make([]string, 0, len(in.states))
		for key, state := range in.states {
			if state.HasState && !daykey.Before(in.today, key) {
				keys = append(keys, key)
			}
		}
		if len(keys) == 0 {
			return "", false
		}
		sort.Strings(keys)
		return keys[len(keys)-1], true
	}},
	{Source: DaySourceDefault, Extract: func(in dayInput) (string, bool) {
		return in.today, true
	}},
}

// ChooseDay picks the day whose checklist state is shown: today when it has
// state, else the most recent past day with state, else today.
func ChooseDay(states map[string]DayState, today string) resolve.Resolution[string] {
	return dayChain.Resolve(dayInput{states: states, today: today})
}
