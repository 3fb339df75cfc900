// Package checklist adapts the checklist templates the POS has stored over
// time to a canonical item list and computes per-phase progress for a day.
package checklist

import (
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/Arcano33sa/suitea33-sub002/internal/resolve"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/internal/textnorm"
	"github.com/Arcano33sa/suitea33-sub002/pkg/enums"
	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
)

const (
	// MaxTemplateDepth bounds how deep nested children are followed.
	MaxTemplateDepth = 4
	// MaxTemplateNodes bounds the number of template nodes visited.
	MaxTemplateNodes = 500
)

// Recognized template shapes.
const (
	ShapeNone    = "none"
	ShapePhased  = "phased"
	ShapeWrapped = "wrapped"
	ShapeFlat    = "flat"
)

var (
	errTooDeep  = errors.New("checklist template nested too deep")
	errTooLarge = errors.New("checklist template too large")
)

// Item is the canonical checklist row.
type Item struct {
	ID    string      `json:"id"`
	Text  string      `json:"text"`
	Phase enums.Phase `json:"phase"`
}

type Template struct {
	Shape string
	Items []Item
}

// Keys of the phased shape, folded.
var phaseKeys = map[string]enums.Phase{
	"pre":         enums.PhasePre,
	"preevento":   enums.PhasePre,
	"pre-evento":  enums.PhasePre,
	"pre_evento":  enums.PhasePre,
	"antes":       enums.PhasePre,
	"event":       enums.PhaseEvent,
	"evento":      enums.PhaseEvent,
	"durante":     enums.PhaseEvent,
	"close":       enums.PhaseClose,
	"cierre":      enums.PhaseClose,
	"post":        enums.PhaseClose,
	"postevento":  enums.PhaseClose,
	"post-evento": enums.PhaseClose,
}

var (
	itemTextFields  = []string{"text", "title", "label", "name", "texto", "titulo"}
	itemPhaseFields = []string{"phase", "fase", "etapa"}
	childFields     = []string{"children", "items", "subtasks", "tasks"}
	wrapperFields   = []string{"items", "tasks", "list"}
)

// InferPhase classifies a free-text phase label. Unclassified labels belong
// to the event phase.
func InferPhase(label string) enums.Phase {
	folded := textnorm.Fold(label)
	if p, ok := phaseKeys[folded]; ok {
		return p
	}
	// Close first: "desmontaje" contains "montaje".
	switch {
	case textnorm.ContainsAny(folded, "cierre", "post", "despues", "desmontaje", "close", "cerrar"):
		return enums.PhaseClose
	case strings.HasPrefix(folded, "pre"), textnorm.ContainsAny(folded, "antes", "montaje", "previo"):
		return enums.PhasePre
	default:
		return enums.PhaseEvent
	}
}

// templateChain locates the template on the event document.
var templateChain = resolve.Chain[types.Document, any]{
	{Source: "checklistTemplate", Extract: func(d types.Document) (any, bool) { return decodeTemplate(d["checklistTemplate"]) }},
	{Source: "checklist.template", Extract: func(d types.Document) (any, bool) {
		v, _ := d.Lookup("checklist", "template")
		return decodeTemplate(v)
	}},
	{Source: "checklist", Extract: func(d types.Document) (any, bool) { return decodeTemplate(d["checklist"]) }},
}

// Older POS builds stored the template as a JSON string.
func decodeTemplate(v any) (any, bool) {
	switch typed := v.(type) {
	case nil:
		return nil, false
	case string:
		s := strings.TrimSpace(typed)
		if s == "" {
			return nil, false
		}
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil, false
		}
		return decoded, decoded != nil
	default:
		return v, true
	}
}

// TemplateOf extracts and adapts the checklist template of an event.
func TemplateOf(data types.Document) store.Result[Template] {
	located := templateChain.Resolve(data)
	if !located.OK {
		return store.Empty(Template{Shape: ShapeNone, Items: []Item{}})
	}
	return ParseTemplate(located.Value)
}

// ParseTemplate adapts one of the recognized shapes. Templates exceeding the
// depth or node caps are unavailable rather than partially read.
func ParseTemplate(raw any) store.Result[Template] {
	shape, lists := classify(raw)
	if shape == "" {
		return store.Unavailable[Template](store.ReasonMalformed)
	}
	w := &walker{seen: map[string]struct{}{}}
	for _, l := range lists {
		if err := w.walk(l.items, l.phase, l.fixed, 1); err != nil {
			if errors.Is(err, errTooLarge) {
				return store.Unavailable[Template](store.ReasonScanCeiling)
			}
			return store.Unavailable[Template](store.ReasonMalformed)
		}
	}
	tpl := Template{Shape: shape, Items: w.items}
	if len(w.items) == 0 {
		return store.Empty(tpl)
	}
	return store.OK(tpl)
}

type phaseList struct {
	items []any
	phase enums.Phase
	fixed bool
}

func classify(raw any) (string, []phaseList) {
	if list, ok := types.AsSlice(raw); ok {
		return ShapeFlat, []phaseList{{items: list, phase: enums.PhaseEvent}}
	}
	m, ok := types.AsMap(raw)
	if !ok {
		return "", nil
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var phased []phaseList
	for _, phase := range enums.Phases() {
		for _, key := range keys {
			if phaseKeys[textnorm.Fold(key)] != phase {
				continue
			}
			if list, ok := types.AsSlice(m[key]); ok {
				phased = append(phased, phaseList{items: list, phase: phase, fixed: true})
			}
		}
	}
	if len(phased) > 0 {
		return ShapePhased, phased
	}

	for _, field := range wrapperFields {
		if list, ok := types.AsSlice(m[field]); ok {
			return ShapeWrapped, []phaseList{{items: list, phase: enums.PhaseEvent}}
		}
	}
	return "", nil
}

type walker struct {
	items []Item
	seen  map[string]struct{}
	nodes int
}

func (w *walker) walk(list []any, phase enums.Phase, fixed bool, depth int) error {
	if depth > MaxTemplateDepth {
		return errTooDeep
	}
	for _, raw := range list {
		w.nodes++
		if w.nodes > MaxTemplateNodes {
			return errTooLarge
		}
		switch node := raw.(type) {
		case string:
			w.add("", node, phase)
		case map[string]any:
			if err := w.walkNode(types.Document(node), phase, fixed, depth); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) walkNode(node types.Document, phase enums.Phase, fixed bool, depth int) error {
	if !fixed {
		for _, field := range itemPhaseFields {
			if label, ok := types.AsString(node[field]); ok && label != "" {
				phase = InferPhase(label)
				break
			}
		}
	}
	for _, field := range childFields {
		if children, ok := types.AsSlice(node[field]); ok {
			return w.walk(children, phase, fixed, depth+1)
		}
	}
	id, _ := types.AsString(node["id"])
	var text string
	for _, field := range itemTextFields {
		if s, ok := types.AsString(node[field]); ok && s != "" {
			text = s
			break
		}
	}
	w.add(id, text, phase)
	return nil
}

func (w *walker) add(id, text string, phase enums.Phase) {
	if id == "" {
		id = "#" + strconv.Itoa(len(w.items))
	}
	if _, dup := w.seen[id]; dup {
		return
	}
	w.seen[id] = struct{}{}
	w.items = append(w.items, Item{ID: id, Text: strings.TrimSpace(text), Phase: phase})
}
