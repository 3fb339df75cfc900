package resolve

import (
	"github.com/Arcano33sa/suitea33-sub002/internal/textnorm"
	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
)

// Default labels the POS gives freshly created checklist rows.
var placeholders = map[string]struct{}{
	"":            {},
	"item":        {},
	"nuevo item":  {},
	"nuevo":       {},
	"nueva tarea": {},
	"new item":    {},
	"new task":    {},
	"tarea":       {},
}

// IsPlaceholder reports whether text is empty or one of the default labels.
func IsPlaceholder(text string) bool {
	_, ok := placeholders[textnorm.Fold(text)]
	return ok
}

// TextInput is one checklist item: the day-specific override map and the
// template text.
type TextInput struct {
	ID        string
	Overrides map[string]any
	Template  string
}

func usableText(v any) (string, bool) {
	s, ok := types.AsString(v)
	if !ok || IsPlaceholder(s) {
		return "", false
	}
	return s, true
}

var textChain = Chain[TextInput, string]{
	{Source: "day", Extract: func(in TextInput) (string, bool) {
		return usableText(in.Overrides[in.ID])
	}},
	{Source: "template", Extract: func(in TextInput) (string, bool) {
		return usableText(in.Template)
	}},
}

// ChecklistText resolves the display text of an item. Placeholder labels are
// never returned.
func ChecklistText(in TextInput) Resolution[string] {
	return textChain.Resolve(in)
}
