package alerts

import (
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/internal/textnorm"
	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
)

const (
	RecommendationFromAlert     = "alert"
	RecommendationFromAnalytics = "analytics"
)

type Recommendation struct {
	Text   string `json:"text"`
	Reason string `json:"reason,omitempty"`
	Link   string `json:"link,omitempty"`
	Source string `json:"source"`
}

// AnalyticsRec is one entry of the analytics recommendations blob.
type AnalyticsRec struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Reason     string `json:"reason"`
	ActionLink string `json:"actionLink"`
	CopyText   string `json:"copyText"`
	UpdatedAt  string `json:"updatedAt"`
}

// ParseAnalytics accepts either an array or {items: [...]}. Entries without a
// title are dropped; a payload of any other shape is unavailable.
func ParseAnalytics(raw store.Result[any]) store.Result[[]AnalyticsRec] {
	if !raw.Known() {
		return store.Result[[]AnalyticsRec]{Status: raw.Status, Reason: raw.Reason}
	}
	if raw.Value == nil {
		return store.Empty([]AnalyticsRec{})
	}
	list, ok := types.AsSlice(raw.Value)
	if !ok {
		m, isMap := types.AsMap(raw.Value)
		if !isMap {
			return store.Unavailable[[]AnalyticsRec](store.ReasonMalformed)
		}
		list, ok = types.AsSlice(m["items"])
		if !ok {
			return store.Unavailable[[]AnalyticsRec](store.ReasonMalformed)
		}
	}
	out := make([]AnalyticsRec, 0, len(list))
	for _, item := range list {
		m, ok := types.AsMap(item)
		if !ok {
			continue
		}
		d := types.Document(m)
		rec := AnalyticsRec{
			Type:       str(d["type"]),
			Title:      str(d["title"]),
			Reason:     str(d["reason"]),
			ActionLink: str(d["actionLink"]),
			CopyText:   str(d["copyText"]),
			UpdatedAt:  str(d["updatedAt"]),
		}
		if rec.Title == "" {
			continue
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return store.Empty(out)
	}
	return store.OK(out)
}

func str(v any) string {
	s, _ := types.AsString(v)
	return s
}

// Recommend composes a short list: alert titles in priority order, then
// analytics entries. Texts that are equal after case, diacritic and
// whitespace folding are kept once.
func Recommend(alerts []Alert, analytics []AnalyticsRec, limit int) []Recommendation {
	out := []Recommendation{}
	seen := map[string]struct{}{}
	add := func(r Recommendation) bool {
		if limit > 0 && len(out) >= limit {
			return false
		}
		key := textnorm.Fold(r.Text)
		if key == "" {
			return true
		}
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}
		out = append(out, r)
		return true
	}
	for _, a := range alerts {
		r := Recommendation{Text: a.Title, Reason: a.Subtitle, Source: RecommendationFromAlert}
		if a.CTA != nil {
			r.Link = a.CTA.Route
		}
		if !add(r) {
			return out
		}
	}
	for _, rec := range analytics {
		if !add(Recommendation{Text: rec.Title, Reason: rec.Reason, Link: rec.ActionLink, Source: RecommendationFromAnalytics}) {
			return out
		}
	}
	return out
}
