// Package purchases extracts the lines of the purchase-planning blob that
// still have to be bought.
package purchases

import (
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/internal/textnorm"
	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
)

const (
	SectionBySupplier = "byProveedor"
	SectionMisc       = "varias"
)

var contentFields = []string{"product", "quantity", "price", "total"}

var purchasedValues = map[string]struct{}{
	"true": {},
	"1":    {},
	"si":   {},
	"yes":  {},
}

type Line struct {
	Section      string `json:"section"`
	SupplierID   string `json:"supplierId,omitempty"`
	SupplierName string `json:"supplierName,omitempty"`
	Product      string `json:"product,omitempty"`
	Quantity     string `json:"quantity,omitempty"`
	Price        string `json:"price,omitempty"`
	Total        string `json:"total,omitempty"`
}

type Pending struct {
	Lines []Line `json:"lines"`
	Count int    `json:"count"`
}

// IsPurchased accepts true, 1 and the strings "1", "si", "sí", "yes",
// "true" in any case.
func IsPurchased(v any) bool {
	switch typed := v.(type) {
	case bool:
		return typed
	case nil:
		return false
	}
	s, ok := types.AsString(v)
	if !ok {
		return false
	}
	_, ok = purchasedValues[textnorm.Fold(s)]
	return ok
}

func populated(v any) bool {
	switch typed := v.(type) {
	case nil:
		return false
	case string:
		return textnorm.Fold(typed) != ""
	default:
		return true
	}
}

func text(v any) string {
	s, _ := types.AsString(v)
	return s
}

// Extract lists the pending lines of both sections. A line needs at least one
// content field and must not be marked purchased. Reading more than ceiling
// lines makes the result unavailable.
func Extract(doc types.Document, ceiling int) store.Result[Pending] {
	sections := doc
	if nested, ok := doc.Object("sections"); ok {
		sections = nested
	} else if doc.Has("sections") {
		return store.Unavailable[Pending](store.ReasonMalformed)
	}

	out := Pending{Lines: []Line{}}
	scanned := 0
	for _, section := range []string{SectionBySupplier, SectionMisc} {
		raw, present := sections[section]
		if !present || raw == nil {
			continue
		}
		list, ok := types.AsSlice(raw)
		if !ok {
			return store.Unavailable[Pending](store.ReasonMalformed)
		}
		for _, entry := range flatten(list, section) {
			scanned++
			if ceiling > 0 && scanned > ceiling {
				return store.Unavailable[Pending](store.ReasonScanCeiling)
			}
			if line, ok := pendingLine(entry, section); ok {
				out.Lines = append(out.Lines, line)
			}
		}
	}
	out.Count = len(out.Lines)
	if out.Count == 0 {
		return store.Empty(out)
	}
	return store.OK(out)
}

type entry struct {
	line     types.Document
	supplier types.Document
}

// Supplier sections may group their lines under {supplierName, lines}.
func flatten(list []any, section string) []entry {
	out := make([]entry, 0, len(list))
	for _, raw := range list {
		m, ok := types.AsMap(raw)
		if !ok {
			continue
		}
		doc := types.Document(m)
		if section == SectionBySupplier {
			for _, field := range []string{"lines", "items"} {
				if nested, ok := types.AsSlice(doc[field]); ok {
					for _, child := range nested {
						if cm, ok := types.AsMap(child); ok {
							out = append(out, entry{line: types.Document(cm), supplier: doc})
						}
					}
					doc = nil
					break
				}
			}
		}
		if doc != nil {
			out = append(out, entry{line: doc})
		}
	}
	return out
}

func pendingLine(e entry, section string) (Line, bool) {
	hasContent := false
	for _, field := range contentFields {
		if populated(e.line[field]) {
			hasContent = true
			break
		}
	}
	if !hasContent || IsPurchased(e.line["purchased"]) {
		return Line{}, false
	}
	line := Line{
		Section:      section,
		SupplierID:   text(e.line["supplierId"]),
		SupplierName: text(e.line["supplierName"]),
		Product:      text(e.line["product"]),
		Quantity:     text(e.line["quantity"]),
		Price:        text(e.line["price"]),
		Total:        text(e.line["total"]),
	}
	if e.supplier != nil {
		if line.SupplierID == "" {
			line.SupplierID = text(e.supplier["supplierId"])
		}
		if line.SupplierName == "" {
			line.SupplierName = text(e.supplier["supplierName"])
		}
	}
	return line, true
}
