package purchases

import (
	"testing"

	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSkipsPurchasedLines(t *testing.T) {
	doc := types.Document{"sections": map[string]any{
		"byProveedor": []any{
			map[string]any{"supplierName": "Acme", "product": "Cups", "quantity": "10", "purchased": "sí"},
			map[string]any{"supplierName": "Acme", "product": "Plates", "quantity": "5", "purchased": "no"},
		},
		"varias": []any{
			map[string]any{"product": "   ", "quantity": ""},
			map[string]any{"total": 35.5},
			map[string]any{"product": "Hielo", "purchased": true},
		},
	}}
	res := Extract(doc, 100)
	require.Equal(t, store.StatusOK, res.Status)
	require.Equal(t, 2, res.Value.Count)
	assert.Equal(t, Line{Section: SectionBySupplier, SupplierName: "Acme", Product: "Plates", Quantity: "5"}, res.Value.Lines[0])
	assert.Equal(t, Line{Section: SectionMisc, Total: "35.5"}, res.Value.Lines[1])
}

func TestExtractGroupedSupplierLines(t *testing.T) {
	doc := types.Document{"byProveedor": []any{
		map[string]any{"supplierId": "s1", "supplierName": "Licores", "lines": []any{
			map[string]any{"product": "Ron", "quantity": 2},
			map[string]any{"product": "Vodka", "purchased": 1},
		}},
	}}
	res := Extract(doc, 100)
	require.Equal(t, 1, res.Value.Count)
	assert.Equal(t, "s1", res.Value.Lines[0].SupplierID)
	assert.Equal(t, "Licores", res.Value.Lines[0].SupplierName)
}

func TestExtractCeilingAndShapes(t *testing.T) {
	lines := make([]any, 0, 6)
	for i := 0; i < 6; i++ {
		lines = append(lines, map[string]any{"product": "x"})
	}
	over := Extract(types.Document{"sections": map[string]any{"varias": lines}}, 5)
	assert.Equal(t, store.StatusUnavailable, over.Status)
	assert.Equal(t, store.ReasonScanCeiling, over.Reason)

	assert.Equal(t, store.StatusEmpty, Extract(types.Document{}, 5).Status)
	assert.Equal(t, store.ReasonMalformed, Extract(types.Document{"sections": "bad"}, 5).Reason)
	assert.Equal(t, store.ReasonMalformed, Extract(types.Document{"sections": map[string]any{"varias": "bad"}}, 5).Reason)
}

func TestIsPurchased(t *testing.T) {
	for _, v := range []any{true, "1", 1, 1.0, "SI", "Sí", "yes", "TRUE", " si "} {
		assert.Truef(t, IsPurchased(v), "%v", v)
	}
	for _, v := range []any{false, "0", 0, "no", "", nil, "purchased", []any{}} {
		assert.Falsef(t, IsPurchased(v), "%v", v)
	}
}
