package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Mbelalia/facture-engine/internal/domain/invoice"
	"github.com/Mbelalia/facture-engine/internal/domain/layout"
)

func textRow(y float64, texts ...string) layout.Row {
	tokens := make([]layout.TextItem, 0, len(texts))
	x := 60.0
	for _, s := range texts {
		tokens = append(tokens, layout.TextItem{Text: s, X: x, Y: y})
		x += 60
	}
	return layout.Row{Y: y, Tokens: tokens}
}

func pageOf(rows ...layout.Row) []layout.RowPage {
	return []layout.RowPage{{PageNumber: 1, Rows: rows}}
}

func TestVendor(t *testing.T) {
	t.Run("furniture layout", func(t *testing.T) {
		pages := pageOf(
			textRow(40, "IKEA", "Tours"),
			textRow(100, "article numéro"),
			textRow(118, "305.332.14"),
		)
		assert.Equal(t, invoice.VendorIKEA, Vendor(pages))
	})

	t.Run("fashion layout", func(t *testing.T) {
		pages := pageOf(
			textRow(40, "LA REDOUTE"),
			textRow(100, "Réf: 324058581"),
			textRow(118, "Couleur: bleu"),
		)
		assert.Equal(t, invoice.VendorLaRedoute, Vendor(pages))
	})

	t.Run("fashion layout without brand name needs several labels", func(t *testing.T) {
		pages := pageOf(
			textRow(60, "Article", "Taille", "Quantité", "Remise", "Prix"),
			textRow(100, "Réf: 324058581"),
		)
		assert.Equal(t, invoice.VendorLaRedoute, Vendor(pages))
	})

	t.Run("unknown layout is generic", func(t *testing.T) {
		pages := pageOf(
			textRow(40, "Quincaillerie", "Dupont"),
			textRow(100, "Vis", "à", "bois", "4,90"),
		)
		assert.Equal(t, invoice.VendorGeneric, Vendor(pages))
	})

	t.Run("empty document is generic", func(t *testing.T) {
		assert.Equal(t, invoice.VendorGeneric, Vendor(nil))
		assert.Equal(t, invoice.VendorGeneric, Vendor(pageOf()))
	})

	t.Run("deterministic over repeated calls", func(t *testing.T) {
		pages := pageOf(
			textRow(40, "IKEA"),
			textRow(100, "article numéro"),
		)
		first := Vendor(pages)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, Vendor(pages))
		}
	})

	t.Run("decode artifact on brand token still matches", func(t *testing.T) {
		pages := pageOf(
			textRow(40, "IKEA®"),
			textRow(100, "article numéro"),
		)
		assert.Equal(t, invoice.VendorIKEA, Vendor(pages))
	})
}
