package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateColumns(t *testing.T) {
	t.Run("medians of glyphs integers and letter rows", func(t *testing.T) {
		pages := []RowPage{{Rows: []Row{
			makeRow(100, item("Chaise", 60, 100), item("2", 400, 100), item("49,90", 455, 100), item("€", 500, 100)),
			makeRow(120, item("Lampe", 62, 120), item("1", 402, 120), item("19,99", 455, 120), item("€", 501, 120)),
			makeRow(140, item("Table", 58, 140), item("3", 398, 140), item("149,00", 455, 140), item("€", 499, 140)),
		}}}

		cols := EstimateColumns(pages)
		assert.InDelta(t, 500.0, cols.PriceX, 0.001)
		assert.InDelta(t, 400.0, cols.QuantityX, 0.001)
		assert.InDelta(t, 60.0, cols.DescriptionX, 0.001)
	})

	t.Run("idempotent", func(t *testing.T) {
		g := NewInvoiceFaker(7)
		pages := ClusterDocument(Document{Pages: []Page{g.Page(1, 20)}}, DefaultClusterOptions())
		assert.Equal(t, EstimateColumns(pages), EstimateColumns(pages))
	})

	t.Run("price derived from quantity when no glyphs", func(t *testing.T) {
		pages := []RowPage{{Rows: []Row{
			makeRow(100, item("Chaise", 60, 100), item("2", 400, 100)),
		}}}

		cols := EstimateColumns(pages)
		assert.InDelta(t, 400.0, cols.QuantityX, 0.001)
		assert.InDelta(t, 430.0, cols.PriceX, 0.001)
	})

	t.Run("quantity derived from price when no integers", func(t *testing.T) {
		pages := []RowPage{{Rows: []Row{
			makeRow(100, item("Chaise", 60, 100), item("49,90", 460, 100), item("€", 500, 100)),
		}}}

		cols := EstimateColumns(pages)
		assert.InDelta(t, 500.0, cols.PriceX, 0.001)
		assert.InDelta(t, 440.0, cols.QuantityX, 0.001)
	})

	t.Run("no numeric content keeps the estimate ordered", func(t *testing.T) {
		pages := []RowPage{{Rows: []Row{
			makeRow(100, item("Conditions", 80, 100)),
		}}}

		cols := EstimateColumns(pages)
		assert.Less(t, cols.DescriptionX, cols.QuantityX)
		assert.Less(t, cols.QuantityX, cols.PriceX)
	})
}
