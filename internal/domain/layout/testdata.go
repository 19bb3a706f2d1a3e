package layout

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
)

// InvoiceFaker generates synthetic invoice pages with a realistic column
// geometry. Used by tests and benchmarks across the pipeline packages.
type InvoiceFaker struct {
	faker *gofakeit.Faker
}

// Column x positions of the generated layout.
const (
	fakeDescriptionX = 60.0
	fakeQuantityX    = 400.0
	fakePriceX       = 460.0
	fakeGlyphX       = 500.0
	fakeRowStep      = 18.0
)

// NewInvoiceFaker creates a generator with a fixed seed so failures
// reproduce.
func NewInvoiceFaker(seed int64) *InvoiceFaker {
	return &InvoiceFaker{faker: gofakeit.New(seed)}
}

// ProductName returns a plausible two-word product name.
func (g *InvoiceFaker) ProductName() string {
	name := g.faker.Adjective() + " " + g.faker.Noun()
	return strings.ToUpper(name[:1]) + name[1:]
}

// PriceToken formats a random price the way invoices print it (comma
// decimal, no currency).
func (g *InvoiceFaker) PriceToken() string {
	v := g.faker.Price(5, 500)
	return strings.ReplaceAll(fmt.Sprintf("%.2f", v), ".", ",")
}

// ProductItems emits the text items of one product line at the given y:
// name tokens in the description column, a quantity integer, a price and
// the currency glyph.
func (g *InvoiceFaker) ProductItems(y float64) []TextItem {
	items := []TextItem{
		{Text: g.ProductName(), X: fakeDescriptionX, Y: y},
		{Text: fmt.Sprintf("%d", g.faker.IntRange(1, 4)), X: fakeQuantityX, Y: y},
		{Text: g.PriceToken(), X: fakePriceX, Y: y},
		{Text: CurrencyGlyph, X: fakeGlyphX, Y: y},
	}
	return items
}

// Page builds a page carrying the given number of product lines separated
// by fakeRowStep, with a header row on top.
func (g *InvoiceFaker) Page(pageNumber, products int) Page {
	items := []TextItem{
		{Text: "Facture", X: fakeDescriptionX, Y: 40},
	}
	y := 100.0
	for i := 0; i < products; i++ {
		items = append(items, g.ProductItems(y)...)
		y += fakeRowStep
	}
	return Page{PageNumber: pageNumber, Width: 595, Height: 842, Items: items}
}
