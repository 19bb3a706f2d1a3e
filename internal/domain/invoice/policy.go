package invoice

import "github.com/Mbelalia/facture-engine/pkg/price"

// PriceSelection is a policy's verdict on a product block's candidates.
type PriceSelection struct {
	Value  float64
	Source PriceSource
}

// PricePolicy resolves a unit price from the price candidates collected in
// one product block. The direction of the tie-break is a vendor convention
// observed on real invoices, not a validated rule, so it lives here as a
// named, swappable value rather than as arithmetic inside the row walk.
type PricePolicy interface {
	Name() string
	// Select picks a price from the block's candidates. The first candidate
	// is always the anchor row's own price when it had one. ok is false
	// when no candidate exists.
	Select(candidates []float64, quantity int) (PriceSelection, bool)
}

// PolicyFor maps a vendor to its price policy.
func PolicyFor(v Vendor) PricePolicy {
	if v == VendorLaRedoute {
		return maxTotalPolicy{}
	}
	return minUnitPolicy{}
}

// maxTotalPolicy: fashion invoices show a struck-through original and a
// discounted line total; the discounted figure is always the larger of the
// two displayed prices relative to the remainder of the block. The chosen
// value is a line total, divided by quantity when the block spans rows.
type maxTotalPolicy struct{}

func (maxTotalPolicy) Name() string { return "max-as-total" }

func (maxTotalPolicy) Select(candidates []float64, quantity int) (PriceSelection, bool) {
	if len(candidates) == 0 {
		return PriceSelection{}, false
	}
	total := candidates[0]
	for _, c := range candidates[1:] {
		if c > total {
			total = c
		}
	}
	if len(candidates) > 1 && quantity > 1 {
		return PriceSelection{
			Value:  price.DivideByQuantity(total, quantity),
			Source: PriceSourceTotalDivided,
		}, true
	}
	return PriceSelection{Value: price.Round2(total), Source: PriceSourceTotal}, true
}

// minUnitPolicy: furniture invoices stack a per-unit original price above
// the current one; the current (discounted) figure is always the smaller.
// With only the anchor's own figure available and quantity above one, that
// figure is treated as a line total and divided.
type minUnitPolicy struct{}

func (minUnitPolicy) Name() string { return "min-as-unit" }

func (minUnitPolicy) Select(candidates []float64, quantity int) (PriceSelection, bool) {
	if len(candidates) == 0 {
		return PriceSelection{}, false
	}
	if len(candidates) > 1 {
		min := candidates[0]
		for _, c := range candidates[1:] {
			if c < min {
				min = c
			}
		}
		return PriceSelection{Value: price.Round2(min), Source: PriceSourceUnit}, true
	}
	if quantity > 1 {
		return PriceSelection{
			Value:  price.DivideByQuantity(candidates[0], quantity),
			Source: PriceSourceTotalDivided,
		}, true
	}
	return PriceSelection{Value: price.Round2(candidates[0]), Source: PriceSourceFallback}, true
}

// NormalizeTotals is the whole-document safety pass for La Redoute: any
// product whose price is still an undivided total gets divided by its
// quantity here. The PriceSource marker guarantees the division runs
// exactly once even if block segmentation mislabeled the source.
//
// TODO: collapse this and the inline division in maxTotalPolicy into one
// code path once the total-vs-unit ambiguity is settled against a labeled
// set of real La Redoute invoices.
func NormalizeTotals(products []Product, vendor Vendor) {
	if vendor != VendorLaRedoute {
		return
	}
	for i := range products {
		p := &products[i]
		if p.PriceTTC == nil || p.Quantity <= 1 || p.PriceSource != PriceSourceTotal {
			continue
		}
		v := price.DivideByQuantity(*p.PriceTTC, p.Quantity)
		p.PriceTTC = &v
		p.PriceSource = PriceSourceTotalDivided
	}
}
