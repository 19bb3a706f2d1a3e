package layout

import "regexp"

// RowKind is the coarse classification of a row, computed once after
// clustering and consulted by the pruner, the segmenter and the extractor
// so the same patterns are never re-tested in several places.
type RowKind int

const (
	// RowPlain carries ordinary text: neither price, metadata nor noise.
	RowPlain RowKind = iota
	// RowPriceBearing has a currency glyph or a decimal-price shaped token.
	RowPriceBearing
	// RowMetadata is a label row attached to the product above it.
	RowMetadata
	// RowNoise matches the section-header/totals/shipping denylist.
	RowNoise
)

// MetaKind narrows RowMetadata rows to the label they carry.
type MetaKind int

const (
	MetaNone           MetaKind = iota
	MetaReference               // "Ref: 123456" with the code on the same row
	MetaReferenceLabel          // "article numéro" with the code on the next row
	MetaQuantity                // "Quantité : 2"
	MetaColor                   // "Couleur: ..."
	MetaSize                    // "Taille: ..."
)

// RowClass is the per-row result of classification.
type RowClass struct {
	Kind RowKind
	Meta MetaKind
}

var (
	priceShapeRe = regexp.MustCompile(`\b\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{2})\b|\b\d{1,3}[.,]\d{2}\b`)
	integerRe    = regexp.MustCompile(`^\d+$`)
	letterRe     = regexp.MustCompile(`[A-Za-zÀ-ÿ]`)
	digitRe      = regexp.MustCompile(`\d`)

	// Dotted reference codes (e.g. 305.332.14) and long numeric SKUs.
	refCodeRe   = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{2}$`)
	codeTokenRe = regexp.MustCompile(`^(?:\d[\d.]{5,}|\d{3}\.\d{3}\.\d{2})$`)

	refLabelRe = regexp.MustCompile(`(?i)article numéro`)

	// Page furniture that must never become a product or a description.
	denylistRe = regexp.MustCompile(`(?i)(articles achetés|livraison|sous[- ]?total|frais de livraison|tva|payée|numéro de la commande|information de la commande|adresse|éco-part|services inclus)`)

	// Wider set used when closing a product block: also totals, payment
	// cards, shipping fees and savings lines.
	blockDenylistRe = regexp.MustCompile(`(?i)(articles achetés|livraison|sous[- ]?total|frais de livraison|tva|adresse|information de la commande|éco-part|montant\b|^total\b|carte\s+visa|frais\s+de\s+port|économie\s+réalisée)`)

	// Column header row of the fashion-retailer table layout.
	sectionHeaderRe = regexp.MustCompile(`(?i)\bArticle\b.*\bTaille\b.*\bQuantité\b.*\bRemise\b.*\bPrix\b`)

	feeRe = regexp.MustCompile(`(?i)^(dont\b|éco-?participation|eco-?participation)`)

	metaRefRe      = regexp.MustCompile(`(?i)^r[ée]f\b`)
	metaRefLabelRe = regexp.MustCompile(`(?i)^article numéro`)
	metaQtyRe      = regexp.MustCompile(`(?i)^quantité\s*:`)
	metaColorRe    = regexp.MustCompile(`(?i)^couleur\s*:`)
	metaSizeRe     = regexp.MustCompile(`(?i)^taille\s*:`)
	metaAnyRe      = regexp.MustCompile(`(?i)^(r[ée]f\b|article numéro|couleur\s*:|taille\s*:|quantité\s*:)`)

	qtyValueRe  = regexp.MustCompile(`(?i)quantité\s*:\s*(\d+)`)
	refDigitsRe = regexp.MustCompile(`\d[\d.]+`)

	measurementRe = regexp.MustCompile(`(?i)^(cm|mm|tu|x)$`)

	descNoiseRe = regexp.MustCompile(`(?i)(d['’]?\s?éco-?participation|^livré?s?\b|à\s+domicile|vendus?\s+et\s+expédiés?\s+par|entre\s+le\s+\d{2}/\d{2}/\d{4}\s+et\s+le\s+\d{2}/\d{2}/\d{4})`)

	strippedPriceRe = regexp.MustCompile(`\b\d{1,3}(?:[.,]\d{2})\b\s*€`)
)

// Classify tags a row. Precedence: noise beats metadata beats price-bearing;
// a totals line with a price on it must still be dropped, and a
// "Quantité : 2" row must not be mistaken for a price anchor.
func Classify(r Row) RowClass {
	text := r.Text()
	if denylistRe.MatchString(text) || sectionHeaderRe.MatchString(text) {
		return RowClass{Kind: RowNoise}
	}
	if meta := metaKindOf(text); meta != MetaNone {
		return RowClass{Kind: RowMetadata, Meta: meta}
	}
	if r.HasPriceMarker || rowHasPriceShape(r) {
		return RowClass{Kind: RowPriceBearing}
	}
	return RowClass{Kind: RowPlain}
}

func metaKindOf(text string) MetaKind {
	switch {
	case metaRefRe.MatchString(text):
		return MetaReference
	case metaRefLabelRe.MatchString(text):
		return MetaReferenceLabel
	case metaQtyRe.MatchString(text):
		return MetaQuantity
	case metaColorRe.MatchString(text):
		return MetaColor
	case metaSizeRe.MatchString(text):
		return MetaSize
	}
	return MetaNone
}

func rowHasPriceShape(r Row) bool {
	for _, t := range r.Tokens {
		if IsPriceShaped(t.Text) {
			return true
		}
	}
	return false
}

// IsPriceShaped reports whether a token looks like a decimal price
// (12,99 / 1.299,00 / 49.90), reference codes excluded.
func IsPriceShaped(s string) bool {
	if codeTokenRe.MatchString(s) {
		return false
	}
	return priceShapeRe.MatchString(s)
}

// IsInteger reports whether a token is a bare positive integer.
func IsInteger(s string) bool { return integerRe.MatchString(s) }

// HasLetter reports whether a string contains any letter, accents included.
func HasLetter(s string) bool { return letterRe.MatchString(s) }

// HasDigit reports whether a string contains any digit.
func HasDigit(s string) bool { return digitRe.MatchString(s) }

// IsRefCode matches dotted furniture-retailer reference codes.
func IsRefCode(s string) bool { return refCodeRe.MatchString(s) }

// IsCodeToken matches any reference-code shaped token, dotted or plain.
func IsCodeToken(s string) bool { return codeTokenRe.MatchString(s) }

// IsRefLabel matches the localized "item number" label.
func IsRefLabel(s string) bool { return refLabelRe.MatchString(s) }

// IsDenylisted matches the pruner's section-header/totals denylist.
func IsDenylisted(text string) bool { return denylistRe.MatchString(text) }

// IsBlockDenylisted matches the wider denylist that ends a product block.
func IsBlockDenylisted(text string) bool { return blockDenylistRe.MatchString(text) }

// IsSectionHeader matches the fashion-retailer table header row.
func IsSectionHeader(text string) bool { return sectionHeaderRe.MatchString(text) }

// IsFeeLine matches eco-participation fee lines ("dont éco-participation").
func IsFeeLine(text string) bool { return feeRe.MatchString(text) }

// IsMetaLabel matches any product-metadata label prefix.
func IsMetaLabel(text string) bool { return metaAnyRe.MatchString(text) }

// IsMeasurementNoise matches unit tokens ("cm", "TU", bare "x") that carry
// no name information.
func IsMeasurementNoise(s string) bool { return measurementRe.MatchString(s) }

// IsDescriptionNoise matches delivery windows and seller boilerplate that
// must not leak into product descriptions.
func IsDescriptionNoise(text string) bool { return descNoiseRe.MatchString(text) }

// QuantityLabelValue extracts N from "Quantité : N", ok=false otherwise.
func QuantityLabelValue(text string) (string, bool) {
	m := qtyValueRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ReferenceDigits extracts the first code-like digit run from a label row.
func ReferenceDigits(text string) (string, bool) {
	m := refDigitsRe.FindString(text)
	if m == "" {
		return "", false
	}
	return m, true
}

// StripInlinePrices removes "12,99 €" substrings from description text.
func StripInlinePrices(text string) string {
	return strippedPriceRe.ReplaceAllString(text, "")
}
