// Package classify scores a document's rows against the known invoice
// layout signatures. Classification is a pure function of the document's
// text: no state survives between documents.
package classify

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/Mbelalia/facture-engine/internal/domain/invoice"
	"github.com/Mbelalia/facture-engine/internal/domain/layout"
)

// scoreThreshold is the rubric score at which a vendor wins. Vendors are
// checked in a fixed priority order, furniture retailer first, so the first
// rubric to cross the threshold decides.
const scoreThreshold = 5

const (
	weightNameMention = 3
	weightLabel       = 2
	weightCodeToken   = 1
)

// rubric is one vendor's weighted keyword signature. The keyword matchers
// are built once at package load; they are immutable and safe to share
// across concurrent classifications.
type rubric struct {
	vendor       invoice.Vendor
	name         string
	labels       *ahocorasick.Matcher
	codeTokens   func(layout.Row) int
	headerLabels bool
}

var rubrics = []rubric{
	{
		vendor: invoice.VendorIKEA,
		name:   "ikea",
		labels: ahocorasick.NewStringMatcher([]string{
			"article numéro",
			"services inclus",
		}),
		codeTokens: dottedCodeCount,
	},
	{
		vendor: invoice.VendorLaRedoute,
		name:   "la redoute",
		labels: ahocorasick.NewStringMatcher([]string{
			"réf:",
			"réf :",
			"couleur:",
			"couleur :",
			"taille:",
			"taille :",
			"remise",
		}),
		codeTokens:   func(layout.Row) int { return 0 },
		headerLabels: true,
	},
}

// Vendor classifies a clustered document. Every input maps to exactly one
// vendor; documents matching neither signature come back as generic.
func Vendor(pages []layout.RowPage) invoice.Vendor {
	for _, rb := range rubrics {
		if rb.score(pages) >= scoreThreshold {
			return rb.vendor
		}
	}
	return invoice.VendorGeneric
}

func (rb rubric) score(pages []layout.RowPage) int {
	score := 0
	for _, p := range pages {
		for _, r := range p.Rows {
			text := strings.ToLower(r.Text())

			if mentionsName(text, r, rb.name) {
				score += weightNameMention
			}
			if hits := rb.labels.Match([]byte(text)); len(hits) > 0 {
				score += weightLabel * len(hits)
			}
			score += weightCodeToken * rb.codeTokens(r)
			if rb.headerLabels && layout.IsSectionHeader(r.Text()) {
				score += weightLabel
			}

			if score >= scoreThreshold {
				return score
			}
		}
	}
	return score
}

// mentionsName checks for the vendor name in the row, either verbatim or as
// a close fuzzy token match (tolerates decode artifacts like "IKEA®").
func mentionsName(lowerText string, r layout.Row, name string) bool {
	if strings.Contains(lowerText, name) {
		return true
	}
	first := name
	if i := strings.IndexByte(name, ' '); i > 0 {
		first = name[:i]
	}
	for _, t := range r.Tokens {
		if len(t.Text) < len(first) || len(t.Text) > len(first)+3 {
			continue
		}
		if rank := fuzzy.RankMatchNormalizedFold(first, t.Text); rank >= 0 && rank <= 1 {
			return true
		}
	}
	return false
}

func dottedCodeCount(r layout.Row) int {
	n := 0
	for _, t := range r.Tokens {
		if layout.IsRefCode(t.Text) {
			n++
		}
	}
	return n
}
