// Package metrics exposes Prometheus counters for the extraction pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentsProcessed counts processed documents by detected vendor.
	DocumentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "facture_documents_processed_total",
		Help: "Documents processed, labelled by detected vendor.",
	}, []string{"vendor"})

	// ProductsExtracted counts products by the path that produced them.
	ProductsExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "facture_products_extracted_total",
		Help: "Products extracted, labelled by extraction path.",
	}, []string{"path"})

	// FallbackInvocations counts calls to the external completion service.
	FallbackInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "facture_fallback_invocations_total",
		Help: "Fallback completions attempted, labelled by outcome.",
	}, []string{"outcome"})

	// StageDuration observes per-stage latency.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "facture_stage_duration_seconds",
		Help:    "Pipeline stage latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
)

// Extraction path label values.
const (
	PathPositional = "positional"
	PathFallback   = "fallback"
)
