// Package engine orchestrates the invoice extraction pipeline.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Mbelalia/facture-engine/internal/domain/classify"
	"github.com/Mbelalia/facture-engine/internal/domain/decode"
	"github.com/Mbelalia/facture-engine/internal/domain/extract"
	"github.com/Mbelalia/facture-engine/internal/domain/fallback"
	"github.com/Mbelalia/facture-engine/internal/domain/invoice"
	"github.com/Mbelalia/facture-engine/internal/domain/layout"
	"github.com/Mbelalia/facture-engine/pkg/metrics"
)

const defaultFallbackTimeout = 2 * time.Minute

// Result is the outcome of one document extraction.
type Result struct {
	Vendor       invoice.Vendor    `json:"vendor"`
	Products     []invoice.Product `json:"products"`
	Pages        int               `json:"pages"`
	UsedFallback bool              `json:"used_fallback"`
}

// Service runs the pipeline: row clustering, vendor classification, column
// estimation, positional extraction, and the completion fallback when the
// positional pass finds nothing.
type Service struct {
	logger          *slog.Logger
	tracer          trace.Tracer
	client          fallback.Client
	fallbackTimeout time.Duration
}

// NewService creates the extraction service. Without a fallback client an
// empty positional pass returns an empty product list.
func NewService(logger *slog.Logger) *Service {
	return &Service{
		logger:          logger,
		fallbackTimeout: defaultFallbackTimeout,
	}
}

// WithFallbackClient enables the completion fallback.
func (s *Service) WithFallbackClient(client fallback.Client, timeout time.Duration) *Service {
	s.client = client
	if timeout > 0 {
		s.fallbackTimeout = timeout
	}
	return s
}

// WithTracing wraps pipeline stages in otel spans.
func (s *Service) WithTracing() *Service {
	s.tracer = otel.Tracer("facture-engine")
	return s
}

// ExtractPDF decodes PDF bytes and extracts products from them.
func (s *Service) ExtractPDF(ctx context.Context, data []byte) (*Result, error) {
	ctx, done := s.stage(ctx, "decode")
	doc, err := decode.Document(data)
	done()
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return s.ExtractDocument(ctx, doc)
}

// ExtractDocument extracts products from already-positioned text.
func (s *Service) ExtractDocument(ctx context.Context, doc layout.Document) (*Result, error) {
	ctx, done := s.stage(ctx, "cluster")
	pages := layout.ClusterDocument(doc, layout.DefaultClusterOptions())
	done()

	_, done = s.stage(ctx, "classify")
	vendor := classify.Vendor(pages)
	done()

	_, done = s.stage(ctx, "columns")
	cols := layout.EstimateColumns(pages)
	done()

	_, done = s.stage(ctx, "extract")
	products := extract.New(vendor, cols).Products(pages)
	done()

	result := &Result{
		Vendor:   vendor,
		Products: products,
		Pages:    len(pages),
	}

	if len(products) == 0 {
		fallbackProducts, used := s.runFallback(ctx, pages, vendor)
		result.Products = fallbackProducts
		result.UsedFallback = used
	}

	metrics.DocumentsProcessed.WithLabelValues(string(vendor)).Inc()
	path := metrics.PathPositional
	if result.UsedFallback {
		path = metrics.PathFallback
	}
	metrics.ProductsExtracted.WithLabelValues(path).Add(float64(len(result.Products)))

	s.logger.Info("document extracted",
		slog.String("vendor", string(vendor)),
		slog.Int("pages", result.Pages),
		slog.Int("products", len(result.Products)),
		slog.Bool("used_fallback", result.UsedFallback),
	)
	return result, nil
}

// runFallback prunes the document down to price-relevant blocks and asks the
// completion service to extract from them. Fallback failures degrade to an
// empty list rather than failing the request.
func (s *Service) runFallback(ctx context.Context, pages []layout.RowPage, vendor invoice.Vendor) ([]invoice.Product, bool) {
	if s.client == nil {
		return []invoice.Product{}, false
	}

	ctx, done := s.stage(ctx, "fallback")
	defer done()

	pruned := layout.PrunePages(pages, layout.DefaultPruneOptions())
	boxes := layout.SegmentBoxes(pruned, layout.DefaultBoxOptions())
	if empty(boxes) {
		s.logger.Info("fallback skipped, no candidate blocks")
		return []invoice.Product{}, false
	}

	prompt := fallback.BuildPrompt(boxes, vendor)

	ctx, cancel := context.WithTimeout(ctx, s.fallbackTimeout)
	defer cancel()

	raw, err := s.client.Complete(ctx, prompt)
	if err != nil {
		metrics.FallbackInvocations.WithLabelValues("error").Inc()
		s.logger.Warn("fallback completion failed", slog.Any("error", err))
		return []invoice.Product{}, false
	}

	products := fallback.Sanitize(raw)
	metrics.FallbackInvocations.WithLabelValues("ok").Inc()
	return products, true
}

func (s *Service) stage(ctx context.Context, name string) (context.Context, func()) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, name)
	}
	start := time.Now()
	return ctx, func() {
		metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if span != nil {
			span.End()
		}
	}
}

func empty(pages []layout.BoxPage) bool {
	for _, p := range pages {
		if len(p.Boxes) > 0 {
			return false
		}
	}
	return true
}
