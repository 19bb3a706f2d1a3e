package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mbelalia/facture-engine/internal/domain/invoice"
	"github.com/Mbelalia/facture-engine/internal/domain/layout"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClient struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeClient) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func extractableDoc() layout.Document {
	return layout.Document{Pages: []layout.Page{{
		PageNumber: 1,
		Width:      595,
		Height:     842,
		Items: []layout.TextItem{
			{Text: "Chaise bureau", X: 60, Y: 100},
			{Text: "49,90", X: 460, Y: 100},
			{Text: "€", X: 500, Y: 100},
		},
	}}}
}

// priceOnlyDoc has price rows but no name tokens, so the positional walk
// finds nothing and the fallback path fires.
func priceOnlyDoc() layout.Document {
	return layout.Document{Pages: []layout.Page{{
		PageNumber: 1,
		Items: []layout.TextItem{
			{Text: "49,90", X: 460, Y: 100},
			{Text: "€", X: 500, Y: 100},
		},
	}}}
}

func TestExtractDocumentPositional(t *testing.T) {
	client := &fakeClient{response: "[]"}
	svc := NewService(testLogger()).WithFallbackClient(client, 0)

	result, err := svc.ExtractDocument(context.Background(), extractableDoc())
	require.NoError(t, err)

	assert.False(t, result.UsedFallback)
	assert.Empty(t, client.prompts, "fallback must not fire when the walk succeeds")
	require.Len(t, result.Products, 1)
	assert.Equal(t, "Chaise bureau", result.Products[0].Name)
	assert.Equal(t, invoice.VendorGeneric, result.Vendor)
	assert.Equal(t, 1, result.Pages)
}

func TestExtractDocumentWithTracing(t *testing.T) {
	svc := NewService(testLogger()).WithTracing()

	result, err := svc.ExtractDocument(context.Background(), extractableDoc())
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "Chaise bureau", result.Products[0].Name)
}

func TestExtractDocumentFallback(t *testing.T) {
	t.Run("empty walk triggers the completion client", func(t *testing.T) {
		client := &fakeClient{response: `[{"name":"Lampe","quantity":2,"totalTTC":39.98}]`}
		svc := NewService(testLogger()).WithFallbackClient(client, 0)

		result, err := svc.ExtractDocument(context.Background(), priceOnlyDoc())
		require.NoError(t, err)

		assert.True(t, result.UsedFallback)
		require.Len(t, client.prompts, 1)
		assert.Contains(t, client.prompts[0], "49,90")

		require.Len(t, result.Products, 1)
		p := result.Products[0]
		assert.Equal(t, "Lampe", p.Name)
		assert.Equal(t, 2, p.Quantity)
		require.NotNil(t, p.PriceTTC)
		assert.InDelta(t, 19.99, *p.PriceTTC, 0.001)
	})

	t.Run("client failure degrades to an empty list", func(t *testing.T) {
		client := &fakeClient{err: errors.New("model unavailable")}
		svc := NewService(testLogger()).WithFallbackClient(client, 0)

		result, err := svc.ExtractDocument(context.Background(), priceOnlyDoc())
		require.NoError(t, err)
		assert.False(t, result.UsedFallback)
		assert.Empty(t, result.Products)
	})

	t.Run("no client configured", func(t *testing.T) {
		svc := NewService(testLogger())

		result, err := svc.ExtractDocument(context.Background(), priceOnlyDoc())
		require.NoError(t, err)
		assert.False(t, result.UsedFallback)
		assert.Empty(t, result.Products)
	})

	t.Run("document with no blocks skips the client", func(t *testing.T) {
		client := &fakeClient{response: "[]"}
		svc := NewService(testLogger()).WithFallbackClient(client, 0)

		doc := layout.Document{Pages: []layout.Page{{
			PageNumber: 1,
			Items:      []layout.TextItem{{Text: "Conditions générales", X: 60, Y: 100}},
		}}}

		result, err := svc.ExtractDocument(context.Background(), doc)
		require.NoError(t, err)
		assert.Empty(t, client.prompts)
		assert.Empty(t, result.Products)
	})
}

func TestExtractPDFRejectsGarbage(t *testing.T) {
	svc := NewService(testLogger())
	_, err := svc.ExtractPDF(context.Background(), []byte("not a pdf"))
	assert.Error(t, err)
}
