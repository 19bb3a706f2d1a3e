package fallback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientComplete(t *testing.T) {
	t.Run("sends chat request and returns content", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

			var req chatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test-model", req.Model)
			require.Len(t, req.Messages, 2)
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, "extract please", req.Messages[1].Content)
			assert.Zero(t, req.Temperature)

			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": `[{"name":"Chaise"}]`}},
				},
			})
		}))
		defer srv.Close()

		client := NewHTTPClient(srv.URL, "secret", "test-model", time.Second)
		out, err := client.Complete(context.Background(), "extract please")
		require.NoError(t, err)
		assert.Equal(t, `[{"name":"Chaise"}]`, out)
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		client := NewHTTPClient(srv.URL, "", "test-model", time.Second)
		_, err := client.Complete(context.Background(), "p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		client := NewHTTPClient(srv.URL, "", "test-model", time.Second)
		_, err := client.Complete(context.Background(), "p")
		assert.Error(t, err)
	})

	t.Run("context cancellation aborts the call", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		client := NewHTTPClient(srv.URL, "", "test-model", time.Minute)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := client.Complete(ctx, "p")
		assert.Error(t, err)
	})

	t.Run("no api key means no auth header", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": "[]"}},
				},
			})
		}))
		defer srv.Close()

		client := NewHTTPClient(srv.URL, "", "test-model", time.Second)
		_, err := client.Complete(context.Background(), "p")
		assert.NoError(t, err)
	})
}
