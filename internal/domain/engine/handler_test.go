package engine

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mbelalia/facture-engine/pkg/jobs"
)

func newTestHandler(t *testing.T) (*Handler, *jobs.Store) {
	t.Helper()
	store := jobs.NewStore(time.Hour)
	svc := NewService(testLogger())
	return NewHandler(svc, store, 1<<20, testLogger()), store
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Routes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerHealth(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandlerExtractErrors(t *testing.T) {
	h, _ := newTestHandler(t)

	t.Run("empty body", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodPost, "/v1/extract", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("garbage body is unprocessable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/extract", bytes.NewBufferString("not a pdf"))
		rec := serve(h, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("multipart without file field", func(t *testing.T) {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		require.NoError(t, w.WriteField("other", "value"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/v1/extract", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		rec := serve(h, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerJobs(t *testing.T) {
	h, store := newTestHandler(t)

	t.Run("unknown job is 404", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/v1/extract/jobs/nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("queued job with bad document ends failed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/extract/jobs", bytes.NewBufferString("not a pdf"))
		rec := serve(h, req)
		require.Equal(t, http.StatusAccepted, rec.Code)

		var created struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		require.NotEmpty(t, created.ID)

		deadline := time.Now().Add(2 * time.Second)
		for {
			job, ok := store.Get(created.ID)
			require.True(t, ok)
			if job.Status == jobs.StatusFailed {
				assert.NotEmpty(t, job.Error)
				break
			}
			require.True(t, time.Now().Before(deadline), "job never reached a terminal state")
			time.Sleep(10 * time.Millisecond)
		}
	})
}
