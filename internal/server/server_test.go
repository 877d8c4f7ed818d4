package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/covergen/internal/apperr"
	"github.com/jmylchreest/covergen/internal/compose"
	"github.com/jmylchreest/covergen/internal/cover"
	"github.com/jmylchreest/covergen/internal/label"
	"github.com/jmylchreest/covergen/internal/layout"
	"github.com/jmylchreest/covergen/internal/metrics"
)

const testAPIKey = "test-key"

type memoryUploader struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (m *memoryUploader) PutObject(_ context.Context, _, key string, r io.Reader, _ int64, _ string) error {
	if m.err != nil {
		return m.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return nil
}

func newTestServer(t *testing.T, up *memoryUploader) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.MustNew(reg)

	svc, err := cover.NewService(cover.Options{
		Validator:   label.NewValidator(label.DefaultMinYear),
		Composer:    compose.New(compose.Options{}),
		Uploader:    up,
		Canvas:      layout.DefaultCanvas(),
		OutputDir:   t.TempDir(),
		Endpoint:    "s3.example.com",
		Bucket:      "playlist-covers",
		Concurrency: 2,
		Metrics:     m,
	})
	require.NoError(t, err)

	return New(Options{
		APIKey:   testAPIKey,
		Covers:   svc,
		Gatherer: reg,
		Metrics:  m,
	})
}

func do(t *testing.T, s *Server, path, apiKey, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func TestMonthlyCover(t *testing.T) {
	up := &memoryUploader{}
	s := newTestServer(t, up)

	rec := do(t, s, "/playlist/monthly", testAPIKey, `{"month":"june","year":2025}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[coverResponse](t, rec)
	assert.True(t, strings.HasSuffix(resp.URL, "monthly/2025/june.png"), "url %q", resp.URL)
	assert.Equal(t, "https://s3.example.com/playlist-covers/monthly/2025/june.png", resp.URL)
	assert.Equal(t, []string{"monthly/2025/june.png"}, up.keys)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestWeeklyCover(t *testing.T) {
	up := &memoryUploader{}
	s := newTestServer(t, up)

	rec := do(t, s, "/playlist/weekly", testAPIKey, `{"date1":"March 3","date2":"march 9","year":2025}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[coverResponse](t, rec)
	assert.True(t, strings.HasSuffix(resp.URL, "weekly/2025/march-3-march-9.png"), "url %q", resp.URL)
}

func TestAuthentication(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "missing key", key: ""},
		{name: "wrong key", key: "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &memoryUploader{}
			s := newTestServer(t, up)

			for _, path := range []string{"/playlist/monthly", "/playlist/weekly"} {
				rec := do(t, s, path, tt.key, `{"month":"june","year":2025}`)
				assert.Equal(t, http.StatusUnauthorized, rec.Code)
				resp := decode[errorResponse](t, rec)
				assert.Equal(t, "invalid or missing API key", resp.Error)
			}
			assert.Empty(t, up.keys)
		})
	}
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		body      string
		wantField string
	}{
		{name: "year too early", path: "/playlist/monthly", body: `{"month":"june","year":2024}`, wantField: "year"},
		{name: "unknown month", path: "/playlist/monthly", body: `{"month":"smarch","year":2025}`, wantField: "month"},
		{name: "missing year", path: "/playlist/monthly", body: `{"month":"june"}`, wantField: "year"},
		{name: "malformed json", path: "/playlist/monthly", body: `{"month":`, wantField: "body"},
		{name: "year as string", path: "/playlist/monthly", body: `{"month":"june","year":"2025"}`, wantField: "body"},
		{name: "bad weekly date", path: "/playlist/weekly", body: `{"date1":"march 32","date2":"march 9","year":2025}`, wantField: "date1"},
		{name: "missing weekly date", path: "/playlist/weekly", body: `{"date1":"march 3","year":2025}`, wantField: "date2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &memoryUploader{}
			s := newTestServer(t, up)

			rec := do(t, s, tt.path, testAPIKey, tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

			resp := decode[errorResponse](t, rec)
			assert.Equal(t, "validation failed", resp.Error)
			require.NotEmpty(t, resp.Details)
			assert.Equal(t, tt.wantField, resp.Details[0].Field)
			assert.Empty(t, up.keys)
		})
	}
}

func TestStorageFailureReturnsNoURL(t *testing.T) {
	up := &memoryUploader{err: errors.New("bucket missing")}
	s := newTestServer(t, up)

	rec := do(t, s, "/playlist/monthly", testAPIKey, `{"month":"june","year":2025}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "url")
	assert.NotContains(t, rec.Body.String(), "bucket missing")
	assert.Equal(t, "cover could not be stored", decode[errorResponse](t, rec).Error)
}

func TestRepeatedMonthlyRequestOverwrites(t *testing.T) {
	up := &memoryUploader{}
	s := newTestServer(t, up)

	for i := 0; i < 2; i++ {
		rec := do(t, s, "/playlist/monthly", testAPIKey, `{"month":"june","year":2025}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	assert.Equal(t, []string{"monthly/2025/june.png", "monthly/2025/june.png"}, up.keys)
}

type stubCovers struct{ err error }

func (s stubCovers) CreateMonthly(context.Context, string, int) (cover.Result, error) {
	return cover.Result{}, s.err
}

func (s stubCovers) CreateWeekly(context.Context, string, string, int) (cover.Result, error) {
	return cover.Result{}, s.err
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "render", err: &apperr.RenderError{Op: "encode png", Err: errors.New("disk full")}, code: 500, message: "cover could not be rendered"},
		{name: "configuration", err: apperr.NewConfigurationError("no font"), code: 500, message: "server misconfigured"},
		{name: "unknown", err: errors.New("surprise"), code: 500, message: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Options{APIKey: testAPIKey, Covers: stubCovers{err: tt.err}, Gatherer: prometheus.NewRegistry()})
			rec := do(t, s, "/playlist/monthly", testAPIKey, `{"month":"june","year":2025}`)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.message, decode[errorResponse](t, rec).Error)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, &memoryUploader{})

	do(t, s, "/playlist/monthly", testAPIKey, `{"month":"june","year":2025}`)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]string](t, rec)
	assert.Equal(t, "ok", health["status"])

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `covergen_http_requests_total{code="200",route="/playlist/monthly"} 1`)
	assert.Contains(t, body, `covergen_uploads_total{result="ok"} 1`)
	assert.Contains(t, body, `covergen_render_duration_seconds_count{kind="monthly",status="ok"} 1`)
}
