package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitstat/splitstat/internal/config"
	"github.com/splitstat/splitstat/internal/pipeline"
	"github.com/splitstat/splitstat/internal/server"
	"github.com/splitstat/splitstat/internal/store"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	cfg := config.Default()
	dir := t.TempDir()
	cfg.DBPath = filepath.Join(dir, "test.db")
	cfg.OutputDir = filepath.Join(dir, "outputs")
	// Small dataset keeps the HTTP tests fast; the effect stays detectable.
	cfg.Generator.Users = 4000

	s, err := store.Open(cfg.DBPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return server.New(s, cfg)
}

func doJSON(t *testing.T, srv *server.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var health server.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 0, health.DatasetCount)
}

func TestHandleAnalyze_NoDataset(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/analyze", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "NO_DATASET", envelope.Error.Code)
	assert.Contains(t, envelope.Error.Message, "generate first")
}

func TestHandleReport_NoReport(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/report", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateAnalyzeReportFlow(t *testing.T) {
	srv := newTestServer(t)

	// Generate.
	w := doJSON(t, srv, http.MethodPost, "/api/v1/generate", map[string]any{"users": 4000, "seed": 42})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var gen server.GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &gen))
	assert.Equal(t, "success", gen.Status)
	assert.Equal(t, 4000, gen.Rows)
	assert.Equal(t, "ab_test_data", gen.Dataset)

	// Analyze.
	w = doJSON(t, srv, http.MethodPost, "/api/v1/analyze", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rpt pipeline.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rpt))
	assert.NotEmpty(t, rpt.ReportID)
	assert.Equal(t, 4000, rpt.DatasetInfo.TotalRows)
	assert.Equal(t, 2000, rpt.PowerAnalysis.ActualSampleSizePerGroup)
	assert.NotEmpty(t, rpt.BusinessInsights.Recommendation)

	// Latest report matches what analyze returned.
	w = doJSON(t, srv, http.MethodGet, "/api/v1/report", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var saved pipeline.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, rpt.ReportID, saved.ReportID)
	assert.Equal(t, rpt.HypothesisTests, saved.HypothesisTests)

	// Artifacts written during analyze are served.
	w = doJSON(t, srv, http.MethodGet, "/api/v1/plots", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var plots server.PlotListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plots))
	require.NotEmpty(t, plots.Plots)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/plots/"+plots.Plots[0], nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = doJSON(t, srv, http.MethodGet, "/api/v1/report/download", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	// Dashboard renders off the saved report.
	w = doJSON(t, srv, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(saved.BusinessInsights.Recommendation))
}

func TestHandleGenerate_InvalidParameters(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/generate", map[string]any{"users": 1})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/api/v1/generate", map[string]any{"users": "lots"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlePlot_RejectsBadNames(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/plots/report.txt", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/plots/missing.png", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
