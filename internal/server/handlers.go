package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/splitstat/splitstat/internal/dataset"
	"github.com/splitstat/splitstat/internal/pipeline"
	"github.com/splitstat/splitstat/internal/report"
	"github.com/splitstat/splitstat/internal/stats"
	"github.com/splitstat/splitstat/internal/store"
)

const defaultDatasetName = "ab_test_data"

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

type HealthResponse struct {
	Status        string `json:"status"`
	DatasetCount  int    `json:"dataset_count"`
	DBSizeBytes   int64  `json:"db_size_bytes"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	datasets, err := s.store.ListDatasets(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to list datasets")
		return
	}

	var dbSize int64
	if info, err := os.Stat(s.cfg.DBPath); err == nil {
		dbSize = info.Size()
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		DatasetCount:  len(datasets),
		DBSizeBytes:   dbSize,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	})
}

type GenerateRequest struct {
	Users int     `json:"users"`
	Seed  *uint64 `json:"seed"`
	Name  string  `json:"name"`
}

type GenerateResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
	Dataset string   `json:"dataset"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req := GenerateRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
			return
		}
	}

	genCfg := s.cfg.Generator
	if req.Users > 0 {
		genCfg.Users = req.Users
	}
	if req.Seed != nil {
		genCfg.Seed = *req.Seed
	}
	name := req.Name
	if name == "" {
		name = defaultDatasetName
	}

	records, err := dataset.Generate(genCfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", err.Error())
		return
	}

	ds, err := s.store.CreateDataset(r.Context(), name, genCfg.Seed, records)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to persist dataset")
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Status:  "success",
		Message: "Dataset generated successfully",
		Rows:    ds.NTotal,
		Columns: dataset.Columns,
		Dataset: ds.Name,
	})
}

type AnalyzeRequest struct {
	Dataset string `json:"dataset"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req := AnalyzeRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
			return
		}
	}

	ctx := r.Context()

	var ds *store.Dataset
	var err error
	if req.Dataset != "" {
		ds, err = s.store.GetDataset(ctx, req.Dataset)
	} else {
		ds, err = s.store.LatestDataset(ctx)
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NO_DATASET", pipeline.ErrNoDataset.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to load dataset")
		return
	}

	records, err := s.store.GetRecords(ctx, ds.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to load records")
		return
	}

	rpt, err := pipeline.Run(s.cfg.Analysis, records)
	if errors.Is(err, pipeline.ErrNoDataset) {
		writeError(w, http.StatusNotFound, "NO_DATASET", err.Error())
		return
	}
	if errors.Is(err, stats.ErrInvalidParameter) {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "analysis failed")
		return
	}

	body, err := json.Marshal(rpt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to encode report")
		return
	}
	if _, err := s.store.SaveReport(ctx, ds.ID, body); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to persist report")
		return
	}

	// Artifact rendering failures are reported but do not void the analysis.
	if _, err := report.WriteAll(rpt, records, s.cfg.OutputDir); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write report artifacts: %v\n", err)
	}

	// The report is the dashboard wire contract; it goes out bare.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	saved, err := s.store.LatestReport(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NO_REPORT", "report not found, run analysis first")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to load report")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(saved.Body)
}

func (s *Server) handleReportDownload(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.cfg.OutputDir, report.PDFFileName)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "NO_REPORT", "PDF report not found, run analysis first")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=ab_testing_report.pdf")
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

type PlotListResponse struct {
	Plots []string `json:"plots"`
}

func (s *Server) handlePlotList(w http.ResponseWriter, r *http.Request) {
	names := s.plotNames()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, PlotListResponse{Plots: names})
}

func (s *Server) plotNames() []string {
	entries, err := os.ReadDir(filepath.Join(s.cfg.OutputDir, report.PlotsDirName))
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".png") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".png") {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid plot name")
		return
	}

	path := filepath.Join(s.cfg.OutputDir, report.PlotsDirName, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "NO_PLOT", fmt.Sprintf("plot %q not found", name))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}
