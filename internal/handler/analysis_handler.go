// internal/handler/analysis_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/churnsight/churnsight-backend/internal/dataset"
	appErrors "github.com/churnsight/churnsight-backend/internal/errors"
	"github.com/churnsight/churnsight-backend/internal/service"
)

// AnalysisHandler serves the business-impact reports over HTTP.
type AnalysisHandler struct {
	Service *service.AnalysisService

	// DatasetPath is the CSV the report endpoint re-validates. Empty
	// when no file is configured.
	DatasetPath string
}

func NewAnalysisHandler(svc *service.AnalysisService, datasetPath string) *AnalysisHandler {
	return &AnalysisHandler{Service: svc, DatasetPath: datasetPath}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	if _, ok := err.(*appErrors.ErrModelNotFound); ok {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (h *AnalysisHandler) OverviewHandler(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Service.Overview()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, overview)
}

func (h *AnalysisHandler) DecisionHandler(w http.ResponseWriter, r *http.Request) {
	modelName := r.URL.Query().Get("model")
	threshold := 0.0
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil || t < 0 || t > 1 {
			http.Error(w, "threshold must be a number between 0 and 1", http.StatusBadRequest)
			return
		}
		threshold = t
	}

	decision, err := h.Service.DecisionTable(modelName, threshold)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, decision)
}

func (h *AnalysisHandler) SegmentsHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Segments(r.URL.Query().Get("model"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}

func (h *AnalysisHandler) ContactsHandler(w http.ResponseWriter, r *http.Request) {
	modelName := r.URL.Query().Get("model")
	threshold, _ := strconv.ParseFloat(r.URL.Query().Get("threshold"), 64)
	topN, _ := strconv.Atoi(r.URL.Query().Get("top"))

	contacts, err := h.Service.Contacts(modelName, threshold, topN)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{
		"count":    len(contacts),
		"contacts": contacts,
	})
}

func (h *AnalysisHandler) ExplainabilityHandler(w http.ResponseWriter, r *http.Request) {
	topN, _ := strconv.Atoi(r.URL.Query().Get("top"))
	explanation, err := h.Service.Explain(r.URL.Query().Get("model"), topN)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, explanation)
}

func (h *AnalysisHandler) ModelsHandler(w http.ResponseWriter, r *http.Request) {
	selection, err := h.Service.CompareModels()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, selection)
}

// DatasetReportHandler re-validates the configured CSV and returns the
// row counts, errors and warnings.
func (h *AnalysisHandler) DatasetReportHandler(w http.ResponseWriter, r *http.Request) {
	if h.DatasetPath == "" {
		http.Error(w, "no dataset file configured", http.StatusNotFound)
		return
	}

	_, report, err := dataset.LoadFile(h.DatasetPath)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{
		"path":   h.DatasetPath,
		"ok":     report.OK(),
		"report": report,
	})
}
