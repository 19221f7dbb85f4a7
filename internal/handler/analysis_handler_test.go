package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/churnsight/churnsight-backend/internal/dataset"
	"github.com/churnsight/churnsight-backend/internal/handler"
	"github.com/churnsight/churnsight-backend/internal/model"
	"github.com/churnsight/churnsight-backend/internal/scoring"
	"github.com/churnsight/churnsight-backend/internal/service"
)

type snapshotRepo struct {
	customers []model.Customer
}

func (m *snapshotRepo) GetByID(id string) (*model.Customer, error) {
	for i := range m.customers {
		if m.customers[i].CustomerID == id {
			return &m.customers[i], nil
		}
	}
	return nil, nil
}

func (m *snapshotRepo) ListAll() ([]model.Customer, error) { return m.customers, nil }

func (m *snapshotRepo) ReplaceAll(customers []model.Customer) error {
	m.customers = customers
	return nil
}

func (m *snapshotRepo) Count() (int, error) { return len(m.customers), nil }

type lookupModel struct {
	name  string
	probs map[string]float64
}

func (l *lookupModel) Name() string                          { return l.name }
func (l *lookupModel) PredictProba(c model.Customer) float64 { return l.probs[c.CustomerID] }
func (l *lookupModel) Drivers(topN int) []scoring.Driver {
	return []scoring.Driver{
		{Feature: "Contract_Month-to-month", Weight: 1.4, Direction: "increases churn"},
		{Feature: "tenure", Weight: -0.9, Direction: "decreases churn"},
	}
}

func testRouter(datasetPath string) *chi.Mux {
	repo := &snapshotRepo{customers: []model.Customer{
		{CustomerID: "A-20", MonthlyCharges: 20, Tenure: 40, Contract: "Two year", Churn: "No"},
		{CustomerID: "B-40", MonthlyCharges: 40, Tenure: 30, Contract: "One year", Churn: "No"},
		{CustomerID: "C-60", MonthlyCharges: 60, Tenure: 20, Contract: "Month-to-month", Churn: "No"},
		{CustomerID: "D-80", MonthlyCharges: 80, Tenure: 2, Contract: "Month-to-month", Churn: "Yes"},
	}}
	m := &lookupModel{name: "logistic", probs: map[string]float64{
		"A-20": 0.08, "B-40": 0.28, "C-60": 0.58, "D-80": 0.92,
	}}
	svc := service.NewAnalysisService(repo, scoring.NewRegistry(m))
	h := handler.NewAnalysisHandler(svc, datasetPath)

	r := chi.NewRouter()
	r.Get("/overview", h.OverviewHandler)
	r.Get("/decision", h.DecisionHandler)
	r.Get("/segments", h.SegmentsHandler)
	r.Get("/segments/contacts", h.ContactsHandler)
	r.Get("/explainability", h.ExplainabilityHandler)
	r.Get("/models", h.ModelsHandler)
	r.Get("/dataset/report", h.DatasetReportHandler)
	return r
}

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOverviewEndpoint(t *testing.T) {
	r := testRouter("")

	w := get(t, r, "/overview")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res struct {
		TotalCustomers int     `json:"total_customers"`
		ChurnRate      float64 `json:"churn_rate"`
		BestModel      string  `json:"best_model"`
		RevenueAtRisk  float64 `json:"revenue_at_risk"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.TotalCustomers != 4 || res.ChurnRate != 0.25 {
		t.Errorf("overview = %+v", res)
	}
	if res.BestModel != "logistic" || res.RevenueAtRisk != 1200 {
		t.Errorf("overview = %+v", res)
	}
}

func TestDecisionEndpoint(t *testing.T) {
	r := testRouter("")

	w := get(t, r, "/decision?model=logistic&threshold=0.5")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res struct {
		Model string `json:"model"`
		Sweep []struct {
			Threshold float64 `json:"threshold"`
		} `json:"sweep"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Model != "logistic" || len(res.Sweep) != 17 {
		t.Errorf("model = %s, sweep rows = %d", res.Model, len(res.Sweep))
	}
}

func TestDecisionEndpointRejectsBadThreshold(t *testing.T) {
	r := testRouter("")

	for _, q := range []string{"threshold=abc", "threshold=1.5", "threshold=-0.2"} {
		w := get(t, r, "/decision?"+q)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, w.Code)
		}
	}
}

func TestDecisionEndpointUnknownModelIs404(t *testing.T) {
	r := testRouter("")

	w := get(t, r, "/decision?model=xgboost")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestContactsEndpoint(t *testing.T) {
	r := testRouter("")

	w := get(t, r, "/segments/contacts?model=logistic&threshold=0.5")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res struct {
		Count    int `json:"count"`
		Contacts []struct {
			CustomerID string `json:"customerID"`
		} `json:"contacts"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Count != 2 || res.Contacts[0].CustomerID != "D-80" {
		t.Errorf("contacts = %+v", res)
	}
}

func TestSegmentsEndpoint(t *testing.T) {
	r := testRouter("")

	w := get(t, r, "/segments")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res struct {
		ChargeMedian float64 `json:"charge_median"`
		Segments     []struct {
			Segment string `json:"segment"`
		} `json:"segments"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.ChargeMedian != 50 || len(res.Segments) != 2 {
		t.Errorf("segments = %+v", res)
	}
}

func TestExplainabilityEndpoint(t *testing.T) {
	r := testRouter("")

	w := get(t, r, "/explainability?model=logistic&top=1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Contract_Month-to-month") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestModelsEndpoint(t *testing.T) {
	r := testRouter("")

	w := get(t, r, "/models")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res struct {
		Recommended struct {
			Model string `json:"model"`
		} `json:"recommended"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Recommended.Model != "logistic" {
		t.Errorf("recommended = %+v", res.Recommended)
	}
}

func csvRow(id string, churn string) string {
	return fmt.Sprintf("%s,Female,0,Yes,No,12,Yes,No,DSL,Yes,No,No,No,No,No,Month-to-month,Yes,Electronic check,29.85,358.20,%s,0,1", id, churn)
}

func TestDatasetReportEndpoint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "churn.csv")
	lines := []string{strings.Join(dataset.Columns, ",")}
	for i := 0; i < 73; i++ {
		lines = append(lines, csvRow(fmt.Sprintf("%04d-KEEP", i), "No"))
	}
	for i := 0; i < 27; i++ {
		lines = append(lines, csvRow(fmt.Sprintf("%04d-LOST", i), "Yes"))
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := testRouter(path)
	w := get(t, r, "/dataset/report")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res struct {
		OK     bool `json:"ok"`
		Report struct {
			Rows      int      `json:"rows"`
			Churners  int      `json:"churners"`
			ChurnRate float64  `json:"churn_rate"`
			Warnings  []string `json:"warnings"`
		} `json:"report"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.OK || res.Report.Rows != 100 || res.Report.Churners != 27 {
		t.Errorf("report = %+v", res)
	}
	if len(res.Report.Warnings) != 0 {
		t.Errorf("warnings = %v, want none at 27%% churn", res.Report.Warnings)
	}
}

func TestDatasetReportEndpointWithoutFile(t *testing.T) {
	r := testRouter("")

	w := get(t, r, "/dataset/report")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
