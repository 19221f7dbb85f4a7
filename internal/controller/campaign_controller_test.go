package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/churnsight/churnsight-backend/internal/controller"
	appErrors "github.com/churnsight/churnsight-backend/internal/errors"
	"github.com/churnsight/churnsight-backend/internal/model"
	"github.com/churnsight/churnsight-backend/internal/scoring"
	"github.com/churnsight/churnsight-backend/internal/service"
)

// --- Mock Repositories ---

type MockCustomerRepo struct {
	customers []model.Customer
}

func (m *MockCustomerRepo) GetByID(id string) (*model.Customer, error) {
	for i := range m.customers {
		if m.customers[i].CustomerID == id {
			return &m.customers[i], nil
		}
	}
	return nil, nil
}

func (m *MockCustomerRepo) ListAll() ([]model.Customer, error) { return m.customers, nil }

func (m *MockCustomerRepo) ReplaceAll(customers []model.Customer) error {
	m.customers = customers
	return nil
}

func (m *MockCustomerRepo) Count() (int, error) { return len(m.customers), nil }

type MockCampaignRepo struct {
	campaign *model.RetentionCampaign
	outreach map[string]*model.OutreachMessage
	nextID   int
}

func newMockCampaignRepo(c *model.RetentionCampaign) *MockCampaignRepo {
	return &MockCampaignRepo{campaign: c, outreach: map[string]*model.OutreachMessage{}, nextID: 1}
}

func (m *MockCampaignRepo) GetByID(id int) (*model.RetentionCampaign, error) {
	if m.campaign == nil || m.campaign.ID != id {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return m.campaign, nil
}

func (m *MockCampaignRepo) Create(c *model.RetentionCampaign) error {
	c.ID = 1
	m.campaign = c
	return nil
}

func (m *MockCampaignRepo) ListCampaigns(offset, limit int, channel, status string) ([]*model.RetentionCampaign, int, error) {
	if m.campaign == nil {
		return []*model.RetentionCampaign{}, 0, nil
	}
	return []*model.RetentionCampaign{m.campaign}, 1, nil
}

func (m *MockCampaignRepo) UpdateStatus(id int, status string) error {
	m.campaign.Status = status
	return nil
}

func (m *MockCampaignRepo) CreateOutreachMessage(campaignID int, customerID, idempotencyKey string) (*model.OutreachMessage, error) {
	key := fmt.Sprintf("%d/%s", campaignID, customerID)
	if msg, ok := m.outreach[key]; ok {
		return msg, nil
	}
	msg := &model.OutreachMessage{ID: m.nextID, CampaignID: campaignID, CustomerID: customerID, Status: "pending"}
	m.nextID++
	m.outreach[key] = msg
	return msg, nil
}

func (m *MockCampaignRepo) GetOutreachMessage(campaignID int, customerID string) (*model.OutreachMessage, error) {
	return m.outreach[fmt.Sprintf("%d/%s", campaignID, customerID)], nil
}

func (m *MockCampaignRepo) GetOutreachMessageByID(id int) (*model.OutreachMessage, error) {
	for _, msg := range m.outreach {
		if msg.ID == id {
			return msg, nil
		}
	}
	return nil, nil
}

func (m *MockCampaignRepo) UpdateOutreachStatus(id int, status, lastError string) error { return nil }

func (m *MockCampaignRepo) UpdateOutreachContent(id int, content string) error {
	msg, _ := m.GetOutreachMessageByID(id)
	if msg != nil {
		msg.RenderedContent = content
	}
	return nil
}

func (m *MockCampaignRepo) GetCampaignStats(campaignID int) (map[string]int, error) {
	return map[string]int{"pending": len(m.outreach), "sent": 0, "failed": 0}, nil
}

type countingQueue struct{ published int }

func (q *countingQueue) Publish(topic string, payload any) error {
	q.published++
	return nil
}

func (q *countingQueue) Subscribe(topic string, handler func(payload any) error) error { return nil }

type fixedModel struct {
	name  string
	probs map[string]float64
}

func (f *fixedModel) Name() string                          { return f.name }
func (f *fixedModel) PredictProba(c model.Customer) float64 { return f.probs[c.CustomerID] }
func (f *fixedModel) Drivers(topN int) []scoring.Driver     { return nil }

// --- Test Setup ---

func newRouter() (*chi.Mux, *MockCampaignRepo, *countingQueue) {
	customers := &MockCustomerRepo{customers: []model.Customer{
		{CustomerID: "7590-VHVEG", Tenure: 12, Contract: "Month-to-month", MonthlyCharges: 70.35, Churn: "Yes"},
		{CustomerID: "3668-QPYBK", Tenure: 34, Contract: "One year", MonthlyCharges: 56.95, Churn: "No"},
	}}
	repo := newMockCampaignRepo(&model.RetentionCampaign{
		ID:           1,
		Name:         "winback",
		Channel:      "sms",
		Status:       "draft",
		BaseTemplate: "Hi {customer_id}, we have an offer on your {contract} plan.",
	})
	q := &countingQueue{}

	campaignSvc := &service.CampaignService{CampaignRepo: repo, CustomerRepo: customers, Queue: q}
	analysisSvc := service.NewAnalysisService(customers, scoring.NewRegistry(&fixedModel{
		name:  "logistic",
		probs: map[string]float64{"7590-VHVEG": 0.83, "3668-QPYBK": 0.12},
	}))

	ctrl := &controller.CampaignController{CampaignService: campaignSvc, AnalysisService: analysisSvc}

	r := chi.NewRouter()
	r.Post("/campaigns", ctrl.CreateCampaign)
	r.Get("/campaigns", ctrl.ListCampaigns)
	r.Get("/campaigns/{id}", ctrl.GetCampaignDetails)
	r.Post("/campaigns/{id}/send", ctrl.SendCampaign)
	r.Post("/campaigns/{id}/personalized-preview", ctrl.PersonalizedPreview)
	return r, repo, q
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// --- Tests ---

func TestPersonalizedPreviewEndpoint(t *testing.T) {
	r, _, _ := newRouter()

	w := doJSON(t, r, "POST", "/campaigns/1/personalized-preview", map[string]any{
		"customer_id": "7590-VHVEG",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res map[string]any
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	msg, _ := res["rendered_message"].(string)
	if !strings.Contains(msg, "7590-VHVEG") || !strings.Contains(msg, "Month-to-month") {
		t.Errorf("rendered_message = %q", msg)
	}
}

func TestPersonalizedPreviewUnknownCustomerIs404(t *testing.T) {
	r, _, _ := newRouter()

	w := doJSON(t, r, "POST", "/campaigns/1/personalized-preview", map[string]any{
		"customer_id": "0000-XXXXX",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSendCampaignWithExplicitCustomers(t *testing.T) {
	r, repo, q := newRouter()

	w := doJSON(t, r, "POST", "/campaigns/1/send", map[string]any{
		"customer_ids": []string{"7590-VHVEG", "3668-QPYBK"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res struct {
		MessagesQueued int    `json:"messages_queued"`
		Status         string `json:"status"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.MessagesQueued != 2 || q.published != 2 {
		t.Errorf("queued = %d, published = %d, want 2/2", res.MessagesQueued, q.published)
	}
	if repo.campaign.Status != "sending" {
		t.Errorf("campaign status = %s, want sending", repo.campaign.Status)
	}
}

func TestSendCampaignFlagsCustomersByModel(t *testing.T) {
	r, _, q := newRouter()

	// Only 7590-VHVEG scores above 0.5.
	w := doJSON(t, r, "POST", "/campaigns/1/send", map[string]any{
		"model":     "logistic",
		"threshold": 0.5,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res struct {
		MessagesQueued int `json:"messages_queued"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.MessagesQueued != 1 || q.published != 1 {
		t.Errorf("queued = %d, published = %d, want 1/1", res.MessagesQueued, q.published)
	}
}

func TestSendCampaignUnknownModelIs404(t *testing.T) {
	r, _, _ := newRouter()

	w := doJSON(t, r, "POST", "/campaigns/1/send", map[string]any{"model": "xgboost"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSendCampaignUnknownCampaignIs404(t *testing.T) {
	r, _, _ := newRouter()

	w := doJSON(t, r, "POST", "/campaigns/9/send", map[string]any{
		"customer_ids": []string{"7590-VHVEG"},
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestCreateCampaignValidation(t *testing.T) {
	r, _, _ := newRouter()

	w := doJSON(t, r, "POST", "/campaigns", map[string]any{"channel": "sms"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing name", w.Code)
	}

	w = doJSON(t, r, "POST", "/campaigns", map[string]any{
		"name":          "fiber offer",
		"channel":       "email",
		"base_template": "Hi {customer_id}",
	})
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201, body = %s", w.Code, w.Body.String())
	}
}

func TestGetCampaignDetails(t *testing.T) {
	r, _, _ := newRouter()

	w := doJSON(t, r, "GET", "/campaigns/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var res struct {
		Name  string         `json:"name"`
		Stats map[string]int `json:"stats"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Name != "winback" {
		t.Errorf("name = %s, want winback", res.Name)
	}
	if _, ok := res.Stats["total"]; !ok {
		t.Error("stats missing total")
	}

	w = doJSON(t, r, "GET", "/campaigns/9", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
