package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/flood-response/internal/assist"
	"github.com/mr1hm/flood-response/internal/models"
	"github.com/mr1hm/flood-response/internal/stream"
)

// mockAlertRepo implements repository.AlertRepository for testing
type mockAlertRepo struct {
	alerts []models.FloodAlert
}

func (m *mockAlertRepo) AddAlert(_ context.Context, a *models.FloodAlert) error {
	m.alerts = append(m.alerts, *a)
	return nil
}

func (m *mockAlertRepo) ListAlerts(_ context.Context) ([]models.FloodAlert, error) {
	out := make([]models.FloodAlert, len(m.alerts))
	copy(out, m.alerts)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// mockResourceRepo implements repository.ResourceRepository for testing
type mockResourceRepo struct {
	resources []models.Resource
}

func (m *mockResourceRepo) AddResource(_ context.Context, r *models.Resource) error {
	m.resources = append(m.resources, *r)
	return nil
}

func (m *mockResourceRepo) GetResourceByID(_ context.Context, id string) (*models.Resource, error) {
	for _, r := range m.resources {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *mockResourceRepo) ListResources(_ context.Context, kind models.ResourceKind) ([]models.Resource, error) {
	var out []models.Resource
	for _, r := range m.resources {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// stubIdentifier resolves every token to a fixed user
type stubIdentifier struct {
	user *models.User
}

func (s *stubIdentifier) Identify(_ context.Context, _ string) (*models.User, error) {
	return s.user, nil
}

type countingGenerator struct {
	calls atomic.Int64
	reply string
	err   error
}

func (g *countingGenerator) GenerateText(_ context.Context, _ string) (string, error) {
	g.calls.Add(1)
	return g.reply, g.err
}

type testEnv struct {
	router      *gin.Engine
	alerts      *mockAlertRepo
	resources   *mockResourceRepo
	gen         *countingGenerator
	broadcaster *stream.Broadcaster
	stop        func()
}

func setupTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	alerts := &mockAlertRepo{}
	resources := &mockResourceRepo{}
	gen := &countingGenerator{reply: "generated text"}

	broadcaster := stream.NewBroadcaster()
	notifier := stream.NewNotifier(broadcaster, 1, 16)
	ctx, cancel := context.WithCancel(context.Background())
	notifier.Start(ctx)

	user := &models.User{ID: "user-1", Email: "asha@example.com"}

	router := gin.New()
	handler := NewHandler(alerts, resources, assist.NewService(gen), broadcaster, notifier)
	handler.RegisterRoutes(router, AuthRequired(&stubIdentifier{user: user}))

	env := &testEnv{
		router:      router,
		alerts:      alerts,
		resources:   resources,
		gen:         gen,
		broadcaster: broadcaster,
		stop: func() {
			cancel()
			notifier.Stop()
			broadcaster.Close()
		},
	}
	t.Cleanup(env.stop)
	return env
}

func authedRequest(method, url string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	return req
}

func TestHealth(t *testing.T) {
	env := setupTestEnv(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestCreateAlert(t *testing.T) {
	env := setupTestEnv(t)

	w := httptest.NewRecorder()
	req := authedRequest("POST", "/api/alerts", gin.H{
		"location": "Village A",
		"status":   "ongoing",
		"severity": "high",
	})
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var alert models.FloodAlert
	if err := json.Unmarshal(w.Body.Bytes(), &alert); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if alert.ID == "" {
		t.Error("expected server-assigned id")
	}
	if alert.CreatedAt.IsZero() {
		t.Error("expected server-assigned timestamp")
	}
	if alert.ReportedBy != "user-1" {
		t.Errorf("expected reporter 'user-1', got '%s'", alert.ReportedBy)
	}
	if alert.Location != "Village A" || alert.Status != models.AlertStatusOngoing || alert.Severity != models.SeverityHigh {
		t.Errorf("unexpected alert: %+v", alert)
	}

	if len(env.alerts.alerts) != 1 {
		t.Errorf("expected 1 stored alert, got %d", len(env.alerts.alerts))
	}
}

func TestCreateAlert_Unauthenticated(t *testing.T) {
	env := setupTestEnv(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/alerts", strings.NewReader(`{"location":"A","status":"ongoing","severity":"low"}`))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
	if len(env.alerts.alerts) != 0 {
		t.Errorf("expected no stored alerts, got %d", len(env.alerts.alerts))
	}
}

func TestCreateAlert_InvalidEnum(t *testing.T) {
	env := setupTestEnv(t)

	w := httptest.NewRecorder()
	req := authedRequest("POST", "/api/alerts", gin.H{
		"location": "Village A",
		"status":   "flooded",
		"severity": "high",
	})
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	if len(env.alerts.alerts) != 0 {
		t.Errorf("expected no stored alerts, got %d", len(env.alerts.alerts))
	}
}

func TestListAlerts_NewestFirst(t *testing.T) {
	env := setupTestEnv(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	env.alerts.alerts = []models.FloodAlert{
		{ID: "a1", Location: "A", CreatedAt: base},
		{ID: "a2", Location: "B", CreatedAt: base.Add(time.Hour)},
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("GET", "/api/alerts", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Alerts []models.FloodAlert `json:"alerts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Alerts) != 2 || resp.Alerts[0].ID != "a2" {
		t.Errorf("expected newest first, got %+v", resp.Alerts)
	}
}

func TestCreateResource_Request(t *testing.T) {
	env := setupTestEnv(t)

	w := httptest.NewRecorder()
	req := authedRequest("POST", "/api/resources", gin.H{
		"kind":     "request",
		"item":     "drinking water",
		"quantity": 50,
		"location": "Camp 1",
		"contact":  "9am-5pm at the school",
		"urgency":  "high",
	})
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var res models.Resource
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if res.Status != models.ResourceStatusPending {
		t.Errorf("expected status 'pending', got '%s'", res.Status)
	}
	if res.UserID != "user-1" {
		t.Errorf("expected user 'user-1', got '%s'", res.UserID)
	}
	if res.Availability != "" {
		t.Errorf("expected empty availability on request, got '%s'", res.Availability)
	}
}

func TestCreateResource_OfferRequiresAvailability(t *testing.T) {
	env := setupTestEnv(t)

	w := httptest.NewRecorder()
	req := authedRequest("POST", "/api/resources", gin.H{
		"kind":     "offer",
		"item":     "blankets",
		"quantity": 20,
		"location": "Camp 2",
		"contact":  "call 555",
	})
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestCreateResource_OfferDropsUrgency(t *testing.T) {
	env := setupTestEnv(t)

	w := httptest.NewRecorder()
	req := authedRequest("POST", "/api/resources", gin.H{
		"kind":         "offer",
		"item":         "blankets",
		"quantity":     20,
		"location":     "Camp 2",
		"contact":      "call 555",
		"availability": "within 24 hours",
		"urgency":      "high",
	})
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var res models.Resource
	json.Unmarshal(w.Body.Bytes(), &res)
	if res.Urgency != "" {
		t.Errorf("expected urgency cleared on offer, got '%s'", res.Urgency)
	}
	if res.Availability != models.AvailabilityWithin24h {
		t.Errorf("expected availability kept, got '%s'", res.Availability)
	}
}

func TestListResources_RequiresKind(t *testing.T) {
	env := setupTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("GET", "/api/resources", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 without kind, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("GET", "/api/resources?kind=offer", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestDashboard(t *testing.T) {
	env := setupTestEnv(t)
	now := time.Now()
	env.alerts.alerts = []models.FloodAlert{{ID: "a1", CreatedAt: now}}
	env.resources.resources = []models.Resource{
		{ID: "r1", Kind: models.ResourceKindRequest, CreatedAt: now},
		{ID: "o1", Kind: models.ResourceKindOffer, CreatedAt: now},
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("GET", "/api/dashboard", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Alerts   []models.FloodAlert `json:"alerts"`
		Requests []models.Resource   `json:"requests"`
		Offers   []models.Resource   `json:"offers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Alerts) != 1 || len(resp.Requests) != 1 || len(resp.Offers) != 1 {
		t.Errorf("unexpected dashboard counts: %d alerts, %d requests, %d offers",
			len(resp.Alerts), len(resp.Requests), len(resp.Offers))
	}
}

func TestSummarize(t *testing.T) {
	env := setupTestEnv(t)
	env.gen.reply = "- Water rising in two wards"

	w := httptest.NewRecorder()
	req := authedRequest("POST", "/api/summarize", gin.H{"reports": "Water entered houses near the river."})
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["summary"] != env.gen.reply {
		t.Errorf("expected summary, got '%s'", resp["summary"])
	}
}

func TestSummarize_EmptyInput(t *testing.T) {
	env := setupTestEnv(t)

	w := httptest.NewRecorder()
	req := authedRequest("POST", "/api/summarize", gin.H{"reports": "   "})
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	if env.gen.calls.Load() != 0 {
		t.Errorf("expected no generator calls, got %d", env.gen.calls.Load())
	}
}

func TestMatchResource(t *testing.T) {
	env := setupTestEnv(t)
	env.gen.reply = "top 3 offers"
	env.resources.resources = []models.Resource{
		{ID: "r1", Kind: models.ResourceKindRequest, Item: "water", Quantity: 50, Location: "Camp 1", Urgency: models.UrgencyHigh},
		{ID: "o1", Kind: models.ResourceKindOffer, Item: "water cans", Quantity: 30, Location: "Camp 2", Availability: models.AvailabilityImmediate},
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("POST", "/api/resources/r1/match", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["matches"] != "top 3 offers" {
		t.Errorf("expected matches text, got '%s'", resp["matches"])
	}
	if env.gen.calls.Load() != 1 {
		t.Errorf("expected 1 generator call, got %d", env.gen.calls.Load())
	}
}

func TestMatchResource_NotFound(t *testing.T) {
	env := setupTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("POST", "/api/resources/missing/match", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
	if env.gen.calls.Load() != 0 {
		t.Errorf("expected no generator calls, got %d", env.gen.calls.Load())
	}
}
