package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/creative-compliance/internal/db"
	"github.com/jonathan/creative-compliance/internal/server/ratelimit"
	"github.com/jonathan/creative-compliance/internal/types"
)

// mockStore is an in-memory ReportStore
type mockStore struct {
	mu       sync.Mutex
	reports  map[uuid.UUID]*types.ComplianceReport
	requests map[uuid.UUID]*types.ValidationRequest
	filters  []db.ReportFilters
	err      error
}

func newMockStore() *mockStore {
	return &mockStore{
		reports:  make(map[uuid.UUID]*types.ComplianceReport),
		requests: make(map[uuid.UUID]*types.ValidationRequest),
	}
}

func (m *mockStore) SaveReport(_ context.Context, report *types.ComplianceReport, req *types.ValidationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	id := uuid.MustParse(report.ID)
	m.reports[id] = report
	m.requests[id] = req
	return nil
}

func (m *mockStore) GetReport(_ context.Context, id uuid.UUID) (*types.ComplianceReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.reports[id], nil
}

func (m *mockStore) GetReportRequest(_ context.Context, id uuid.UUID) (*types.ValidationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[id], nil
}

func (m *mockStore) ListReports(_ context.Context, filters db.ReportFilters) ([]db.ReportSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.filters = append(m.filters, filters)
	out := []db.ReportSummary{}
	for id, r := range m.reports {
		out = append(out, db.ReportSummary{ID: id, Compliant: r.Compliant, Score: r.Score, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func (m *mockStore) DeleteReport(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reports, id)
	delete(m.requests, id)
	return nil
}

func (m *mockStore) Close() {}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, store ReportStore) *Server {
	t.Helper()
	s := newServer(Config{Logger: quietLogger()}, store, ratelimit.NewLimiter(&ratelimit.Config{Enabled: false}))
	t.Cleanup(s.rateLimiter.Stop)
	return s
}

func compliantDesign() *types.ValidationRequest {
	return &types.ValidationRequest{
		Canvas:  types.CanvasSize{W: 1080, H: 1920},
		Options: types.Options{FormatType: "social"},
		Pages: []types.Page{{
			ID:         "page-1",
			Background: "#FFFFFF",
			Children: []types.Element{
				{ID: "headline", Type: "text", Text: "Summer Deals", X: 100, Y: 300, Width: 800, Height: 60, FontSize: 48, FontWeight: "bold", Fill: "#000000"},
				{ID: "price", Type: "text", Text: "£2.50", X: 100, Y: 400, Width: 200, Height: 50, FontSize: 32, FontWeight: "bold", Fill: "#000000"},
				{ID: "packshot-1", Type: "image", X: 500, Y: 500, Width: 200, Height: 200},
				{ID: "cta", Type: "text", Text: "Shop now", X: 100, Y: 1000, Width: 300, Height: 40, FontSize: 24, Fill: "#000000"},
				{ID: "tag", Type: "text", Text: "Available at Tesco", X: 100, Y: 1500, Width: 400, Height: 30, FontSize: 20, Fill: "#000000"},
			},
		}},
	}
}

// brokenDesign has low contrast, an unbolded price, a tiny CTA and no brand tag
func brokenDesign() *types.ValidationRequest {
	req := compliantDesign()
	children := req.Pages[0].Children
	children[0].Fill = "#CCCCCC"
	children[1].FontWeight = ""
	children[3].FontSize = 10
	req.Pages[0].Children = children[:4]
	return req
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[map[string]string](t, w)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "disabled", resp["store"])
}

func TestCORSHeaders(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/validate", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestValidate_Compliant(t *testing.T) {
	store := newMockStore()
	s := newTestServer(t, store)

	w := doJSON(t, s, http.MethodPost, "/validate", compliantDesign())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	report := decode[types.ComplianceReport](t, w)
	assert.True(t, report.Compliant)
	assert.Equal(t, 100, report.Score)
	assert.Equal(t, "social", report.FormatType)

	id, err := uuid.Parse(report.ID)
	require.NoError(t, err)
	assert.Contains(t, store.reports, id, "report is stored")
	require.NotNil(t, store.requests[id])
	assert.Len(t, store.requests[id].Pages[0].Children, 5)
}

func TestValidate_Violations(t *testing.T) {
	s := newTestServer(t, nil)

	w := doJSON(t, s, http.MethodPost, "/validate", brokenDesign())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	report := decode[types.ComplianceReport](t, w)
	assert.False(t, report.Compliant)
	hard := map[types.RuleID]bool{}
	for _, v := range report.Violations {
		hard[v.Rule] = true
		assert.Equal(t, types.SeverityHard, v.Severity)
	}
	assert.True(t, hard[types.RuleMissingTag])
	assert.True(t, hard[types.RuleMinFontSize])

	warned := map[types.RuleID]bool{}
	for _, v := range report.Warnings {
		warned[v.Rule] = true
	}
	assert.True(t, warned[types.RuleContrast])
}

func TestValidate_InvalidInput(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"pages": [`},
		{"missing canvas", `{"pages": []}`},
		{"zero canvas", `{"pages": [], "canvas": {"w": 0, "h": 100}}`},
		{"bad opacity", `{"pages": [{"children": [{"id": "a", "opacity": 2}]}], "canvas": {"w": 10, "h": 10}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			resp := decode[map[string]any](t, w)
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestValidate_StoreFailureStillReports(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("connection refused")
	s := newTestServer(t, store)

	w := doJSON(t, s, http.MethodPost, "/validate", compliantDesign())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidateHTML(t *testing.T) {
	s := newTestServer(t, nil)

	html := `<div class="canvas-container" style="width: 1080px; height: 1920px; background: #ffffff">
	  <div data-id="headline" style="left: 100px; top: 300px; width: 800px; height: 60px; font-size: 48px; font-weight: bold; color: #000000">Summer Deals</div>
	</div>`

	req := httptest.NewRequest(http.MethodPost, "/validate/html?format=social&alcohol=true", strings.NewReader(html))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	report := decode[types.ComplianceReport](t, w)
	assert.False(t, report.Compliant)
	assert.Equal(t, "social", report.FormatType)

	rules := map[types.RuleID]bool{}
	for _, v := range report.All() {
		rules[v.Rule] = true
	}
	assert.True(t, rules[types.RuleMissingTag])
	assert.True(t, rules[types.RuleDrinkaware], "alcohol option comes from the query")
}

func TestValidateHTML_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"no container", "/validate/html", `<div>hello</div>`},
		{"bad option", "/validate/html?alcohol=maybe", `<div class="canvas-container" style="width: 10px; height: 10px"></div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAutofix(t *testing.T) {
	s := newTestServer(t, nil)

	design := brokenDesign()
	validateResp := doJSON(t, s, http.MethodPost, "/validate", design)
	require.Equal(t, http.StatusOK, validateResp.Code)
	report := decode[types.ComplianceReport](t, validateResp)

	w := doJSON(t, s, http.MethodPost, "/autofix", AutofixRequest{Pages: design.Pages, Violations: report.All()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[AutofixResponse](t, w)
	assert.Equal(t, len(report.Fixable()), resp.Applied)

	fixed := *design
	fixed.Pages = resp.Pages
	again := doJSON(t, s, http.MethodPost, "/validate", &fixed)
	require.Equal(t, http.StatusOK, again.Code)
	assert.True(t, decode[types.ComplianceReport](t, again).Compliant)
}

func TestAutofix_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("unknown action", func(t *testing.T) {
		body := `{"pages": [], "violations": [{"rule": "SAFE_ZONE", "severity": "hard", "autoFixable": true, "autoFix": {"action": "teleport"}}]}`
		req := httptest.NewRequest(http.MethodPost, "/autofix", strings.NewReader(body))
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing element", func(t *testing.T) {
		v := types.Violation{ElementID: "ghost", Rule: types.RuleSafeZone, Severity: types.SeverityHard}.WithFix(types.MoveFix{Y: 210})
		w := doJSON(t, s, http.MethodPost, "/autofix", AutofixRequest{Pages: []types.Page{{}}, Violations: []types.Violation{v}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFix(t *testing.T) {
	store := newMockStore()
	s := newTestServer(t, store)

	w := doJSON(t, s, http.MethodPost, "/fix", brokenDesign())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[FixResponse](t, w)
	assert.True(t, resp.Report.Compliant)
	assert.Equal(t, 4, resp.Applied)
	assert.Equal(t, 1, resp.Iterations)
	assert.Len(t, resp.Design.Pages[0].Children, 5)
	assert.Len(t, store.reports, 1)

	bad := doJSON(t, s, http.MethodPost, "/fix?max_iterations=0", brokenDesign())
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestReports_NoStore(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/reports", "/reports/" + uuid.NewString()} {
		w := doJSON(t, s, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
	}
}

func TestReports_CRUD(t *testing.T) {
	store := newMockStore()
	s := newTestServer(t, store)

	created := decode[types.ComplianceReport](t, doJSON(t, s, http.MethodPost, "/validate", compliantDesign()))

	// Get
	w := doJSON(t, s, http.MethodGet, "/reports/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[types.ComplianceReport](t, w)
	assert.Equal(t, created.ID, got.ID)

	// Design
	w = doJSON(t, s, http.MethodGet, "/reports/"+created.ID+"/design", nil)
	require.Equal(t, http.StatusOK, w.Code)
	design := decode[types.ValidationRequest](t, w)
	assert.Equal(t, 1080.0, design.Canvas.W)

	// List
	w = doJSON(t, s, http.MethodGet, "/reports?limit=5&compliant=true&format=social", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Reports []db.ReportSummary `json:"reports"`
		Count   int                `json:"count"`
	}](t, w)
	assert.Equal(t, 1, list.Count)
	require.Len(t, store.filters, 1)
	assert.Equal(t, 5, store.filters[0].Limit)
	require.NotNil(t, store.filters[0].Compliant)
	assert.True(t, *store.filters[0].Compliant)
	assert.Equal(t, "social", store.filters[0].FormatType)

	// Delete
	w = doJSON(t, s, http.MethodDelete, "/reports/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodGet, "/reports/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, s, http.MethodGet, "/reports/"+created.ID+"/design", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReports_BadParams(t *testing.T) {
	s := newTestServer(t, newMockStore())

	for _, path := range []string{"/reports?limit=0", "/reports?limit=abc", "/reports?compliant=sometimes", "/reports/not-a-uuid"} {
		w := doJSON(t, s, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestReports_StoreError(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("boom")
	s := newTestServer(t, store)

	w := doJSON(t, s, http.MethodGet, "/reports", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom", "internal errors are not echoed")
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  2,
		DefaultWindow: time.Hour,
	})
	s := newServer(Config{Logger: quietLogger()}, nil, limiter)
	t.Cleanup(limiter.Stop)

	for i := 0; i < 2; i++ {
		w := doJSON(t, s, http.MethodGet, "/reports", nil)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := doJSON(t, s, http.MethodGet, "/reports", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	resp := decode[map[string]any](t, w)
	assert.Equal(t, "rate_limit_exceeded", resp["error"])

	health := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, health.Code, "health is never limited")
}

func TestClientID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "192.168.1.7:5555"
	assert.Equal(t, "192.168.1.7", clientID(req))

	req.RemoteAddr = "not-an-addr"
	assert.Equal(t, "not-an-addr", clientID(req))
}
