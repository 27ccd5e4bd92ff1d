package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/quarterpay/internal/config"
	"github.com/MikeSquared-Agency/quarterpay/internal/hermes"
	"github.com/MikeSquared-Agency/quarterpay/internal/scoring"
)

type MockHermes struct {
	mock.Mock
}

func (m *MockHermes) Publish(subject string, data interface{}) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *MockHermes) Close() {}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCalculator() *scoring.Calculator {
	pay := config.PayConfig{BaseMonthlySalary: 6000, QuarterPool: 36000, DefaultTaxKeepRate: 0.97}
	return scoring.NewCalculator(scoring.DefaultCoefficients(), scoring.DefaultCatalog(), pay, discardLogger())
}

func setupTestRouter(h hermes.Client) http.Handler {
	return NewRouter(newCalculator(), h, 0, discardLogger())
}

const hubeiBody = `{
	"year_target": 5000000,
	"quarter_actual": 250000,
	"margin": 0.25,
	"settlement_days": 10,
	"invoice_days": 10,
	"payback_days": 30,
	"audit_bias": 0.01,
	"customer_cost": 0.01,
	"project": "hubei"
}`

func postCalculation(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/calculations", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateCalculation(t *testing.T) {
	mh := &MockHermes{}
	mh.On("Publish", mock.MatchedBy(func(s string) bool {
		return strings.HasSuffix(s, ".completed")
	}), mock.AnythingOfType("hermes.CalculationCompletedEvent")).Return(nil).Once()

	w := postCalculation(t, setupTestRouter(mh), hubeiBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		CalculationID  string              `json:"calculation_id"`
		Project        string              `json:"project"`
		TotalScore     float64             `json:"total_score"`
		AfterTaxSalary float64             `json:"after_tax_salary"`
		Breakdown      []scoring.ScoreLine `json:"breakdown"`
		Display        []scoring.ScoreLine `json:"breakdown_display"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.CalculationID)
	assert.Equal(t, "湖北", resp.Project)
	assert.InDelta(t, 16.375, resp.TotalScore, 1e-9)
	assert.InDelta(t, 23178.15, resp.AfterTaxSalary, 1e-6)
	require.Len(t, resp.Breakdown, 7)
	require.Len(t, resp.Display, 7)
	assert.Equal(t, scoring.Performance, resp.Display[0].Metric)
	assert.Equal(t, -120.0, resp.Display[0].Score)
	mh.AssertExpectations(t)
}

func TestCreateCalculationExplicitStringWeights(t *testing.T) {
	body := `{"year_target": 4, "quarter_actual": 1, "margin": 0.25,
		"project": "湖北", "weights": {"margin": "0.5", "业绩": 0.5}}`

	w := postCalculation(t, setupTestRouter(nil), body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	_, hasProject := resp["project"]
	assert.False(t, hasProject, "explicit weights must win over the project")
	// performance rate 1.0 -> 100, margin 0.25 -> 30
	assert.InDelta(t, 65, resp["total_score"], 1e-9)
}

func TestCreateCalculationInvalidInput(t *testing.T) {
	mh := &MockHermes{}
	mh.On("Publish", mock.AnythingOfType("string"), mock.AnythingOfType("hermes.CalculationRejectedEvent")).Return(errors.New("nats down"))

	body := `{"year_target": 0, "quarter_actual": 250000, "project": "湖北"}`
	w := postCalculation(t, setupTestRouter(mh), body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "year_target", resp["field"])
	assert.Contains(t, resp["error"], "invalid input")
	mh.AssertNumberOfCalls(t, "Publish", 1)
}

func TestCreateCalculationNonFiniteInput(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"NaN weight string", `{"year_target": 5000000, "quarter_actual": 250000, "weights": {"performance": "NaN"}}`, "weights.performance"},
		{"infinite weight string", `{"year_target": 5000000, "quarter_actual": 250000, "weights": {"margin": "Inf"}}`, "weights.margin"},
		{"overflowing performance rate", `{"year_target": 1e-300, "quarter_actual": 1e300, "project": "hubei"}`, "quarter_actual"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postCalculation(t, setupTestRouter(nil), tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			require.NotEmpty(t, w.Body.String())

			var resp map[string]interface{}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.field, resp["field"])
			assert.Contains(t, resp["error"], "invalid input")
		})
	}
}

func TestWriteJSONUnencodableValue(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusOK, map[string]float64{"total_score": math.NaN()})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp["error"])
}

func TestCreateCalculationUnknownProject(t *testing.T) {
	body := `{"year_target": 5000000, "quarter_actual": 250000, "project": "Nowhere"}`
	w := postCalculation(t, setupTestRouter(nil), body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Error     string   `json:"error"`
		KnownKeys []string `json:"known_keys"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "configuration not found")
	assert.ElementsMatch(t, []string{"新疆", "山东", "青海", "湖北", "华中区域"}, resp.KnownKeys)
}

func TestCreateCalculationBadBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"year_target":`},
		{"bad weight string", `{"year_target": 1, "quarter_actual": 1, "weights": {"margin": "lots"}}`},
		{"out of range weight", `{"year_target": 1, "quarter_actual": 1, "weights": {"margin": "1e400"}}`},
		{"non-numeric weight", `{"year_target": 1, "quarter_actual": 1, "weights": {"performance": "abc"}}`},
		{"fractional days", `{"year_target": 1, "quarter_actual": 1, "project": "湖北", "payback_days": 1.5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postCalculation(t, setupTestRouter(nil), tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListProjects(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/projects", nil)
	w := httptest.NewRecorder()
	setupTestRouter(nil).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var projects []ProjectInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&projects))
	require.Len(t, projects, 5)
	for _, p := range projects {
		assert.Len(t, p.Weights, 7, p.Name)
		if p.Name == "湖北" {
			assert.Equal(t, []string{"hubei"}, p.Aliases)
		}
	}
}

func TestGetProject(t *testing.T) {
	router := setupTestRouter(nil)

	req := httptest.NewRequest("GET", "/api/v1/projects/central-china", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var p ProjectInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	assert.Equal(t, "华中区域", p.Name)
	assert.Equal(t, []string{"central-china", "huazhong", "华中"}, p.Aliases)
	assert.InDelta(t, 0.125, p.Weights[scoring.CustomerCost], 1e-12)

	req = httptest.NewRequest("GET", "/api/v1/projects/atlantis", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCoefficients(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/coefficients", nil)
	w := httptest.NewRecorder()
	setupTestRouter(nil).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var table struct {
		Version string                              `json:"version"`
		Curves  map[string][]map[string]interface{} `json:"curves"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&table))
	assert.Equal(t, scoring.DefaultCoefficientVersion, table.Version)
	require.Len(t, table.Curves, 7)
	perf := table.Curves["performance"]
	require.Len(t, perf, 4)
	assert.Nil(t, perf[0]["lower"], "-inf bound is null")
	assert.Equal(t, 0.6, perf[0]["upper"])
}

func TestMetricsRouter(t *testing.T) {
	router := NewMetricsRouter()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Drive one calculation so the counter has a sample.
	postCalculation(t, setupTestRouter(nil), hubeiBody)

	req = httptest.NewRequest("GET", "/metrics", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "quarterpay_calculations_total")
}
