package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/quarterpay/internal/hermes"
	"github.com/MikeSquared-Agency/quarterpay/internal/scoring"
)

type CalculationsHandler struct {
	calc   *scoring.Calculator
	hermes hermes.Client
	logger *slog.Logger
}

func NewCalculationsHandler(calc *scoring.Calculator, h hermes.Client, logger *slog.Logger) *CalculationsHandler {
	return &CalculationsHandler{calc: calc, hermes: h, logger: logger}
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("weight %q is not a number", s)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type CalculateRequest struct {
	YearTarget     float64              `json:"year_target"`
	QuarterActual  float64              `json:"quarter_actual"`
	Margin         float64              `json:"margin"`
	SettlementDays int                  `json:"settlement_days"`
	InvoiceDays    int                  `json:"invoice_days"`
	PaybackDays    int                  `json:"payback_days"`
	AuditBias      float64              `json:"audit_bias"`
	CustomerCost   float64              `json:"customer_cost"`
	TaxKeepRate    *float64             `json:"tax_keep_rate,omitempty"`
	Project        string               `json:"project,omitempty"`
	Weights        map[string]flexFloat `json:"weights,omitempty"`
}

func (req CalculateRequest) input() scoring.Input {
	var weights map[string]float64
	if len(req.Weights) > 0 {
		weights = make(map[string]float64, len(req.Weights))
		for k, v := range req.Weights {
			weights[k] = float64(v)
		}
	}
	return scoring.Input{
		YearTarget:     req.YearTarget,
		QuarterActual:  req.QuarterActual,
		Margin:         req.Margin,
		SettlementDays: req.SettlementDays,
		InvoiceDays:    req.InvoiceDays,
		PaybackDays:    req.PaybackDays,
		AuditBias:      req.AuditBias,
		CustomerCost:   req.CustomerCost,
		TaxKeepRate:    req.TaxKeepRate,
		Weights:        scoring.SourceFrom(weights, req.Project),
	}
}

type CalculateResponse struct {
	CalculationID string `json:"calculation_id"`
	*scoring.CalculationResult
	Display []scoring.ScoreLine `json:"breakdown_display"`
}

// Create runs one salary calculation.
// POST /api/v1/calculations
func (h *CalculationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		calculationsTotal.WithLabelValues("bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}

	id := uuid.New().String()
	res, err := h.calc.Calculate(req.input())
	if err != nil {
		h.reject(w, id, req.Project, err)
		return
	}

	calculationsTotal.WithLabelValues("ok").Inc()
	totalScore.Observe(res.TotalScore)
	performancePayout.Observe(res.PerformancePayout)

	display := make([]scoring.ScoreLine, len(res.Lines))
	for i, l := range res.Lines {
		display[i] = l.Rounded()
	}

	h.publish(hermes.SubjectCalculationCompleted(id), hermes.CalculationCompletedEvent{
		CalculationID:      id,
		Project:            res.Project,
		ExplicitWeights:    res.Project == "",
		CoefficientVersion: res.CoefficientVersion,
		PerformanceRate:    res.PerformanceRate,
		TotalScore:         res.TotalScore,
		PerformancePayout:  res.PerformancePayout,
		TotalSalary:        res.TotalSalary,
		AfterTaxSalary:     res.AfterTaxSalary,
		Timestamp:          time.Now().UTC(),
	})

	writeJSON(w, http.StatusOK, CalculateResponse{
		CalculationID:     id,
		CalculationResult: res,
		Display:           display,
	})
}

func (h *CalculationsHandler) reject(w http.ResponseWriter, id, project string, err error) {
	var (
		status int
		kind   string
		body   map[string]interface{}
	)
	var cnf *scoring.ConfigNotFoundError
	var iie *scoring.InvalidInputError
	switch {
	case errors.As(err, &iie):
		status, kind = http.StatusBadRequest, "invalid_input"
		body = map[string]interface{}{"error": err.Error(), "field": iie.Field}
	case errors.As(err, &cnf):
		status, kind = http.StatusNotFound, "config_not_found"
		body = map[string]interface{}{"error": err.Error(), "known_keys": cnf.Known}
	default:
		h.logger.Error("calculation failed", "error", err)
		status, kind = http.StatusInternalServerError, "error"
		body = map[string]interface{}{"error": err.Error()}
	}
	calculationsTotal.WithLabelValues(kind).Inc()

	h.publish(hermes.SubjectCalculationRejected(id), hermes.CalculationRejectedEvent{
		CalculationID: id,
		Project:       project,
		Kind:          kind,
		Error:         err.Error(),
		Timestamp:     time.Now().UTC(),
	})
	writeJSON(w, status, body)
}

func (h *CalculationsHandler) publish(subject string, event interface{}) {
	if h.hermes == nil {
		return
	}
	if err := h.hermes.Publish(subject, event); err != nil {
		h.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

// writeJSON encodes v before writing the header; a value that cannot be
// encoded is answered with a 500.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode response", "status", status, "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}
