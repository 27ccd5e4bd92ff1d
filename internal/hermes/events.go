package hermes

import "time"

type CalculationCompletedEvent struct {
	CalculationID      string    `json:"calculation_id"`
	Project            string    `json:"project,omitempty"`
	ExplicitWeights    bool      `json:"explicit_weights"`
	CoefficientVersion string    `json:"coefficient_version"`
	PerformanceRate    float64   `json:"performance_rate"`
	TotalScore         float64   `json:"total_score"`
	PerformancePayout  float64   `json:"performance_payout"`
	TotalSalary        float64   `json:"total_salary"`
	AfterTaxSalary     float64   `json:"after_tax_salary"`
	Timestamp          time.Time `json:"timestamp"`
}

type CalculationRejectedEvent struct {
	CalculationID string    `json:"calculation_id"`
	Project       string    `json:"project,omitempty"`
	Kind          string    `json:"kind"`
	Error         string    `json:"error"`
	Timestamp     time.Time `json:"timestamp"`
}
