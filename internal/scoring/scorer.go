package scoring

import (
	"log/slog"
	"math"
	"sort"

	"github.com/MikeSquared-Agency/quarterpay/internal/config"
)

// Input carries one quarter's metrics for a single salesperson.
type Input struct {
	YearTarget     float64
	QuarterActual  float64
	Margin         float64
	SettlementDays int
	InvoiceDays    int
	PaybackDays    int
	AuditBias      float64
	CustomerCost   float64
	// TaxKeepRate is the fraction kept after tax; nil uses the configured default.
	TaxKeepRate *float64
	Weights     WeightSource
}

// ScoreLine is one row of the breakdown.
type ScoreLine struct {
	Metric     Metric  `json:"metric"`
	Label      string  `json:"label"`
	Input      float64 `json:"input"`
	Score      float64 `json:"score"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Cumulative float64 `json:"cumulative"`
}

// Rounded returns the line as shown on the salary sheet: scores to 2 decimal
// places, weights to 4.
func (l ScoreLine) Rounded() ScoreLine {
	l.Score = round(l.Score, 2)
	l.Weight = round(l.Weight, 4)
	l.Weighted = round(l.Weighted, 2)
	l.Cumulative = round(l.Cumulative, 2)
	return l
}

// CalculationResult is the complete output of one calculation.
type CalculationResult struct {
	CoefficientVersion string      `json:"coefficient_version"`
	Project            string      `json:"project,omitempty"`
	Weights            WeightSet   `json:"weights"`
	WeightSum          float64     `json:"weight_sum"`
	PerformanceRate    float64     `json:"performance_rate"`
	Lines              []ScoreLine `json:"breakdown"`
	TotalScore         float64     `json:"total_score"`
	PerformancePayout  float64     `json:"performance_payout"`
	BaseSalary         float64     `json:"base_salary"`
	TotalSalary        float64     `json:"total_salary"`
	TaxKeepRate        float64     `json:"tax_keep_rate"`
	AfterTaxSalary     float64     `json:"after_tax_salary"`
}

// Calculator combines the seven metric scores into a quarterly salary.
type Calculator struct {
	table   CoefficientTable
	catalog *Catalog
	pay     config.PayConfig
	logger  *slog.Logger
}

// NewCalculator creates a Calculator. The table and catalog are shared
// read-only by every calculation.
func NewCalculator(table CoefficientTable, catalog *Catalog, pay config.PayConfig, logger *slog.Logger) *Calculator {
	return &Calculator{
		table:   table,
		catalog: catalog,
		pay:     pay,
		logger:  logger,
	}
}

// Catalog returns the weight catalog used for project lookups.
func (c *Calculator) Catalog() *Catalog { return c.catalog }

// Coefficients returns the active coefficient table.
func (c *Calculator) Coefficients() CoefficientTable { return c.table }

// PerformanceRatio is the quarter's output against a quarter of the annual target.
func PerformanceRatio(yearTarget, quarterActual float64) float64 {
	return quarterActual / (yearTarget / 4)
}

// Calculate validates in, resolves its weights and returns the breakdown and
// salary figures. No partial result is returned on error.
func (c *Calculator) Calculate(in Input) (*CalculationResult, error) {
	if err := c.validate(in); err != nil {
		return nil, err
	}
	taxKeep := c.pay.DefaultTaxKeepRate
	if in.TaxKeepRate != nil {
		taxKeep = *in.TaxKeepRate
	}

	weights, project, err := c.catalog.Resolve(in.Weights)
	if err != nil {
		return nil, err
	}

	rate := PerformanceRatio(in.YearTarget, in.QuarterActual)
	if math.IsInf(rate, 0) || math.IsNaN(rate) {
		return nil, &InvalidInputError{Field: "quarter_actual", Value: in.QuarterActual, Reason: "gives a non-finite performance rate against year_target"}
	}
	inputs := map[Metric]float64{
		Performance:  rate,
		Margin:       in.Margin,
		Settlement:   float64(in.SettlementDays),
		Invoice:      float64(in.InvoiceDays),
		Payback:      float64(in.PaybackDays),
		AuditBias:    in.AuditBias,
		CustomerCost: in.CustomerCost,
	}

	lines := make([]ScoreLine, 0, len(Metrics))
	var total float64
	for _, m := range Metrics {
		score := c.table.Score(m, inputs[m])
		w := weights.Weight(m)
		weighted := score * w
		total += weighted
		lines = append(lines, ScoreLine{
			Metric:     m,
			Label:      m.Label(),
			Input:      inputs[m],
			Score:      score,
			Weight:     w,
			Weighted:   weighted,
			Cumulative: total,
		})
	}

	if math.IsInf(total, 0) || math.IsNaN(total) {
		return nil, &InvalidInputError{Field: "weights", Value: total, Reason: "give a non-finite total score"}
	}

	payout := c.pay.QuarterPool * (total / 100.0)
	base := c.pay.BaseMonthlySalary * 3
	totalSalary := base + payout

	c.logger.Debug("salary calculated",
		"project", project,
		"explicit_weights", in.Weights.IsExplicit(),
		"performance_rate", rate,
		"total_score", total,
	)

	return &CalculationResult{
		CoefficientVersion: c.table.Version,
		Project:            project,
		Weights:            weights,
		WeightSum:          weights.Sum(),
		PerformanceRate:    rate,
		Lines:              lines,
		TotalScore:         total,
		PerformancePayout:  payout,
		BaseSalary:         base,
		TotalSalary:        totalSalary,
		TaxKeepRate:        taxKeep,
		AfterTaxSalary:     totalSalary * taxKeep,
	}, nil
}

func (c *Calculator) validate(in Input) error {
	if !(in.YearTarget > 0) || math.IsInf(in.YearTarget, 0) {
		return &InvalidInputError{Field: "year_target", Value: in.YearTarget, Reason: "must be a positive number"}
	}
	if !(in.QuarterActual > 0) || math.IsInf(in.QuarterActual, 0) {
		return &InvalidInputError{Field: "quarter_actual", Value: in.QuarterActual, Reason: "must be a positive number"}
	}
	ratios := []struct {
		field string
		v     float64
	}{
		{"margin", in.Margin},
		{"audit_bias", in.AuditBias},
		{"customer_cost", in.CustomerCost},
	}
	for _, r := range ratios {
		if math.IsNaN(r.v) || math.IsInf(r.v, 0) {
			return &InvalidInputError{Field: r.field, Value: r.v, Reason: "must be finite"}
		}
	}
	if in.Weights.IsExplicit() {
		keys := make([]string, 0, len(in.Weights.explicit))
		for m := range in.Weights.explicit {
			keys = append(keys, string(m))
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := in.Weights.explicit[Metric(k)]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &InvalidInputError{Field: "weights." + k, Value: v, Reason: "must be finite"}
			}
		}
	}
	if in.TaxKeepRate != nil {
		v := *in.TaxKeepRate
		if !(v >= 0 && v <= 1) {
			return &InvalidInputError{Field: "tax_keep_rate", Value: v, Reason: "must be between 0 and 1"}
		}
	}
	return nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
