package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultCoefficientVersion names the built-in coefficient table.
const DefaultCoefficientVersion = "2024-q4"

// CoefficientTable holds one piecewise-linear curve per metric. Adjusting the
// salary rules is a matter of editing this data, not the scorers.
type CoefficientTable struct {
	Version string           `yaml:"version" json:"version"`
	Curves  map[Metric]Curve `yaml:"curves" json:"curves"`
}

// DefaultCoefficients returns the authoritative coefficient table.
//
// Ratio inputs: Performance, Margin, AuditBias, CustomerCost.
// Day inputs: Settlement, Invoice, Payback.
func DefaultCoefficients() CoefficientTable {
	return CoefficientTable{
		Version: DefaultCoefficientVersion,
		Curves: map[Metric]Curve{
			Performance: {
				{Lower: negInf(), Upper: 0.6, Base: 0, Anchor: 0.6, Slope: 300, Ceiling: ptr(0)},
				{Lower: 0.6, LowerInclusive: true, Upper: 0.8, UpperInclusive: true, Base: 20, Anchor: 0.6, Slope: 200},
				{Lower: 0.8, Upper: 1.5, UpperInclusive: true, Base: 60, Anchor: 0.8, Slope: 200},
				{Lower: 1.5, Upper: inf(), Base: 200, Anchor: 1.5, Slope: 400, Floor: ptr(200)},
			},
			Margin: {
				{Lower: negInf(), Upper: 0.1, Base: 0, Anchor: 0.1, Slope: 500, Ceiling: ptr(0)},
				{Lower: 0.1, LowerInclusive: true, Upper: 0.25, UpperInclusive: true, Base: 0, Anchor: 0.1, Slope: 200},
				{Lower: 0.25, Upper: 0.5, UpperInclusive: true, Base: 30, Anchor: 0.25, Slope: 400},
				{Lower: 0.5, Upper: inf(), Base: 130, Anchor: 0.5, Slope: 1000},
			},
			// days <= 0 and days == 1 both pay the full 200.
			Settlement: {
				{Lower: negInf(), Upper: 1, UpperInclusive: true, Base: 200},
				{Lower: 1, Upper: 20, Base: 200, Anchor: 0, Slope: -5, Ceiling: ptr(200)},
				{Lower: 20, LowerInclusive: true, Upper: inf(), Base: 100, Anchor: 20, Slope: -5, Ceiling: ptr(100)},
			},
			Invoice: {
				{Lower: negInf(), Upper: 5, Base: 150, Anchor: 0, Slope: -5, Ceiling: ptr(150)},
				{Lower: 5, LowerInclusive: true, Upper: 20, UpperInclusive: true, Base: 125, Anchor: 5, Slope: -8, Ceiling: ptr(125)},
				{Lower: 20, Upper: 60, UpperInclusive: true, Base: 0, Anchor: 20, Slope: -5, Ceiling: ptr(0)},
				{Lower: 60, Upper: inf(), Base: -200, Anchor: 60, Slope: -50, Ceiling: ptr(-200)},
			},
			// The last segment is anchored at 60, not 120.
			Payback: {
				{Lower: negInf(), Upper: 20, UpperInclusive: true, Base: 200, Anchor: 0, Slope: -2.5, Ceiling: ptr(200)},
				{Lower: 20, Upper: 60, UpperInclusive: true, Base: 150, Anchor: 20, Slope: -4, Ceiling: ptr(150)},
				{Lower: 60, Upper: 120, UpperInclusive: true, Base: -10, Anchor: 60, Slope: -4, Ceiling: ptr(-10)},
				{Lower: 120, Upper: inf(), Base: -250, Anchor: 60, Slope: -1, Ceiling: ptr(-250)},
			},
			// Negative rates share the rate > 0.08 formula and always score 0.
			AuditBias: {
				{Lower: negInf(), Upper: 0, Base: 60, Anchor: 0.08, Slope: -800, Ceiling: ptr(0)},
				{Lower: 0, LowerInclusive: true, Upper: 0.02, UpperInclusive: true, Base: 120, Anchor: 0, Slope: -3000, Ceiling: ptr(120)},
				{Lower: 0.02, Upper: 0.08, UpperInclusive: true, Base: 60, Anchor: 0.02, Slope: -1000, Ceiling: ptr(60)},
				{Lower: 0.08, Upper: inf(), Base: 60, Anchor: 0.08, Slope: -800, Ceiling: ptr(0)},
			},
			// Anything under 1% (negatives included) is a flat 120.
			CustomerCost: {
				{Lower: negInf(), Upper: 0.01, Base: 120},
				{Lower: 0.01, LowerInclusive: true, Upper: 0.03, UpperInclusive: true, Base: 120, Anchor: 0.01, Slope: -2000, Ceiling: ptr(120)},
				{Lower: 0.03, Upper: inf(), Base: 80, Anchor: 0.03, Slope: -4000, Ceiling: ptr(80)},
			},
		},
	}
}

// LoadCoefficients reads a coefficient table from a YAML file and validates it.
func LoadCoefficients(path string) (CoefficientTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CoefficientTable{}, fmt.Errorf("read coefficients: %w", err)
	}
	var t CoefficientTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return CoefficientTable{}, fmt.Errorf("parse coefficients: %w", err)
	}
	if err := t.Validate(); err != nil {
		return CoefficientTable{}, fmt.Errorf("coefficients %s: %w", path, err)
	}
	return t, nil
}

// Validate checks that every metric has a curve covering the real line.
func (t CoefficientTable) Validate() error {
	if t.Version == "" {
		return fmt.Errorf("coefficient table has no version")
	}
	for _, m := range Metrics {
		c, ok := t.Curves[m]
		if !ok {
			return fmt.Errorf("no curve for metric %s", m)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("metric %s: %w", m, err)
		}
	}
	for m := range t.Curves {
		if !m.Valid() {
			return fmt.Errorf("curve for unknown metric %q", m)
		}
	}
	return nil
}

// Score evaluates the curve for m at x. Unknown metrics score 0.
func (t CoefficientTable) Score(m Metric, x float64) float64 {
	c, ok := t.Curves[m]
	if !ok {
		return 0
	}
	return c.Evaluate(x)
}

var defaultTable = DefaultCoefficients()

// ScorePerformance scores a performance completion ratio.
func ScorePerformance(rate float64) float64 { return defaultTable.Score(Performance, rate) }

// ScoreMargin scores a gross margin ratio.
func ScoreMargin(rate float64) float64 { return defaultTable.Score(Margin, rate) }

// ScoreSettlement scores settlement turnaround in working days.
func ScoreSettlement(days float64) float64 { return defaultTable.Score(Settlement, days) }

// ScoreInvoice scores invoicing turnaround in working days.
func ScoreInvoice(days float64) float64 { return defaultTable.Score(Invoice, days) }

// ScorePayback scores payment collection time in working days.
func ScorePayback(days float64) float64 { return defaultTable.Score(Payback, days) }

// ScoreAuditBias scores the audit deviation ratio.
func ScoreAuditBias(rate float64) float64 { return defaultTable.Score(AuditBias, rate) }

// ScoreCustomerCost scores the customer-relations cost ratio.
func ScoreCustomerCost(rate float64) float64 { return defaultTable.Score(CustomerCost, rate) }
