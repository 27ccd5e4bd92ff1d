package scoring

import "strings"

// Metric identifies one of the seven scored business metrics.
type Metric string

const (
	Performance  Metric = "performance"
	Margin       Metric = "margin"
	Settlement   Metric = "settlement"
	Invoice      Metric = "invoice"
	Payback      Metric = "payback"
	AuditBias    Metric = "audit_bias"
	CustomerCost Metric = "customer_cost"
)

// Metrics lists every metric in canonical order. The cumulative column of a
// breakdown depends on this order, so it must never change.
var Metrics = []Metric{
	Performance,
	Margin,
	Settlement,
	Invoice,
	Payback,
	AuditBias,
	CustomerCost,
}

var metricLabels = map[Metric]string{
	Performance:  "业绩",
	Margin:       "毛利率",
	Settlement:   "结算率",
	Invoice:      "开票率",
	Payback:      "回款率",
	AuditBias:    "审计偏差",
	CustomerCost: "客情成本",
}

// Label returns the display label used on the salary sheet.
func (m Metric) Label() string {
	if l, ok := metricLabels[m]; ok {
		return l
	}
	return string(m)
}

// DayBased reports whether the metric input is a day count rather than a ratio.
func (m Metric) DayBased() bool {
	switch m {
	case Settlement, Invoice, Payback:
		return true
	}
	return false
}

// Valid reports whether m is one of the known metrics.
func (m Metric) Valid() bool {
	_, ok := metricLabels[m]
	return ok
}

// ParseMetric accepts either the canonical identifier (case-insensitive) or the
// sheet label and returns the matching metric.
func ParseMetric(s string) (Metric, bool) {
	s = strings.TrimSpace(s)
	m := Metric(strings.ToLower(s))
	if m.Valid() {
		return m, true
	}
	for metric, label := range metricLabels {
		if label == s {
			return metric, true
		}
	}
	return "", false
}
