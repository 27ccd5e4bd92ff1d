// Package report renders calculation results for terminals and files.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/MikeSquared-Agency/quarterpay/internal/scoring"
)

// Output formats accepted by Write.
const (
	TableOut = "table"
	JSONOut  = "json"
	CSVOut   = "csv"
)

// Write dispatches on format; unknown formats are an error.
func Write(w io.Writer, res *scoring.CalculationResult, format string, colorize bool) error {
	switch format {
	case "", TableOut:
		return WriteTable(w, res, colorize)
	case JSONOut:
		return WriteJSON(w, res)
	case CSVOut:
		return WriteCSV(w, res)
	default:
		return fmt.Errorf("unknown output format %q (want %s, %s or %s)", format, TableOut, JSONOut, CSVOut)
	}
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func weight(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }

// WriteTable prints the summary followed by the per-metric breakdown.
func WriteTable(w io.Writer, res *scoring.CalculationResult, colorize bool) error {
	neg := color.New(color.FgRed)
	pos := color.New(color.FgGreen)
	bold := color.New(color.Bold)
	for _, c := range []*color.Color{neg, pos, bold} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	signed := func(v float64) string {
		s := money(v)
		if v < 0 {
			return neg.Sprint(s)
		}
		return pos.Sprint(s)
	}

	source := "explicit weights"
	if res.Project != "" {
		source = res.Project
	}
	lines := []string{
		fmt.Sprintf("Weights:            %s (sum %s, coefficients %s)", source, weight(res.WeightSum), res.CoefficientVersion),
		fmt.Sprintf("Performance rate:   %s%%", money(res.PerformanceRate*100)),
		fmt.Sprintf("Total score:        %s", signed(res.TotalScore)),
		fmt.Sprintf("Performance payout: %s", signed(res.PerformancePayout)),
		fmt.Sprintf("Total salary:       %s", money(res.TotalSalary)),
		fmt.Sprintf("After-tax salary:   %s (keep rate %s)", bold.Sprint(money(res.AfterTaxSalary)), weight(res.TaxKeepRate)),
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Label", "Input", "Score", "Weight", "Weighted", "Cumulative"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, l := range res.Lines {
		r := l.Rounded()
		data = append(data, []string{
			string(r.Metric),
			r.Label,
			formatInput(r),
			signed(r.Score),
			weight(r.Weight),
			signed(r.Weighted),
			money(r.Cumulative),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func formatInput(l scoring.ScoreLine) string {
	if l.Metric.DayBased() {
		return strconv.FormatFloat(l.Input, 'f', 0, 64) + "d"
	}
	return strconv.FormatFloat(l.Input, 'f', 4, 64)
}

// WriteJSON writes the full-precision result.
func WriteJSON(w io.Writer, res *scoring.CalculationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteCSV writes the rounded breakdown, one row per metric.
func WriteCSV(w io.Writer, res *scoring.CalculationResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"metric", "label", "input", "score", "weight", "weighted", "cumulative"}); err != nil {
		return err
	}
	for _, l := range res.Lines {
		r := l.Rounded()
		if err := cw.Write([]string{
			string(r.Metric),
			r.Label,
			strconv.FormatFloat(r.Input, 'f', -1, 64),
			money(r.Score),
			weight(r.Weight),
			money(r.Weighted),
			money(r.Cumulative),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
