package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/MikeSquared-Agency/quarterpay/internal/report"
	"github.com/MikeSquared-Agency/quarterpay/internal/scoring"
)

type calcFlags struct {
	yearTarget     float64
	quarterActual  float64
	margin         float64
	settlementDays int
	invoiceDays    int
	paybackDays    int
	auditBias      float64
	customerCost   float64
	taxKeepRate    float64
	project        string
	weights        []string
	output         string
	color          bool
}

func newCalcCmd(opts *options) *cobra.Command {
	f := &calcFlags{}
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate one quarter's salary",
		Example: `  quarterpay calc --year-target 5000000 --quarter-actual 250000 --margin 0.25 \
    --settlement-days 10 --invoice-days 10 --payback-days 30 \
    --audit-bias 0.01 --customer-cost 0.01 --project hubei`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			in, err := f.input(cmd)
			if err != nil {
				return err
			}
			res, err := a.calc.Calculate(in)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), res, f.output, f.color)
		},
	}

	fl := cmd.Flags()
	fl.Float64Var(&f.yearTarget, "year-target", 0, "annual sales target")
	fl.Float64Var(&f.quarterActual, "quarter-actual", 0, "actual sales this quarter")
	fl.Float64Var(&f.margin, "margin", 0, "gross margin rate, e.g. 0.25")
	fl.IntVar(&f.settlementDays, "settlement-days", 0, "days to settlement")
	fl.IntVar(&f.invoiceDays, "invoice-days", 0, "days to invoice")
	fl.IntVar(&f.paybackDays, "payback-days", 0, "days to payment collection")
	fl.Float64Var(&f.auditBias, "audit-bias", 0, "audit deviation rate")
	fl.Float64Var(&f.customerCost, "customer-cost", 0, "customer relationship cost rate")
	fl.Float64Var(&f.taxKeepRate, "tax-keep-rate", 0, "fraction kept after tax (default from config)")
	fl.StringVarP(&f.project, "project", "p", "", "project or region whose weights apply")
	fl.StringArrayVarP(&f.weights, "weight", "w", nil, "explicit weight as metric=value, repeatable; overrides --project")
	fl.StringVarP(&f.output, "output", "o", report.TableOut, "output format: table, json or csv")
	fl.BoolVar(&f.color, "color", !color.NoColor && term.IsTerminal(int(os.Stdout.Fd())), "colorize table output")
	_ = cmd.MarkFlagRequired("year-target")
	_ = cmd.MarkFlagRequired("quarter-actual")
	return cmd
}

func (f *calcFlags) input(cmd *cobra.Command) (scoring.Input, error) {
	weights, err := parseWeights(f.weights)
	if err != nil {
		return scoring.Input{}, err
	}
	in := scoring.Input{
		YearTarget:     f.yearTarget,
		QuarterActual:  f.quarterActual,
		Margin:         f.margin,
		SettlementDays: f.settlementDays,
		InvoiceDays:    f.invoiceDays,
		PaybackDays:    f.paybackDays,
		AuditBias:      f.auditBias,
		CustomerCost:   f.customerCost,
		Weights:        scoring.SourceFrom(weights, f.project),
	}
	if cmd.Flags().Changed("tax-keep-rate") {
		rate := f.taxKeepRate
		in.TaxKeepRate = &rate
	}
	return in, nil
}

// parseWeights turns metric=value pairs into a raw weight map.
func parseWeights(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("weight %q: want metric=value", p)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("weight %q: %w", p, err)
		}
		out[k] = w
	}
	return out, nil
}
