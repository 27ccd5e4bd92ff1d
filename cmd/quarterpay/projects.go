package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/quarterpay/internal/report"
	"github.com/MikeSquared-Agency/quarterpay/internal/scoring"
)

func newProjectsCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the projects and regions with configured weights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return writeProjects(cmd.OutOrStdout(), a.calc.Catalog(), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", report.TableOut, "output format: table or json")
	return cmd
}

type projectRow struct {
	Name    string            `json:"name"`
	Aliases []string          `json:"aliases"`
	Weights scoring.WeightSet `json:"weights"`
	Sum     float64           `json:"weight_sum"`
}

func projectRows(c *scoring.Catalog) ([]projectRow, error) {
	byTarget := map[string][]string{}
	for alias, target := range c.Aliases() {
		byTarget[target] = append(byTarget[target], alias)
	}
	var rows []projectRow
	for _, k := range c.Keys() {
		w, err := c.Lookup(k)
		if err != nil {
			return nil, err
		}
		aliases := byTarget[k]
		sort.Strings(aliases)
		rows = append(rows, projectRow{Name: k, Aliases: aliases, Weights: w, Sum: w.Sum()})
	}
	return rows, nil
}

func writeProjects(w io.Writer, c *scoring.Catalog, format string) error {
	rows, err := projectRows(c)
	if err != nil {
		return err
	}
	switch format {
	case report.JSONOut:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "", report.TableOut:
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, report.TableOut, report.JSONOut)
	}

	header := []string{"Project", "Aliases"}
	for _, m := range scoring.Metrics {
		header = append(header, m.Label())
	}
	header = append(header, "Sum")

	table := tablewriter.NewWriter(w)
	table.Header(header)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, r := range rows {
		line := []string{r.Name, strings.Join(r.Aliases, ",")}
		for _, m := range scoring.Metrics {
			line = append(line, strconv.FormatFloat(r.Weights.Weight(m), 'f', 3, 64))
		}
		line = append(line, strconv.FormatFloat(r.Sum, 'f', 3, 64))
		data = append(data, line)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
