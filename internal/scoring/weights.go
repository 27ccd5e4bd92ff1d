package scoring

import (
	"fmt"
	"math"
	"sort"
)

// WeightSet maps each metric to its relative importance. Weights are applied
// as given; they are not required to sum to 1.0 and are never normalized.
type WeightSet map[Metric]float64

// WeightsFromMap builds a WeightSet from caller-supplied keys. Keys naming a
// known metric (by identifier or label) are mapped to it; any other key is kept
// verbatim and ignored during scoring.
func WeightsFromMap(raw map[string]float64) WeightSet {
	w := make(WeightSet, len(raw))
	for k, v := range raw {
		if m, ok := ParseMetric(k); ok {
			w[m] = v
			continue
		}
		w[Metric(k)] = v
	}
	return w
}

// Weight returns the weight for m, or 0 when it is absent.
func (w WeightSet) Weight(m Metric) float64 {
	return w[m]
}

// Sum returns the total of the weights for known metrics.
func (w WeightSet) Sum() float64 {
	var total float64
	for _, m := range Metrics {
		total += w[m]
	}
	return total
}

// Clone returns an independent copy.
func (w WeightSet) Clone() WeightSet {
	out := make(WeightSet, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Unknown returns the keys that do not name a metric, sorted.
func (w WeightSet) Unknown() []string {
	var out []string
	for k := range w {
		if !k.Valid() {
			out = append(out, string(k))
		}
	}
	sort.Strings(out)
	return out
}

// Validate checks that catalog weights are finite and non-negative.
func (w WeightSet) Validate() error {
	for _, m := range Metrics {
		v := w[m]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight %s is not finite", m)
		}
		if v < 0 {
			return fmt.Errorf("negative weight %s: %f", m, v)
		}
	}
	return nil
}
