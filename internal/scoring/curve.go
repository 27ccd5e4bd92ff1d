package scoring

import (
	"encoding/json"
	"fmt"
	"math"
)

// Segment is one linear piece of a scoring curve:
//
//	value = Base + (x - Anchor) * Slope
//
// optionally capped from above by Ceiling and from below by Floor.
// Bounds may be -Inf/+Inf (".inf" in YAML) for the open ends.
type Segment struct {
	Lower          float64  `yaml:"lower"`
	LowerInclusive bool     `yaml:"lower_inclusive"`
	Upper          float64  `yaml:"upper"`
	UpperInclusive bool     `yaml:"upper_inclusive"`
	Base           float64  `yaml:"base"`
	Anchor         float64  `yaml:"anchor"`
	Slope          float64  `yaml:"slope"`
	Ceiling        *float64 `yaml:"ceiling,omitempty"`
	Floor          *float64 `yaml:"floor,omitempty"`
}

// Contains reports whether x falls inside the segment's interval.
func (s Segment) Contains(x float64) bool {
	if x < s.Lower || (x == s.Lower && !s.LowerInclusive && !math.IsInf(s.Lower, -1)) {
		return false
	}
	if x > s.Upper || (x == s.Upper && !s.UpperInclusive && !math.IsInf(s.Upper, 1)) {
		return false
	}
	return true
}

// Value applies the segment formula to x without checking the interval.
func (s Segment) Value(x float64) float64 {
	v := s.Base + (x-s.Anchor)*s.Slope
	if s.Ceiling != nil {
		v = math.Min(*s.Ceiling, v)
	}
	if s.Floor != nil {
		v = math.Max(*s.Floor, v)
	}
	return v
}

// Curve is an ordered list of segments covering the whole real line.
type Curve []Segment

// Evaluate scores x on the first segment containing it. NaN matches no
// segment and yields NaN.
func (c Curve) Evaluate(x float64) float64 {
	for _, s := range c {
		if s.Contains(x) {
			return s.Value(x)
		}
	}
	return math.NaN()
}

// Validate checks that the segments are ordered and tile the real line with
// no gap and no overlap: each shared boundary is inclusive on exactly one side.
func (c Curve) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("curve has no segments")
	}
	if !math.IsInf(c[0].Lower, -1) {
		return fmt.Errorf("first segment starts at %g, must start at -inf", c[0].Lower)
	}
	if last := c[len(c)-1]; !math.IsInf(last.Upper, 1) {
		return fmt.Errorf("last segment ends at %g, must end at +inf", last.Upper)
	}
	for i, s := range c {
		if math.IsNaN(s.Lower) || math.IsNaN(s.Upper) {
			return fmt.Errorf("segment %d: NaN bound", i)
		}
		if s.Lower > s.Upper {
			return fmt.Errorf("segment %d: lower %g above upper %g", i, s.Lower, s.Upper)
		}
		if s.Lower == s.Upper && !(s.LowerInclusive && s.UpperInclusive) {
			return fmt.Errorf("segment %d: empty interval at %g", i, s.Lower)
		}
		if i == 0 {
			continue
		}
		prev := c[i-1]
		if prev.Upper != s.Lower {
			return fmt.Errorf("segment %d: gap or overlap between %g and %g", i, prev.Upper, s.Lower)
		}
		if prev.UpperInclusive == s.LowerInclusive {
			return fmt.Errorf("segment %d: boundary %g must be inclusive on exactly one side", i, s.Lower)
		}
	}
	return nil
}

func ptr(v float64) *float64 { return &v }

func inf() float64    { return math.Inf(1) }
func negInf() float64 { return math.Inf(-1) }

type segmentJSON struct {
	Lower          *float64 `json:"lower"`
	LowerInclusive bool     `json:"lower_inclusive"`
	Upper          *float64 `json:"upper"`
	UpperInclusive bool     `json:"upper_inclusive"`
	Base           float64  `json:"base"`
	Anchor         float64  `json:"anchor"`
	Slope          float64  `json:"slope"`
	Ceiling        *float64 `json:"ceiling,omitempty"`
	Floor          *float64 `json:"floor,omitempty"`
}

// MarshalJSON writes infinite bounds as null, which JSON cannot otherwise carry.
func (s Segment) MarshalJSON() ([]byte, error) {
	out := segmentJSON{
		LowerInclusive: s.LowerInclusive,
		UpperInclusive: s.UpperInclusive,
		Base:           s.Base,
		Anchor:         s.Anchor,
		Slope:          s.Slope,
		Ceiling:        s.Ceiling,
		Floor:          s.Floor,
	}
	if !math.IsInf(s.Lower, 0) {
		out.Lower = ptr(s.Lower)
	}
	if !math.IsInf(s.Upper, 0) {
		out.Upper = ptr(s.Upper)
	}
	return json.Marshal(out)
}
