package hermes

import (
	"strings"
	"testing"
	"time"
)

func TestSubjectsMatchStream(t *testing.T) {
	prefix := strings.TrimSuffix(SubjectWildcard, ">")
	for _, s := range []string{
		SubjectCalculationCompleted("abc"),
		SubjectCalculationRejected("abc"),
	} {
		if !strings.HasPrefix(s, prefix) {
			t.Errorf("subject %s not covered by stream wildcard %s", s, SubjectWildcard)
		}
	}
	if got := SubjectCalculationCompleted("123"); got != "quarterpay.calculation.123.completed" {
		t.Errorf("unexpected subject %s", got)
	}
}

func TestStreamRetainsAQuarter(t *testing.T) {
	age, err := time.ParseDuration(StreamMaxAge)
	if err != nil {
		t.Fatalf("StreamMaxAge %q: %v", StreamMaxAge, err)
	}
	if age < 92*24*time.Hour {
		t.Errorf("stream keeps %s, less than a quarter", age)
	}
}
