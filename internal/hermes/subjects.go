package hermes

const (
	SubjectWildcard = "quarterpay.calculation.>"

	StreamName   = "QUARTERPAY_EVENTS"
	StreamMaxAge = "2400h" // a quarter plus ten days
)

func SubjectCalculationCompleted(id string) string { return "quarterpay.calculation." + id + ".completed" }
func SubjectCalculationRejected(id string) string  { return "quarterpay.calculation." + id + ".rejected" }
