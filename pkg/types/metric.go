package types

import "strconv"

// NotAvailable is rendered in place of a counter the server did not report.
const NotAvailable = "not available"

// OptionalMetric is a named counter that may be absent from a response.
// Display always holds what to show: the decimal value or NotAvailable.
type OptionalMetric struct {
	Name    string `json:"name"`
	Value   *int64 `json:"value"`
	Display string `json:"display"`
}

// NewOptionalMetric builds a metric with its display text filled in.
func NewOptionalMetric(name string, v *int64) OptionalMetric {
	m := OptionalMetric{Name: name, Value: v, Display: NotAvailable}
	if v != nil {
		m.Display = strconv.FormatInt(*v, 10)
	}
	return m
}

// Metrics lists the four rendered counters in display order.
func (r GenerateResponse) Metrics() []OptionalMetric {
	return []OptionalMetric{
		NewOptionalMetric("total_duration", r.TotalDuration),
		NewOptionalMetric("load_duration", r.LoadDuration),
		NewOptionalMetric("prompt_eval_count", r.PromptEvalCount),
		NewOptionalMetric("eval_count", r.EvalCount),
	}
}
