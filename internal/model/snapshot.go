package model

// AggregateSnapshot holds the summary statistics computed over one
// aggregation window. It is recomputed from scratch every cycle; two
// invariants always hold: SuccessCount+FailureCount == TotalCount, and
// SuccessRate is SuccessCount/TotalCount (0 when the window is empty).
type AggregateSnapshot struct {
	StatusCounts     map[StatusCode]int `json:"status_counts"`
	FailuresByBank   map[string]int     `json:"failures_by_bank"`
	FailuresByIssuer map[string]int     `json:"failures_by_issuer"`
	FailuresByMethod map[string]int     `json:"failures_by_method"`
	Banks            []string           `json:"banks"`
	Issuers          []string           `json:"issuers"`
	Methods          []string           `json:"methods"`
	WindowSeconds    int                `json:"window_seconds"`
	TotalCount       int                `json:"total_count"`
	SuccessCount     int                `json:"success_count"`
	FailureCount     int                `json:"failure_count"`
	SuccessRate      float64            `json:"success_rate"`
	AverageLatencyMS float64            `json:"average_latency_ms"`
}

// FailureRate returns the share of failed transactions in the window,
// 0 when the window is empty.
func (s AggregateSnapshot) FailureRate() float64 {
	if s.TotalCount == 0 {
		return 0
	}
	return float64(s.FailureCount) / float64(s.TotalCount)
}
