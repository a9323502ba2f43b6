// Package observe computes aggregate statistics over a window of
// transaction events.
package observe

import (
	"math"
	"sort"

	"github.com/paymentops/vigil/internal/model"
)

// Aggregate reduces a window of events into one snapshot. It is pure
// and total: an empty window yields a zero-valued snapshot, never an
// error, and calling it twice on the same events yields identical
// results.
func Aggregate(events []model.TransactionEvent, windowSeconds int) model.AggregateSnapshot {
	snap := model.AggregateSnapshot{
		WindowSeconds:    windowSeconds,
		StatusCounts:     make(map[model.StatusCode]int),
		FailuresByBank:   make(map[string]int),
		FailuresByIssuer: make(map[string]int),
		FailuresByMethod: make(map[string]int),
	}

	if len(events) == 0 {
		snap.Banks = []string{}
		snap.Issuers = []string{}
		snap.Methods = []string{}
		return snap
	}

	banks := make(map[string]struct{})
	issuers := make(map[string]struct{})
	methods := make(map[string]struct{})

	var latencySum int
	for _, e := range events {
		snap.TotalCount++
		snap.StatusCounts[e.Status]++
		latencySum += e.LatencyMS

		banks[e.Bank] = struct{}{}
		issuers[e.Issuer] = struct{}{}
		methods[e.Method] = struct{}{}

		if e.Status.IsFailure() {
			snap.FailureCount++
			snap.FailuresByBank[e.Bank]++
			snap.FailuresByIssuer[e.Issuer]++
			snap.FailuresByMethod[e.Method]++
		} else {
			snap.SuccessCount++
		}
	}

	snap.SuccessRate = float64(snap.SuccessCount) / float64(snap.TotalCount)
	snap.AverageLatencyMS = round2(float64(latencySum) / float64(snap.TotalCount))

	snap.Banks = sortedKeys(banks)
	snap.Issuers = sortedKeys(issuers)
	snap.Methods = sortedKeys(methods)

	return snap
}

// TopFailureBank returns the bank with the most failures and its share
// of total failures. Ties break lexicographically so the result is
// deterministic. Returns ("", 0) when there are no failures.
func TopFailureBank(snap model.AggregateSnapshot) (string, float64) {
	if snap.FailureCount == 0 || len(snap.FailuresByBank) == 0 {
		return "", 0
	}

	var top string
	var count int
	for bank, c := range snap.FailuresByBank {
		if c > count || (c == count && (top == "" || bank < top)) {
			top = bank
			count = c
		}
	}
	return top, float64(count) / float64(snap.FailureCount)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
