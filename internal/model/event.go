// Package model defines the core data structures for the vigil agent.
package model

import (
	"time"
)

// StatusCode is the terminal status of a payment transaction.
type StatusCode string

// Status code constants. Everything other than StatusSuccess counts as a
// failure for aggregation purposes.
const (
	StatusSuccess      StatusCode = "SUCCESS"
	StatusBankTimeout  StatusCode = "BANK_TIMEOUT"
	StatusIssuerDown   StatusCode = "ISSUER_DOWN"
	StatusUserDeclined StatusCode = "USER_DECLINED"
	StatusNetworkError StatusCode = "NETWORK_ERROR"
)

// IsFailure reports whether the status represents a failed transaction.
func (s StatusCode) IsFailure() bool {
	return s != StatusSuccess
}

// TransactionEvent is a single payment transaction observed on the stream.
// Events are immutable once created.
type TransactionEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	Bank      string     `json:"bank"`
	Issuer    string     `json:"issuer"`
	Method    string     `json:"method"`
	Status    StatusCode `json:"status"`
	LatencyMS int        `json:"latency_ms"`
}
