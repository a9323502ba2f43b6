// Package simulate generates synthetic payment traffic. It stands in
// for the live transaction stream during demos and tests.
package simulate

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/paymentops/vigil/internal/model"
)

// Dimension values observed on the simulated rails.
var (
	Banks   = []string{"HDFC", "ICICI", "SBI", "AXIS", "KOTAK"}
	Issuers = []string{"VISA", "MASTERCARD", "RUPAY"}
	Methods = []string{"CARD", "UPI", "NETBANKING"}
)

// Traffic shape. SBI carries an issuer-degradation bias so the engine
// has something to find.
const (
	sbiIssuerDownRate = 0.35
	bankTimeoutRate   = 0.08
	networkErrorRate  = 0.05
	userDeclinedRate  = 0.04
	minLatencyMS      = 80
	maxLatencyMS      = 2500
)

// Simulator produces weighted random transaction events. It is
// deterministic for a fixed seed and safe for concurrent use.
type Simulator struct {
	rng *rand.Rand
	now func() time.Time
	mu  sync.Mutex
}

// New creates a simulator. A zero seed derives one from the clock.
func New(seed int64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Next implements service.EventSource.
func (s *Simulator) Next(ctx context.Context) (model.TransactionEvent, error) {
	if err := ctx.Err(); err != nil {
		return model.TransactionEvent{}, err
	}
	return s.Generate(), nil
}

// Generate produces one transaction event stamped with the current time.
func (s *Simulator) Generate() model.TransactionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	bank := Banks[s.rng.Intn(len(Banks))]
	issuer := Issuers[s.rng.Intn(len(Issuers))]
	method := Methods[s.rng.Intn(len(Methods))]

	status := model.StatusSuccess
	switch {
	case bank == "SBI" && s.rng.Float64() < sbiIssuerDownRate:
		status = model.StatusIssuerDown
	case s.rng.Float64() < bankTimeoutRate:
		status = model.StatusBankTimeout
	case s.rng.Float64() < networkErrorRate:
		status = model.StatusNetworkError
	case s.rng.Float64() < userDeclinedRate:
		status = model.StatusUserDeclined
	}

	return model.TransactionEvent{
		Bank:      bank,
		Issuer:    issuer,
		Method:    method,
		Status:    status,
		LatencyMS: minLatencyMS + s.rng.Intn(maxLatencyMS-minLatencyMS+1),
		Timestamp: s.now(),
	}
}

// Batch produces n events in one call.
func (s *Simulator) Batch(n int) []model.TransactionEvent {
	events := make([]model.TransactionEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, s.Generate())
	}
	return events
}
