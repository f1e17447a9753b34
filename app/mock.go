package app

import (
	"math/rand"

	"github.com/hubward/quotaview/domain/usage"
	"github.com/hubward/quotaview/ports"
)

// MockQuotaBytes is the fixed quota used for fabricated snapshots: 10 GiB.
const MockQuotaBytes = 10_737_418_240

// MockGenerator fabricates plausible usage snapshots for environments with
// no metrics namespace configured. Each call draws uniformly among exactly
// three scenarios: 50% utilization, 95% utilization, or a simulated
// unreachable backend.
type MockGenerator struct {
	clock ports.Clock
	pick  func(n int) int
}

// NewMockGenerator creates a mock generator. pick selects a scenario index
// in [0, n); pass nil for genuine randomness.
func NewMockGenerator(clock ports.Clock, pick func(n int) int) *MockGenerator {
	if pick == nil {
		pick = rand.Intn
	}
	return &MockGenerator{clock: clock, pick: pick}
}

// Generate produces one fabricated snapshot without contacting any backend.
func (g *MockGenerator) Generate(username string) (usage.Record, error) {
	fractions := []float64{0.50, 0.95}

	scenario := g.pick(len(fractions) + 1)
	if scenario >= len(fractions) {
		return usage.Record{}, usage.ErrUnreachable
	}

	usageBytes := int64(MockQuotaBytes * fractions[scenario])
	return usage.NewRecord(username, usageBytes, MockQuotaBytes, g.clock.Now()), nil
}
