package simulation

import (
	"testing"

	"mmsim/internal/accounting"
	"mmsim/internal/generator"
	"mmsim/internal/matching"
	"mmsim/internal/perf"
	"mmsim/internal/risk"
	"mmsim/internal/strategy"
)

func newTestLoop(seed uint32) *Loop {
	book := matching.NewBook()
	genCfg := generator.DefaultConfig()
	genCfg.Seed = seed
	gen := generator.NewSimulateGenerator(genCfg, book, nil, nil)

	ledger := accounting.New(100000, accounting.FeeSchedule{})
	riskCfg := risk.DefaultConfig()
	riskMgr := risk.NewManager(riskCfg, nil)
	strat := strategy.NewFixedQuoteStrategy(0.05, 10)
	recorder := perf.NewRecorder(1000, nil)

	return New(gen, book, ledger, riskMgr, strat, recorder, riskCfg, nil)
}

func TestRunCompletesWithoutPanicking(t *testing.T) {
	loop := newTestLoop(1)
	result := loop.Run(100)
	if result.Ticks != 100 {
		t.Fatalf("expected 100 ticks, got %d", result.Ticks)
	}
}

func TestRunProducesActiveOrdersWhenQuotingAllowed(t *testing.T) {
	loop := newTestLoop(1)
	loop.Run(5)
	if len(loop.active) == 0 {
		t.Fatalf("expected at least one resting strategy order after quoting ticks")
	}
}

// TestDeterministicRuns runs two independent loops from the same seed
// and compares their final state.
func TestDeterministicRuns(t *testing.T) {
	first := newTestLoop(777).Run(200)
	second := newTestLoop(777).Run(200)

	if first.Ticks != second.Ticks {
		t.Fatalf("tick counts differ: %d vs %d", first.Ticks, second.Ticks)
	}
	if first.Accounting.Position != second.Accounting.Position {
		t.Fatalf("final position differs: %d vs %d", first.Accounting.Position, second.Accounting.Position)
	}
	if first.Accounting.Realized != second.Accounting.Realized {
		t.Fatalf("final realized PnL differs: %v vs %v", first.Accounting.Realized, second.Accounting.Realized)
	}
	if first.FinalState != second.FinalState {
		t.Fatalf("final risk state differs: %v vs %v", first.FinalState, second.FinalState)
	}
}
