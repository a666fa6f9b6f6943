package strategy

import "testing"

func TestFixedQuoteStrategyDeterministic(t *testing.T) {
	s := NewFixedQuoteStrategy(0.5, 10)
	snap := Snapshot{Mid: 100}

	first := s.ComputeQuotes(snap)
	second := s.ComputeQuotes(snap)

	if first != second {
		t.Fatalf("expected deterministic decision for the same snapshot, got %+v vs %+v", first, second)
	}
	if first.BidPrice != 99.5 || first.AskPrice != 100.5 {
		t.Errorf("unexpected quote prices: %+v", first)
	}
	if !first.ShouldQuote {
		t.Errorf("expected ShouldQuote true")
	}
}

func TestStrategyInterfaceSatisfied(t *testing.T) {
	var _ Strategy = NewFixedQuoteStrategy(0.1, 1)
}
