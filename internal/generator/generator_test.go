package generator

import (
	"testing"

	"mmsim/internal/eventlog"
	"mmsim/internal/matching"
)

func TestSimulateGeneratesAdvancingSequence(t *testing.T) {
	cfg := DefaultConfig()
	g := NewSimulateGenerator(cfg, matching.NewBook(), nil, nil)

	var last uint64
	for i := 0; i < 10; i++ {
		e, err := g.GenerateEvent()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if e.Sequence != last+1 {
			t.Fatalf("expected sequence %d, got %d", last+1, e.Sequence)
		}
		last = e.Sequence
	}
}

func TestSimulateClampsMidToPositiveFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialMid = 0.02
	cfg.Volatility = 10 // force large downward excursions
	cfg.Seed = 42
	g := NewSimulateGenerator(cfg, matching.NewBook(), nil, nil)

	for i := 0; i < 50; i++ {
		if _, err := g.GenerateEvent(); err != nil {
			t.Fatalf("generate: %v", err)
		}
		if g.mid < 0.01 {
			t.Fatalf("mid dropped below floor: %v", g.mid)
		}
	}
}

func TestReplayExhaustion(t *testing.T) {
	events := []eventlog.MarketDataEvent{{Sequence: 1}, {Sequence: 2}}
	g, err := NewReplayGenerator(events, nil)
	if err != nil {
		t.Fatalf("new replay generator: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := g.GenerateEvent(); err != nil {
			t.Fatalf("generate %d: %v", i, err)
		}
	}

	if _, err := g.GenerateEvent(); err != ErrReplayExhausted {
		t.Fatalf("expected ErrReplayExhausted, got %v", err)
	}
}

func TestReplayRejectsEmptyLog(t *testing.T) {
	if _, err := NewReplayGenerator(nil, nil); err == nil {
		t.Fatal("expected error constructing a replay generator from an empty log")
	}
}
