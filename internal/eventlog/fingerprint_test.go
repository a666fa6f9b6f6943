package eventlog

import "testing"

func TestFingerprintDeterministic(t *testing.T) {
	events := []MarketDataEvent{sampleEvent(), sampleEvent()}
	events[1].Sequence = 8

	f1 := NewFingerprint()
	for _, e := range events {
		f1.Add(e)
	}

	f2 := NewFingerprint()
	for _, e := range events {
		f2.Add(e)
	}

	if f1.Sum() != f2.Sum() {
		t.Fatalf("expected identical checksums over identical streams, got %d vs %d", f1.Sum(), f2.Sum())
	}
}

func TestFingerprintDiffersOnDifferentStreams(t *testing.T) {
	a := sampleEvent()
	b := sampleEvent()
	b.Sequence = 999

	f1 := NewFingerprint()
	f1.Add(a)

	f2 := NewFingerprint()
	f2.Add(b)

	if f1.Sum() == f2.Sum() {
		t.Fatalf("expected different checksums for different streams")
	}
}
