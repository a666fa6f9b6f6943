package estimators

import "testing"

func TestOFIZeroWhenEmpty(t *testing.T) {
	o := NewRollingOFI(5)
	if o.OFI() != 0 {
		t.Fatalf("expected 0 OFI when empty, got %v", o.OFI())
	}
}

func TestOFIAllBuys(t *testing.T) {
	o := NewRollingOFI(5)
	o.Record(10)
	o.Record(5)
	o.Record(3)
	if got := o.OFI(); got != 1 {
		t.Errorf("expected OFI 1 for all-buy flow, got %v", got)
	}
}

func TestOFIAllSells(t *testing.T) {
	o := NewRollingOFI(5)
	o.Record(-10)
	o.Record(-5)
	if got := o.OFI(); got != -1 {
		t.Errorf("expected OFI -1 for all-sell flow, got %v", got)
	}
}

func TestOFIBalanced(t *testing.T) {
	o := NewRollingOFI(5)
	o.Record(10)
	o.Record(-10)
	if got := o.OFI(); got != 0 {
		t.Errorf("expected OFI 0 for balanced flow, got %v", got)
	}
}

func TestOFIWindowBounded(t *testing.T) {
	o := NewRollingOFI(3)
	for i := 0; i < 10; i++ {
		o.Record(1)
	}
	if o.Len() > 3 {
		t.Errorf("expected volume window bounded at 3, got %d", o.Len())
	}
	// All-positive entries regardless of window trimming still yield OFI 1.
	if got := o.OFI(); got != 1 {
		t.Errorf("expected OFI 1, got %v", got)
	}
}
