package gas

import "testing"

func TestChargeWithinLimit(t *testing.T) {
	tr := NewTracker(100)
	if err := tr.Charge(60); err != nil {
		t.Fatal(err)
	}
	if tr.Used() != 60 || tr.Available() != 40 {
		t.Errorf("used=%d available=%d", tr.Used(), tr.Available())
	}
}

func TestChargeOverLimitFailsWithoutMutation(t *testing.T) {
	tr := NewTracker(100)
	tr.Charge(90)
	err := tr.Charge(11)
	if err == nil {
		t.Fatal("expected out of gas")
	}
	oog, ok := err.(*ErrOutOfGas)
	if !ok {
		t.Fatalf("err type %T", err)
	}
	if oog.Requested != 11 || oog.Available != 10 {
		t.Errorf("oog = %+v", oog)
	}
	if tr.Used() != 90 {
		t.Errorf("failed charge mutated used: %d", tr.Used())
	}
}

func TestUsedPlusAvailableIsLimit(t *testing.T) {
	tr := NewTracker(12345)
	for _, c := range []uint64{1, 100, 3000, 7} {
		tr.Charge(c)
		if tr.Used()+tr.Available() != tr.Limit() {
			t.Fatalf("used %d + available %d != limit %d", tr.Used(), tr.Available(), tr.Limit())
		}
	}
}

func TestBurnRemaining(t *testing.T) {
	tr := NewTracker(500)
	tr.Charge(100)
	tr.BurnRemaining()
	if tr.Available() != 0 || tr.Used() != 500 {
		t.Errorf("used=%d available=%d", tr.Used(), tr.Available())
	}
}

func TestReturnGas(t *testing.T) {
	tr := NewTracker(1000)
	tr.Charge(700)
	tr.ReturnGas(200)
	if tr.Used() != 500 {
		t.Errorf("used = %d, want 500", tr.Used())
	}
	tr.ReturnGas(10_000) // saturates at zero
	if tr.Used() != 0 {
		t.Errorf("used = %d, want 0", tr.Used())
	}
}

func TestFinalRefundCap(t *testing.T) {
	tr := NewTracker(100_000)
	tr.Charge(50_000)

	if got := tr.FinalRefund(4800, RefundQuotient); got != 4800 {
		t.Errorf("refund = %d, want 4800 (under cap)", got)
	}
	if got := tr.FinalRefund(99_999, RefundQuotient); got != 10_000 {
		t.Errorf("refund = %d, want 10000 (used/5)", got)
	}
	if got := tr.FinalRefund(99_999, RefundQuotientPreLondon); got != 25_000 {
		t.Errorf("refund = %d, want 25000 (used/2)", got)
	}
}

func TestCallGasEIP150(t *testing.T) {
	// forwarding caps at available - available/64
	if got := CallGasEIP150(6400, 10_000); got != 6300 {
		t.Errorf("forwarded = %d, want 6300", got)
	}
	if got := CallGasEIP150(6400, 1000); got != 1000 {
		t.Errorf("forwarded = %d, want 1000 (requested under cap)", got)
	}
}
