package gas

import "fmt"

// ErrOutOfGas is returned whenever a charge would exceed the frame's gas
// limit.
type ErrOutOfGas struct {
	Requested uint64
	Available uint64
}

func (e *ErrOutOfGas) Error() string {
	return fmt.Sprintf("out of gas: requested %d, available %d", e.Requested, e.Available)
}

// Tracker is a per-frame {limit, used} counter pair, grounded on the
// teacher's constant-gas-then-dynamic-gas charge sequence in EVM.Run.
// Charges saturate rather than overflow. The refund counter itself lives
// on state.JournaledState (transaction-scoped and revertible via its
// journal); Tracker only caps and applies it at settlement via
// FinalRefund.
type Tracker struct {
	limit uint64
	used  uint64
}

// NewTracker returns a Tracker with the given gas limit.
func NewTracker(limit uint64) *Tracker {
	return &Tracker{limit: limit}
}

// Limit returns the frame's total gas limit.
func (t *Tracker) Limit() uint64 { return t.limit }

// Used returns gas consumed so far.
func (t *Tracker) Used() uint64 { return t.used }

// Available returns the gas remaining to spend.
func (t *Tracker) Available() uint64 {
	if t.used >= t.limit {
		return 0
	}
	return t.limit - t.used
}

// Charge deducts cost from the available gas, returning ErrOutOfGas
// without mutating state if cost would exceed what remains.
func (t *Tracker) Charge(cost uint64) error {
	avail := t.Available()
	if cost > avail {
		return &ErrOutOfGas{Requested: cost, Available: avail}
	}
	t.used += cost
	return nil
}

// ForceCharge deducts cost unconditionally, saturating used at limit. Used
// when a frame fails and its entire remaining gas must be burned.
func (t *Tracker) ForceCharge(cost uint64) {
	if cost >= t.Available() {
		t.used = t.limit
		return
	}
	t.used += cost
}

// ReturnGas credits back gas that was charged for a sub-call but left
// unspent by the child frame.
func (t *Tracker) ReturnGas(amount uint64) {
	if amount > t.used {
		t.used = 0
		return
	}
	t.used -= amount
}

// BurnRemaining consumes all remaining gas (a hard fault: OutOfGas,
// invalid opcode, stack fault, ...).
func (t *Tracker) BurnRemaining() {
	t.used = t.limit
}

// FinalRefund caps rawRefund (the transaction-scoped counter accumulated
// on state.JournaledState) at used/quotient per the active fork
// (RefundQuotient for LONDON+, RefundQuotientPreLondon otherwise).
func (t *Tracker) FinalRefund(rawRefund, quotient uint64) uint64 {
	cap := t.used / quotient
	if rawRefund > cap {
		return cap
	}
	return rawRefund
}

// CallGasEIP150 applies the 63/64 forwarding rule: at most
// available-available/64 of the caller's remaining gas may be forwarded to
// a sub-call, further capped by the amount requested.
func CallGasEIP150(available, requested uint64) uint64 {
	capped := available - available/CallGasFraction
	if requested < capped {
		return requested
	}
	return capped
}
