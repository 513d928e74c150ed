package vm_test

import (
	"testing"

	"github.com/coreevm/coreevm/host"
	"github.com/coreevm/coreevm/state"
	"github.com/coreevm/coreevm/types"
	"github.com/coreevm/coreevm/vm"
)

// seededStore backs a test state with pre-existing storage values, so
// SSTORE sees a non-zero original_value.
type seededStore struct {
	storage map[types.StorageKey]types.Word
}

func (s seededStore) GetAccount(types.Address) (state.AccountInfo, bool) {
	return state.AccountInfo{}, false
}

func (s seededStore) GetStorage(_ types.Address, k types.StorageKey) types.Word {
	return s.storage[k]
}

func newSeededState(storage map[types.StorageKey]types.Word, policy state.RefundPolicy) *state.JournaledState {
	return state.New(seededStore{storage: storage}, host.BlockEnv{Number: 1, GasLimit: 30_000_000}, host.TxEnv{}, types.WordFromUint64(1), policy)
}

// SSTORE gas vectors per the EIP-2200/2929/3529 table (CANCUN rules:
// cold surcharge 2100, warm 100, set 20000, reset 2900, clear refund 4800).

func TestSstoreFreshSlotColdSet(t *testing.T) {
	// PUSH1 1 ; PUSH1 0 ; SSTORE ; STOP
	ip := runCode(t, []byte{0x60, 0x01, 0x60, 0x00, 0x55, 0x00}, 100_000, vm.Cancun)
	if ip.Status != vm.StatusStopped {
		t.Fatalf("status = %v", ip.Status)
	}
	// 3 + 3 + (2100 cold + 20000 set)
	if got := ip.Gas.Used(); got != 22106 {
		t.Errorf("gas used = %d, want 22106", got)
	}
}

func TestSstoreDirtyRewriteIsWarm(t *testing.T) {
	// two SSTOREs to the same slot: second is a dirty write at warm cost
	code := []byte{0x60, 0x01, 0x60, 0x00, 0x55, 0x60, 0x02, 0x60, 0x00, 0x55, 0x00}
	ip := runCode(t, code, 100_000, vm.Cancun)
	// 6 + 22100 + 6 + 100
	if got := ip.Gas.Used(); got != 22212 {
		t.Errorf("gas used = %d, want 22212", got)
	}
}

func TestSstoreRoundTripRefund(t *testing.T) {
	js := newTestState()
	// write 1 then write 0 back: slot ends at its original value
	code := []byte{0x60, 0x01, 0x60, 0x00, 0x55, 0x60, 0x00, 0x60, 0x00, 0x55, 0x00}
	ip := runCodeOn(t, js, code, 100_000, vm.Cancun, false)
	if ip.Status != vm.StatusStopped {
		t.Fatalf("status = %v", ip.Status)
	}
	if got := ip.Gas.Used(); got != 22212 {
		t.Errorf("gas used = %d, want 22212", got)
	}
	// restore-to-original yields SSTORE_SET - warm-read back
	if got := js.Refund(); got != 19900 {
		t.Errorf("refund = %d, want 19900", got)
	}
}

func TestSstoreClearExistingSlot(t *testing.T) {
	js := newSeededState(map[types.StorageKey]types.Word{
		types.BytesToHash([]byte{0}): *types.WordFromUint64(5),
	}, state.RefundPolicyEIP3529)
	// PUSH1 0 ; PUSH1 0 ; SSTORE -> clears a slot whose original is 5
	code := []byte{0x60, 0x00, 0x60, 0x00, 0x55, 0x00}
	contract := vm.NewContract(testCaller, testContract, testContract, types.NewBytecode(code, types.Hash{}), nil, types.NewWord(), false)
	ip := newInterpreterFor(contract, js, 100_000, vm.Cancun)
	ip.Run()
	if ip.Status != vm.StatusStopped {
		t.Fatalf("status = %v", ip.Status)
	}
	// 3 + 3 + (2100 cold + 2900 reset)
	if got := ip.Gas.Used(); got != 5006 {
		t.Errorf("gas used = %d, want 5006", got)
	}
	if got := js.Refund(); got != 4800 {
		t.Errorf("refund = %d, want 4800 (EIP-3529 R_clear)", got)
	}
}

func TestSstoreSentry(t *testing.T) {
	// remaining gas at the SSTORE must exceed the 2300 sentry
	ip := runCode(t, []byte{0x60, 0x01, 0x60, 0x00, 0x55}, 2306, vm.Cancun)
	if ip.Status != vm.StatusOutOfGas {
		t.Fatalf("status = %v, want out_of_gas (sentry)", ip.Status)
	}
}

func TestSloadColdThenWarm(t *testing.T) {
	// PUSH1 0 ; SLOAD ; POP ; PUSH1 0 ; SLOAD ; STOP
	code := []byte{0x60, 0x00, 0x54, 0x50, 0x60, 0x00, 0x54, 0x00}
	ip := runCode(t, code, 100_000, vm.Cancun)
	// 3 + 2100 + 2 + 3 + 100
	if got := ip.Gas.Used(); got != 2208 {
		t.Errorf("gas used = %d, want 2208", got)
	}
}

func TestSloadFlatPreBerlin(t *testing.T) {
	// ISTANBUL charges a flat 800 per SLOAD, warm or not
	code := []byte{0x60, 0x00, 0x54, 0x50, 0x60, 0x00, 0x54, 0x00}
	ip := runCode(t, code, 100_000, vm.Istanbul)
	// 3 + 800 + 2 + 3 + 800
	if got := ip.Gas.Used(); got != 1608 {
		t.Errorf("gas used = %d, want 1608", got)
	}
}

func TestTransientStorageOpcodes(t *testing.T) {
	// PUSH1 7 ; PUSH1 1 ; TSTORE ; PUSH1 1 ; TLOAD ; STOP
	code := []byte{0x60, 0x07, 0x60, 0x01, 0x5d, 0x60, 0x01, 0x5c, 0x00}
	ip := runCode(t, code, 100_000, vm.Cancun)
	if ip.Status != vm.StatusStopped {
		t.Fatalf("status = %v", ip.Status)
	}
	if got := ip.Stack.Peek().Uint64(); got != 7 {
		t.Errorf("TLOAD = %d, want 7", got)
	}
	// 3 + 3 + 100 + 3 + 100
	if got := ip.Gas.Used(); got != 209 {
		t.Errorf("gas used = %d, want 209", got)
	}
}
