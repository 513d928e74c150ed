package evm_test

import (
	"bytes"
	"testing"

	"github.com/coreevm/coreevm/evm"
	"github.com/coreevm/coreevm/host"
	"github.com/coreevm/coreevm/state"
	"github.com/coreevm/coreevm/types"
	"github.com/coreevm/coreevm/vm"
)

var (
	sender   = types.BytesToAddress([]byte{0x5e}) // EOA driving every test tx
	coinbase = types.BytesToAddress([]byte{0xc0})
)

type testAccount struct {
	balance uint64
	nonce   uint64
	code    []byte
	storage map[types.StorageKey]types.Word
}

type testStore struct {
	accounts map[types.Address]testAccount
}

func (s testStore) GetAccount(addr types.Address) (state.AccountInfo, bool) {
	a, ok := s.accounts[addr]
	if !ok {
		return state.AccountInfo{}, false
	}
	info := state.AccountInfo{Balance: *types.WordFromUint64(a.balance), Nonce: a.nonce, Code: a.code}
	if len(a.code) > 0 {
		info.CodeHash = vm.Keccak256(a.code)
	}
	return info, true
}

func (s testStore) GetStorage(addr types.Address, k types.StorageKey) types.Word {
	return s.accounts[addr].storage[k]
}

func newTestEVM(t *testing.T, spec vm.SpecId, accounts map[types.Address]testAccount) *evm.EVM {
	t.Helper()
	prevRandao := types.BytesToHash([]byte{0x01})
	block := host.BlockEnv{
		Number:      1000,
		Timestamp:   1_700_000_000,
		Coinbase:    coinbase,
		GasLimit:    30_000_000,
		BaseFee:     types.WordFromUint64(7),
		PrevRandao:  &prevRandao,
		BlobBaseFee: types.WordFromUint64(1),
	}
	tx := host.TxEnv{Origin: sender, GasPrice: types.NewWord()}
	js := state.New(testStore{accounts: accounts}, block, tx, types.WordFromUint64(1), evm.RefundPolicyFor(spec))
	return evm.New(evm.Config{SpecID: spec, ChainID: types.WordFromUint64(1)}, js)
}

func balanceOf(t *testing.T, e *evm.EVM, addr types.Address) uint64 {
	t.Helper()
	bal, _ := e.State().Balance(addr)
	if bal == nil {
		return 0
	}
	return bal.Uint64()
}

func TestCallToEOAWithValue(t *testing.T) {
	target := types.BytesToAddress(bytes.Repeat([]byte{0xee}, 20))
	e := newTestEVM(t, vm.Cancun, map[types.Address]testAccount{
		sender: {balance: 10_000},
	})

	res, err := e.ExecuteTransaction(&evm.Tx{
		Caller:   sender,
		To:       &target,
		Value:    types.WordFromUint64(1000),
		GasLimit: 21_000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != vm.StatusStopped {
		t.Fatalf("status = %v, want stopped", res.Status)
	}
	if got := balanceOf(t, e, sender); got != 9000 {
		t.Errorf("sender balance = %d, want 9000", got)
	}
	if got := balanceOf(t, e, target); got != 1000 {
		t.Errorf("target balance = %d, want 1000", got)
	}
	if got := e.State().Nonce(sender); got != 1 {
		t.Errorf("sender nonce = %d, want 1", got)
	}
	if res.GasUsed != 21_000 {
		t.Errorf("gas used = %d, want 21000 (intrinsic only)", res.GasUsed)
	}
}

// child: SSTORE(0, 0x22) ; REVERT(0, 0)
var childRevertCode = []byte{0x60, 0x22, 0x60, 0x00, 0x55, 0x60, 0x00, 0x60, 0x00, 0xfd}

// parent: SSTORE(0, 0x11) ; CALL(child) ; POP ; SSTORE(1, 0x33) ; STOP
func parentCallCode(child types.Address) []byte {
	code := []byte{0x60, 0x11, 0x60, 0x00, 0x55}
	// retSize, retOffset, argsSize, argsOffset, value, to, gas
	code = append(code, 0x60, 0x00, 0x60, 0x00, 0x60, 0x00, 0x60, 0x00, 0x60, 0x00)
	code = append(code, 0x73)
	code = append(code, child.Bytes()...)
	code = append(code, 0x62, 0x0f, 0x42, 0x40) // PUSH3 1_000_000
	code = append(code, 0xf1, 0x50)
	code = append(code, 0x60, 0x33, 0x60, 0x01, 0x55, 0x00)
	return code
}

func TestSubCallRevertPreservesParentState(t *testing.T) {
	parentAddr := types.BytesToAddress([]byte{0x1a})
	childAddr := types.BytesToAddress([]byte{0x1b})

	e := newTestEVM(t, vm.Cancun, map[types.Address]testAccount{
		sender:     {balance: 1_000_000},
		parentAddr: {code: parentCallCode(childAddr), nonce: 1},
		childAddr:  {code: childRevertCode, nonce: 1},
	})

	res, err := e.ExecuteTransaction(&evm.Tx{
		Caller:   sender,
		To:       &parentAddr,
		GasLimit: 5_000_000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != vm.StatusStopped {
		t.Fatalf("status = %v, want stopped", res.Status)
	}

	js := e.State()
	slot0, _ := js.SLoad(parentAddr, types.BytesToHash([]byte{0x00}))
	if slot0.Uint64() != 0x11 {
		t.Errorf("parent slot 0 = %#x, want 0x11", slot0.Uint64())
	}
	slot1, _ := js.SLoad(parentAddr, types.BytesToHash([]byte{0x01}))
	if slot1.Uint64() != 0x33 {
		t.Errorf("parent slot 1 = %#x, want 0x33", slot1.Uint64())
	}
	childSlot, _ := js.SLoad(childAddr, types.BytesToHash([]byte{0x00}))
	if !childSlot.IsZero() {
		t.Errorf("child slot 0 = %#x, want 0 (reverted)", childSlot.Uint64())
	}
}

func TestCreateTransactionDeploysCode(t *testing.T) {
	// init: MSTORE8(0, 0x00) ; RETURN(0, 1) -- deploys the one-byte STOP program
	initCode := []byte{0x60, 0x00, 0x60, 0x00, 0x53, 0x60, 0x01, 0x60, 0x00, 0xf3}

	e := newTestEVM(t, vm.Cancun, map[types.Address]testAccount{
		sender: {balance: 1_000_000},
	})
	res, err := e.ExecuteTransaction(&evm.Tx{
		Caller:   sender,
		Input:    initCode,
		GasLimit: 1_000_000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success() {
		t.Fatalf("status = %v", res.Status)
	}
	if res.CreatedAddress == nil {
		t.Fatal("no created address")
	}
	want := evm.CreateAddress(sender, 0)
	if *res.CreatedAddress != want {
		t.Errorf("created = %s, want %s", res.CreatedAddress, want)
	}
	code, _ := e.State().Code(want)
	if !bytes.Equal(code, []byte{0x00}) {
		t.Errorf("deployed code = %x, want 00", code)
	}
	if got := e.State().Nonce(want); got != 1 {
		t.Errorf("created nonce = %d, want 1 (EIP-161)", got)
	}
	if got := e.State().Nonce(sender); got != 1 {
		t.Errorf("sender nonce = %d, want 1", got)
	}
}

func TestCreate2OpcodeMatchesDerivation(t *testing.T) {
	// factory: PUSH5 init ; PUSH1 0 ; MSTORE (left-padded to one word) ;
	// CREATE2(value=0, offset=27, size=5, salt=12345) ; stash addr ; STOP
	initCode := []byte{0x60, 0x00, 0x60, 0x00, 0xf3}
	factory := []byte{0x64}
	factory = append(factory, initCode...)
	factory = append(factory, 0x60, 0x00, 0x52) // MSTORE word; code sits at bytes 27..31
	factory = append(factory, 0x61, 0x30, 0x39) // PUSH2 12345 (salt)
	factory = append(factory, 0x60, 0x05, 0x60, 0x1b, 0x60, 0x00) // size 5, offset 27, value 0
	factory = append(factory, 0xf5, 0x60, 0x00, 0x55, 0x00)       // CREATE2 ; SSTORE(0, addr) ; STOP

	factoryAddr := types.BytesToAddress([]byte{0x0b, 0x0b})
	e := newTestEVM(t, vm.Cancun, map[types.Address]testAccount{
		sender:      {balance: 1_000_000},
		factoryAddr: {code: factory, nonce: 1},
	})
	res, err := e.ExecuteTransaction(&evm.Tx{
		Caller:   sender,
		To:       &factoryAddr,
		GasLimit: 1_000_000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != vm.StatusStopped {
		t.Fatalf("status = %v", res.Status)
	}

	stored, _ := e.State().SLoad(factoryAddr, types.BytesToHash([]byte{0x00}))
	want := evm.Create2Address(factoryAddr, types.WordFromUint64(12345), initCode)
	if types.BytesToAddress(stored.Bytes()) != want {
		t.Errorf("CREATE2 result = %x, want %s", stored.Bytes(), want)
	}
	if stored.IsZero() {
		t.Error("CREATE2 failed")
	}
}

func TestDelegateCallRunsInCallerContext(t *testing.T) {
	// library: SSTORE(0, 0x77) -- writes into the storage of whoever runs it
	library := []byte{0x60, 0x77, 0x60, 0x00, 0x55, 0x00}
	libAddr := types.BytesToAddress([]byte{0x2b})

	// proxy: DELEGATECALL(lib) ; POP ; STOP
	proxy := []byte{0x60, 0x00, 0x60, 0x00, 0x60, 0x00, 0x60, 0x00}
	proxy = append(proxy, 0x73)
	proxy = append(proxy, libAddr.Bytes()...)
	proxy = append(proxy, 0x62, 0x0f, 0x42, 0x40, 0xf4, 0x50, 0x00)
	proxyAddr := types.BytesToAddress([]byte{0x2a})

	e := newTestEVM(t, vm.Cancun, map[types.Address]testAccount{
		sender:    {balance: 1_000_000},
		proxyAddr: {code: proxy, nonce: 1},
		libAddr:   {code: library, nonce: 1},
	})
	res, err := e.ExecuteTransaction(&evm.Tx{Caller: sender, To: &proxyAddr, GasLimit: 5_000_000})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != vm.StatusStopped {
		t.Fatalf("status = %v", res.Status)
	}

	// the write lands on the proxy's storage, not the library's
	proxySlot, _ := e.State().SLoad(proxyAddr, types.BytesToHash([]byte{0x00}))
	if proxySlot.Uint64() != 0x77 {
		t.Errorf("proxy slot = %#x, want 0x77", proxySlot.Uint64())
	}
	libSlot, _ := e.State().SLoad(libAddr, types.BytesToHash([]byte{0x00}))
	if !libSlot.IsZero() {
		t.Errorf("library slot = %#x, want 0", libSlot.Uint64())
	}
}

func TestStaticCallBlocksChildWrites(t *testing.T) {
	writer := []byte{0x60, 0x01, 0x60, 0x00, 0x55, 0x00} // SSTORE(0, 1)
	writerAddr := types.BytesToAddress([]byte{0x3b})

	// caller: STATICCALL(writer) ; the success flag is stored with MSTORE
	// and returned, so the test reads it from the call's output
	caller := []byte{0x60, 0x00, 0x60, 0x00, 0x60, 0x00, 0x60, 0x00}
	caller = append(caller, 0x73)
	caller = append(caller, writerAddr.Bytes()...)
	caller = append(caller, 0x62, 0x0f, 0x42, 0x40, 0xfa) // STATICCALL
	caller = append(caller, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3)
	callerAddr := types.BytesToAddress([]byte{0x3a})

	e := newTestEVM(t, vm.Cancun, map[types.Address]testAccount{
		sender:     {balance: 1_000_000},
		callerAddr: {code: caller, nonce: 1},
		writerAddr: {code: writer, nonce: 1},
	})
	res, err := e.ExecuteTransaction(&evm.Tx{Caller: sender, To: &callerAddr, GasLimit: 5_000_000})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != vm.StatusReturned {
		t.Fatalf("status = %v", res.Status)
	}
	// the child faulted, so the success flag is 0
	if !bytes.Equal(res.Output, make([]byte, 32)) {
		t.Errorf("success flag = %x, want all-zero word", res.Output)
	}
	slot, _ := e.State().SLoad(writerAddr, types.BytesToHash([]byte{0x00}))
	if !slot.IsZero() {
		t.Error("write inside STATICCALL subtree persisted")
	}
}

func TestPrecompileRouting(t *testing.T) {
	identity := types.BytesToAddress([]byte{0x04})
	e := newTestEVM(t, vm.Cancun, map[types.Address]testAccount{
		sender: {balance: 1_000_000},
	})
	input := []byte{0x01, 0x02, 0x03}
	res, err := e.ExecuteTransaction(&evm.Tx{Caller: sender, To: &identity, Input: input, GasLimit: 100_000})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != vm.StatusReturned {
		t.Fatalf("status = %v", res.Status)
	}
	if !bytes.Equal(res.Output, input) {
		t.Errorf("identity output = %x, want %x", res.Output, input)
	}
}

func TestReturnDataFlowsToParent(t *testing.T) {
	// child returns 0xdeadbeef padded in a word
	child := []byte{0x7f}
	word := make([]byte, 32)
	copy(word, []byte{0xde, 0xad, 0xbe, 0xef})
	child = append(child, word...)
	child = append(child, 0x60, 0x00, 0x52, 0x60, 0x04, 0x60, 0x00, 0xf3)
	childAddr := types.BytesToAddress([]byte{0x4b})

	// parent: CALL(child, retOffset=0, retSize=4) ; POP ; RETURN(0, 4)
	parent := []byte{0x60, 0x04, 0x60, 0x00, 0x60, 0x00, 0x60, 0x00, 0x60, 0x00}
	parent = append(parent, 0x73)
	parent = append(parent, childAddr.Bytes()...)
	parent = append(parent, 0x62, 0x0f, 0x42, 0x40, 0xf1, 0x50)
	parent = append(parent, 0x60, 0x04, 0x60, 0x00, 0xf3)
	parentAddr := types.BytesToAddress([]byte{0x4a})

	e := newTestEVM(t, vm.Cancun, map[types.Address]testAccount{
		sender:     {balance: 1_000_000},
		parentAddr: {code: parent, nonce: 1},
		childAddr:  {code: child, nonce: 1},
	})
	res, err := e.ExecuteTransaction(&evm.Tx{Caller: sender, To: &parentAddr, GasLimit: 5_000_000})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != vm.StatusReturned {
		t.Fatalf("status = %v", res.Status)
	}
	if !bytes.Equal(res.Output, []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Errorf("output = %x, want deadbeef", res.Output)
	}
}

func TestValidationErrors(t *testing.T) {
	t.Run("prevrandao required post-merge", func(t *testing.T) {
		js := state.New(testStore{}, host.BlockEnv{GasLimit: 30_000_000}, host.TxEnv{}, types.WordFromUint64(1), state.RefundPolicyEIP3529)
		e := evm.New(evm.Config{SpecID: vm.Merge}, js)
		to := types.BytesToAddress([]byte{0x01, 0x02})
		_, err := e.ExecuteTransaction(&evm.Tx{Caller: sender, To: &to, GasLimit: 21_000})
		if err != evm.ErrPrevRandaoNotSet {
			t.Errorf("err = %v, want ErrPrevRandaoNotSet", err)
		}
	})

	t.Run("blob base fee required post-cancun", func(t *testing.T) {
		prevRandao := types.BytesToHash([]byte{1})
		js := state.New(testStore{}, host.BlockEnv{GasLimit: 30_000_000, PrevRandao: &prevRandao}, host.TxEnv{}, types.WordFromUint64(1), state.RefundPolicyEIP3529)
		e := evm.New(evm.Config{SpecID: vm.Cancun}, js)
		to := types.BytesToAddress([]byte{0x01, 0x02})
		_, err := e.ExecuteTransaction(&evm.Tx{Caller: sender, To: &to, GasLimit: 21_000})
		if err != evm.ErrExcessBlobGasNotSet {
			t.Errorf("err = %v, want ErrExcessBlobGasNotSet", err)
		}
	})

	t.Run("nonce mismatch", func(t *testing.T) {
		e := newTestEVM(t, vm.Cancun, map[types.Address]testAccount{sender: {balance: 1_000_000, nonce: 5}})
		to := types.BytesToAddress([]byte{0x01, 0x02})
		nonce := uint64(4)
		_, err := e.ExecuteTransaction(&evm.Tx{Caller: sender, To: &to, GasLimit: 21_000, Nonce: &nonce})
		if err != evm.ErrInvalidNonce {
			t.Errorf("err = %v, want ErrInvalidNonce", err)
		}
	})

	t.Run("sender has code", func(t *testing.T) {
		e := newTestEVM(t, vm.Cancun, map[types.Address]testAccount{sender: {balance: 1_000_000, code: []byte{0x00}}})
		to := types.BytesToAddress([]byte{0x01, 0x02})
		_, err := e.ExecuteTransaction(&evm.Tx{Caller: sender, To: &to, GasLimit: 21_000})
		if err != evm.ErrSenderHasCode {
			t.Errorf("err = %v, want ErrSenderHasCode", err)
		}
	})

	t.Run("intrinsic gas too low", func(t *testing.T) {
		e := newTestEVM(t, vm.Cancun, map[types.Address]testAccount{sender: {balance: 1_000_000}})
		to := types.BytesToAddress([]byte{0x01, 0x02})
		_, err := e.ExecuteTransaction(&evm.Tx{Caller: sender, To: &to, GasLimit: 20_000})
		if err != evm.ErrIntrinsicGasTooLow {
			t.Errorf("err = %v, want ErrIntrinsicGasTooLow", err)
		}
	})

	t.Run("insufficient funds", func(t *testing.T) {
		e := newTestEVM(t, vm.Cancun, map[types.Address]testAccount{sender: {balance: 10}})
		to := types.BytesToAddress([]byte{0x01, 0x02})
		_, err := e.ExecuteTransaction(&evm.Tx{Caller: sender, To: &to, Value: types.WordFromUint64(100), GasLimit: 21_000})
		if err != evm.ErrInsufficientFunds {
			t.Errorf("err = %v, want ErrInsufficientFunds", err)
		}
	})

	t.Run("block gas limit", func(t *testing.T) {
		e := newTestEVM(t, vm.Cancun, map[types.Address]testAccount{sender: {balance: 1_000_000}})
		to := types.BytesToAddress([]byte{0x01, 0x02})
		_, err := e.ExecuteTransaction(&evm.Tx{Caller: sender, To: &to, GasLimit: 60_000_000})
		if err != evm.ErrGasLimitExceedsBlock {
			t.Errorf("err = %v, want ErrGasLimitExceedsBlock", err)
		}
	})
}

func TestLogsCollected(t *testing.T) {
	// LOG1(topic=0x42, empty data) ; STOP
	logging := []byte{0x60, 0x42, 0x60, 0x00, 0x60, 0x00, 0xa1, 0x00}
	logAddr := types.BytesToAddress([]byte{0x5b, 0x01})

	e := newTestEVM(t, vm.Cancun, map[types.Address]testAccount{
		sender:  {balance: 1_000_000},
		logAddr: {code: logging, nonce: 1},
	})
	res, err := e.ExecuteTransaction(&evm.Tx{Caller: sender, To: &logAddr, GasLimit: 1_000_000})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(res.Logs))
	}
	if res.Logs[0].Address != logAddr {
		t.Errorf("log address = %s", res.Logs[0].Address)
	}
	if res.Logs[0].Topics[0] != types.BytesToHash([]byte{0x42}) {
		t.Errorf("topic = %s", res.Logs[0].Topics[0])
	}
}
