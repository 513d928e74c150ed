package state

import (
	"github.com/coreevm/coreevm/gas"
	"github.com/coreevm/coreevm/host"
	"github.com/coreevm/coreevm/types"
)

// RefundPolicy selects which era's SSTORE refund table SStore applies.
// The interpreter's dynamicGas pass computes the gas *charge* on its own
// (it needs the number before the opcode executes); SStore only ever
// needs this to get the refund side right.
type RefundPolicy int

const (
	RefundPolicyNone    RefundPolicy = iota // SSTORE never refunds (evm.RefundPolicyFor never selects it)
	RefundPolicyLegacy                      // FRONTIER..PETERSBURG: flat 15000 clear refund
	RefundPolicyEIP2200                     // ISTANBUL..BERLIN: dirty-slot table, 15000 clear refund
	RefundPolicyEIP3529                     // LONDON+: dirty-slot table, 4800 clear refund
)

// JournaledState is the public surface spec.md §4.7 describes: account and
// storage access with warm/cold tracking, transient storage, logs, and
// checkpoint/commit/revert over a single append-only journal. It
// implements host.Host so the interpreter can be driven directly against
// it (or against an evm.EVM that wraps it with call/create orchestration).
type JournaledState struct {
	backing  BackingStore
	accounts map[types.Address]*Account

	accessedAddresses map[types.Address]bool
	transient         map[types.AddressSlot]types.Word
	createdThisTx     map[types.Address]bool

	logs         []types.Log
	refund       int64
	refundPolicy RefundPolicy
	j            journal
	depth        int

	block       host.BlockEnv
	tx          host.TxEnv
	chainID     *types.Word
	blockHashFn func(number uint64) (types.Hash, bool)
}

// New returns a JournaledState backed by store, for one transaction's
// execution under the given SSTORE refund policy.
func New(store BackingStore, block host.BlockEnv, tx host.TxEnv, chainID *types.Word, refundPolicy RefundPolicy) *JournaledState {
	return &JournaledState{
		backing:           store,
		accounts:          make(map[types.Address]*Account),
		accessedAddresses: make(map[types.Address]bool),
		transient:         make(map[types.AddressSlot]types.Word),
		createdThisTx:     make(map[types.Address]bool),
		refundPolicy:      refundPolicy,
		block:             block,
		tx:                tx,
		chainID:           chainID,
	}
}

func (s *JournaledState) BlockEnv() host.BlockEnv { return s.block }
func (s *JournaledState) TxEnv() host.TxEnv       { return s.tx }
func (s *JournaledState) ChainID() *types.Word    { return s.chainID }

func (s *JournaledState) getOrLoad(addr types.Address) (*Account, bool) {
	if acct, ok := s.accounts[addr]; ok {
		return acct, false
	}
	acct := newAccount()
	if info, ok := s.backing.GetAccount(addr); ok {
		acct.Info = info
	} else {
		acct.setFlag(FlagNonExistent)
	}
	s.accounts[addr] = acct
	return acct, true
}

// LoadAccount fetches addr, marking it warm. Returns whether this access
// was cold and whether the account does not yet exist (used by CALL/
// CREATE's new-account gas surcharge).
func (s *JournaledState) LoadAccount(addr types.Address) (isCold bool, isNewAccount bool) {
	firstTouch := !s.accounts[addr].hasFlagSafe(FlagLoaded)
	acct, _ := s.getOrLoad(addr)
	wasCold := !s.accessedAddresses[addr]
	if wasCold {
		s.accessedAddresses[addr] = true
		if firstTouch {
			s.j.append(accountLoadedEntry{addr: addr})
		} else {
			s.j.append(accountWarmedEntry{addr: addr})
		}
	}
	acct.setFlag(FlagLoaded)
	return wasCold, acct.hasFlag(FlagNonExistent)
}

func (a *Account) hasFlagSafe(f StatusFlag) bool {
	if a == nil {
		return false
	}
	return a.hasFlag(f)
}

// Touch marks addr as touched this transaction (relevant for EIP-161
// empty-account pruning), journaling at most once.
func (s *JournaledState) Touch(addr types.Address) {
	acct, _ := s.getOrLoad(addr)
	if acct.hasFlag(FlagTouched) {
		return
	}
	acct.setFlag(FlagTouched)
	s.j.append(accountTouchedEntry{addr: addr})
}

func (s *JournaledState) Balance(addr types.Address) (*types.Word, bool) {
	acct, _ := s.getOrLoad(addr)
	if acct.hasFlag(FlagNonExistent) {
		return nil, false
	}
	b := acct.Info.Balance
	return &b, true
}

func (s *JournaledState) Code(addr types.Address) ([]byte, bool) {
	acct, _ := s.getOrLoad(addr)
	if acct.hasFlag(FlagNonExistent) {
		return nil, false
	}
	return acct.Info.Code, true
}

func (s *JournaledState) CodeHash(addr types.Address) (types.Hash, bool) {
	acct, _ := s.getOrLoad(addr)
	if acct.hasFlag(FlagNonExistent) {
		return types.Hash{}, false
	}
	return acct.Info.CodeHash, true
}

func (s *JournaledState) CodeSize(addr types.Address) (int, bool) {
	code, ok := s.Code(addr)
	return len(code), ok
}

// SetBlockHashFn installs the ancestor-hash oracle BLOCKHASH consults.
// Without one every lookup misses and the opcode pushes zero.
func (s *JournaledState) SetBlockHashFn(fn func(number uint64) (types.Hash, bool)) {
	s.blockHashFn = fn
}

// BlockHash resolves an ancestor hash, returning false for any number
// outside the [current-256, current-1] window.
func (s *JournaledState) BlockHash(number uint64) (types.Hash, bool) {
	current := s.block.Number
	if number >= current || current-number > 256 {
		return types.Hash{}, false
	}
	if s.blockHashFn == nil {
		return types.Hash{}, false
	}
	return s.blockHashFn(number)
}

// Transfer moves amount from->to, returning ErrInsufficientBalance rather
// than mutating either account if the sender can't cover it.
func (s *JournaledState) Transfer(from, to types.Address, amount *types.Word) error {
	if amount.IsZero() {
		return nil
	}
	fromAcct, _ := s.getOrLoad(from)
	toAcct, _ := s.getOrLoad(to)
	if fromAcct.Info.Balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	s.j.append(balanceChangeEntry{addr: from, prev: fromAcct.Info.Balance})
	s.j.append(balanceChangeEntry{addr: to, prev: toAcct.Info.Balance})
	fromAcct.Info.Balance.Sub(&fromAcct.Info.Balance, amount)
	toAcct.Info.Balance.Add(&toAcct.Info.Balance, amount)
	toAcct.clearFlag(FlagNonExistent)
	return nil
}

// AddBalance credits amount to addr, journaling the previous balance.
func (s *JournaledState) AddBalance(addr types.Address, amount *types.Word) {
	acct, _ := s.getOrLoad(addr)
	s.j.append(balanceChangeEntry{addr: addr, prev: acct.Info.Balance})
	acct.Info.Balance.Add(&acct.Info.Balance, amount)
	acct.clearFlag(FlagNonExistent)
}

// SubBalance debits amount from addr, failing without mutation if the
// balance cannot cover it.
func (s *JournaledState) SubBalance(addr types.Address, amount *types.Word) error {
	acct, _ := s.getOrLoad(addr)
	if acct.Info.Balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	s.j.append(balanceChangeEntry{addr: addr, prev: acct.Info.Balance})
	acct.Info.Balance.Sub(&acct.Info.Balance, amount)
	return nil
}

// IncrementNonce bumps addr's nonce, journaling its previous value.
func (s *JournaledState) IncrementNonce(addr types.Address) error {
	acct, _ := s.getOrLoad(addr)
	if acct.Info.Nonce == ^uint64(0) {
		return ErrNonceOverflow
	}
	s.j.append(nonceChangeEntry{addr: addr, prev: acct.Info.Nonce})
	acct.Info.Nonce++
	acct.clearFlag(FlagNonExistent)
	return nil
}

func (s *JournaledState) Nonce(addr types.Address) uint64 {
	acct, _ := s.getOrLoad(addr)
	return acct.Info.Nonce
}

// SetCode installs code+hash on addr, journaling the previous values.
func (s *JournaledState) SetCode(addr types.Address, code []byte, hash types.Hash) {
	acct, _ := s.getOrLoad(addr)
	s.j.append(codeChangeEntry{addr: addr, prevCode: acct.Info.Code, prevCodeHash: acct.Info.CodeHash})
	acct.Info.Code = code
	acct.Info.CodeHash = hash
}

func (s *JournaledState) slot(addr types.Address, key types.StorageKey) *StorageSlot {
	acct, _ := s.getOrLoad(addr)
	slot, ok := acct.Storage[key]
	if !ok {
		v := s.backing.GetStorage(addr, key)
		slot = &StorageSlot{Original: v, Present: v, IsCold: true}
		acct.Storage[key] = slot
	}
	return slot
}

// SLoad loads addr's key, marking it warm on first access.
func (s *JournaledState) SLoad(addr types.Address, key types.StorageKey) (types.Word, bool) {
	slot := s.slot(addr, key)
	wasCold := slot.IsCold
	if wasCold {
		slot.IsCold = false
		s.j.append(storageWarmedEntry{addr: addr, key: key})
	}
	return slot.Present, wasCold
}

// SLoadOriginal returns key's value as of the start of the transaction,
// without touching its warm/cold flag. The SSTORE gas table (spec.md §4.8)
// needs this alongside the present value to classify a write as first-
// touch, dirty, or a return to original.
func (s *JournaledState) SLoadOriginal(addr types.Address, key types.StorageKey) types.Word {
	return s.slot(addr, key).Original
}

// SStore updates addr's key to newVal, journaling the present value and
// applying the refund delta from the active RefundPolicy. The dynamicGas
// pass that precedes this call (vm package) is responsible for charging
// the gas cost itself; SStore only ever adjusts the refund counter, so
// that a sub-call revert unwinds it exactly via refundChangedEntry.
func (s *JournaledState) SStore(addr types.Address, key types.StorageKey, newVal *types.Word) (host.SstoreResult, error) {
	slot := s.slot(addr, key)
	wasCold := slot.IsCold
	if wasCold {
		slot.IsCold = false
		s.j.append(storageWarmedEntry{addr: addr, key: key})
	}
	original, present := slot.Original, slot.Present
	result := host.SstoreResult{Original: original, Present: present, New: *newVal, IsCold: wasCold}

	s.j.append(storageChangedEntry{addr: addr, key: key, prevPresent: present})
	slot.Present = *newVal

	switch {
	case s.refundPolicy == RefundPolicyLegacy:
		if !present.IsZero() && newVal.IsZero() {
			s.AddRefund(int64(gas.SstoreClearRefundLegacy))
		}
	case s.refundPolicy != RefundPolicyNone && !present.Eq(newVal):
		s.applySstoreRefund(original, present, *newVal)
	}
	return result, nil
}

// applySstoreRefund implements the EIP-2200/3529 dirty-slot refund table,
// parameterized by RefundPolicy so the same code path serves both the
// ISTANBUL..BERLIN (flat clear refund) and LONDON+ (EIP-3529 reduced clear
// refund) eras; legacy FRONTIER..PETERSBURG pricing never reaches here (its
// refund is applied in SStore).
func (s *JournaledState) applySstoreRefund(original, present, newVal types.Word) {
	clearRefund := int64(gas.SstoreClearRefund)
	setMinusRead := int64(gas.SstoreSet) - int64(gas.SloadWarm)
	resetMinusRead := int64(gas.SstoreReset) - int64(gas.SloadWarm)
	if s.refundPolicy == RefundPolicyEIP2200 {
		clearRefund = int64(gas.SstoreClearRefundLegacy)
		setMinusRead = int64(gas.SstoreSet) - int64(gas.SloadIstanbul)
		resetMinusRead = int64(gas.SstoreResetLegacy) - int64(gas.SloadIstanbul)
	}

	if original.Eq(&present) {
		// clean slot: clearing a live value earns the full clear refund
		if !original.IsZero() && newVal.IsZero() {
			s.AddRefund(clearRefund)
		}
		return
	}

	// dirty slot
	if !original.IsZero() {
		if present.IsZero() {
			// resurrecting a slot this tx already cleared takes the
			// earlier clear refund back
			s.AddRefund(-clearRefund)
		} else if newVal.IsZero() {
			s.AddRefund(clearRefund)
		}
	}
	if original.Eq(&newVal) {
		if original.IsZero() {
			s.AddRefund(setMinusRead)
		} else {
			s.AddRefund(resetMinusRead)
		}
	}
}

func (s *JournaledState) TLoad(addr types.Address, key types.StorageKey) types.Word {
	return s.transient[types.AddressSlot{Address: addr, Key: key}]
}

func (s *JournaledState) TStore(addr types.Address, key types.StorageKey, val *types.Word) {
	k := types.AddressSlot{Address: addr, Key: key}
	prev := s.transient[k]
	s.j.append(transientSetEntry{addr: addr, key: key, prev: prev})
	if val.IsZero() {
		delete(s.transient, k)
		return
	}
	s.transient[k] = *val
}

// ClearTransientStorage drops all transient storage; called at the end of
// every top-level transaction (never across sub-calls).
func (s *JournaledState) ClearTransientStorage() {
	s.transient = make(map[types.AddressSlot]types.Word)
}

func (s *JournaledState) Log(l types.Log) {
	s.j.append(logAppendedEntry{prevLen: len(s.logs)})
	s.logs = append(s.logs, l)
}

// Logs returns the logs accumulated so far.
func (s *JournaledState) Logs() []types.Log { return s.logs }

func (s *JournaledState) AddRefund(delta int64) {
	s.j.append(refundChangedEntry{prev: s.refund})
	s.refund += delta
}

func (s *JournaledState) Refund() uint64 {
	if s.refund < 0 {
		return 0
	}
	return uint64(s.refund)
}

// SelfDestruct transfers beneficiary balance and marks from destructed,
// idempotent per spec.md §4.7.
func (s *JournaledState) SelfDestruct(from, to types.Address) (host.SelfDestructResult, error) {
	fromAcct, _ := s.getOrLoad(from)
	prevDestructed := fromAcct.hasFlag(FlagSelfDestructed)
	result := host.SelfDestructResult{
		HadValue:             !fromAcct.Info.Balance.IsZero(),
		PreviouslyDestructed: prevDestructed,
	}

	toAcct, toIsNew := s.getOrLoad(to)
	result.TargetExists = !toIsNew && !toAcct.hasFlag(FlagNonExistent)
	result.IsCold = !s.accessedAddresses[to]
	s.accessedAddresses[to] = true

	entry := accountDestroyedEntry{
		addr: from, target: to, hadValue: result.HadValue,
		prevDestructed: prevDestructed, prevBalance: fromAcct.Info.Balance,
		targetPrevBal: toAcct.Info.Balance,
	}
	s.j.append(entry)

	if result.HadValue && from != to {
		toAcct.Info.Balance.Add(&toAcct.Info.Balance, &fromAcct.Info.Balance)
		toAcct.clearFlag(FlagNonExistent)
		fromAcct.Info.Balance.Clear()
	}
	fromAcct.setFlag(FlagSelfDestructed)
	return result, nil
}

// HasSelfDestructed reports whether addr called SELFDESTRUCT this tx.
func (s *JournaledState) HasSelfDestructed(addr types.Address) bool {
	acct, ok := s.accounts[addr]
	return ok && acct.hasFlag(FlagSelfDestructed)
}

// MarkCreated records that addr was created during this transaction,
// needed by EIP-6780 to decide whether a same-tx SELFDESTRUCT actually
// deletes the account.
func (s *JournaledState) MarkCreated(addr types.Address) {
	s.createdThisTx[addr] = true
}

func (s *JournaledState) WasCreatedThisTx(addr types.Address) bool {
	return s.createdThisTx[addr]
}

// CreateAccountCheckpoint prepares newAddr for contract creation: verifies
// the caller can fund value, bumps the caller nonce (which survives a
// failed create), opens a checkpoint, collision-checks the target (must
// have nonce 0 and no code), marks it created, optionally seeds its nonce
// to 1 (EIP-161, SPURIOUS+), and transfers value. On ErrCreateCollision the
// returned checkpoint is already open and must be reverted by the caller.
func (s *JournaledState) CreateAccountCheckpoint(caller, newAddr types.Address, value *types.Word, nonceToOne bool) (int, error) {
	callerAcct, _ := s.getOrLoad(caller)
	if callerAcct.Info.Balance.Cmp(value) < 0 {
		return 0, ErrInsufficientBalance
	}
	if err := s.IncrementNonce(caller); err != nil {
		return 0, err
	}
	checkpoint := s.Checkpoint()

	// The created address is warmed (EIP-2929). The warming entry sits
	// above the checkpoint, so a revert of this frame unwinds it with
	// everything else and the address is cold again afterwards.
	if !s.accessedAddresses[newAddr] {
		s.accessedAddresses[newAddr] = true
		s.j.append(accountWarmedEntry{addr: newAddr})
	}

	acct, _ := s.getOrLoad(newAddr)
	if acct.Info.Nonce != 0 || len(acct.Info.Code) != 0 {
		return checkpoint, ErrCreateCollision
	}
	s.j.append(accountCreatedEntry{addr: newAddr})
	acct.clearFlag(FlagNonExistent)
	acct.setFlag(FlagCreated)
	s.createdThisTx[newAddr] = true
	if nonceToOne {
		s.j.append(nonceChangeEntry{addr: newAddr, prev: acct.Info.Nonce})
		acct.Info.Nonce = 1
	}
	if err := s.Transfer(caller, newAddr, value); err != nil {
		return checkpoint, err
	}
	return checkpoint, nil
}

// WarmAddress pre-warms addr without journaling, used by the orchestrator
// for the transaction-level access list (sender, target, precompiles, and
// EIP-2930 entries are warm before the first opcode runs and stay warm for
// the whole transaction).
func (s *JournaledState) WarmAddress(addr types.Address) {
	s.accessedAddresses[addr] = true
}

// WarmSlot pre-warms a storage slot from the transaction access list,
// loading it from the backing store so the warm flag has a slot to live on.
func (s *JournaledState) WarmSlot(addr types.Address, key types.StorageKey) {
	s.slot(addr, key).IsCold = false
}

// Checkpoint snapshots the journal length and bumps the call-depth
// counter (capped at 1024 by the orchestrator, not here).
func (s *JournaledState) Checkpoint() int {
	s.depth++
	return s.j.length()
}

// Commit leaves the journal untouched: its entries now belong to the
// enclosing frame.
func (s *JournaledState) Commit() {
	s.depth--
}

// Revert undoes every journal entry back to checkpoint, in reverse order.
func (s *JournaledState) Revert(checkpoint int) {
	s.j.revertTo(checkpoint, s)
	s.depth--
}

// Depth returns the current call-frame nesting depth.
func (s *JournaledState) Depth() int { return s.depth }

// Finalize applies end-of-transaction bookkeeping: selfdestructed accounts
// are pruned (pre-CANCUN) or merely balance-zeroed and left intact unless
// they were also created this tx (EIP-6780), and transient storage clears.
func (s *JournaledState) Finalize(isCancun bool) {
	for addr, acct := range s.accounts {
		if !acct.hasFlag(FlagSelfDestructed) {
			continue
		}
		if !isCancun || s.createdThisTx[addr] {
			delete(s.accounts, addr)
		}
	}
	s.ClearTransientStorage()
}
