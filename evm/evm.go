// Package evm implements the outer trampoline of the execution core: it
// validates transactions, charges intrinsic gas, pre-warms the access
// list, pushes the root call frame, drives the interpreter's
// suspend/resume cycle across nested frames, and assembles the final
// result with refund settlement. Grounded on the teacher's
// EVM.Call/Create orchestration in core/vm/interpreter.go, restructured
// as an explicit frame stack per spec.md §4.10.
package evm

import (
	"github.com/coreevm/coreevm/gas"
	"github.com/coreevm/coreevm/internal/log"
	"github.com/coreevm/coreevm/precompiles"
	"github.com/coreevm/coreevm/state"
	"github.com/coreevm/coreevm/types"
	"github.com/coreevm/coreevm/vm"
)

var logger = log.New("evm")

// EVM orchestrates one transaction's execution against a journaled state.
type EVM struct {
	cfg   Config
	state *state.JournaledState
}

// New returns an orchestrator over js. The JournaledState carries the
// block and transaction environments; cfg selects the fork and the
// validation toggles.
func New(cfg Config, js *state.JournaledState) *EVM {
	return &EVM{cfg: cfg, state: js}
}

// State exposes the underlying journaled state, mainly for tests and for
// callers that need to inspect post-execution accounts.
func (e *EVM) State() *state.JournaledState { return e.state }

// ExecuteTransaction runs tx to completion: validation, intrinsic gas,
// access-list warming, the frame loop, and gas/fee settlement. A non-nil
// error means the transaction was rejected before touching state; every
// in-execution failure is reported through the result's Status instead.
func (e *EVM) ExecuteTransaction(tx *Tx) (*ExecutionResult, error) {
	spec := e.cfg.SpecID
	block := e.state.BlockEnv()

	// Block-context validation.
	if spec >= vm.Merge && block.PrevRandao == nil {
		return nil, ErrPrevRandaoNotSet
	}
	if spec >= vm.Cancun && block.BlobBaseFee == nil {
		return nil, ErrExcessBlobGasNotSet
	}
	if !e.cfg.DisableBlockGasLimit && tx.GasLimit > block.GasLimit {
		return nil, ErrGasLimitExceedsBlock
	}

	// Sender validation.
	if tx.Nonce != nil && *tx.Nonce != e.state.Nonce(tx.Caller) {
		return nil, ErrInvalidNonce
	}
	if !e.cfg.DisableEIP3607 {
		if code, _ := e.state.Code(tx.Caller); len(code) > 0 {
			return nil, ErrSenderHasCode
		}
	}
	upfront := new(types.Word).Mul(tx.gasPrice(), types.WordFromUint64(tx.GasLimit))
	if !e.cfg.DisableBalanceCheck {
		total := new(types.Word).Add(upfront, tx.value())
		bal, _ := e.state.Balance(tx.Caller)
		if bal == nil || bal.Cmp(total) < 0 {
			return nil, ErrInsufficientFunds
		}
	}
	if tx.IsCreate() && spec >= vm.Shanghai && uint64(len(tx.Input)) > 2*e.cfg.maxCodeSize() {
		return nil, ErrInitCodeSizeExceeded
	}

	// Intrinsic gas.
	intrinsic := intrinsicGas(tx, spec)
	if intrinsic > tx.GasLimit {
		return nil, ErrIntrinsicGasTooLow
	}

	if !e.cfg.DisableBalanceCheck {
		if err := e.state.SubBalance(tx.Caller, upfront); err != nil {
			return nil, ErrInsufficientFunds
		}
	}

	// Pre-warm the access list: sender, target, precompiles, every listed
	// slot, and (from SHANGHAI, EIP-3651) the coinbase.
	e.state.WarmAddress(tx.Caller)
	if tx.To != nil {
		e.state.WarmAddress(*tx.To)
	}
	if spec >= vm.Berlin {
		for _, p := range precompiles.Addresses(precompileEra(spec)) {
			e.state.WarmAddress(p)
		}
		for _, tuple := range tx.AccessList {
			e.state.WarmAddress(tuple.Address)
			for _, key := range tuple.StorageKeys {
				e.state.WarmSlot(tuple.Address, key)
			}
		}
	}
	if spec >= vm.Shanghai {
		e.state.WarmAddress(block.Coinbase)
	}

	execGas := tx.GasLimit - intrinsic
	var (
		status      vm.Status
		output      []byte
		gasLeft     uint64
		createdAddr *types.Address
	)

	if tx.IsCreate() {
		status, output, gasLeft, createdAddr = e.runRootCreate(tx, execGas)
	} else {
		status, output, gasLeft = e.runRootCall(tx, execGas)
	}

	// Settlement: refund cap, reimburse the sender, pay the coinbase.
	gasUsed := tx.GasLimit - gasLeft
	refund := uint64(0)
	if status.IsSuccess() && !e.cfg.DisableGasRefund {
		refund = e.state.Refund()
		if ceiling := gasUsed / vm.RefundQuotient(spec); refund > ceiling {
			refund = ceiling
		}
	}
	gasUsed -= refund

	if !e.cfg.DisableBalanceCheck {
		remaining := new(types.Word).Mul(tx.gasPrice(), types.WordFromUint64(tx.GasLimit-gasUsed))
		e.state.AddBalance(tx.Caller, remaining)
		fee := new(types.Word).Mul(tx.gasPrice(), types.WordFromUint64(gasUsed))
		e.state.AddBalance(block.Coinbase, fee)
	}

	e.state.Finalize(spec >= vm.Cancun)

	return &ExecutionResult{
		Status:         status,
		Output:         output,
		GasUsed:        gasUsed,
		GasRefunded:    refund,
		Logs:           e.state.Logs(),
		CreatedAddress: createdAddr,
	}, nil
}

// runRootCall executes a plain (non-create) transaction target.
func (e *EVM) runRootCall(tx *Tx, execGas uint64) (vm.Status, []byte, uint64) {
	checkpoint := e.state.Checkpoint()
	if err := e.state.IncrementNonce(tx.Caller); err != nil {
		e.state.Revert(checkpoint)
		return vm.StatusOutOfGas, nil, 0
	}
	if err := e.state.Transfer(tx.Caller, *tx.To, tx.value()); err != nil {
		e.state.Revert(checkpoint)
		return vm.StatusOutOfGas, nil, 0
	}
	e.state.Touch(*tx.To)

	if p, ok := precompiles.Lookup(precompileEra(e.cfg.SpecID), *tx.To); ok {
		out, left, err := precompiles.Run(p, tx.Input, execGas)
		if err != nil {
			e.state.Revert(checkpoint)
			return vm.StatusOutOfGas, nil, 0
		}
		e.state.Commit()
		return vm.StatusReturned, out, left
	}

	code, _ := e.state.Code(*tx.To)
	if len(code) == 0 {
		e.state.Commit()
		return vm.StatusStopped, nil, execGas
	}
	codeHash, _ := e.state.CodeHash(*tx.To)

	contract := vm.NewContract(tx.Caller, *tx.To, *tx.To, e.wrapCode(code, codeHash), tx.Input, tx.value(), false)
	ip := vm.NewInterpreter(contract, e.state, gas.NewTracker(execGas), e.cfg.SpecID, false, 0)
	return e.runLoop(&frame{ip: ip, checkpoint: checkpoint})
}

// runRootCreate executes a contract-creation transaction.
func (e *EVM) runRootCreate(tx *Tx, execGas uint64) (vm.Status, []byte, uint64, *types.Address) {
	addr := CreateAddress(tx.Caller, e.state.Nonce(tx.Caller))
	e.state.WarmAddress(addr)

	checkpoint, err := e.state.CreateAccountCheckpoint(tx.Caller, addr, tx.value(), e.cfg.SpecID >= vm.Spurious)
	if err != nil {
		if checkpoint != 0 || err == state.ErrCreateCollision {
			e.state.Revert(checkpoint)
		}
		logger.Warn("root create failed", "address", addr, "err", err)
		return vm.StatusCreateCollision, nil, 0, nil
	}

	contract := vm.NewContract(tx.Caller, addr, addr, e.wrapCode(tx.Input, types.Hash{}), nil, tx.value(), false)
	ip := vm.NewInterpreter(contract, e.state, gas.NewTracker(execGas), e.cfg.SpecID, false, 0)
	status, output, gasLeft := e.runLoop(&frame{ip: ip, checkpoint: checkpoint, isCreate: true, createdAddr: addr})

	if status.IsSuccess() {
		return status, output, gasLeft, &addr
	}
	return status, output, gasLeft, nil
}
