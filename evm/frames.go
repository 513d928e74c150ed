package evm

import (
	"errors"

	"github.com/coreevm/coreevm/gas"
	"github.com/coreevm/coreevm/precompiles"
	"github.com/coreevm/coreevm/state"
	"github.com/coreevm/coreevm/types"
	"github.com/coreevm/coreevm/vm"
)

// frame is one entry of the orchestrator's call stack: the suspended (or
// running) interpreter plus the bookkeeping needed to settle it against
// its parent when it terminates.
type frame struct {
	ip         *vm.Interpreter
	checkpoint int

	isCreate    bool
	createdAddr types.Address

	// where the parent asked the child's return data to land in memory
	retOffset uint64
	retSize   uint64
}

// runLoop is spec.md §4.10's trampoline: run the top frame until it
// suspends or terminates, then either push a child frame or settle the
// terminated frame into its parent. Returns the root frame's terminal
// status, output, and gas left.
func (e *EVM) runLoop(root *frame) (vm.Status, []byte, uint64) {
	frames := []*frame{root}
	for {
		f := frames[len(frames)-1]
		f.ip.Run()

		if f.ip.Status == vm.StatusCallOrCreate {
			action := f.ip.NextAction
			f.ip.NextAction = vm.NextAction{}
			switch action.Kind {
			case vm.ActionCall:
				e.enterCall(f, action.Call, &frames)
			case vm.ActionCreate:
				e.enterCreate(f, action.Create, &frames)
			}
			continue
		}

		status, output, gasLeft := e.finishFrame(f)
		frames = frames[:len(frames)-1]
		if len(frames) == 0 {
			return status, output, gasLeft
		}

		parent := frames[len(frames)-1]
		parent.ip.ReturnGas(gasLeft)
		if f.isCreate {
			var created types.Word
			var ret []byte
			if status.IsSuccess() {
				created.SetBytes(f.createdAddr.Bytes())
			}
			if status == vm.StatusReverted {
				// RETURNDATA after CREATE is populated only when the init
				// code reverted.
				ret = output
			}
			parent.ip.ResumeCreate(&created, ret)
			continue
		}
		if status.IsSuccess() || status == vm.StatusReverted {
			n := uint64(len(output))
			if n > f.retSize {
				n = f.retSize
			}
			if n > 0 {
				parent.ip.Memory.Set(f.retOffset, n, output)
			}
			parent.ip.Resume(status.IsSuccess(), output)
		} else {
			// hard fault: push(0), no return data, forwarded gas burned
			parent.ip.Resume(false, nil)
		}
	}
}

// finishFrame commits or reverts the frame's checkpoint per its terminal
// status and, for creates, attempts the code deposit.
func (e *EVM) finishFrame(f *frame) (vm.Status, []byte, uint64) {
	status := f.ip.Status
	var output []byte
	if f.ip.NextAction.Kind == vm.ActionReturn && f.ip.NextAction.Return != nil {
		output = f.ip.NextAction.Return.Output
	}

	if f.isCreate && status.IsSuccess() {
		if depositStatus := e.deployCode(f, output); depositStatus != vm.StatusRunning {
			e.state.Revert(f.checkpoint)
			f.ip.Gas.BurnRemaining()
			return depositStatus, nil, 0
		}
		e.state.Commit()
		return status, output, f.ip.Gas.Available()
	}

	switch {
	case status.IsSuccess():
		e.state.Commit()
		return status, output, f.ip.Gas.Available()
	case status == vm.StatusReverted:
		e.state.Revert(f.checkpoint)
		return status, output, f.ip.Gas.Available()
	default:
		e.state.Revert(f.checkpoint)
		return status, nil, 0
	}
}

// deployCode validates and installs the code a successful init frame
// returned. StatusRunning means the deposit succeeded; any other value is
// the fault the create collapses into.
func (e *EVM) deployCode(f *frame, code []byte) vm.Status {
	spec := e.cfg.SpecID
	if spec >= vm.London && len(code) > 0 && code[0] == 0xEF {
		// EIP-3541: new code may not start with the reserved 0xEF byte.
		return vm.StatusCreateCodeSizeLimit
	}
	if spec >= vm.Spurious && uint64(len(code)) > e.cfg.maxCodeSize() {
		return vm.StatusCreateCodeSizeLimit
	}
	if err := f.ip.Gas.Charge(uint64(len(code)) * gas.CreateDataGas); err != nil {
		return vm.StatusOutOfGas
	}
	e.state.SetCode(f.createdAddr, code, vm.Keccak256(code))
	return vm.StatusRunning
}

// enterCall consumes a Call action: value transfer, precompile routing,
// and (for a real code target) pushing a child frame.
func (e *EVM) enterCall(parent *frame, a *vm.CallAction, frames *[]*frame) {
	if len(*frames) >= MaxCallDepth {
		// synthesized HALT: push(0), forwarded gas stays burned
		logger.Debug("call depth limit reached", "target", a.TargetAddress)
		parent.ip.Resume(false, nil)
		return
	}

	checkpoint := e.state.Checkpoint()

	if a.Value.Kind == vm.ValueTransfer && !a.Value.Amount.IsZero() {
		var err error
		if a.Scheme == vm.SchemeCall {
			err = e.state.Transfer(a.Caller, a.TargetAddress, a.Value.Amount)
		} else {
			// CALLCODE moves value onto the caller's own account: only the
			// solvency check is observable.
			bal, _ := e.state.Balance(a.Caller)
			if bal == nil || bal.Cmp(a.Value.Amount) < 0 {
				err = state.ErrInsufficientBalance
			}
		}
		if err != nil {
			e.state.Revert(checkpoint)
			parent.ip.ReturnGas(a.GasLimit)
			parent.ip.Resume(false, nil)
			return
		}
	}
	e.state.Touch(a.TargetAddress)

	if p, ok := precompiles.Lookup(precompileEra(e.cfg.SpecID), a.CodeAddress); ok {
		out, gasLeft, err := precompiles.Run(p, a.Input, a.GasLimit)
		if err != nil {
			e.state.Revert(checkpoint)
			parent.ip.Resume(false, nil)
			return
		}
		e.state.Commit()
		parent.ip.ReturnGas(gasLeft)
		n := uint64(len(out))
		if n > a.ReturnMemSize {
			n = a.ReturnMemSize
		}
		if n > 0 {
			parent.ip.Memory.Set(a.ReturnMemOffset, n, out)
		}
		parent.ip.Resume(true, out)
		return
	}

	code, _ := e.state.Code(a.CodeAddress)
	if len(code) == 0 {
		e.state.Commit()
		parent.ip.ReturnGas(a.GasLimit)
		parent.ip.Resume(true, nil)
		return
	}
	codeHash, _ := e.state.CodeHash(a.CodeAddress)

	contract := vm.NewContract(a.Caller, a.TargetAddress, a.CodeAddress, e.wrapCode(code, codeHash), a.Input, a.Value.Amount, a.IsStatic)
	ip := vm.NewInterpreter(contract, e.state, gas.NewTracker(a.GasLimit), e.cfg.SpecID, a.IsStatic, len(*frames))
	*frames = append(*frames, &frame{
		ip:         ip,
		checkpoint: checkpoint,
		retOffset:  a.ReturnMemOffset,
		retSize:    a.ReturnMemSize,
	})
}

// enterCreate consumes a Create action: address derivation, the account
// checkpoint (nonce bump, collision check, value transfer), and pushing
// the init-code frame.
func (e *EVM) enterCreate(parent *frame, a *vm.CreateAction, frames *[]*frame) {
	zero := types.NewWord()
	if len(*frames) >= MaxCallDepth {
		logger.Debug("create depth limit reached", "caller", a.Caller)
		parent.ip.ResumeCreate(zero, nil)
		return
	}

	var addr types.Address
	if a.Scheme == vm.SchemeCreate2 {
		addr = Create2Address(a.Caller, a.Salt, a.InitCode)
	} else {
		addr = CreateAddress(a.Caller, e.state.Nonce(a.Caller))
	}

	checkpoint, err := e.state.CreateAccountCheckpoint(a.Caller, addr, a.Value, e.cfg.SpecID >= vm.Spurious)
	if err != nil {
		if errors.Is(err, state.ErrCreateCollision) {
			// collision: the checkpoint is open, and the forwarded gas burns
			logger.Warn("create collision", "address", addr)
			e.state.Revert(checkpoint)
		} else {
			parent.ip.ReturnGas(a.GasLimit)
		}
		parent.ip.ResumeCreate(zero, nil)
		return
	}

	contract := vm.NewContract(a.Caller, addr, addr, e.wrapCode(a.InitCode, types.Hash{}), nil, a.Value, false)
	ip := vm.NewInterpreter(contract, e.state, gas.NewTracker(a.GasLimit), e.cfg.SpecID, false, len(*frames))
	*frames = append(*frames, &frame{
		ip:          ip,
		checkpoint:  checkpoint,
		isCreate:    true,
		createdAddr: addr,
	})
}

// wrapCode builds the executable Bytecode view, honoring the
// perform_analysis configuration.
func (e *EVM) wrapCode(code []byte, hash types.Hash) *types.Bytecode {
	if e.cfg.RawBytecode {
		return types.NewRawBytecode(code)
	}
	return types.NewBytecode(code, hash)
}

func precompileEra(spec vm.SpecId) precompiles.Era {
	switch {
	case spec >= vm.Berlin:
		return precompiles.EraBerlin
	case spec >= vm.Istanbul:
		return precompiles.EraIstanbul
	case spec >= vm.Byzantium:
		return precompiles.EraByzantium
	default:
		return precompiles.EraFrontier
	}
}
