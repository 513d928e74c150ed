package vm

import (
	"errors"

	"github.com/coreevm/coreevm/gas"
	"github.com/coreevm/coreevm/host"
	"github.com/coreevm/coreevm/internal/log"
	"github.com/coreevm/coreevm/memory"
	"github.com/coreevm/coreevm/stack"
	"github.com/coreevm/coreevm/types"
)

var logger = log.New("vm")

// Interpreter runs one call frame's bytecode against a Host. It is a
// synchronous coroutine: Run() returns whenever status stops being
// "running", and the orchestrator resumes it (after applying a sub-call's
// result) by clearing the action and calling Run() again. Grounded on the
// teacher's EVM.Run in core/vm/interpreter.go, split out of the EVM
// orchestrator type per spec.md's separation of interpreter vs.
// orchestrator.
type Interpreter struct {
	Contract *Contract
	Host     host.Host
	Stack    *stack.Stack
	Memory   *memory.Memory
	Gas      *gas.Tracker

	PC           uint64
	ReturnData   []byte
	Status       Status
	NextAction   NextAction
	SpecID       SpecId
	callGasTemp  uint64
	IsStatic   bool
	Depth      int

	table *JumpTable
}

// NewInterpreter constructs an Interpreter for one frame.
func NewInterpreter(contract *Contract, h host.Host, g *gas.Tracker, spec SpecId, isStatic bool, depth int) *Interpreter {
	return &Interpreter{
		Contract: contract,
		Host:     h,
		Stack:    stack.New(),
		Memory:   memory.New(),
		Gas:      g,
		SpecID:   spec,
		IsStatic: isStatic,
		Depth:    depth,
		table:    SelectJumpTable(spec),
	}
}

// Resume clears a consumed call suspension and injects the sub-call's
// result before the orchestrator re-enters Run(): the success flag is
// pushed and the full return data becomes RETURNDATA.
func (ip *Interpreter) Resume(success bool, returnData []byte) {
	ip.ReturnData = returnData
	var flag types.Word
	if success {
		flag.SetUint64(1)
	}
	ip.Stack.PushUnchecked(&flag)
	ip.Status = StatusRunning
	ip.PC++
}

// ResumeCreate is the CREATE/CREATE2 variant of Resume: the pushed word is
// the deployed address on success and zero otherwise, and RETURNDATA is
// populated only when the init code reverted.
func (ip *Interpreter) ResumeCreate(created *types.Word, returnData []byte) {
	ip.ReturnData = returnData
	ip.Stack.PushUnchecked(created)
	ip.Status = StatusRunning
	ip.PC++
}

// ReturnGas credits unused sub-call gas back to this frame's tracker.
func (ip *Interpreter) ReturnGas(amount uint64) {
	ip.Gas.ReturnGas(amount)
}

// Run executes opcodes until the frame suspends or terminates, following
// spec.md §4.4's dispatch loop exactly.
func (ip *Interpreter) Run() {
	ip.Status = StatusRunning
	for ip.Status == StatusRunning {
		op := OpCode(ip.Contract.Code.At(ip.PC))
		meta := ip.table[op]
		if meta == nil {
			ip.fail(StatusInvalidOpcode, ErrInvalidOpcode)
			return
		}
		if ip.Stack.Len() < meta.minStack {
			ip.fail(StatusStackUnderflow, &stack.ErrStackUnderflow{Len: ip.Stack.Len(), Required: meta.minStack})
			return
		}
		if meta.stackDelta > 0 && ip.Stack.Len()+meta.stackDelta > stack.Limit {
			ip.fail(StatusStackOverflow, &stack.ErrStackOverflow{Len: ip.Stack.Len()})
			return
		}
		if meta.writes && ip.IsStatic {
			ip.fail(StatusCallWithValueNotAllowedInStatic, ErrWriteProtection)
			return
		}

		if err := ip.Gas.Charge(meta.constantGas); err != nil {
			ip.fail(StatusOutOfGas, err)
			return
		}

		if meta.memorySize != nil {
			if size, ok := meta.memorySize(ip); ok {
				if delta, _ := ip.Memory.ExpansionCost(size); delta > 0 {
					if err := ip.Gas.Charge(delta); err != nil {
						ip.fail(StatusOutOfGas, err)
						return
					}
				}
			}
		}

		if meta.dynamicGas != nil {
			cost, err := meta.dynamicGas(ip)
			if err != nil {
				ip.fail(StatusOutOfGas, err)
				return
			}
			if err := ip.Gas.Charge(cost); err != nil {
				ip.fail(StatusOutOfGas, err)
				return
			}
		}

		if meta.memorySize != nil {
			if size, ok := meta.memorySize(ip); ok {
				ip.Memory.Resize(size)
			}
		}

		advance := !op.IsPush() && op != JUMP && op != JUMPI && !meta.halts

		if err := meta.execute(ip); err != nil {
			ip.failFromErr(err)
			return
		}

		if meta.halts || ip.Status == StatusCallOrCreate {
			return
		}
		if advance {
			ip.PC++
		}
	}
}

func (ip *Interpreter) fail(status Status, err error) {
	logger.Debug("frame fault", "status", status.String(), "pc", ip.PC, "err", err)
	ip.Status = status
	ip.Gas.BurnRemaining()
}

func (ip *Interpreter) failFromErr(err error) {
	switch {
	case errors.Is(err, ErrExecutionReverted):
		ip.Status = StatusReverted
	case errors.Is(err, ErrInvalidJump):
		ip.fail(StatusInvalidJump, err)
	case errors.Is(err, ErrWriteProtection):
		ip.fail(StatusCallWithValueNotAllowedInStatic, err)
	case errors.Is(err, ErrInvalidOffset):
		ip.fail(StatusInvalidOffset, err)
	case errors.Is(err, ErrCreateCodeSizeLimit):
		ip.fail(StatusCreateCodeSizeLimit, err)
	case errors.As(err, new(*gas.ErrOutOfGas)):
		ip.fail(StatusOutOfGas, err)
	default:
		ip.fail(StatusInvalidOpcode, err)
	}
}
