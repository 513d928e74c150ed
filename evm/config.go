package evm

import (
	"github.com/coreevm/coreevm/state"
	"github.com/coreevm/coreevm/types"
	"github.com/coreevm/coreevm/vm"
)

// RefundPolicyFor maps a fork onto the SSTORE refund table the state
// layer applies: the flat 15000 clear refund through ISTANBUL-1, the
// EIP-2200 dirty-slot table through LONDON-1, and EIP-3529 afterward.
func RefundPolicyFor(spec vm.SpecId) state.RefundPolicy {
	switch {
	case spec >= vm.London:
		return state.RefundPolicyEIP3529
	case spec >= vm.Istanbul:
		return state.RefundPolicyEIP2200
	default:
		return state.RefundPolicyLegacy
	}
}

// MaxCallDepth is the nesting limit for call/create frames.
const MaxCallDepth = 1024

// Config carries the execution-environment knobs the orchestrator and
// validation steps consult, mirroring the teacher's core/vm.Config.
type Config struct {
	SpecID  vm.SpecId
	ChainID *types.Word

	// LimitContractSize overrides the EIP-170 deployed-code ceiling when
	// non-zero.
	LimitContractSize uint64

	// RawBytecode skips jump-dest analysis (perform_analysis=raw); any
	// JUMP/JUMPI in executed code then faults with InvalidJump.
	RawBytecode bool

	DisableEIP3607       bool
	DisableBalanceCheck  bool
	DisableBlockGasLimit bool
	DisableGasRefund     bool
}

func (c Config) maxCodeSize() uint64 {
	if c.LimitContractSize != 0 {
		return c.LimitContractSize
	}
	return 24576
}

func (c Config) chainID() *types.Word {
	if c.ChainID == nil {
		return types.WordFromUint64(1)
	}
	return c.ChainID
}
