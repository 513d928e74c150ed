package vm

import (
	"github.com/coreevm/coreevm/types"
)

// Contract is the execution target for one frame: bytecode reference,
// addresses, value, and input calldata. Grounded on the teacher's
// Contract struct in core/vm/contract.go.
type Contract struct {
	CallerAddress types.Address
	Address       types.Address // target_address: code executes "as" this account
	CodeAddress   types.Address // the account whose code is running (differs under DELEGATECALL/CALLCODE)

	Code     *types.Bytecode
	Input    []byte
	Value    *types.Word
	IsStatic bool
}

// NewContract builds a Contract for a frame.
func NewContract(caller, address, codeAddress types.Address, code *types.Bytecode, input []byte, value *types.Word, isStatic bool) *Contract {
	return &Contract{
		CallerAddress: caller,
		Address:       address,
		CodeAddress:   codeAddress,
		Code:          code,
		Input:         input,
		Value:         value,
		IsStatic:      isStatic,
	}
}

// ValidJumpdest reports whether dest is a legal JUMP/JUMPI target in this
// contract's code.
func (c *Contract) ValidJumpdest(dest *types.Word) bool {
	if !dest.IsUint64() {
		return false
	}
	return c.Code.IsJumpdest(dest.Uint64())
}
