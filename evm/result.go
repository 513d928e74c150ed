package evm

import (
	"github.com/coreevm/coreevm/types"
	"github.com/coreevm/coreevm/vm"
)

// ExecutionResult is what a caller gets back from ExecuteTransaction.
// Status preserves the distinction between a user-initiated revert (output
// carries the REVERT data verbatim) and every engine-level halt (empty
// output, all forwarded gas burned).
type ExecutionResult struct {
	Status      vm.Status
	Output      []byte
	GasUsed     uint64
	GasRefunded uint64
	Logs        []types.Log

	// CreatedAddress is set when the transaction deployed a contract.
	CreatedAddress *types.Address
}

// Success reports whether the transaction ended in a successful terminal
// state (stopped, returned, self-destructed).
func (r *ExecutionResult) Success() bool {
	return r.Status.IsSuccess()
}
