package evm

import (
	"github.com/coreevm/coreevm/types"
)

// AccessTuple is one EIP-2930 access-list entry.
type AccessTuple struct {
	Address     types.Address
	StorageKeys []types.Hash
}

// Tx is the transaction the orchestrator executes. To == nil means
// contract creation. Nonce is optional: when set, it is checked against
// the sender's current nonce.
type Tx struct {
	Caller   types.Address
	To       *types.Address
	Value    *types.Word
	Input    []byte
	GasLimit uint64
	GasPrice *types.Word
	Nonce    *uint64

	AccessList       []AccessTuple
	BlobHashes       []types.Hash
	MaxFeePerBlobGas *types.Word
}

func (tx *Tx) value() *types.Word {
	if tx.Value == nil {
		return types.NewWord()
	}
	return tx.Value
}

func (tx *Tx) gasPrice() *types.Word {
	if tx.GasPrice == nil {
		return types.NewWord()
	}
	return tx.GasPrice
}

// IsCreate reports whether this transaction deploys a contract.
func (tx *Tx) IsCreate() bool { return tx.To == nil }
