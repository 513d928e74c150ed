package evm

import (
	"github.com/coreevm/coreevm/vm"
)

// Transaction-level intrinsic gas constants.
const (
	txGas                    = 21000
	txCreateGas              = 32000
	txDataZeroGas            = 4
	txDataNonZeroGasFrontier = 68
	txDataNonZeroGasEIP2028  = 16 // ISTANBUL
	accessListAddressGas     = 2400
	accessListStorageKeyGas  = 1900
	initCodeWordGas          = 2 // EIP-3860, SHANGHAI
)

// intrinsicGas is the fixed charge taken before the first opcode runs:
// the 21000 base, the create surcharge, per-byte calldata costs, the
// EIP-2930 access-list warmups, and the EIP-3860 initcode word cost.
func intrinsicGas(tx *Tx, spec vm.SpecId) uint64 {
	g := uint64(txGas)
	if tx.IsCreate() {
		g += txCreateGas
	}

	nonZeroGas := uint64(txDataNonZeroGasFrontier)
	if spec >= vm.Istanbul {
		nonZeroGas = txDataNonZeroGasEIP2028
	}
	for _, b := range tx.Input {
		if b == 0 {
			g += txDataZeroGas
		} else {
			g += nonZeroGas
		}
	}

	if spec >= vm.Berlin {
		for _, tuple := range tx.AccessList {
			g += accessListAddressGas
			g += accessListStorageKeyGas * uint64(len(tuple.StorageKeys))
		}
	}

	if tx.IsCreate() && spec >= vm.Shanghai {
		words := (uint64(len(tx.Input)) + 31) / 32
		g += initCodeWordGas * words
	}
	return g
}
