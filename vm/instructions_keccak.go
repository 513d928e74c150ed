package vm

import (
	"golang.org/x/crypto/sha3"

	"github.com/coreevm/coreevm/gas"
	"github.com/coreevm/coreevm/types"
)

func opKeccak256(ip *Interpreter) error {
	offset, size := ip.Stack.Pop2()
	data := ip.Memory.GetPtr(offset.Uint64(), size.Uint64())
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var sum [32]byte
	h.Sum(sum[:0])
	var r types.Word
	r.SetBytes(sum[:])
	ip.Stack.PushUnchecked(&r)
	return nil
}

func memKeccak256(ip *Interpreter) (uint64, bool) {
	offset := ip.Stack.Back(0)
	size := ip.Stack.Back(1)
	return memRange(offset, size)
}

func gasKeccak256(ip *Interpreter) (uint64, error) {
	size := ip.Stack.Back(1)
	words := (size.Uint64() + 31) / 32
	return words * gas.Keccak256Word, nil
}

// Keccak256 hashes data, used by the orchestrator for CREATE/CREATE2
// address derivation.
func Keccak256(data ...[]byte) types.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var sum [32]byte
	h.Sum(sum[:0])
	return types.Hash(sum)
}

// maxMemoryRange is the largest size memRange reports: 2^32-1 words, whose
// expansion cost (about 3.6e16 gas) still fits ExpansionCost's arithmetic.
const maxMemoryRange = 0x1FFFFFFFE0

// memRange is a shared memorySizeFunc helper: returns offset+size if
// size>0, else (0,false) meaning no expansion is required.
func memRange(offset, size *types.Word) (uint64, bool) {
	if size.IsZero() {
		return 0, false
	}
	if !offset.IsUint64() || !size.IsUint64() || offset.Uint64() > maxMemoryRange || size.Uint64() > maxMemoryRange-offset.Uint64() {
		return maxMemoryRange, true // expansion charge exceeds the gas limit and faults as OutOfGas
	}
	return offset.Uint64() + size.Uint64(), true
}
