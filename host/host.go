// Package host defines the interface the interpreter uses to query and
// mutate the world outside the current frame: balances, code, storage,
// logs, and self-destruct. Grounded on the teacher's StateDB/BlockContext/
// TxContext interfaces in core/vm/interpreter.go, narrowed to the subset
// spec.md's Host trait names.
package host

import "github.com/coreevm/coreevm/types"

// BlockEnv is the subset of block context visible to opcodes.
type BlockEnv struct {
	Number         uint64
	Timestamp      uint64
	Coinbase       types.Address
	GasLimit       uint64
	BaseFee        *types.Word
	PrevRandao     *types.Hash // set from MERGE+
	Difficulty     *types.Word // pre-MERGE
	BlobBaseFee    *types.Word // set from CANCUN+
}

// TxEnv is the subset of transaction context visible to opcodes.
type TxEnv struct {
	Origin      types.Address
	GasPrice    *types.Word
	BlobHashes  []types.Hash
}

// AccessResult reports whether an access was cold (first touch this
// transaction) per EIP-2929; it carries no value of its own.
type AccessResult struct {
	IsCold bool
}

// SstoreResult mirrors the {original, present, new} triple SSTORE needs to
// compute its gas/refund per EIP-2200/3529.
type SstoreResult struct {
	Original types.Word
	Present  types.Word
	New      types.Word
	IsCold   bool
}

// SelfDestructResult reports what SELFDESTRUCT actually did, needed for
// gas accounting (EIP-161/6780 new-account creation cost).
type SelfDestructResult struct {
	HadValue           bool
	TargetExists       bool
	IsCold             bool
	PreviouslyDestructed bool
}

// Host is everything the interpreter needs from the outside world for the
// duration of one Run(). Implementations own the journaled state; the
// interpreter never retains a Host reference beyond the frame it was
// loaned for.
type Host interface {
	BlockEnv() BlockEnv
	TxEnv() TxEnv
	ChainID() *types.Word

	Balance(addr types.Address) (*types.Word, bool)
	Code(addr types.Address) ([]byte, bool)
	CodeHash(addr types.Address) (types.Hash, bool)
	CodeSize(addr types.Address) (int, bool)
	BlockHash(number uint64) (types.Hash, bool)

	SLoad(addr types.Address, key types.StorageKey) (types.Word, bool)
	SLoadOriginal(addr types.Address, key types.StorageKey) types.Word
	SStore(addr types.Address, key types.StorageKey, newVal *types.Word) (SstoreResult, error)

	TLoad(addr types.Address, key types.StorageKey) types.Word
	TStore(addr types.Address, key types.StorageKey, val *types.Word)

	Log(log types.Log)

	// AddRefund adjusts the transaction-scoped refund counter; the delta
	// is journaled so a sub-call revert restores it exactly.
	AddRefund(delta int64)

	SelfDestruct(from, to types.Address) (SelfDestructResult, error)
	HasSelfDestructed(addr types.Address) bool

	LoadAccount(addr types.Address) (isCold bool, isNewAccount bool)

	Checkpoint() int
	Commit()
	Revert(checkpoint int)
}
