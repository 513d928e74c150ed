// Package state implements the journaled world-state layer: accounts,
// storage, transient storage, and an undo-log journal supporting
// checkpoint/commit/revert. Grounded on the teacher's core/state package
// (journal.go, access_list.go), generalized from *big.Int balances to
// uint256-backed types.Word.
package state

import "github.com/coreevm/coreevm/types"

// StatusFlag is a bit in an Account's status_flags set.
type StatusFlag uint8

const (
	FlagLoaded StatusFlag = 1 << iota
	FlagCreated
	FlagTouched
	FlagCold
	FlagSelfDestructed
	FlagNonExistent
)

// StorageSlot mirrors spec.md's {original_value, present_value, is_cold}.
type StorageSlot struct {
	Original types.Word
	Present  types.Word
	IsCold   bool
}

// AccountInfo is the durable, backing-store-persisted part of an account.
type AccountInfo struct {
	Balance  types.Word
	Nonce    uint64
	CodeHash types.Hash
	Code     []byte
}

// Account is the in-memory, journaled view of one address's state.
type Account struct {
	Info    AccountInfo
	Storage map[types.StorageKey]*StorageSlot
	Flags   StatusFlag
}

func newAccount() *Account {
	return &Account{Storage: make(map[types.StorageKey]*StorageSlot)}
}

func (a *Account) hasFlag(f StatusFlag) bool { return a.Flags&f != 0 }
func (a *Account) setFlag(f StatusFlag)      { a.Flags |= f }
func (a *Account) clearFlag(f StatusFlag)    { a.Flags &^= f }

// IsEmpty reports EIP-161 emptiness: zero balance, zero nonce, no code.
func (a *Account) IsEmpty() bool {
	return a.Info.Nonce == 0 && a.Info.Balance.IsZero() && len(a.Info.Code) == 0
}
