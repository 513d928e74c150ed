package state

import "github.com/coreevm/coreevm/types"

// BackingStore is the read-only persistent-state interface the journal
// consults on first touch of an account or slot. spec.md §1 scopes the
// actual database implementation out — this repo only depends on the
// interface, matching how the teacher's StateDB sits in front of an
// opaque trie/database it never constructs itself in core/vm.
type BackingStore interface {
	GetAccount(addr types.Address) (AccountInfo, bool)
	GetStorage(addr types.Address, key types.StorageKey) types.Word
}

// EmptyBackingStore is a BackingStore with no pre-existing accounts,
// useful for tests and for genesis-state construction.
type EmptyBackingStore struct{}

func (EmptyBackingStore) GetAccount(types.Address) (AccountInfo, bool) { return AccountInfo{}, false }
func (EmptyBackingStore) GetStorage(types.Address, types.StorageKey) types.Word {
	return types.Word{}
}
