package state

import "github.com/coreevm/coreevm/types"

// journalEntry is one undo record. Grounded on the teacher's
// core/state/journal.go journalEntry interface (revert(s) method) and its
// exact entry roster, generalized to spec.md §3's named tagged variant
// (AccountLoaded, AccountWarmed, ..., AccountDestroyed).
type journalEntry interface {
	revert(s *JournaledState)
}

type accountLoadedEntry struct{ addr types.Address }

func (e accountLoadedEntry) revert(s *JournaledState) {
	delete(s.accounts, e.addr)
}

type accountWarmedEntry struct{ addr types.Address }

func (e accountWarmedEntry) revert(s *JournaledState) {
	s.accessedAddresses[e.addr] = false
}

type accountTouchedEntry struct{ addr types.Address }

func (e accountTouchedEntry) revert(s *JournaledState) {
	if acct, ok := s.accounts[e.addr]; ok {
		acct.clearFlag(FlagTouched)
	}
}

type balanceChangeEntry struct {
	addr types.Address
	prev types.Word
}

func (e balanceChangeEntry) revert(s *JournaledState) {
	s.accounts[e.addr].Info.Balance = e.prev
}

type nonceChangeEntry struct {
	addr types.Address
	prev uint64
}

func (e nonceChangeEntry) revert(s *JournaledState) {
	s.accounts[e.addr].Info.Nonce = e.prev
}

type codeChangeEntry struct {
	addr         types.Address
	prevCode     []byte
	prevCodeHash types.Hash
}

func (e codeChangeEntry) revert(s *JournaledState) {
	acct := s.accounts[e.addr]
	acct.Info.Code = e.prevCode
	acct.Info.CodeHash = e.prevCodeHash
}

type storageWarmedEntry struct {
	addr types.Address
	key  types.StorageKey
}

func (e storageWarmedEntry) revert(s *JournaledState) {
	if acct, ok := s.accounts[e.addr]; ok {
		if slot, ok := acct.Storage[e.key]; ok {
			slot.IsCold = true
		}
	}
}

type storageChangedEntry struct {
	addr        types.Address
	key         types.StorageKey
	prevPresent types.Word
}

func (e storageChangedEntry) revert(s *JournaledState) {
	s.accounts[e.addr].Storage[e.key].Present = e.prevPresent
}

type transientSetEntry struct {
	addr types.Address
	key  types.StorageKey
	prev types.Word
}

func (e transientSetEntry) revert(s *JournaledState) {
	k := types.AddressSlot{Address: e.addr, Key: e.key}
	if e.prev.IsZero() {
		delete(s.transient, k)
		return
	}
	s.transient[k] = e.prev
}

type accountCreatedEntry struct{ addr types.Address }

func (e accountCreatedEntry) revert(s *JournaledState) {
	delete(s.accounts, e.addr)
}

type accountDestroyedEntry struct {
	addr             types.Address
	target           types.Address
	hadValue         bool
	prevDestructed   bool
	prevBalance      types.Word
	targetPrevBal    types.Word
}

func (e accountDestroyedEntry) revert(s *JournaledState) {
	acct := s.accounts[e.addr]
	if !e.prevDestructed {
		acct.clearFlag(FlagSelfDestructed)
	}
	acct.Info.Balance = e.prevBalance
	if e.hadValue {
		s.accounts[e.target].Info.Balance = e.targetPrevBal
	}
}

type refundChangedEntry struct{ prev int64 }

func (e refundChangedEntry) revert(s *JournaledState) {
	s.refund = e.prev
}

type logAppendedEntry struct{ prevLen int }

func (e logAppendedEntry) revert(s *JournaledState) {
	s.logs = s.logs[:e.prevLen]
}

// journal is an append-only list of undo entries, grounded on the
// teacher's journal{entries, snapshots, nextID}; it keeps no snapshot
// table of its own: a checkpoint is the entry count at the time it was
// taken.
type journal struct {
	entries []journalEntry
}

func (j *journal) append(e journalEntry) {
	j.entries = append(j.entries, e)
}

func (j *journal) length() int { return len(j.entries) }

// revertTo walks entries from the tail down to length, applying each
// entry's inverse action, then truncates.
func (j *journal) revertTo(length int, s *JournaledState) {
	for i := len(j.entries) - 1; i >= length; i-- {
		j.entries[i].revert(s)
	}
	j.entries = j.entries[:length]
}
