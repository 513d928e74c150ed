// Package types holds the data model shared across the interpreter,
// journaled state, and orchestrator: words, addresses, hashes, bytecode
// and logs.
package types

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

const (
	HashLength    = 32
	AddressLength = 20
)

// Word is the EVM's 256-bit unsigned machine word. Arithmetic on it wraps
// modulo 2^256 by construction, matching the bit-exact semantics the
// interpreter's instruction families require.
type Word = uint256.Int

// NewWord returns a zero Word.
func NewWord() *Word { return new(uint256.Int) }

// WordFromUint64 returns a Word holding v.
func WordFromUint64(v uint64) *Word { return new(uint256.Int).SetUint64(v) }

// Address is a 20-byte account identifier.
type Address [AddressLength]byte

// BytesToAddress right-aligns b into an Address, truncating high-order
// bytes if b is longer than 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// Bytes returns a, copied into a fresh slice.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the 0x-prefixed lowercase hex encoding of a.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) String() string { return a.Hex() }

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool { return a == Address{} }

// Word widens a to a 256-bit word by zero-extension in the high 96 bits.
func (a Address) Word() *Word {
	return new(uint256.Int).SetBytes(a[:])
}

// Hash is a 32-byte digest, typically Keccak-256 of some preimage.
type Hash [HashLength]byte

// BytesToHash right-aligns b into a Hash.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// WordToHash re-interprets a Word's big-endian bytes as a Hash.
func WordToHash(w *Word) Hash {
	return Hash(w.Bytes32())
}

// Word re-interprets h's bytes as a 256-bit word.
func (h Hash) Word() *Word {
	return new(uint256.Int).SetBytes(h[:])
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

func (h Hash) IsZero() bool { return h == Hash{} }

// StorageKey identifies a slot uniquely within an address's namespace.
type StorageKey = Hash

// AddressSlot identifies a transient-storage cell: an (address, key) pair.
type AddressSlot struct {
	Address Address
	Key     StorageKey
}

func (as AddressSlot) String() string {
	return fmt.Sprintf("%s/%s", as.Address.Hex(), as.Key.Hex())
}
