// Package memory implements the EVM's byte-addressable, checkpointed
// memory buffer.
package memory

import (
	"github.com/coreevm/coreevm/types"
)

// Memory is backed by a single growing byte buffer. Every call frame's
// interpreter owns its own Memory (vm.NewInterpreter allocates a fresh
// one); nested frames do not share a buffer. Checkpoint and Truncate can
// shrink the buffer back to a previously-reached length without
// reallocating, but neither the interpreter nor the orchestrator calls
// them.
type Memory struct {
	store         []byte
	lastGasCost   uint64
}

// New returns an empty Memory.
func New() *Memory {
	return &Memory{}
}

// Len returns the current buffer size in bytes.
func (m *Memory) Len() int { return len(m.store) }

// Checkpoint returns the current buffer length, to be restored later via
// Truncate.
func (m *Memory) Checkpoint() int { return len(m.store) }

// Truncate shrinks the buffer back to a previously recorded checkpoint.
// No program-visible operation shrinks the buffer.
func (m *Memory) Truncate(checkpoint int) {
	m.store = m.store[:checkpoint]
}

// WordCount returns ceil(size/32), the number of 32-byte words needed to
// cover size bytes.
func WordCount(size uint64) uint64 {
	return (size + 31) / 32
}

// Resize grows the buffer to at least size bytes, zero-padding the new
// tail. It never shrinks.
func (m *Memory) Resize(size uint64) {
	if uint64(len(m.store)) >= size {
		return
	}
	grown := make([]byte, size)
	copy(grown, m.store)
	m.store = grown
}

// Set writes value into store[offset:offset+len(value)]. Callers (the
// dispatcher's dynamic-gas phase) must have already resized the buffer to
// cover this range.
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	copy(m.store[offset:offset+size], value)
}

// SetWord writes a 256-bit word, big-endian, at offset.
func (m *Memory) SetWord(offset uint64, val *types.Word) {
	b := val.Bytes32()
	copy(m.store[offset:offset+32], b[:])
}

// SetByte writes a single byte at offset.
func (m *Memory) SetByte(offset uint64, b byte) {
	m.store[offset] = b
}

// Get returns a copy of store[offset:offset+size].
func (m *Memory) Get(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, m.store[offset:offset+size])
	return out
}

// GetPtr returns a direct slice into the buffer; callers must not retain
// it past the next mutating call.
func (m *Memory) GetPtr(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

// Word returns the 256-bit big-endian word at offset.
func (m *Memory) Word(offset uint64) *types.Word {
	return new(types.Word).SetBytes(m.store[offset : offset+32])
}

// Copy moves len bytes from src to dst within the buffer (supports
// overlap, as used by MCOPY/CODECOPY/CALLDATACOPY).
func (m *Memory) Copy(dst, src, length uint64) {
	if length == 0 {
		return
	}
	copy(m.store[dst:dst+length], m.store[src:src+length])
}

// Data returns the live buffer of this frame's memory. Callers must
// not retain it past the next mutating call.
func (m *Memory) Data() []byte { return m.store }

// ExpansionCost returns the gas cost of growing memory to newSize bytes,
// charged as the delta against the cost already paid for the buffer's
// current size: 3*w + w^2/512 where w is the word count, following
// spec's quadratic expansion formula.
func (m *Memory) ExpansionCost(newSize uint64) (uint64, uint64) {
	if newSize <= uint64(len(m.store)) {
		return 0, m.lastGasCost
	}
	w := WordCount(newSize)
	cost := 3*w + w*w/512
	delta := cost - m.lastGasCost
	m.lastGasCost = cost
	return delta, cost
}
