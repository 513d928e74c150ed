package types

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// jumpdestCache memoizes a code hash's analyzed jump-dest set so the same
// deployed contract's bytecode isn't rescanned on every call. Grounded in
// kaleido-io-bor's interpreter.go, which keeps an equivalent lru.Cache for
// per-transaction interpreter state.
var jumpdestCache, _ = lru.New[Hash, []byte](4096)

// Bytecode is an immutable byte sequence plus its lazily-analyzed jump-dest
// set: a bit per offset marking a JUMPDEST opcode that is not itself inside
// a PUSHn immediate.
type Bytecode struct {
	code     []byte
	hash     Hash
	analyzed []byte // bitset, one bit per byte offset
}

// NewBytecode wraps raw code. hash should be the Keccak-256 of code; pass
// the zero Hash to disable jump-dest caching (e.g. for ephemeral init code).
func NewBytecode(code []byte, hash Hash) *Bytecode {
	bc := &Bytecode{code: code, hash: hash}
	if !hash.IsZero() {
		if bits, ok := jumpdestCache.Get(hash); ok {
			bc.analyzed = bits
		}
	}
	return bc
}

// NewRawBytecode wraps code without jump-dest analysis: the jump-dest set
// stays empty, so any JUMP/JUMPI against it faults. This is the
// perform_analysis=raw execution mode.
func NewRawBytecode(code []byte) *Bytecode {
	return &Bytecode{code: code, analyzed: make([]byte, (len(code)+7)/8+1)}
}

// Bytes returns the raw code.
func (b *Bytecode) Bytes() []byte { return b.code }

// Len returns the code length in bytes.
func (b *Bytecode) Len() int { return len(b.code) }

// At returns the opcode byte at pc, or 0 (STOP) past the end of code.
func (b *Bytecode) At(pc uint64) byte {
	if pc >= uint64(len(b.code)) {
		return 0
	}
	return b.code[pc]
}

// Slice returns code[start:start+size], zero-padded past the end of code.
func (b *Bytecode) Slice(start, size uint64) []byte {
	out := make([]byte, size)
	if start >= uint64(len(b.code)) {
		return out
	}
	end := start + size
	if end > uint64(len(b.code)) {
		end = uint64(len(b.code))
	}
	copy(out, b.code[start:end])
	return out
}

// ensureAnalyzed scans the code once, marking which offsets hold a
// JUMPDEST opcode (0x5b) that isn't inside a PUSHn immediate.
func (b *Bytecode) ensureAnalyzed() {
	if b.analyzed != nil {
		return
	}
	bits := make([]byte, (len(b.code)+7)/8+1)
	for pc := 0; pc < len(b.code); {
		op := b.code[pc]
		if op == 0x5b { // JUMPDEST
			bits[pc/8] |= 1 << uint(pc%8)
		}
		if op >= 0x60 && op <= 0x7f { // PUSH1..PUSH32
			pc += int(op-0x60) + 2
			continue
		}
		pc++
	}
	b.analyzed = bits
	if !b.hash.IsZero() {
		jumpdestCache.Add(b.hash, bits)
	}
}

// IsJumpdest reports whether pc is a valid JUMPDEST position.
func (b *Bytecode) IsJumpdest(pc uint64) bool {
	b.ensureAnalyzed()
	if pc >= uint64(len(b.code)) {
		return false
	}
	return b.analyzed[pc/8]&(1<<uint(pc%8)) != 0
}
