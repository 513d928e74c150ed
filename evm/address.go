package evm

import (
	"github.com/coreevm/coreevm/types"
	"github.com/coreevm/coreevm/vm"
)

// CreateAddress derives the CREATE deployment address:
// keccak256(rlp([sender, nonce]))[12:].
func CreateAddress(sender types.Address, nonce uint64) types.Address {
	payload := wrapRLPList(append(encodeRLPBytes(sender.Bytes()), encodeRLPUint(nonce)...))
	h := vm.Keccak256(payload)
	return types.BytesToAddress(h[12:])
}

// Create2Address derives the CREATE2 deployment address:
// keccak256(0xff ++ sender ++ salt ++ keccak256(initCode))[12:].
func Create2Address(sender types.Address, salt *types.Word, initCode []byte) types.Address {
	codeHash := vm.Keccak256(initCode)
	saltBytes := salt.Bytes32()
	h := vm.Keccak256([]byte{0xff}, sender.Bytes(), saltBytes[:], codeHash.Bytes())
	return types.BytesToAddress(h[12:])
}

// Minimal RLP encoding, enough for the [sender, nonce] list above. The
// full codec is out of scope; these helpers cover only byte strings under
// 56 bytes and unsigned integers, which is all address derivation needs.

func encodeRLPBytes(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	return append([]byte{0x80 + byte(len(b))}, b...)
}

func encodeRLPUint(v uint64) []byte {
	if v == 0 {
		return []byte{0x80}
	}
	return encodeRLPBytes(uintToMinBytes(v))
}

func wrapRLPList(payload []byte) []byte {
	if len(payload) < 56 {
		return append([]byte{0xc0 + byte(len(payload))}, payload...)
	}
	lenBytes := uintToMinBytes(uint64(len(payload)))
	out := append([]byte{0xf7 + byte(len(lenBytes))}, lenBytes...)
	return append(out, payload...)
}

func uintToMinBytes(v uint64) []byte {
	var buf [8]byte
	n := 0
	for i := 7; i >= 0; i-- {
		buf[7-i] = byte(v >> (uint(i) * 8))
	}
	for n < 8 && buf[n] == 0 {
		n++
	}
	return buf[n:]
}
