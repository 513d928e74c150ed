// Package precompiles implements the native contracts at the fixed low
// addresses 0x01..0x09 and the per-fork registry the orchestrator routes
// calls through. The dispatch shape follows the teacher's
// core/vm/precompiles.go; the cryptographic primitives themselves are
// imported (ECDSA recovery via dcrec/secp256k1, BN254 via gnark-crypto,
// hashes via the crypto stdlib and x/crypto), except the BLAKE2b
// compression function F, which blake2f.go implements directly.
package precompiles

import (
	"errors"

	"github.com/coreevm/coreevm/types"
)

// Contract is the interface every precompiled contract satisfies:
// cost first, then execution against the raw input.
type Contract interface {
	RequiredGas(input []byte) uint64
	Run(input []byte) ([]byte, error)
}

// ErrOutOfGas is returned when the forwarded gas cannot cover the
// precompile's required cost; the caller burns the entire forwarded
// amount, matching a regular frame fault.
var ErrOutOfGas = errors.New("precompile: out of gas")

var (
	// Frontier through Spurious Dragon: the original four.
	frontierSet = map[types.Address]Contract{
		addr(1): &ecrecover{},
		addr(2): &sha256hash{},
		addr(3): &ripemd160hash{},
		addr(4): &dataCopy{},
	}

	// Byzantium adds modexp and the BN254 trio (EIP-196/197/198).
	byzantiumSet = extend(frontierSet, map[types.Address]Contract{
		addr(5): &bigModExp{},
		addr(6): &bn256Add{gasCost: bn256AddGasByzantium},
		addr(7): &bn256ScalarMul{gasCost: bn256MulGasByzantium},
		addr(8): &bn256Pairing{baseGas: bn256PairingBaseByzantium, perPairGas: bn256PairingPerPairByzantium},
	})

	// Istanbul reprices BN254 (EIP-1108) and adds BLAKE2 F (EIP-152).
	istanbulSet = extend(byzantiumSet, map[types.Address]Contract{
		addr(6): &bn256Add{gasCost: bn256AddGasIstanbul},
		addr(7): &bn256ScalarMul{gasCost: bn256MulGasIstanbul},
		addr(8): &bn256Pairing{baseGas: bn256PairingBaseIstanbul, perPairGas: bn256PairingPerPairIstanbul},
		addr(9): &blake2F{},
	})

	// Berlin reprices modexp (EIP-2565).
	berlinSet = extend(istanbulSet, map[types.Address]Contract{
		addr(5): &bigModExp{eip2565: true},
	})
)

func addr(b byte) types.Address {
	return types.BytesToAddress([]byte{b})
}

func extend(base, overlay map[types.Address]Contract) map[types.Address]Contract {
	out := make(map[types.Address]Contract, len(base)+len(overlay))
	for a, c := range base {
		out[a] = c
	}
	for a, c := range overlay {
		out[a] = c
	}
	return out
}

// Era selects a precompile set; the orchestrator maps its SpecId onto one.
type Era int

const (
	EraFrontier Era = iota
	EraByzantium
	EraIstanbul
	EraBerlin
)

// ActiveSet returns the precompile registry for era.
func ActiveSet(era Era) map[types.Address]Contract {
	switch {
	case era >= EraBerlin:
		return berlinSet
	case era >= EraIstanbul:
		return istanbulSet
	case era >= EraByzantium:
		return byzantiumSet
	default:
		return frontierSet
	}
}

// Lookup returns the precompile at address for era, if any.
func Lookup(era Era, address types.Address) (Contract, bool) {
	c, ok := ActiveSet(era)[address]
	return c, ok
}

// Addresses returns every precompile address active for era, for
// transaction-level access-list pre-warming (EIP-2929).
func Addresses(era Era) []types.Address {
	set := ActiveSet(era)
	out := make([]types.Address, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	return out
}

// Run executes the precompile at address with the forwarded gas, returning
// the output and the gas left. A cost overrun returns ErrOutOfGas with
// zero gas left; an execution error also burns everything, matching the
// frame-fault policy of spec.md §7.
func Run(c Contract, input []byte, gasLimit uint64) ([]byte, uint64, error) {
	cost := c.RequiredGas(input)
	if cost > gasLimit {
		return nil, 0, ErrOutOfGas
	}
	out, err := c.Run(input)
	if err != nil {
		return nil, 0, err
	}
	return out, gasLimit - cost, nil
}

// wordCount returns ceil(size/32).
func wordCount(size int) uint64 {
	return uint64((size + 31) / 32)
}

// padRight pads data with zeros on the right to reach at least minLen.
func padRight(data []byte, minLen int) []byte {
	if len(data) >= minLen {
		return data
	}
	padded := make([]byte, minLen)
	copy(padded, data)
	return padded
}

// getDataSlice extracts data[offset:offset+length], zero-padding past the
// end of data.
func getDataSlice(data []byte, offset, length uint64) []byte {
	if length == 0 {
		return nil
	}
	result := make([]byte, length)
	if offset >= uint64(len(data)) {
		return result
	}
	end := offset + length
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	copy(result, data[offset:end])
	return result
}
