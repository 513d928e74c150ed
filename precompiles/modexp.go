package precompiles

import (
	"errors"
	"math/big"
)

// bigModExp (0x05) computes base^exp mod m over arbitrary-length operands
// (EIP-198). Gas follows the original quadratic-complexity table until
// BERLIN, then EIP-2565's cheaper formula.
type bigModExp struct {
	eip2565 bool
}

func (c *bigModExp) RequiredGas(input []byte) uint64 {
	input = padRight(input, 96)

	baseLen := new(big.Int).SetBytes(input[0:32]).Uint64()
	expLen := new(big.Int).SetBytes(input[32:64]).Uint64()
	modLen := new(big.Int).SetBytes(input[64:96]).Uint64()

	adjExpLen := adjustedExpLen(expLen, baseLen, input[96:])

	maxLen := baseLen
	if modLen > maxLen {
		maxLen = modLen
	}

	if c.eip2565 {
		words := (maxLen + 7) / 8
		multComplexity := words * words
		g := multComplexity * maxUint64(adjExpLen, 1) / 3
		if g < 200 {
			g = 200
		}
		return g
	}
	return multComplexityEIP198(maxLen) * maxUint64(adjExpLen, 1) / 20
}

// multComplexityEIP198 is the original piecewise quadratic from EIP-198.
func multComplexityEIP198(x uint64) uint64 {
	switch {
	case x <= 64:
		return x * x
	case x <= 1024:
		return x*x/4 + 96*x - 3072
	default:
		return x*x/16 + 480*x - 199680
	}
}

func (c *bigModExp) Run(input []byte) ([]byte, error) {
	input = padRight(input, 96)

	baseLen := new(big.Int).SetBytes(input[0:32])
	expLen := new(big.Int).SetBytes(input[32:64])
	modLen := new(big.Int).SetBytes(input[64:96])

	if baseLen.BitLen() > 32 || expLen.BitLen() > 32 || modLen.BitLen() > 32 {
		return nil, errors.New("modexp: length overflow")
	}
	bLen := baseLen.Uint64()
	eLen := expLen.Uint64()
	mLen := modLen.Uint64()

	data := input[96:]
	base := getDataSlice(data, 0, bLen)
	exp := getDataSlice(data, bLen, eLen)
	mod := getDataSlice(data, bLen+eLen, mLen)

	modVal := new(big.Int).SetBytes(mod)
	if modVal.Sign() == 0 {
		return make([]byte, mLen), nil
	}

	result := new(big.Int).Exp(new(big.Int).SetBytes(base), new(big.Int).SetBytes(exp), modVal)

	out := make([]byte, mLen)
	result.FillBytes(out)
	return out, nil
}

// adjustedExpLen computes the exponent-length term of the modexp gas
// formula: the bit position of the exponent's leading one, plus 8 gas per
// byte past the first 32.
func adjustedExpLen(expLen, baseLen uint64, data []byte) uint64 {
	if expLen <= 32 {
		exp := new(big.Int).SetBytes(getDataSlice(data, baseLen, expLen))
		if exp.Sign() == 0 {
			return 0
		}
		return uint64(exp.BitLen() - 1)
	}
	firstExp := new(big.Int).SetBytes(getDataSlice(data, baseLen, 32))
	adj := uint64(0)
	if firstExp.Sign() > 0 {
		adj = uint64(firstExp.BitLen() - 1)
	}
	return adj + 8*(expLen-32)
}

func maxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
