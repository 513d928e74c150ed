package precompiles

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
)

// BN254 (alt_bn128) precompiles, EIP-196/197. Curve arithmetic comes from
// gnark-crypto; this file only parses the EVM's uncompressed big-endian
// point encoding and applies the per-fork gas schedule (EIP-1108 repriced
// all three at ISTANBUL).

const (
	bn256AddGasByzantium         = 500
	bn256AddGasIstanbul          = 150
	bn256MulGasByzantium         = 40000
	bn256MulGasIstanbul          = 6000
	bn256PairingBaseByzantium    = 100000
	bn256PairingBaseIstanbul     = 45000
	bn256PairingPerPairByzantium = 80000
	bn256PairingPerPairIstanbul  = 34000
)

var (
	errBn256InvalidPoint  = errors.New("bn256: point not on curve")
	errBn256InvalidCoord  = errors.New("bn256: coordinate exceeds field modulus")
	errBn256PairingLength = errors.New("bn256: pairing input not a multiple of 192 bytes")
)

func parseFieldElement(in []byte) (fp.Element, error) {
	var e fp.Element
	v := new(big.Int).SetBytes(in)
	if v.Cmp(fp.Modulus()) >= 0 {
		return e, errBn256InvalidCoord
	}
	e.SetBigInt(v)
	return e, nil
}

// parseG1 decodes 64 bytes of (x, y). The all-zero encoding is the point
// at infinity.
func parseG1(in []byte) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	in = padRight(in, 64)
	x, err := parseFieldElement(in[0:32])
	if err != nil {
		return p, err
	}
	y, err := parseFieldElement(in[32:64])
	if err != nil {
		return p, err
	}
	p.X, p.Y = x, y
	if p.X.IsZero() && p.Y.IsZero() {
		return p, nil // infinity
	}
	if !p.IsOnCurve() {
		return p, errBn256InvalidPoint
	}
	return p, nil
}

// parseG2 decodes 128 bytes of (x_im, x_re, y_im, y_re) -- the EVM puts
// the imaginary coefficient first.
func parseG2(in []byte) (bn254.G2Affine, error) {
	var p bn254.G2Affine
	in = padRight(in, 128)
	xi, err := parseFieldElement(in[0:32])
	if err != nil {
		return p, err
	}
	xr, err := parseFieldElement(in[32:64])
	if err != nil {
		return p, err
	}
	yi, err := parseFieldElement(in[64:96])
	if err != nil {
		return p, err
	}
	yr, err := parseFieldElement(in[96:128])
	if err != nil {
		return p, err
	}
	p.X.A1, p.X.A0 = xi, xr
	p.Y.A1, p.Y.A0 = yi, yr
	if p.X.A0.IsZero() && p.X.A1.IsZero() && p.Y.A0.IsZero() && p.Y.A1.IsZero() {
		return p, nil // infinity
	}
	if !p.IsOnCurve() || !p.IsInSubGroup() {
		return p, errBn256InvalidPoint
	}
	return p, nil
}

func encodeG1(p *bn254.G1Affine) []byte {
	out := make([]byte, 64)
	if p.IsInfinity() {
		return out
	}
	x := p.X.Bytes()
	y := p.Y.Bytes()
	copy(out[0:32], x[:])
	copy(out[32:64], y[:])
	return out
}

// bn256Add (0x06).
type bn256Add struct {
	gasCost uint64
}

func (c *bn256Add) RequiredGas(input []byte) uint64 { return c.gasCost }

func (c *bn256Add) Run(input []byte) ([]byte, error) {
	input = padRight(input, 128)
	p1, err := parseG1(input[0:64])
	if err != nil {
		return nil, err
	}
	p2, err := parseG1(input[64:128])
	if err != nil {
		return nil, err
	}
	var sum bn254.G1Affine
	sum.Add(&p1, &p2)
	return encodeG1(&sum), nil
}

// bn256ScalarMul (0x07).
type bn256ScalarMul struct {
	gasCost uint64
}

func (c *bn256ScalarMul) RequiredGas(input []byte) uint64 { return c.gasCost }

func (c *bn256ScalarMul) Run(input []byte) ([]byte, error) {
	input = padRight(input, 96)
	p, err := parseG1(input[0:64])
	if err != nil {
		return nil, err
	}
	k := new(big.Int).SetBytes(input[64:96])
	var res bn254.G1Affine
	res.ScalarMultiplication(&p, k)
	return encodeG1(&res), nil
}

// bn256Pairing (0x08) evaluates the product of pairings over k (G1, G2)
// pairs and outputs a word holding 1 when it equals the identity.
type bn256Pairing struct {
	baseGas    uint64
	perPairGas uint64
}

func (c *bn256Pairing) RequiredGas(input []byte) uint64 {
	return c.baseGas + c.perPairGas*uint64(len(input)/192)
}

func (c *bn256Pairing) Run(input []byte) ([]byte, error) {
	if len(input)%192 != 0 {
		return nil, errBn256PairingLength
	}
	var g1s []bn254.G1Affine
	var g2s []bn254.G2Affine
	for off := 0; off < len(input); off += 192 {
		p, err := parseG1(input[off : off+64])
		if err != nil {
			return nil, err
		}
		q, err := parseG2(input[off+64 : off+192])
		if err != nil {
			return nil, err
		}
		if p.IsInfinity() || q.IsInfinity() {
			continue // identity contribution
		}
		g1s = append(g1s, p)
		g2s = append(g2s, q)
	}
	out := make([]byte, 32)
	if len(g1s) == 0 {
		out[31] = 1
		return out, nil
	}
	ok, err := bn254.PairingCheck(g1s, g2s)
	if err != nil {
		return nil, err
	}
	if ok {
		out[31] = 1
	}
	return out, nil
}
