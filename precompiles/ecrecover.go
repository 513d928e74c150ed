package precompiles

import (
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

// ecrecover (0x01) recovers the signer address from a 32-byte message hash
// and a {v, r, s} signature. Any malformed input yields empty output and
// no error, per the original Frontier behavior.
type ecrecover struct{}

func (c *ecrecover) RequiredGas(input []byte) uint64 { return 3000 }

var secp256k1N = secp256k1.S256().N

func (c *ecrecover) Run(input []byte) ([]byte, error) {
	input = padRight(input, 128)

	hash := input[0:32]
	v := new(big.Int).SetBytes(input[32:64])
	r := new(big.Int).SetBytes(input[64:96])
	s := new(big.Int).SetBytes(input[96:128])

	if v.BitLen() > 8 {
		return nil, nil
	}
	vByte := byte(v.Uint64())
	if vByte != 27 && vByte != 28 {
		return nil, nil
	}
	if !validateSignatureValues(r, s) {
		return nil, nil
	}

	// dcrec's compact format leads with the recovery-id byte.
	sig := make([]byte, 65)
	sig[0] = vByte
	r.FillBytes(sig[1:33])
	s.FillBytes(sig[33:65])

	pub, _, err := ecdsa.RecoverCompact(sig, hash)
	if err != nil {
		return nil, nil
	}

	// address = keccak256(pubkey[1:])[12:], left-padded to a word
	uncompressed := pub.SerializeUncompressed()
	h := sha3.NewLegacyKeccak256()
	h.Write(uncompressed[1:])
	var digest [32]byte
	h.Sum(digest[:0])

	result := make([]byte, 32)
	copy(result[12:], digest[12:])
	return result, nil
}

// validateSignatureValues checks r, s in [1, N-1]. The low-s rule applies
// to transaction signatures only, never to the precompile.
func validateSignatureValues(r, s *big.Int) bool {
	if r.Sign() <= 0 || s.Sign() <= 0 {
		return false
	}
	return r.Cmp(secp256k1N) < 0 && s.Cmp(secp256k1N) < 0
}
