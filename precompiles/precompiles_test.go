package precompiles

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/coreevm/coreevm/types"
)

func TestActiveSetGrowsByEra(t *testing.T) {
	if got := len(ActiveSet(EraFrontier)); got != 4 {
		t.Errorf("frontier set = %d, want 4", got)
	}
	if got := len(ActiveSet(EraByzantium)); got != 8 {
		t.Errorf("byzantium set = %d, want 8", got)
	}
	if got := len(ActiveSet(EraIstanbul)); got != 9 {
		t.Errorf("istanbul set = %d, want 9", got)
	}
	if got := len(ActiveSet(EraBerlin)); got != 9 {
		t.Errorf("berlin set = %d, want 9", got)
	}
	if _, ok := Lookup(EraFrontier, addr(9)); ok {
		t.Error("blake2F must not exist before Istanbul")
	}
}

func TestIdentity(t *testing.T) {
	c := &dataCopy{}
	in := []byte{1, 2, 3, 4, 5}
	out, err := c.Run(in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, in) {
		t.Errorf("identity = %x", out)
	}
	if got := c.RequiredGas(in); got != 18 { // 15 + 3*1
		t.Errorf("gas = %d, want 18", got)
	}
}

func TestSha256(t *testing.T) {
	c := &sha256hash{}
	in := []byte("abc")
	out, _ := c.Run(in)
	want := sha256.Sum256(in)
	if !bytes.Equal(out, want[:]) {
		t.Errorf("sha256 = %x", out)
	}
	if got := c.RequiredGas(in); got != 72 { // 60 + 12*1
		t.Errorf("gas = %d, want 72", got)
	}
}

func TestRipemd160OutputShape(t *testing.T) {
	c := &ripemd160hash{}
	out, _ := c.Run([]byte("abc"))
	if len(out) != 32 {
		t.Fatalf("output length = %d, want 32", len(out))
	}
	if !bytes.Equal(out[:12], make([]byte, 12)) {
		t.Error("digest must be left-padded into the word")
	}
}

func TestEcrecoverMalformedInputsYieldEmpty(t *testing.T) {
	c := &ecrecover{}
	cases := map[string][]byte{
		"empty":        nil,
		"bad v":        padRight([]byte{0x01}, 128),
		"zero r and s": make([]byte, 128),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := c.Run(in)
			if err != nil {
				t.Fatalf("ecrecover must not error: %v", err)
			}
			if len(out) != 0 {
				t.Errorf("output = %x, want empty", out)
			}
		})
	}
	if got := c.RequiredGas(nil); got != 3000 {
		t.Errorf("gas = %d, want 3000", got)
	}
}

func TestModExpSimple(t *testing.T) {
	c := &bigModExp{eip2565: true}
	// base=3, exp=5, mod=7 -> 3^5 mod 7 = 5
	in := make([]byte, 96)
	in[31] = 1  // baseLen
	in[63] = 1  // expLen
	in[95] = 1  // modLen
	in = append(in, 3, 5, 7)
	out, err := c.Run(in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte{5}) {
		t.Errorf("modexp = %x, want 05", out)
	}
	if got := c.RequiredGas(in); got != 200 {
		t.Errorf("gas = %d, want 200 (floor)", got)
	}
}

func TestModExpZeroModulus(t *testing.T) {
	c := &bigModExp{eip2565: true}
	in := make([]byte, 96)
	in[31] = 1
	in[63] = 1
	in[95] = 2
	in = append(in, 3, 5, 0, 0)
	out, err := c.Run(in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte{0, 0}) {
		t.Errorf("modexp mod 0 = %x, want zero-filled modLen bytes", out)
	}
}

func TestBn256AddIdentity(t *testing.T) {
	c := &bn256Add{gasCost: bn256AddGasIstanbul}
	// (0,0) + (0,0) = (0,0)
	out, err := c.Run(make([]byte, 128))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, make([]byte, 64)) {
		t.Errorf("infinity sum = %x", out)
	}
}

func TestBn256AddGeneratorDoubling(t *testing.T) {
	c := &bn256Add{gasCost: bn256AddGasIstanbul}
	mul := &bn256ScalarMul{gasCost: bn256MulGasIstanbul}

	// G + G must equal 2*G
	g := make([]byte, 64)
	g[31] = 1 // x = 1
	g[63] = 2 // y = 2 (the bn254 generator)

	sum, err := c.Run(append(append([]byte{}, g...), g...))
	if err != nil {
		t.Fatal(err)
	}

	mulIn := make([]byte, 96)
	copy(mulIn, g)
	mulIn[95] = 2
	doubled, err := mul.Run(mulIn)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(sum, doubled) {
		t.Errorf("G+G = %x, 2G = %x", sum, doubled)
	}
}

func TestBn256AddRejectsOffCurvePoint(t *testing.T) {
	c := &bn256Add{gasCost: bn256AddGasIstanbul}
	in := make([]byte, 128)
	in[31] = 1 // (1, 1) is not on y^2 = x^3 + 3
	in[63] = 1
	if _, err := c.Run(in); err == nil {
		t.Error("off-curve point must be rejected")
	}
}

func TestBn256PairingEmptyInputIsTrue(t *testing.T) {
	c := &bn256Pairing{baseGas: bn256PairingBaseIstanbul, perPairGas: bn256PairingPerPairIstanbul}
	out, err := c.Run(nil)
	if err != nil {
		t.Fatal(err)
	}
	want := make([]byte, 32)
	want[31] = 1
	if !bytes.Equal(out, want) {
		t.Errorf("empty pairing = %x, want ...01", out)
	}
	if _, err := c.Run(make([]byte, 100)); err == nil {
		t.Error("non-multiple-of-192 input must be rejected")
	}
}

func TestBlake2FValidation(t *testing.T) {
	c := &blake2F{}
	if _, err := c.Run(make([]byte, 212)); err == nil {
		t.Error("short input must be rejected")
	}
	bad := make([]byte, blake2FInputLength)
	bad[212] = 2
	if _, err := c.Run(bad); err == nil {
		t.Error("final flag outside {0,1} must be rejected")
	}

	// gas equals the big-endian rounds field
	in := make([]byte, blake2FInputLength)
	in[3] = 12
	if got := c.RequiredGas(in); got != 12 {
		t.Errorf("gas = %d, want 12", got)
	}
}

func TestRunChargesGas(t *testing.T) {
	c := &dataCopy{}
	in := []byte{1, 2, 3}
	out, left, err := Run(c, in, 100)
	if err != nil {
		t.Fatal(err)
	}
	if left != 82 { // 100 - 18
		t.Errorf("gas left = %d, want 82", left)
	}
	if !bytes.Equal(out, in) {
		t.Errorf("out = %x", out)
	}

	if _, _, err := Run(c, in, 10); err != ErrOutOfGas {
		t.Errorf("err = %v, want ErrOutOfGas", err)
	}
}

func TestAddressesCoverActiveSet(t *testing.T) {
	addrs := Addresses(EraBerlin)
	if len(addrs) != 9 {
		t.Fatalf("addresses = %d, want 9", len(addrs))
	}
	seen := make(map[types.Address]bool)
	for _, a := range addrs {
		seen[a] = true
	}
	for b := byte(1); b <= 9; b++ {
		if !seen[addr(b)] {
			t.Errorf("missing precompile 0x%02x", b)
		}
	}
}
