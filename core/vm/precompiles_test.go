package vm

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/ethcore/evmcore/core/types"
)

func TestIsPrecompileCoversOneThroughNine(t *testing.T) {
	for i := byte(1); i <= 9; i++ {
		addr := types.BytesToAddress([]byte{i})
		if !IsPrecompile(addr) {
			t.Fatalf("address 0x%02x should be a registered precompile", i)
		}
	}
	if IsPrecompile(types.BytesToAddress([]byte{10})) {
		t.Fatal("address 0x0a (point evaluation) postdates Berlin and must not be registered")
	}
}

func TestIdentityPrecompileEchoesInput(t *testing.T) {
	p := &identityPrecompile{}
	in := []byte("hello world")
	out, err := p.Run(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("identity precompile must echo its input unchanged, got %x want %x", out, in)
	}
	if got := p.RequiredGas(in); got != 15+3 {
		t.Fatalf("RequiredGas(%d bytes) = %d, want %d", len(in), got, 15+3)
	}
}

func TestSha256PrecompileMatchesStdlib(t *testing.T) {
	p := &sha256Precompile{}
	in := []byte("the quick brown fox")
	out, err := p.Run(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := sha256.Sum256(in)
	if !bytes.Equal(out, want[:]) {
		t.Fatalf("sha256 precompile output mismatch: got %x want %x", out, want)
	}
}

func TestRunPrecompiledContractChargesGasAndRejectsShortfall(t *testing.T) {
	p := &identityPrecompile{}
	in := make([]byte, 32)
	cost := p.RequiredGas(in)

	out, remaining, err := RunPrecompiledContract(p, in, cost+100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remaining != 100 {
		t.Fatalf("remaining gas = %d, want 100", remaining)
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("unexpected output: %x", out)
	}

	_, _, err = RunPrecompiledContract(p, in, cost-1)
	if err != ErrOutOfGas {
		t.Fatalf("expected ErrOutOfGas on shortfall, got %v", err)
	}
}

// TestModExpGasUsesDivisorTwenty pins the EIP-198 (pre-EIP-2565) gas formula
// -- multComplexity * max(adjustedExpLen, 1) / 20 -- which is easy to
// transpose with the post-Berlin EIP-2565 divisor of 3.
func TestModExpGasUsesDivisorTwenty(t *testing.T) {
	p := &modExpPrecompile{}

	// base, exp, mod all 32 bytes; exponent = 2 so adjustedExpLen = 1 (bit
	// length of 2 is 2, minus 1 = 1). words = 4, multComplexity = 16.
	// gas = 16 * 1 / 20 = 0 -> floored to the 200 minimum.
	input := make([]byte, 96+96)
	putLen := func(off int, v uint64) {
		input[off+31] = byte(v)
	}
	putLen(0, 32)
	putLen(32, 32)
	putLen(64, 32)
	input[96+32+31] = 2 // exponent = 2, in the exponent's 32-byte field

	if got := p.RequiredGas(input); got != 200 {
		t.Fatalf("RequiredGas = %d, want the 200 gas floor", got)
	}
}

// TestModExpRunIsIdentityUnderExponentOne verifies a^1 mod m == a mod m for
// a simple, hand-checkable case.
func TestModExpRunIsIdentityUnderExponentOne(t *testing.T) {
	p := &modExpPrecompile{}
	input := make([]byte, 96)
	input[31] = 1 // baseLen = 1
	input[63] = 1 // expLen = 1
	input[95] = 1 // modLen = 1
	input = append(input, 5, 1, 7) // base=5, exp=1, mod=7

	out, err := p.Run(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0] != 5 {
		t.Fatalf("5^1 mod 7 = %v, want [5]", out)
	}
}

func TestBn256PairingEmptyInputIsTriviallyTrue(t *testing.T) {
	p := &bn256PairingPrecompile{}
	out, err := p.Run(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := make([]byte, 32)
	want[31] = 1
	if !bytes.Equal(out, want) {
		t.Fatalf("empty pairing check should report true, got %x", out)
	}
}

func TestBn256PairingRejectsMisalignedInput(t *testing.T) {
	p := &bn256PairingPrecompile{}
	_, err := p.Run(make([]byte, 100))
	if err == nil {
		t.Fatal("expected an error for input not a multiple of 192 bytes")
	}
}
