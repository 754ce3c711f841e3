package vm

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math/big"

	"golang.org/x/crypto/ripemd160"

	"github.com/ethcore/evmcore/core/types"
	"github.com/ethcore/evmcore/crypto"
)

// PrecompiledContract is the interface every native contract at addresses
// 0x01-0x09 implements.
type PrecompiledContract interface {
	RequiredGas(input []byte) uint64
	Run(input []byte) ([]byte, error)
}

// PrecompiledContractsBerlin is the precompile set active from Frontier
// through Berlin. Addresses 0x0a+ (point evaluation and later) postdate
// Berlin and are intentionally absent.
var PrecompiledContractsBerlin = map[types.Address]PrecompiledContract{
	types.BytesToAddress([]byte{1}): &ecrecoverPrecompile{},
	types.BytesToAddress([]byte{2}): &sha256Precompile{},
	types.BytesToAddress([]byte{3}): &ripemd160Precompile{},
	types.BytesToAddress([]byte{4}): &identityPrecompile{},
	types.BytesToAddress([]byte{5}): &modExpPrecompile{},
	types.BytesToAddress([]byte{6}): &bn256AddPrecompile{},
	types.BytesToAddress([]byte{7}): &bn256ScalarMulPrecompile{},
	types.BytesToAddress([]byte{8}): &bn256PairingPrecompile{},
	types.BytesToAddress([]byte{9}): &blake2FPrecompile{},
}

// IsPrecompile reports whether addr names one of the registered precompiles.
func IsPrecompile(addr types.Address) bool {
	_, ok := PrecompiledContractsBerlin[addr]
	return ok
}

// RunPrecompiledContract charges RequiredGas against gas and executes p,
// returning the remaining gas. A precompile that reverts consumes all gas
// supplied to it, matching the Yellow Paper's treatment of Exceptional Halt
// within a precompile.
func RunPrecompiledContract(p PrecompiledContract, input []byte, gas uint64) ([]byte, uint64, error) {
	gasCost := p.RequiredGas(input)
	if gas < gasCost {
		return nil, 0, ErrOutOfGas
	}
	gas -= gasCost
	output, err := p.Run(input)
	if err != nil {
		return nil, 0, err
	}
	return output, gas, nil
}

// --- ecrecover (0x01) ---

type ecrecoverPrecompile struct{}

func (c *ecrecoverPrecompile) RequiredGas(input []byte) uint64 { return 3000 }

func (c *ecrecoverPrecompile) Run(input []byte) ([]byte, error) {
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
	if !crypto.ValidateSignatureValues(vByte-27, r, s, true) {
		return nil, nil
	}

	sig := make([]byte, 65)
	rBytes, sBytes := r.Bytes(), s.Bytes()
	copy(sig[32-len(rBytes):32], rBytes)
	copy(sig[64-len(sBytes):64], sBytes)
	sig[64] = vByte - 27

	pub, err := crypto.Ecrecover(hash, sig)
	if err != nil {
		return nil, nil
	}

	addr := crypto.Keccak256(pub[1:])
	result := make([]byte, 32)
	copy(result[12:], addr[12:])
	return result, nil
}

// --- sha256 (0x02) ---

type sha256Precompile struct{}

func (c *sha256Precompile) RequiredGas(input []byte) uint64 {
	return 60 + 12*wordCount(len(input))
}

func (c *sha256Precompile) Run(input []byte) ([]byte, error) {
	h := sha256.Sum256(input)
	return h[:], nil
}

// --- ripemd160 (0x03) ---

type ripemd160Precompile struct{}

func (c *ripemd160Precompile) RequiredGas(input []byte) uint64 {
	return 600 + 120*wordCount(len(input))
}

func (c *ripemd160Precompile) Run(input []byte) ([]byte, error) {
	h := ripemd160.New()
	h.Write(input)
	digest := h.Sum(nil)
	result := make([]byte, 32)
	copy(result[12:], digest)
	return result, nil
}

// --- identity (0x04) ---

type identityPrecompile struct{}

func (c *identityPrecompile) RequiredGas(input []byte) uint64 {
	return 15 + 3*wordCount(len(input))
}

func (c *identityPrecompile) Run(input []byte) ([]byte, error) {
	out := make([]byte, len(input))
	copy(out, input)
	return out, nil
}

// --- modexp (0x05), EIP-198 gas schedule (pre-EIP-2565) ---

type modExpPrecompile struct{}

func (c *modExpPrecompile) RequiredGas(input []byte) uint64 {
	input = padRight(input, 96)

	baseLen := new(big.Int).SetBytes(input[0:32]).Uint64()
	expLen := new(big.Int).SetBytes(input[32:64]).Uint64()
	modLen := new(big.Int).SetBytes(input[64:96]).Uint64()

	adjExpLen := adjustedExpLen(expLen, baseLen, input[96:])

	maxLen := baseLen
	if modLen > maxLen {
		maxLen = modLen
	}
	words := (maxLen + 7) / 8
	multComplexity := words * words

	gas := multComplexity * maxUint64(adjExpLen, 1) / 20
	if gas < 200 {
		gas = 200
	}
	return gas
}

func (c *modExpPrecompile) Run(input []byte) ([]byte, error) {
	input = padRight(input, 96)

	baseLen := new(big.Int).SetBytes(input[0:32])
	expLen := new(big.Int).SetBytes(input[32:64])
	modLen := new(big.Int).SetBytes(input[64:96])

	if baseLen.BitLen() > 32 || expLen.BitLen() > 32 || modLen.BitLen() > 32 {
		return nil, errors.New("modexp: length overflow")
	}
	bLen, eLen, mLen := baseLen.Uint64(), expLen.Uint64(), modLen.Uint64()

	data := input[96:]
	base := getDataSlice(data, 0, bLen)
	exp := getDataSlice(data, bLen, eLen)
	mod := getDataSlice(data, bLen+eLen, mLen)

	modVal := new(big.Int).SetBytes(mod)
	if modVal.Sign() == 0 {
		return make([]byte, mLen), nil
	}

	baseVal := new(big.Int).SetBytes(base)
	expVal := new(big.Int).SetBytes(exp)
	result := new(big.Int).Exp(baseVal, expVal, modVal)

	out := result.Bytes()
	if uint64(len(out)) < mLen {
		padded := make([]byte, mLen)
		copy(padded[mLen-uint64(len(out)):], out)
		return padded, nil
	}
	return out[:mLen], nil
}

func wordCount(size int) uint64 {
	if size == 0 {
		return 0
	}
	return uint64((size + 31) / 32)
}

func padRight(data []byte, minLen int) []byte {
	if len(data) >= minLen {
		return data
	}
	padded := make([]byte, minLen)
	copy(padded, data)
	return padded
}

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

func adjustedExpLen(expLen, baseLen uint64, data []byte) uint64 {
	if expLen <= 32 {
		expData := getDataSlice(data, baseLen, expLen)
		exp := new(big.Int).SetBytes(expData)
		if exp.Sign() == 0 {
			return 0
		}
		return uint64(exp.BitLen() - 1)
	}
	firstExpData := getDataSlice(data, baseLen, 32)
	firstExp := new(big.Int).SetBytes(firstExpData)
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

// --- bn256Add (0x06), EIP-196, real gnark-crypto arithmetic ---

type bn256AddPrecompile struct{}

func (c *bn256AddPrecompile) RequiredGas(input []byte) uint64 { return 150 }

func (c *bn256AddPrecompile) Run(input []byte) ([]byte, error) {
	input = padRight(input, 128)
	out, err := crypto.BN254Add(input[0:32], input[32:64], input[64:96], input[96:128])
	if err != nil {
		return nil, err
	}
	return out, nil
}

// --- bn256ScalarMul (0x07), EIP-196 ---

type bn256ScalarMulPrecompile struct{}

func (c *bn256ScalarMulPrecompile) RequiredGas(input []byte) uint64 { return 6000 }

func (c *bn256ScalarMulPrecompile) Run(input []byte) ([]byte, error) {
	input = padRight(input, 96)
	scalar := new(big.Int).SetBytes(input[64:96])
	out, err := crypto.BN254ScalarMul(input[0:32], input[32:64], scalar)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// --- bn256Pairing (0x08), EIP-197 ---

type bn256PairingPrecompile struct{}

func (c *bn256PairingPrecompile) RequiredGas(input []byte) uint64 {
	k := uint64(len(input)) / 192
	return 45000 + 34000*k
}

func (c *bn256PairingPrecompile) Run(input []byte) ([]byte, error) {
	if len(input)%192 != 0 {
		return nil, errors.New("bn256 pairing: invalid input length")
	}
	k := len(input) / 192
	g1x := make([][]byte, k)
	g1y := make([][]byte, k)
	g2 := make([][4][]byte, k)
	for i := 0; i < k; i++ {
		off := i * 192
		g1x[i] = input[off : off+32]
		g1y[i] = input[off+32 : off+64]
		g2[i] = [4][]byte{
			input[off+64 : off+96],
			input[off+96 : off+128],
			input[off+128 : off+160],
			input[off+160 : off+192],
		}
	}
	ok, err := crypto.BN254Pairing(g1x, g1y, g2)
	if err != nil {
		return nil, err
	}
	result := make([]byte, 32)
	if ok {
		result[31] = 1
	}
	return result, nil
}

// --- blake2f (0x09), EIP-152 ---

type blake2FPrecompile struct{}

func (c *blake2FPrecompile) RequiredGas(input []byte) uint64 {
	if len(input) < 4 {
		return 0
	}
	return uint64(binary.BigEndian.Uint32(input[:4]))
}

func (c *blake2FPrecompile) Run(input []byte) ([]byte, error) {
	if len(input) != 213 {
		return nil, errors.New("blake2f: invalid input length (expected 213 bytes)")
	}

	rounds := binary.BigEndian.Uint32(input[:4])

	finalByte := input[212]
	if finalByte != 0 && finalByte != 1 {
		return nil, errors.New("blake2f: invalid final block indicator")
	}
	final := finalByte == 1

	var h [8]uint64
	for i := 0; i < 8; i++ {
		h[i] = binary.LittleEndian.Uint64(input[4+i*8 : 4+(i+1)*8])
	}
	var m [16]uint64
	for i := 0; i < 16; i++ {
		m[i] = binary.LittleEndian.Uint64(input[68+i*8 : 68+(i+1)*8])
	}
	t0 := binary.LittleEndian.Uint64(input[196:204])
	t1 := binary.LittleEndian.Uint64(input[204:212])

	crypto.Blake2F(&h, m, [2]uint64{t0, t1}, final, rounds)

	result := make([]byte, 64)
	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint64(result[i*8:(i+1)*8], h[i])
	}
	return result, nil
}
