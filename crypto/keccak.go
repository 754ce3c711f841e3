// Package crypto provides the cryptographic primitives the interpreter
// treats as opaque building blocks: hashing, signature recovery and the
// curve operations backing the alt_bn128 precompiles, plus the BLAKE2b F
// compression function. Blake2F is implemented directly in this package;
// every other function wires a well-known third-party library and adapts its
// result to the EVM's calling convention.
package crypto

import (
	"github.com/ethcore/evmcore/core/types"
	"golang.org/x/crypto/sha3"
)

// Keccak256 calculates the Keccak-256 hash of the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash calculates Keccak-256 and returns it as a types.Hash.
func Keccak256Hash(data ...[]byte) types.Hash {
	return types.BytesToHash(Keccak256(data...))
}
