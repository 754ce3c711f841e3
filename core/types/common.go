// Package types defines the core data structures shared by the EVM
// interpreter: account addresses, hashes, logs and access lists.
package types

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	HashLength    = 32
	AddressLength = 20
	BloomLength   = 256
)

// Hash represents the 32-byte Keccak256 hash of data.
type Hash [HashLength]byte

// Address represents the 20-byte address of an Ethereum account.
type Address [AddressLength]byte

// Bloom represents a 2048-bit bloom filter over log topics and addresses.
type Bloom [BloomLength]byte

// BytesToHash converts bytes to Hash, left-padding if shorter than 32 bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash converts a hex string to Hash.
func HexToHash(s string) Hash {
	return BytesToHash(fromHex(s))
}

// Bytes returns the byte representation of the hash.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the hex string representation of the hash.
func (h Hash) Hex() string { return fmt.Sprintf("0x%x", h[:]) }

// SetBytes sets the hash from a byte slice, left-padding if necessary.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// IsZero returns whether the hash is all zeros.
func (h Hash) IsZero() bool { return h == Hash{} }

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// Big returns the hash interpreted as a big-endian unsigned integer.
func (h Hash) Big() *big.Int { return new(big.Int).SetBytes(h[:]) }

// BytesToAddress converts bytes to Address, left-padding if shorter than 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress converts a hex string to Address.
func HexToAddress(s string) Address {
	return BytesToAddress(fromHex(s))
}

// Bytes returns the byte representation of the address.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the hex string representation of the address.
func (a Address) Hex() string { return fmt.Sprintf("0x%x", a[:]) }

// SetBytes sets the address from a byte slice, taking the rightmost 20 bytes.
func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// IsZero returns whether the address is all zeros.
func (a Address) IsZero() bool { return a == Address{} }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// Hash returns the address left-padded to 32 bytes, as pushed on the stack.
func (a Address) Hash() Hash { return BytesToHash(a[:]) }

// Account is a snapshot of the state held by the world-state overlay for a
// single address: balance, nonce, code and storage are all addressed through
// the HostContext rather than this struct directly, which exists only as a
// convenience for callers that want a point-in-time view.
type Account struct {
	Nonce    uint64
	Balance  *big.Int
	CodeHash Hash
}

// Log is a single event emitted by a LOG0..LOG4 instruction.
type Log struct {
	Address Address
	Topics  []Hash
	Data    []byte
}

// AccessTuple is a single address and the storage slots within it that a
// transaction declares it will access (EIP-2930).
type AccessTuple struct {
	Address     Address
	StorageKeys []Hash
}

// AccessList is the set of addresses and storage slots pre-declared by a
// transaction, used to pre-warm the EIP-2929 access tracker.
type AccessList []AccessTuple

var (
	// EmptyCodeHash is Keccak256 of the empty byte string -- the code hash of
	// every externally-owned account and of accounts with no deployed code.
	EmptyCodeHash = HexToHash("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
)

func fromHex(s string) []byte {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
