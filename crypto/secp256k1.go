package crypto

import (
	"errors"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// secp256k1N is the order of the secp256k1 curve's base point.
var secp256k1N, _ = new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)

// secp256k1halfN is half the order, used for the EIP-2 low-S check.
var secp256k1halfN = new(big.Int).Div(secp256k1N, big.NewInt(2))

const (
	signatureLength  = 64 + 1 // R || S || V
	recoveryIDOffset = 64
)

// ValidateSignatureValues reports whether r, s are within the curve order and,
// for homestead and later, whether s is in the lower half of the order
// (EIP-2, which rules out signature malleability).
func ValidateSignatureValues(v byte, r, s *big.Int, homestead bool) bool {
	if r == nil || s == nil {
		return false
	}
	if v > 1 {
		return false
	}
	if r.Sign() <= 0 || s.Sign() <= 0 {
		return false
	}
	if r.Cmp(secp256k1N) >= 0 || s.Cmp(secp256k1N) >= 0 {
		return false
	}
	if homestead && s.Cmp(secp256k1halfN) > 0 {
		return false
	}
	return true
}

// Ecrecover recovers the 65-byte uncompressed public key that produced sig
// over hash. sig is the 65-byte [R || S || V] signature with V in {0, 1}.
func Ecrecover(hash, sig []byte) ([]byte, error) {
	if len(sig) != signatureLength {
		return nil, errors.New("crypto: invalid signature length")
	}
	if sig[recoveryIDOffset] > 1 {
		return nil, errors.New("crypto: invalid recovery id")
	}

	// decred's RecoverCompact expects the recovery byte first, biased by 27,
	// followed by the 64-byte R||S signature.
	compact := make([]byte, signatureLength)
	compact[0] = sig[recoveryIDOffset] + 27
	copy(compact[1:], sig[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, err
	}
	return pub.SerializeUncompressed(), nil
}
