package crypto

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

var errInvalidCurvePoint = errors.New("crypto: invalid bn254 curve point")

// BN254Add returns the sum of two G1 points on the alt_bn128 (bn254) curve,
// each given as 64-byte big-endian (X, Y) coordinates. It backs the CALL at
// address 0x06 (EIP-196).
func BN254Add(p1x, p1y, p2x, p2y []byte) ([]byte, error) {
	a, err := decodeG1(p1x, p1y)
	if err != nil {
		return nil, err
	}
	b, err := decodeG1(p2x, p2y)
	if err != nil {
		return nil, err
	}
	var sum bn254.G1Affine
	sum.Add(&a, &b)
	return encodeG1(&sum), nil
}

// BN254ScalarMul returns scalar*P for a G1 point P, backing address 0x07.
func BN254ScalarMul(px, py []byte, scalar *big.Int) ([]byte, error) {
	a, err := decodeG1(px, py)
	if err != nil {
		return nil, err
	}
	var res bn254.G1Affine
	res.ScalarMultiplication(&a, scalar)
	return encodeG1(&res), nil
}

// BN254Pairing checks the pairing equation e(a_1,b_1)*...*e(a_k,b_k) == 1 over
// k (G1, G2) pairs, backing address 0x08 (EIP-197).
func BN254Pairing(g1x, g1y [][]byte, g2 [][4][]byte) (bool, error) {
	if len(g1x) != len(g1y) || len(g1x) != len(g2) {
		return false, errors.New("crypto: mismatched bn254 pairing input")
	}
	if len(g1x) == 0 {
		return true, nil
	}
	p := make([]bn254.G1Affine, len(g1x))
	q := make([]bn254.G2Affine, len(g1x))
	for i := range g1x {
		a, err := decodeG1(g1x[i], g1y[i])
		if err != nil {
			return false, err
		}
		p[i] = a
		b, err := decodeG2(g2[i])
		if err != nil {
			return false, err
		}
		q[i] = b
	}
	ok, err := bn254.PairingCheck(p, q)
	if err != nil {
		return false, err
	}
	return ok, nil
}

func decodeG1(x, y []byte) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	p.X.SetBytes(x)
	p.Y.SetBytes(y)
	if p.X.IsZero() && p.Y.IsZero() {
		return p, nil // point at infinity, represented as (0,0)
	}
	if !p.IsOnCurve() {
		return p, errInvalidCurvePoint
	}
	if !p.IsInSubGroup() {
		return p, errInvalidCurvePoint
	}
	return p, nil
}

func encodeG1(p *bn254.G1Affine) []byte {
	out := make([]byte, 64)
	xb := p.X.Bytes()
	yb := p.Y.Bytes()
	copy(out[0:32], xb[:])
	copy(out[32:64], yb[:])
	return out
}

// decodeG2 parses a G2 point from its four 32-byte coordinates, in the order
// Ethereum encodes them: x.c1, x.c0, y.c1, y.c0 (imaginary part first).
func decodeG2(coords [4][]byte) (bn254.G2Affine, error) {
	var p bn254.G2Affine
	p.X.A1.SetBytes(coords[0])
	p.X.A0.SetBytes(coords[1])
	p.Y.A1.SetBytes(coords[2])
	p.Y.A0.SetBytes(coords[3])
	if p.X.IsZero() && p.Y.IsZero() {
		return p, nil
	}
	if !p.IsOnCurve() {
		return p, errInvalidCurvePoint
	}
	if !p.IsInSubGroup() {
		return p, errInvalidCurvePoint
	}
	return p, nil
}
