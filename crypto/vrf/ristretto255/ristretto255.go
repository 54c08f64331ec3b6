// Package ristretto255 implements an ECVRF over the ristretto255 group with
// SHA-512. Messages are mapped to the group with the one-way map from 64
// uniform bytes, which runs in constant time.
package ristretto255

import (
	"bytes"
	"crypto/sha512"
	"fmt"
	"io"

	"github.com/Bren2010/vrf/crypto/vrf"
	"github.com/Bren2010/vrf/internal/mem"
	"github.com/gtank/ristretto255"
)

const (
	suiteString = 0x04

	// SecretKeySize is the size of an encoded private scalar.
	SecretKeySize = 32
	// PublicKeySize is the size of an encoded public key.
	PublicKeySize = 32
	// ProofSize is the size of a proof: Gamma, a truncated challenge and s.
	ProofSize = 32 + 16 + 32
	// OutputSize is the size of the VRF output.
	OutputSize = 64

	// maxKeyAttempts bounds how many candidate scalars GenerateKey samples
	// before giving up on the entropy source.
	maxKeyAttempts = 64
)

func hash(front byte, data ...[]byte) []byte {
	h := sha512.New()
	h.Write([]byte{suiteString, front})
	for _, d := range data {
		h.Write(d)
	}
	h.Write([]byte{0x00})
	return h.Sum(nil)
}

func encodeToCurve(salt, m []byte) *ristretto255.Element {
	H, err := ristretto255.NewIdentityElement().SetUniformBytes(hash(0x01, salt, m))
	if err != nil {
		panic(err)
	}
	return H
}

func generateNonce(x *ristretto255.Scalar, hStr []byte) *ristretto255.Scalar {
	xStr := x.Bytes()
	defer mem.Zero(xStr)

	k, err := ristretto255.NewScalar().SetUniformBytes(hash(0x04, xStr, hStr))
	if err != nil {
		panic(err)
	}
	return k
}

// generateChallenge returns the challenge as a 32-byte scalar encoding with
// only the lower 16 bytes set.
func generateChallenge(points ...*ristretto255.Element) []byte {
	encoded := make([][]byte, len(points))
	for i, p := range points {
		encoded[i] = p.Bytes()
	}
	cStr := hash(0x02, encoded...)
	for i := 16; i < 32; i++ {
		cStr[i] = 0
	}
	return cStr[:32]
}

func proofToHash(Gamma *ristretto255.Element) []byte {
	return hash(0x03, Gamma.Bytes())
}

type proof struct {
	Gamma *ristretto255.Element
	c     *ristretto255.Scalar
	cStr  []byte
	s     *ristretto255.Scalar
}

func decodeProof(raw []byte) (*proof, error) {
	if len(raw) != ProofSize {
		return nil, fmt.Errorf("%w: proof is %d bytes, want %d", vrf.ErrMalformedProof, len(raw), ProofSize)
	}

	Gamma, err := ristretto255.NewIdentityElement().SetCanonicalBytes(raw[:32])
	if err != nil {
		return nil, fmt.Errorf("%w: gamma: %v", vrf.ErrMalformedProof, err)
	}

	cStr := make([]byte, 32)
	copy(cStr[:16], raw[32:48])
	c, err := ristretto255.NewScalar().SetCanonicalBytes(cStr)
	if err != nil {
		return nil, fmt.Errorf("%w: c: %v", vrf.ErrMalformedProof, err)
	}

	s, err := ristretto255.NewScalar().SetCanonicalBytes(raw[48:])
	if err != nil {
		return nil, fmt.Errorf("%w: s: %v", vrf.ErrMalformedProof, err)
	}

	return &proof{Gamma: Gamma, c: c, cStr: cStr, s: s}, nil
}

// ProofToHash returns the VRF output contained in a proof. It does NOT
// verify the proof: callers that rely on the output being unique and
// unpredictable must use PublicKey.ProofToOutput instead.
func ProofToHash(raw []byte) ([]byte, error) {
	pi, err := decodeProof(raw)
	if err != nil {
		return nil, err
	}
	return proofToHash(pi.Gamma), nil
}

// PrivateKey is a ristretto255 VRF private key.
type PrivateKey struct {
	x     *ristretto255.Scalar
	point *ristretto255.Element
}

var _ vrf.PrivateKey = &PrivateKey{}

// GenerateKey returns a new private key. 64 bytes are read from rand and
// reduced modulo the group order; a zero result is discarded. If rand produces
// no valid candidate in 64 attempts, ErrInsufficientEntropy is returned.
func GenerateKey(rand io.Reader) (*PrivateKey, error) {
	buf := make([]byte, 64)
	defer mem.Zero(buf)

	for i := 0; i < maxKeyAttempts; i++ {
		if _, err := io.ReadFull(rand, buf); err != nil {
			return nil, fmt.Errorf("%w: %w", vrf.ErrInsufficientEntropy, err)
		}
		x, err := ristretto255.NewScalar().SetUniformBytes(buf)
		if err != nil {
			return nil, err
		}
		xStr := x.Bytes()
		priv, err := NewPrivateKey(xStr)
		mem.Zero(xStr)
		if err == nil {
			return priv, nil
		}
	}
	return nil, fmt.Errorf("%w: no valid scalar in %d samples", vrf.ErrInsufficientEntropy, maxKeyAttempts)
}

// NewPrivateKey parses a canonical, non-zero scalar.
func NewPrivateKey(raw []byte) (*PrivateKey, error) {
	if len(raw) != SecretKeySize {
		return nil, fmt.Errorf("%w: private key is %d bytes, want %d", vrf.ErrMalformedInput, len(raw), SecretKeySize)
	}
	x, err := ristretto255.NewScalar().SetCanonicalBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vrf.ErrInvalidKey, err)
	} else if x.Equal(ristretto255.NewScalar()) == 1 {
		return nil, fmt.Errorf("%w: scalar is zero", vrf.ErrInvalidKey)
	}
	return &PrivateKey{x: x, point: ristretto255.NewIdentityElement().ScalarBaseMult(x)}, nil
}

// Prove returns the VRF output for m and its proof.
func (p *PrivateKey) Prove(m []byte) (output, proof []byte) {
	H := encodeToCurve(p.point.Bytes(), m)
	Gamma := ristretto255.NewIdentityElement().ScalarMult(p.x, H)

	k := generateNonce(p.x, H.Bytes())
	U := ristretto255.NewIdentityElement().ScalarBaseMult(k)
	V := ristretto255.NewIdentityElement().ScalarMult(k, H)

	cStr := generateChallenge(p.point, H, Gamma, U, V)
	c, err := ristretto255.NewScalar().SetCanonicalBytes(cStr)
	if err != nil {
		panic(err)
	}
	s := ristretto255.NewScalar().Multiply(c, p.x)
	s.Add(s, k)
	k.Multiply(k, ristretto255.NewScalar())

	proof = make([]byte, 0, ProofSize)
	proof = append(proof, Gamma.Bytes()...)
	proof = append(proof, cStr[:16]...)
	proof = append(proof, s.Bytes()...)

	return proofToHash(Gamma), proof
}

// PublicKey returns the public key corresponding to p.
func (p *PrivateKey) PublicKey() vrf.PublicKey {
	return &PublicKey{point: p.point}
}

// Bytes returns the encoded private scalar.
func (p *PrivateKey) Bytes() []byte {
	return p.x.Bytes()
}

// Destroy scrubs the private scalar.
func (p *PrivateKey) Destroy() {
	p.x.Multiply(p.x, ristretto255.NewScalar())
}

// PublicKey is a ristretto255 VRF public key.
type PublicKey struct {
	point *ristretto255.Element
}

var _ vrf.PublicKey = &PublicKey{}

// NewPublicKey parses a canonical encoding of a non-identity element.
func NewPublicKey(raw []byte) (*PublicKey, error) {
	if len(raw) != PublicKeySize {
		return nil, fmt.Errorf("%w: public key is %d bytes, want %d", vrf.ErrMalformedInput, len(raw), PublicKeySize)
	}
	point, err := ristretto255.NewIdentityElement().SetCanonicalBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vrf.ErrInvalidKey, err)
	} else if point.Equal(ristretto255.NewIdentityElement()) == 1 {
		return nil, fmt.Errorf("%w: public key is the identity", vrf.ErrInvalidKey)
	}
	return &PublicKey{point: point}, nil
}

// Verify reports whether proof is valid for m.
func (p *PublicKey) Verify(m, proof []byte) (bool, error) {
	pi, err := decodeProof(proof)
	if err != nil {
		return false, err
	}
	return p.verify(m, pi), nil
}

func (p *PublicKey) verify(m []byte, pi *proof) bool {
	H := encodeToCurve(p.point.Bytes(), m)
	negC := ristretto255.NewScalar().Negate(pi.c)

	U := ristretto255.NewIdentityElement().VarTimeDoubleScalarBaseMult(negC, p.point, pi.s)
	V := ristretto255.NewIdentityElement().VarTimeMultiScalarMult(
		[]*ristretto255.Scalar{pi.s, negC},
		[]*ristretto255.Element{H, pi.Gamma},
	)

	cPrime := generateChallenge(p.point, H, pi.Gamma, U, V)
	return bytes.Equal(pi.cStr, cPrime)
}

// ProofToOutput verifies proof and returns the VRF output for m.
func (p *PublicKey) ProofToOutput(m, proof []byte) ([]byte, error) {
	pi, err := decodeProof(proof)
	if err != nil {
		return nil, err
	} else if !p.verify(m, pi) {
		return nil, vrf.ErrVerificationFailed
	}
	return proofToHash(pi.Gamma), nil
}

// Bytes returns the encoded public key.
func (p *PublicKey) Bytes() []byte {
	return p.point.Bytes()
}
