// Package edwards25519 implements the ECVRF-EDWARDS25519-SHA512-TAI cipher
// suite from RFC 9381.
package edwards25519

import (
	"bytes"
	"crypto/sha512"
	"fmt"
	"io"

	"filippo.io/edwards25519"
	"github.com/Bren2010/vrf/crypto/vrf"
	"github.com/Bren2010/vrf/internal/mem"
)

const (
	suiteString = 0x03

	// SecretKeySize is the size of an encoded private key (a seed).
	SecretKeySize = 32
	// PublicKeySize is the size of an encoded public key.
	PublicKeySize = 32
	// ProofSize is the size of a proof: Gamma, a truncated challenge and s.
	ProofSize = 32 + 16 + 32
	// OutputSize is the size of the VRF output.
	OutputSize = 64
)

// decodePoint parses a point, rejecting non-canonical encodings.
func decodePoint(raw []byte) (*edwards25519.Point, error) {
	point, err := new(edwards25519.Point).SetBytes(raw)
	if err != nil {
		return nil, err
	} else if !bytes.Equal(point.Bytes(), raw) {
		return nil, fmt.Errorf("point encoding is not canonical")
	}
	return point, nil
}

// encodeToCurve implements the trial-and-increment algorithm for encoding a
// byte string to a curve point.
func encodeToCurve(salt, m []byte) *edwards25519.Point {
	identity := edwards25519.NewIdentityPoint()
	hasher := sha512.New()

	for counter := 0; counter < 256; counter++ {
		hasher.Reset()
		hasher.Write([]byte{suiteString, 0x01})
		hasher.Write(salt)
		hasher.Write(m)
		hasher.Write([]byte{byte(counter), 0x00})
		hashStr := hasher.Sum(nil)

		point, err := decodePoint(hashStr[:32])
		if err != nil {
			continue
		}
		point.MultByCofactor(point)
		if point.Equal(identity) == 0 {
			return point
		}
	}

	panic("encode to curve failed unexpectedly")
}

// generateNonce deterministically derives the proof nonce from the nonce key
// and hStr.
func generateNonce(nonceKey, hStr []byte) *edwards25519.Scalar {
	hasher := sha512.New()
	hasher.Write(nonceKey)
	hasher.Write(hStr)

	k, err := new(edwards25519.Scalar).SetUniformBytes(hasher.Sum(nil))
	if err != nil {
		panic(err)
	}
	return k
}

// generateChallenge deterministically generates the proof challenge from the
// given elliptic curve points. The challenge is returned as a 32-byte scalar
// encoding with only the lower 16 bytes set.
func generateChallenge(p1, p2, p3, p4, p5 *edwards25519.Point) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(suiteString)
	buf.WriteByte(0x02) // Front domain separator
	buf.Write(p1.Bytes())
	buf.Write(p2.Bytes())
	buf.Write(p3.Bytes())
	buf.Write(p4.Bytes())
	buf.Write(p5.Bytes())
	buf.WriteByte(0x00) // Back domain separator

	cStr := sha512.Sum512(buf.Bytes())
	for i := 16; i < 32; i++ {
		cStr[i] = 0
	}

	return cStr[:32]
}

// proofToHash converts the VRF proof into the VRF output.
func proofToHash(Gamma *edwards25519.Point) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(suiteString)
	buf.WriteByte(0x03) // Front domain separator
	buf.Write(new(edwards25519.Point).MultByCofactor(Gamma).Bytes())
	buf.WriteByte(0x00) // Back domain separator

	h := sha512.Sum512(buf.Bytes())
	return h[:]
}

type proof struct {
	Gamma *edwards25519.Point
	c     *edwards25519.Scalar
	cStr  []byte
	s     *edwards25519.Scalar
}

func decodeProof(raw []byte) (*proof, error) {
	if len(raw) != ProofSize {
		return nil, fmt.Errorf("%w: proof is %d bytes, want %d", vrf.ErrMalformedProof, len(raw), ProofSize)
	}

	Gamma, err := decodePoint(raw[:32])
	if err != nil {
		return nil, fmt.Errorf("%w: gamma: %v", vrf.ErrMalformedProof, err)
	}

	cStr := make([]byte, 32)
	copy(cStr[:16], raw[32:48])
	c, err := new(edwards25519.Scalar).SetCanonicalBytes(cStr)
	if err != nil {
		return nil, fmt.Errorf("%w: c: %v", vrf.ErrMalformedProof, err)
	}

	s, err := new(edwards25519.Scalar).SetCanonicalBytes(raw[48:])
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

// PrivateKey is an ECVRF-EDWARDS25519-SHA512-TAI private key.
type PrivateKey struct {
	seed     []byte
	scalar   *edwards25519.Scalar
	point    *edwards25519.Point
	nonceKey []byte
}

var _ vrf.PrivateKey = &PrivateKey{}

// GenerateKey returns a new private key using entropy from rand.
func GenerateKey(rand io.Reader) (*PrivateKey, error) {
	seed := make([]byte, SecretKeySize)
	defer mem.Zero(seed)

	if _, err := io.ReadFull(rand, seed); err != nil {
		return nil, fmt.Errorf("%w: %w", vrf.ErrInsufficientEntropy, err)
	}
	return NewPrivateKey(seed)
}

// NewPrivateKey returns the private key derived from a 32-byte seed. Every
// seed is a valid key.
func NewPrivateKey(raw []byte) (*PrivateKey, error) {
	if len(raw) != SecretKeySize {
		return nil, fmt.Errorf("%w: private key is %d bytes, want %d", vrf.ErrMalformedInput, len(raw), SecretKeySize)
	}

	h := sha512.Sum512(raw)
	defer mem.Zero(h[:])

	scalar, err := new(edwards25519.Scalar).SetBytesWithClamping(h[:32])
	if err != nil {
		return nil, err
	}
	point := new(edwards25519.Point).ScalarBaseMult(scalar)

	return &PrivateKey{
		seed:     append([]byte{}, raw...),
		scalar:   scalar,
		point:    point,
		nonceKey: append([]byte{}, h[32:]...),
	}, nil
}

// Prove returns the VRF output for m and its proof.
func (p *PrivateKey) Prove(m []byte) (output, proof []byte) {
	H := encodeToCurve(p.point.Bytes(), m)
	hStr := H.Bytes()

	Gamma := new(edwards25519.Point).ScalarMult(p.scalar, H)

	k := generateNonce(p.nonceKey, hStr)
	kB := new(edwards25519.Point).ScalarBaseMult(k)
	kH := new(edwards25519.Point).ScalarMult(k, H)

	c := generateChallenge(p.point, H, Gamma, kB, kH)

	s, err := new(edwards25519.Scalar).SetCanonicalBytes(c)
	if err != nil {
		panic(err)
	}
	s.MultiplyAdd(s, p.scalar, k)
	k.Set(edwards25519.NewScalar())

	proof = make([]byte, ProofSize)
	copy(proof[:32], Gamma.Bytes())
	copy(proof[32:48], c[:16])
	copy(proof[48:], s.Bytes())

	return proofToHash(Gamma), proof
}

// PublicKey returns the public key corresponding to p.
func (p *PrivateKey) PublicKey() vrf.PublicKey {
	return &PublicKey{point: new(edwards25519.Point).Set(p.point)}
}

// Bytes returns the seed the key was derived from.
func (p *PrivateKey) Bytes() []byte {
	return append([]byte{}, p.seed...)
}

// Destroy scrubs the key material.
func (p *PrivateKey) Destroy() {
	mem.Zero(p.seed)
	mem.Zero(p.nonceKey)
	p.scalar.Set(edwards25519.NewScalar())
}

// PublicKey is an ECVRF-EDWARDS25519-SHA512-TAI public key.
type PublicKey struct {
	point *edwards25519.Point
}

var _ vrf.PublicKey = &PublicKey{}

// NewPublicKey parses an encoded public key. Non-canonical encodings and
// points of small order are rejected.
func NewPublicKey(raw []byte) (*PublicKey, error) {
	if len(raw) != PublicKeySize {
		return nil, fmt.Errorf("%w: public key is %d bytes, want %d", vrf.ErrMalformedInput, len(raw), PublicKeySize)
	}
	point, err := new(edwards25519.Point).SetBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vrf.ErrInvalidKey, err)
	} else if !bytes.Equal(point.Bytes(), raw) {
		return nil, fmt.Errorf("%w: public key encoding is not canonical", vrf.ErrMalformedInput)
	}
	temp := new(edwards25519.Point).MultByCofactor(point)
	if edwards25519.NewIdentityPoint().Equal(temp) == 1 {
		return nil, fmt.Errorf("%w: public key has small order", vrf.ErrInvalidKey)
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
	negC := new(edwards25519.Scalar).Negate(pi.c)

	// U = s*B - c*Y
	U := new(edwards25519.Point).VarTimeDoubleScalarBaseMult(negC, p.point, pi.s)
	// V = s*H - c*Gamma
	V := new(edwards25519.Point).VarTimeMultiScalarMult(
		[]*edwards25519.Scalar{pi.s, negC},
		[]*edwards25519.Point{H, pi.Gamma},
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
