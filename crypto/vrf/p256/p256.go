// Package p256 implements the ECVRF-P256-SHA256-TAI cipher suite from RFC
// 9381.
//
// Point arithmetic is done with filippo.io/nistec and arithmetic modulo the
// group order with filippo.io/bigmod, both of which are constant time.
package p256

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"filippo.io/bigmod"
	"filippo.io/nistec"
	"github.com/Bren2010/vrf/crypto/vrf"
	"github.com/Bren2010/vrf/internal/mem"
)

const (
	suiteString = 0x01

	// SecretKeySize is the size of an encoded private key.
	SecretKeySize = 32
	// PublicKeySize is the size of a compressed public key.
	PublicKeySize = 33
	// ProofSize is the size of a proof: Gamma, a truncated challenge and s.
	ProofSize = 33 + 16 + 32
	// OutputSize is the size of the VRF output.
	OutputSize = 32

	// maxKeyAttempts bounds how many candidate scalars GenerateKey samples
	// before giving up on the entropy source.
	maxKeyAttempts = 64
)

// order is the order of the P-256 base point.
var order = func() *bigmod.Modulus {
	raw, err := hex.DecodeString("ffffffff00000000ffffffffffffffffbce6faada7179e84f3b9cac2fc632551")
	if err != nil {
		panic(err)
	}
	m, err := bigmod.NewModulus(raw)
	if err != nil {
		panic(err)
	}
	return m
}()

// scalarBytes returns x as a 32-byte big-endian string.
func scalarBytes(x *bigmod.Nat) []byte {
	return x.Bytes(order)
}

// negate returns -x mod n as a 32-byte big-endian string.
func negate(x *bigmod.Nat) []byte {
	return scalarBytes(bigmod.NewNat().ExpandFor(order).Sub(x, order))
}

func scalarBaseMult(k []byte) *nistec.P256Point {
	p, err := nistec.NewP256Point().ScalarBaseMult(k)
	if err != nil {
		panic(err)
	}
	return p
}

func scalarMult(q *nistec.P256Point, k []byte) *nistec.P256Point {
	p, err := nistec.NewP256Point().ScalarMult(q, k)
	if err != nil {
		panic(err)
	}
	return p
}

// decodePoint parses a compressed point.
func decodePoint(raw []byte) (*nistec.P256Point, error) {
	if len(raw) != 33 || (raw[0] != 0x02 && raw[0] != 0x03) {
		return nil, fmt.Errorf("point is not in compressed form")
	}
	return nistec.NewP256Point().SetBytes(raw)
}

// encodeToCurve implements the trial-and-increment algorithm.
func encodeToCurve(salt, m []byte) *nistec.P256Point {
	hasher := sha256.New()

	for counter := 0; counter < 256; counter++ {
		hasher.Reset()
		hasher.Write([]byte{suiteString, 0x01})
		hasher.Write(salt)
		hasher.Write(m)
		hasher.Write([]byte{byte(counter), 0x00})

		point, err := decodePoint(hasher.Sum([]byte{0x02}))
		if err == nil {
			return point
		}
	}

	panic("encode to curve failed unexpectedly")
}

func mac(key []byte, message ...[]byte) []byte {
	mac := hmac.New(sha256.New, key)
	for _, m := range message {
		mac.Write(m)
	}
	return mac.Sum(nil)
}

// generateNonce deterministically generates the proof nonce from the private
// scalar and hStr, following RFC 6979 Section 3.2.
func generateNonce(x []byte, hStr []byte) *bigmod.Nat {
	// a. h1 = H(m), reduced mod n as required by bits2octets.
	h1 := sha256.Sum256(hStr)
	z, err := bigmod.NewNat().SetOverflowingBytes(h1[:], order)
	if err != nil {
		panic(err)
	}
	h1Octets := scalarBytes(z)

	// b. V = 0x01 0x01 ... 0x01
	V := bytes.Repeat([]byte{0x01}, 32)

	// c. K = 0x00 0x00 ... 0x00
	K := make([]byte, 32)

	// d. K = HMAC_K(V || 0x00 || priv || h1)
	K = mac(K, V, []byte{0x00}, x, h1Octets)
	// e. V = HMAC_K(V)
	V = mac(K, V)
	// f. K = HMAC_K(V || 0x01 || priv || h1)
	K = mac(K, V, []byte{0x01}, x, h1Octets)
	// g. V = HMAC_K(V)
	V = mac(K, V)

	// h. Repeat until a proper value is found.
	for i := 0; i < 256; i++ {
		V = mac(K, V)

		k, err := bigmod.NewNat().SetBytes(V, order)
		if err == nil && k.IsZero() == 0 {
			return k
		}

		K = mac(K, V, []byte{0x00})
		V = mac(K, V)
	}

	panic("nonce generation failed unexpectedly")
}

// generateChallenge deterministically generates the proof challenge from the
// given elliptic curve points. It returns the 16-byte challenge string.
func generateChallenge(p1, p2, p3, p4, p5 *nistec.P256Point) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(suiteString)
	buf.WriteByte(0x02) // Front domain separator
	buf.Write(p1.BytesCompressed())
	buf.Write(p2.BytesCompressed())
	buf.Write(p3.BytesCompressed())
	buf.Write(p4.BytesCompressed())
	buf.Write(p5.BytesCompressed())
	buf.WriteByte(0x00) // Back domain separator

	cStr := sha256.Sum256(buf.Bytes())
	return cStr[:16]
}

// proofToHash converts the VRF proof into the VRF output. The cofactor of
// P-256 is 1.
func proofToHash(Gamma *nistec.P256Point) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(suiteString)
	buf.WriteByte(0x03) // Front domain separator
	buf.Write(Gamma.BytesCompressed())
	buf.WriteByte(0x00) // Back domain separator

	h := sha256.Sum256(buf.Bytes())
	return h[:]
}

type proof struct {
	Gamma *nistec.P256Point
	c     *bigmod.Nat
	cStr  []byte
	s     []byte
}

func decodeProof(raw []byte) (*proof, error) {
	if len(raw) != ProofSize {
		return nil, fmt.Errorf("%w: proof is %d bytes, want %d", vrf.ErrMalformedProof, len(raw), ProofSize)
	}

	Gamma, err := decodePoint(raw[:33])
	if err != nil {
		return nil, fmt.Errorf("%w: gamma: %v", vrf.ErrMalformedProof, err)
	}

	cStr := raw[33:49]
	c, err := bigmod.NewNat().SetBytes(cStr, order)
	if err != nil {
		return nil, fmt.Errorf("%w: c: %v", vrf.ErrMalformedProof, err)
	}

	s := raw[49:]
	if _, err := bigmod.NewNat().SetBytes(s, order); err != nil {
		return nil, fmt.Errorf("%w: s is not reduced", vrf.ErrMalformedProof)
	}

	return &proof{
		Gamma: Gamma,
		c:     c,
		cStr:  append([]byte{}, cStr...),
		s:     append([]byte{}, s...),
	}, nil
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

// PrivateKey is an ECVRF-P256-SHA256-TAI private key.
type PrivateKey struct {
	x     *bigmod.Nat
	raw   []byte
	point *nistec.P256Point
}

var _ vrf.PrivateKey = &PrivateKey{}

// GenerateKey returns a new private key using entropy from rand. Candidate
// scalars outside of [1, n-1] are discarded; if rand produces no valid
// candidate in 64 attempts, ErrInsufficientEntropy is returned.
func GenerateKey(rand io.Reader) (*PrivateKey, error) {
	raw := make([]byte, SecretKeySize)
	defer mem.Zero(raw)

	for i := 0; i < maxKeyAttempts; i++ {
		if _, err := io.ReadFull(rand, raw); err != nil {
			return nil, fmt.Errorf("%w: %w", vrf.ErrInsufficientEntropy, err)
		}
		priv, err := NewPrivateKey(raw)
		if err == nil {
			return priv, nil
		}
	}
	return nil, fmt.Errorf("%w: no valid scalar in %d samples", vrf.ErrInsufficientEntropy, maxKeyAttempts)
}

// NewPrivateKey parses a 32-byte big-endian scalar in the range [1, n-1].
func NewPrivateKey(raw []byte) (*PrivateKey, error) {
	if len(raw) != SecretKeySize {
		return nil, fmt.Errorf("%w: private key is %d bytes, want %d", vrf.ErrMalformedInput, len(raw), SecretKeySize)
	}
	x, err := bigmod.NewNat().SetBytes(raw, order)
	if err != nil {
		return nil, fmt.Errorf("%w: scalar out of range", vrf.ErrInvalidKey)
	} else if x.IsZero() == 1 {
		return nil, fmt.Errorf("%w: scalar is zero", vrf.ErrInvalidKey)
	}
	raw = append([]byte{}, raw...)

	return &PrivateKey{x: x, raw: raw, point: scalarBaseMult(raw)}, nil
}

// Prove returns the VRF output for m and its proof.
func (p *PrivateKey) Prove(m []byte) (output, proof []byte) {
	Y := p.point.BytesCompressed()
	H := encodeToCurve(Y, m)
	hStr := H.BytesCompressed()

	Gamma := scalarMult(H, p.raw)

	k := generateNonce(p.raw, hStr)
	kStr := scalarBytes(k)
	defer mem.Zero(kStr)
	defer mem.Zero(k.Bits())

	c := generateChallenge(p.point, H, Gamma, scalarBaseMult(kStr), scalarMult(H, kStr))

	// s = c*x + k mod n
	s, err := bigmod.NewNat().SetBytes(c, order)
	if err != nil {
		panic(err)
	}
	s.Mul(p.x, order).Add(k, order)

	proof = make([]byte, 0, ProofSize)
	proof = append(proof, Gamma.BytesCompressed()...)
	proof = append(proof, c...)
	proof = append(proof, scalarBytes(s)...)

	return proofToHash(Gamma), proof
}

// PublicKey returns the public key corresponding to p.
func (p *PrivateKey) PublicKey() vrf.PublicKey {
	return &PublicKey{point: nistec.NewP256Point().Set(p.point)}
}

// Bytes returns the encoded private scalar.
func (p *PrivateKey) Bytes() []byte {
	return append([]byte{}, p.raw...)
}

// Destroy scrubs the key material.
func (p *PrivateKey) Destroy() {
	mem.Zero(p.raw)
	mem.Zero(p.x.Bits())
}

// PublicKey is an ECVRF-P256-SHA256-TAI public key.
type PublicKey struct {
	point *nistec.P256Point
}

var _ vrf.PublicKey = &PublicKey{}

// NewPublicKey parses a compressed public key.
func NewPublicKey(raw []byte) (*PublicKey, error) {
	if len(raw) != PublicKeySize || (raw[0] != 0x02 && raw[0] != 0x03) {
		return nil, fmt.Errorf("%w: public key is not a compressed point", vrf.ErrMalformedInput)
	}
	point, err := nistec.NewP256Point().SetBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vrf.ErrInvalidKey, err)
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
	H := encodeToCurve(p.point.BytesCompressed(), m)
	negC := negate(pi.c)

	// U = s*B - c*Y
	U := nistec.NewP256Point().Add(scalarBaseMult(pi.s), scalarMult(p.point, negC))
	// V = s*H - c*Gamma
	V := nistec.NewP256Point().Add(scalarMult(H, pi.s), scalarMult(pi.Gamma, negC))

	cPrime := generateChallenge(p.point, H, pi.Gamma, U, V)
	return hmac.Equal(pi.cStr, cPrime)
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

// Bytes returns the compressed public key.
func (p *PublicKey) Bytes() []byte {
	return p.point.BytesCompressed()
}
