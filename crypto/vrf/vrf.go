// Package vrf defines the interface to a Verifiable Random Function.
//
// A VRF is the public-key version of a keyed hash. Only the holder of the
// private key can compute the output for a message, but anyone holding the
// public key can check a proof that the output is correct. Implementations
// are in the subpackages, one per cipher suite.
package vrf

import "errors"

var (
	// ErrMalformedInput is returned when an encoding has the wrong length or
	// is not in canonical form.
	ErrMalformedInput = errors.New("vrf: malformed input")
	// ErrMalformedProof is returned when a proof can not be decoded. It
	// matches ErrMalformedInput with errors.Is.
	ErrMalformedProof = &wrapped{"vrf: malformed proof", ErrMalformedInput}
	// ErrInvalidKey is returned when a key decodes but is not a valid key,
	// such as a zero or out-of-range scalar or a low-order point.
	ErrInvalidKey = errors.New("vrf: invalid key")
	// ErrInsufficientEntropy is returned when the randomness source can not
	// supply enough bytes to generate a key.
	ErrInsufficientEntropy = errors.New("vrf: insufficient entropy")
	// ErrVerificationFailed is returned by ProofToOutput when a proof does
	// not verify. Verify itself reports this case as false.
	ErrVerificationFailed = errors.New("vrf: proof verification failed")
)

type wrapped struct {
	msg   string
	inner error
}

func (w *wrapped) Error() string { return w.msg }
func (w *wrapped) Unwrap() error { return w.inner }

// PrivateKey represents a VRF private key.
type PrivateKey interface {
	// Prove returns the VRF output for m and a proof of its correctness. The
	// result is deterministic.
	Prove(m []byte) (output, proof []byte)
	// PublicKey returns the corresponding public key.
	PublicKey() PublicKey
	// Bytes returns the encoded private key.
	Bytes() []byte
	// Destroy scrubs the key material from memory. The key must not be used
	// afterwards.
	Destroy()
}

// PublicKey represents a VRF public key.
type PublicKey interface {
	// Verify reports whether proof is a valid proof for m under this key. An
	// error is returned only if the proof can not be decoded.
	Verify(m, proof []byte) (bool, error)
	// ProofToOutput verifies proof and returns the VRF output. It returns
	// ErrVerificationFailed if the proof is well-formed but invalid.
	ProofToOutput(m, proof []byte) ([]byte, error)
	// Bytes returns the canonical encoding of the public key.
	Bytes() []byte
}
