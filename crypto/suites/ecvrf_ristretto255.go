package suites

import (
	"crypto/sha512"
	"hash"
	"io"

	"github.com/Bren2010/vrf/crypto/vrf"
	"github.com/Bren2010/vrf/crypto/vrf/ristretto255"
)

// EcvrfRistretto255Sha512 implements the VRF over ristretto255 with SHA-512.
type EcvrfRistretto255Sha512 struct{}

var _ CipherSuite = EcvrfRistretto255Sha512{}

func (s EcvrfRistretto255Sha512) Id() byte           { return 0x04 }
func (s EcvrfRistretto255Sha512) Name() string       { return "ristretto255" }
func (s EcvrfRistretto255Sha512) Hash() hash.Hash    { return sha512.New() }
func (s EcvrfRistretto255Sha512) SecretKeySize() int { return ristretto255.SecretKeySize }
func (s EcvrfRistretto255Sha512) PublicKeySize() int { return ristretto255.PublicKeySize }
func (s EcvrfRistretto255Sha512) ProofSize() int     { return ristretto255.ProofSize }
func (s EcvrfRistretto255Sha512) OutputSize() int    { return ristretto255.OutputSize }

func (s EcvrfRistretto255Sha512) GenerateVRFKey(rand io.Reader) (vrf.PrivateKey, error) {
	return ristretto255.GenerateKey(rand)
}

func (s EcvrfRistretto255Sha512) ParseVRFPrivateKey(raw []byte) (vrf.PrivateKey, error) {
	return ristretto255.NewPrivateKey(raw)
}

func (s EcvrfRistretto255Sha512) ParseVRFPublicKey(raw []byte) (vrf.PublicKey, error) {
	return ristretto255.NewPublicKey(raw)
}

func (s EcvrfRistretto255Sha512) ProofToHash(proof []byte) ([]byte, error) {
	return ristretto255.ProofToHash(proof)
}
