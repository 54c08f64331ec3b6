package suites

import (
	"crypto/sha256"
	"hash"
	"io"

	"github.com/Bren2010/vrf/crypto/vrf"
	"github.com/Bren2010/vrf/crypto/vrf/p256"
)

// EcvrfP256Sha256Tai implements ECVRF-P256-SHA256-TAI.
type EcvrfP256Sha256Tai struct{}

var _ CipherSuite = EcvrfP256Sha256Tai{}

func (s EcvrfP256Sha256Tai) Id() byte           { return 0x01 }
func (s EcvrfP256Sha256Tai) Name() string       { return "p256" }
func (s EcvrfP256Sha256Tai) Hash() hash.Hash    { return sha256.New() }
func (s EcvrfP256Sha256Tai) SecretKeySize() int { return p256.SecretKeySize }
func (s EcvrfP256Sha256Tai) PublicKeySize() int { return p256.PublicKeySize }
func (s EcvrfP256Sha256Tai) ProofSize() int     { return p256.ProofSize }
func (s EcvrfP256Sha256Tai) OutputSize() int    { return p256.OutputSize }

func (s EcvrfP256Sha256Tai) GenerateVRFKey(rand io.Reader) (vrf.PrivateKey, error) {
	return p256.GenerateKey(rand)
}

func (s EcvrfP256Sha256Tai) ParseVRFPrivateKey(raw []byte) (vrf.PrivateKey, error) {
	return p256.NewPrivateKey(raw)
}

func (s EcvrfP256Sha256Tai) ParseVRFPublicKey(raw []byte) (vrf.PublicKey, error) {
	return p256.NewPublicKey(raw)
}

func (s EcvrfP256Sha256Tai) ProofToHash(proof []byte) ([]byte, error) {
	return p256.ProofToHash(proof)
}
