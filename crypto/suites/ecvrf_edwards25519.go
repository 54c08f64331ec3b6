package suites

import (
	"crypto/sha512"
	"hash"
	"io"

	"github.com/Bren2010/vrf/crypto/vrf"
	"github.com/Bren2010/vrf/crypto/vrf/edwards25519"
)

// EcvrfEdwards25519Sha512Tai implements ECVRF-EDWARDS25519-SHA512-TAI.
type EcvrfEdwards25519Sha512Tai struct{}

var _ CipherSuite = EcvrfEdwards25519Sha512Tai{}

func (s EcvrfEdwards25519Sha512Tai) Id() byte           { return 0x03 }
func (s EcvrfEdwards25519Sha512Tai) Name() string       { return "edwards25519" }
func (s EcvrfEdwards25519Sha512Tai) Hash() hash.Hash    { return sha512.New() }
func (s EcvrfEdwards25519Sha512Tai) SecretKeySize() int { return edwards25519.SecretKeySize }
func (s EcvrfEdwards25519Sha512Tai) PublicKeySize() int { return edwards25519.PublicKeySize }
func (s EcvrfEdwards25519Sha512Tai) ProofSize() int     { return edwards25519.ProofSize }
func (s EcvrfEdwards25519Sha512Tai) OutputSize() int    { return edwards25519.OutputSize }

func (s EcvrfEdwards25519Sha512Tai) GenerateVRFKey(rand io.Reader) (vrf.PrivateKey, error) {
	return edwards25519.GenerateKey(rand)
}

func (s EcvrfEdwards25519Sha512Tai) ParseVRFPrivateKey(raw []byte) (vrf.PrivateKey, error) {
	return edwards25519.NewPrivateKey(raw)
}

func (s EcvrfEdwards25519Sha512Tai) ParseVRFPublicKey(raw []byte) (vrf.PublicKey, error) {
	return edwards25519.NewPublicKey(raw)
}

func (s EcvrfEdwards25519Sha512Tai) ProofToHash(proof []byte) ([]byte, error) {
	return edwards25519.ProofToHash(proof)
}
