package suites

import (
	"errors"
	"fmt"
	"io"

	"github.com/Bren2010/vrf/crypto/vrf"
	"golang.org/x/crypto/hkdf"
)

// MinSeedSize is the minimum number of bytes accepted by GenerateKeyFromSeed.
const MinSeedSize = 32

// GenerateKey returns a new encoded private key and the corresponding public
// key, using entropy from rand.
func GenerateKey(cs CipherSuite, rand io.Reader) (sk, pk []byte, err error) {
	priv, err := cs.GenerateVRFKey(rand)
	if err != nil {
		return nil, nil, err
	}
	defer priv.Destroy()

	return priv.Bytes(), priv.PublicKey().Bytes(), nil
}

// GenerateKeyFromSeed deterministically derives a key pair from seed. The
// seed is expanded with HKDF, using the suite's hash and name, so the same
// seed gives unrelated keys in different suites.
func GenerateKeyFromSeed(cs CipherSuite, seed []byte) (sk, pk []byte, err error) {
	if len(seed) < MinSeedSize {
		return nil, nil, fmt.Errorf("%w: seed is %d bytes, want at least %d", vrf.ErrInsufficientEntropy, len(seed), MinSeedSize)
	}
	return GenerateKey(cs, hkdf.New(cs.Hash, seed, nil, []byte("vrf keygen "+cs.Name())))
}

// PublicKey returns the encoded public key corresponding to sk.
func PublicKey(cs CipherSuite, sk []byte) ([]byte, error) {
	priv, err := cs.ParseVRFPrivateKey(sk)
	if err != nil {
		return nil, err
	}
	defer priv.Destroy()

	return priv.PublicKey().Bytes(), nil
}

// ValidatePublicKey reports whether pk is a valid encoded public key.
func ValidatePublicKey(cs CipherSuite, pk []byte) bool {
	_, err := cs.ParseVRFPublicKey(pk)
	return err == nil
}

// Prove returns a proof for m under the encoded private key sk.
func Prove(cs CipherSuite, sk, m []byte) (proof []byte, err error) {
	priv, err := cs.ParseVRFPrivateKey(sk)
	if err != nil {
		return nil, err
	}
	defer priv.Destroy()

	_, proof = priv.Prove(m)
	return proof, nil
}

// Verify reports whether proof is valid for m under the encoded public key pk.
// A proof that decodes but does not verify gives false and no error.
func Verify(cs CipherSuite, pk, m, proof []byte) (bool, error) {
	pub, err := cs.ParseVRFPublicKey(pk)
	if err != nil {
		return false, err
	}
	return pub.Verify(m, proof)
}

// ProofToHash returns the output contained in proof. It performs no
// verification; see ProofToOutput.
func ProofToHash(cs CipherSuite, proof []byte) ([]byte, error) {
	return cs.ProofToHash(proof)
}

// ProofToOutput verifies proof and returns the output. The second return
// value is false if the proof is well-formed but invalid.
func ProofToOutput(cs CipherSuite, pk, m, proof []byte) ([]byte, bool, error) {
	pub, err := cs.ParseVRFPublicKey(pk)
	if err != nil {
		return nil, false, err
	}
	output, err := pub.ProofToOutput(m, proof)
	if errors.Is(err, vrf.ErrVerificationFailed) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	return output, true, nil
}
