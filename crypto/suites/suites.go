// Package suites implements each supported VRF cipher suite.
package suites

import (
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/Bren2010/vrf/crypto/vrf"
)

// CipherSuite is the interface implemented by each supported cipher suite.
//
// All of the methods that start with "Parse" expect canonical encodings and
// reject anything else, as described on each suite's NewPrivateKey and
// NewPublicKey functions.
type CipherSuite interface {
	Id() byte
	Name() string
	Hash() hash.Hash

	SecretKeySize() int
	PublicKeySize() int
	ProofSize() int
	OutputSize() int

	GenerateVRFKey(rand io.Reader) (vrf.PrivateKey, error)
	ParseVRFPrivateKey(raw []byte) (vrf.PrivateKey, error)
	ParseVRFPublicKey(raw []byte) (vrf.PublicKey, error)

	// ProofToHash returns the output contained in a proof without verifying
	// it.
	ProofToHash(proof []byte) ([]byte, error)
}

var all = []CipherSuite{
	EcvrfEdwards25519Sha512Tai{},
	EcvrfP256Sha256Tai{},
	EcvrfRistretto255Sha512{},
}

// Default is the suite used when none is configured.
var Default CipherSuite = EcvrfEdwards25519Sha512Tai{}

// All returns every supported cipher suite.
func All() []CipherSuite {
	return append([]CipherSuite{}, all...)
}

// Names returns the names of every supported cipher suite.
func Names() []string {
	out := make([]string, len(all))
	for i, cs := range all {
		out[i] = cs.Name()
	}
	return out
}

// FromName returns the cipher suite with the given name.
func FromName(name string) (CipherSuite, error) {
	for _, cs := range all {
		if cs.Name() == name {
			return cs, nil
		}
	}
	return nil, fmt.Errorf("unknown cipher suite %q, expected one of: %v", name, strings.Join(Names(), ", "))
}

// FromId returns the cipher suite with the given identifier.
func FromId(id byte) (CipherSuite, error) {
	for _, cs := range all {
		if cs.Id() == id {
			return cs, nil
		}
	}
	return nil, fmt.Errorf("unknown cipher suite id: %#02x", id)
}
