package ristretto255

import (
	"bytes"
	"crypto/rand"
	"errors"
	"slices"
	"testing"

	"github.com/Bren2010/vrf/crypto/vrf"
	"github.com/gtank/ristretto255"
)

func TestVerify(t *testing.T) {
	priv, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	other, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	pub := priv.PublicKey()

	output, proof := priv.Prove([]byte("message"))

	t.Run("valid", func(t *testing.T) {
		got, err := pub.ProofToOutput([]byte("message"), proof)
		if err != nil {
			t.Fatal(err)
		} else if !bytes.Equal(got, output) {
			t.Errorf("ProofToOutput() = %x, want = %x", got, output)
		}
	})

	t.Run("wrong prover", func(t *testing.T) {
		ok, err := other.PublicKey().Verify([]byte("message"), proof)
		if err != nil || ok {
			t.Errorf("Verify() = %v, %v, want = false, nil", ok, err)
		}
	})

	t.Run("wrong message", func(t *testing.T) {
		ok, err := pub.Verify([]byte("other message"), proof)
		if err != nil || ok {
			t.Errorf("Verify() = %v, %v, want = false, nil", ok, err)
		}
	})

	t.Run("bad gamma", func(t *testing.T) {
		bad := slices.Clone(proof)
		bad[0] ^= 1
		ok, _ := pub.Verify([]byte("message"), bad)
		if ok {
			t.Error("Verify() = true, want = false")
		}
	})

	t.Run("bad c", func(t *testing.T) {
		bad := slices.Clone(proof)
		bad[32] ^= 1
		ok, err := pub.Verify([]byte("message"), bad)
		if err != nil || ok {
			t.Errorf("Verify() = %v, %v, want = false, nil", ok, err)
		}
	})

	t.Run("bad s", func(t *testing.T) {
		bad := slices.Clone(proof)
		bad[48] ^= 1
		ok, _ := pub.Verify([]byte("message"), bad)
		if ok {
			t.Error("Verify() = true, want = false")
		}
	})

	t.Run("wrong length", func(t *testing.T) {
		ok, err := pub.Verify([]byte("message"), proof[:ProofSize-2])
		if ok || !errors.Is(err, vrf.ErrMalformedProof) {
			t.Errorf("Verify() = %v, %v, want = false, ErrMalformedProof", ok, err)
		}
	})

	t.Run("proof to hash", func(t *testing.T) {
		got, err := ProofToHash(proof)
		if err != nil {
			t.Fatal(err)
		} else if !bytes.Equal(got, output) {
			t.Errorf("ProofToHash() = %x, want = %x", got, output)
		}
	})
}

func TestDeterministic(t *testing.T) {
	raw := make([]byte, SecretKeySize)
	raw[0] = 7
	priv, err := NewPrivateKey(raw)
	if err != nil {
		t.Fatal(err)
	}

	out1, proof1 := priv.Prove([]byte("m"))
	out2, proof2 := priv.Prove([]byte("m"))
	if !bytes.Equal(out1, out2) || !bytes.Equal(proof1, proof2) {
		t.Fatal("prove is not deterministic")
	}
	if !bytes.Equal(priv.Bytes(), raw) {
		t.Fatal("private key does not round-trip")
	}
}

func TestInvalidKeys(t *testing.T) {
	if _, err := NewPrivateKey(make([]byte, SecretKeySize)); !errors.Is(err, vrf.ErrInvalidKey) {
		t.Errorf("zero scalar: %v", err)
	}
	if _, err := NewPrivateKey(bytes.Repeat([]byte{0xff}, SecretKeySize)); !errors.Is(err, vrf.ErrInvalidKey) {
		t.Errorf("non-canonical scalar: %v", err)
	}
	if _, err := NewPrivateKey(make([]byte, 16)); !errors.Is(err, vrf.ErrMalformedInput) {
		t.Errorf("short scalar: %v", err)
	}
	if _, err := NewPublicKey(ristretto255.NewIdentityElement().Bytes()); !errors.Is(err, vrf.ErrInvalidKey) {
		t.Errorf("identity: %v", err)
	}
	if _, err := NewPublicKey(bytes.Repeat([]byte{0xff}, PublicKeySize)); !errors.Is(err, vrf.ErrInvalidKey) {
		t.Errorf("non-canonical element: %v", err)
	}
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func TestGenerateKey(t *testing.T) {
	_, err := GenerateKey(bytes.NewReader(make([]byte, 63)))
	if !errors.Is(err, vrf.ErrInsufficientEntropy) {
		t.Fatalf("unexpected error: %v", err)
	}

	// An all-zero source only ever yields the zero scalar.
	_, err = GenerateKey(bytes.NewReader(make([]byte, 64*64)))
	if !errors.Is(err, vrf.ErrInsufficientEntropy) {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = GenerateKey(zeroReader{})
	if !errors.Is(err, vrf.ErrInsufficientEntropy) {
		t.Fatalf("unexpected error: %v", err)
	}

	priv, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	pub, err := NewPublicKey(priv.PublicKey().Bytes())
	if err != nil {
		t.Fatal(err)
	} else if !bytes.Equal(pub.Bytes(), priv.PublicKey().Bytes()) {
		t.Fatal("public key does not round-trip")
	}

	priv.Destroy()
	if !bytes.Equal(priv.Bytes(), make([]byte, SecretKeySize)) {
		t.Fatal("scalar not scrubbed")
	}
}
