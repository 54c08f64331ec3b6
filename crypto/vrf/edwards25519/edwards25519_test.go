package edwards25519

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"
	"testing/iotest"

	"filippo.io/edwards25519"
	"github.com/Bren2010/vrf/crypto/vrf"
)

func hexDecode(m string) []byte {
	out, err := hex.DecodeString(m)
	if err != nil {
		panic(err)
	}
	return out
}

func TestCorrectness(t *testing.T) {
	priv, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	pub := priv.PublicKey()

	output1, proof := priv.Prove([]byte("Hello, World!"))
	if len(output1) != OutputSize || len(proof) != ProofSize {
		t.Fatalf("unexpected sizes: output=%d proof=%d", len(output1), len(proof))
	}

	ok, err := pub.Verify([]byte("Hello, World!"), proof)
	if err != nil {
		t.Fatal(err)
	} else if !ok {
		t.Fatal("expected verification to succeed")
	}
	output2, err := pub.ProofToOutput([]byte("Hello, World!"), proof)
	if err != nil {
		t.Fatal(err)
	} else if !bytes.Equal(output1, output2) {
		t.Fatal("computed outputs do not match")
	}
	output3, err := ProofToHash(proof)
	if err != nil {
		t.Fatal(err)
	} else if !bytes.Equal(output1, output3) {
		t.Fatal("proof to hash does not match prove output")
	}

	ok, err = pub.Verify([]byte("Something else"), proof)
	if err != nil {
		t.Fatal(err)
	} else if ok {
		t.Fatal("expected verification to fail")
	}
	if _, err := pub.ProofToOutput([]byte("Something else"), proof); !errors.Is(err, vrf.ErrVerificationFailed) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeterministic(t *testing.T) {
	seed := hexDecode("9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60")
	a, err := NewPrivateKey(seed)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewPrivateKey(seed)
	if err != nil {
		t.Fatal(err)
	}

	out1, proof1 := a.Prove([]byte("message"))
	out2, proof2 := b.Prove([]byte("message"))
	if !bytes.Equal(out1, out2) || !bytes.Equal(proof1, proof2) {
		t.Fatal("prove is not deterministic")
	}
	out3, _ := a.Prove([]byte("other message"))
	if bytes.Equal(out1, out3) {
		t.Fatal("different messages produced the same output")
	}
}

type TestVector struct {
	Priv    string
	Pub     string
	Message string
	Index   string
	Proof   string
}

// RFC 9381, Appendix B.3.
func TestVectors(t *testing.T) {
	vectors := []TestVector{
		{
			Priv:    "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60",
			Pub:     "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a",
			Message: "",
			Index:   "90cf1df3b703cce59e2a35b925d411164068269d7b2d29f3301c03dd757876ff66b71dda49d2de59d03450451af026798e8f81cd2e333de5cdf4f3e140fdd8ae",
			Proof:   "8657106690b5526245a92b003bb079ccd1a92130477671f6fc01ad16f26f723f26f8a57ccaed74ee1b190bed1f479d9727d2d0f9b005a6e456a35d4fb0daab1268a1b0db10836d9826a528ca76567805",
		},
		{
			Priv:    "4ccd089b28ff96da9db6c346ec114e0f5b8a319f35aba624da8cf6ed4fb8a6fb",
			Pub:     "3d4017c3e843895a92b70aa74d1b7ebc9c982ccf2ec4968cc0cd55f12af4660c",
			Message: "72",
			Index:   "eb4440665d3891d668e7e0fcaf587f1b4bd7fbfe99d0eb2211ccec90496310eb5e33821bc613efb94db5e5b54c70a848a0bef4553a41befc57663b56373a5031",
			Proof:   "f3141cd382dc42909d19ec5110469e4feae18300e94f304590abdced48aed5933bf0864a62558b3ed7f2fea45c92a465301b3bbf5e3e54ddf2d935be3b67926da3ef39226bbc355bdc9850112c8f4b02",
		},
		{
			Priv:    "c5aa8df43f9f837bedb7442f31dcb7b166d38535076f094b85ce3a2e0b4458f7",
			Pub:     "fc51cd8e6218a1a38da47ed00230f0580816ed13ba3303ac5deb911548908025",
			Message: "af82",
			Index:   "645427e5d00c62a23fb703732fa5d892940935942101e456ecca7bb217c61c452118fec1219202a0edcf038bb6373241578be7217ba85a2687f7a0310b2df19f",
			Proof:   "9bc0f79119cc5604bf02d23b4caede71393cedfbb191434dd016d30177ccbf8096bb474e53895c362d8628ee9f9ea3c0e52c7a5c691b6c18c9979866568add7a2d41b00b05081ed0f58ee5e31b3a970e",
		},
	}

	for _, vector := range vectors {
		priv, err := NewPrivateKey(hexDecode(vector.Priv))
		if err != nil {
			t.Fatal(err)
		}
		pub := priv.PublicKey()
		if hex.EncodeToString(pub.Bytes()) != vector.Pub {
			t.Fatal("unexpected public key computed")
		}
		output1, proof := priv.Prove(hexDecode(vector.Message))
		if hex.EncodeToString(output1) != vector.Index {
			t.Fatal("unexpected output computed")
		} else if hex.EncodeToString(proof) != vector.Proof {
			t.Fatal("unexpected proof computed")
		}
		output2, err := pub.ProofToOutput(hexDecode(vector.Message), proof)
		if err != nil {
			t.Fatal(err)
		} else if hex.EncodeToString(output2) != vector.Index {
			t.Fatal("unexpected output computed")
		}
		output3, err := ProofToHash(hexDecode(vector.Proof))
		if err != nil {
			t.Fatal(err)
		} else if hex.EncodeToString(output3) != vector.Index {
			t.Fatal("unexpected output computed")
		}
	}
}

func TestPublicKeyDerivation(t *testing.T) {
	// RFC 8032, Section 7.1, TEST 1.
	priv, err := NewPrivateKey(hexDecode("9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"))
	if err != nil {
		t.Fatal(err)
	}
	want := "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a"
	if got := hex.EncodeToString(priv.PublicKey().Bytes()); got != want {
		t.Fatalf("unexpected public key: got=%v, want=%v", got, want)
	}
	if got := priv.Bytes(); !bytes.Equal(got, hexDecode("9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60")) {
		t.Fatal("private key does not round-trip")
	}
}

func TestRoundTrip(t *testing.T) {
	priv, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	priv2, err := NewPrivateKey(priv.Bytes())
	if err != nil {
		t.Fatal(err)
	} else if !bytes.Equal(priv.PublicKey().Bytes(), priv2.PublicKey().Bytes()) {
		t.Fatal("private key does not round-trip")
	}

	pub, err := NewPublicKey(priv.PublicKey().Bytes())
	if err != nil {
		t.Fatal(err)
	} else if !bytes.Equal(pub.Bytes(), priv.PublicKey().Bytes()) {
		t.Fatal("public key does not round-trip")
	}

	_, proof := priv.Prove([]byte("round trip"))
	pi, err := decodeProof(proof)
	if err != nil {
		t.Fatal(err)
	}
	reencoded := append(append(pi.Gamma.Bytes(), pi.cStr[:16]...), pi.s.Bytes()...)
	if !bytes.Equal(reencoded, proof) {
		t.Fatal("proof does not round-trip")
	}
}

func TestTampering(t *testing.T) {
	priv, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	pub := priv.PublicKey()
	m := []byte("tamper")
	_, proof := priv.Prove(m)

	for i := 0; i < len(proof)*8; i++ {
		bad := append([]byte{}, proof...)
		bad[i/8] ^= 1 << (i % 8)
		if ok, _ := pub.Verify(m, bad); ok {
			t.Fatalf("proof with bit %d flipped verified", i)
		}
	}
	for i := 0; i < len(m)*8; i++ {
		bad := append([]byte{}, m...)
		bad[i/8] ^= 1 << (i % 8)
		if ok, _ := pub.Verify(bad, proof); ok {
			t.Fatalf("message with bit %d flipped verified", i)
		}
	}
	pubBytes := pub.Bytes()
	for i := 0; i < len(pubBytes)*8; i++ {
		bad := append([]byte{}, pubBytes...)
		bad[i/8] ^= 1 << (i % 8)
		other, err := NewPublicKey(bad)
		if err != nil {
			continue
		}
		if ok, _ := other.Verify(m, proof); ok {
			t.Fatalf("public key with bit %d flipped verified", i)
		}
	}
}

func TestMalformed(t *testing.T) {
	priv, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	pub := priv.PublicKey()
	_, proof := priv.Prove([]byte("m"))

	// s set to the group order, which is not canonical.
	order := hexDecode("edd3f55c1a631258d69cf7a2def9de1400000000000000000000000000000010")
	badS := append(append([]byte{}, proof[:48]...), order...)

	// y = p, a non-canonical encoding of the point with y = 0.
	nonCanonical := hexDecode("edffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff7f")
	badGamma := append(append([]byte{}, nonCanonical...), proof[32:]...)

	for name, bad := range map[string][]byte{
		"short":     proof[:ProofSize-1],
		"long":      append(append([]byte{}, proof...), 0),
		"s >= l":    badS,
		"gamma y=p": badGamma,
	} {
		ok, err := pub.Verify([]byte("m"), bad)
		if ok || !errors.Is(err, vrf.ErrMalformedProof) || !errors.Is(err, vrf.ErrMalformedInput) {
			t.Errorf("%v: ok=%v, err=%v", name, ok, err)
		}
		if _, err := ProofToHash(bad); !errors.Is(err, vrf.ErrMalformedProof) {
			t.Errorf("%v: proof to hash err=%v", name, err)
		}
	}

	if _, err := NewPrivateKey(make([]byte, 31)); !errors.Is(err, vrf.ErrMalformedInput) {
		t.Errorf("short private key: %v", err)
	}
	if _, err := NewPublicKey(make([]byte, 33)); !errors.Is(err, vrf.ErrMalformedInput) {
		t.Errorf("long public key: %v", err)
	}
	if _, err := NewPublicKey(nonCanonical); err == nil {
		t.Error("non-canonical public key accepted")
	}
	if _, err := NewPublicKey(edwards25519.NewIdentityPoint().Bytes()); !errors.Is(err, vrf.ErrInvalidKey) {
		t.Errorf("identity public key: %v", err)
	}
}

func TestInsufficientEntropy(t *testing.T) {
	_, err := GenerateKey(bytes.NewReader(make([]byte, 16)))
	if !errors.Is(err, vrf.ErrInsufficientEntropy) {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = GenerateKey(iotest.ErrReader(errors.New("boom")))
	if !errors.Is(err, vrf.ErrInsufficientEntropy) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDestroy(t *testing.T) {
	priv, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	priv.Destroy()
	if !bytes.Equal(priv.Bytes(), make([]byte, SecretKeySize)) {
		t.Fatal("seed not scrubbed")
	} else if !bytes.Equal(priv.nonceKey, make([]byte, 32)) {
		t.Fatal("nonce key not scrubbed")
	} else if priv.scalar.Equal(edwards25519.NewScalar()) != 1 {
		t.Fatal("scalar not scrubbed")
	}
}
