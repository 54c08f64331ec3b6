package suites

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/Bren2010/vrf/crypto/vrf"
	fuzz "github.com/trailofbits/go-fuzz-utils"
)

// FuzzVerify feeds arbitrary keys, messages and proofs, of arbitrary length,
// to every suite. Verify must never panic, and must either fail with a
// malformed-input error or agree with ProofToOutput.
func FuzzVerify(f *testing.F) {
	seed := sha256.Sum256([]byte("vrf fuzz"))
	for _, cs := range All() {
		sk, pk, err := GenerateKeyFromSeed(cs, seed[:])
		if err != nil {
			f.Fatal(err)
		}
		proof, err := Prove(cs, sk, []byte("message"))
		if err != nil {
			f.Fatal(err)
		}
		buf := &bytes.Buffer{}
		buf.WriteByte(cs.Id())
		buf.Write(pk)
		buf.Write(proof)
		buf.WriteString("message")
		f.Add(buf.Bytes())
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		tp, err := fuzz.NewTypeProvider(data)
		if err != nil {
			t.Skip(err)
		}
		id, err := tp.GetByte()
		if err != nil {
			t.Skip(err)
		}
		cs, err := FromId(id)
		if err != nil {
			t.Skip(err)
		}
		pk, err := tp.GetBytes()
		if err != nil {
			t.Skip(err)
		}
		proof, err := tp.GetBytes()
		if err != nil {
			t.Skip(err)
		}
		m, err := tp.GetBytes()
		if err != nil {
			t.Skip(err)
		}

		ok, err := Verify(cs, pk, m, proof)
		if err != nil {
			if !errors.Is(err, vrf.ErrMalformedInput) && !errors.Is(err, vrf.ErrInvalidKey) {
				t.Fatalf("unexpected error type: %v", err)
			}
			return
		}
		output, valid, err := ProofToOutput(cs, pk, m, proof)
		if err != nil || valid != ok {
			t.Fatalf("ProofToOutput() = %v, %v; Verify() = %v", valid, err, ok)
		}
		if ok {
			hashed, err := ProofToHash(cs, proof)
			if err != nil || !bytes.Equal(hashed, output) {
				t.Fatalf("ProofToHash() disagrees with ProofToOutput()")
			}
		}
	})
}
