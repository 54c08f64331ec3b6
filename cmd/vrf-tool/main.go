// Command vrf-tool evaluates and verifies VRF proofs from the command line.
// All keys, messages and proofs are hex encoded.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/Bren2010/vrf/crypto/suites"
	"github.com/Bren2010/vrf/internal/mem"
)

var (
	suiteFlag = flag.String("suite", suites.Default.Name(), "Cipher suite to use: "+strings.Join(suites.Names(), ", ")+".")
)

const usage = `Usage: vrf-tool [-suite name] command args...

Commands:
  prove sk message          Print the output and proof for message.
  verify pk message proof   Verify proof, and print the output if it is valid.
  hash proof                Print the output contained in proof, WITHOUT verifying it.
  public sk                 Print the public key for sk.
  validate pk               Check that pk is a valid public key.`

var errVerificationFailed = errors.New("proof is not valid")

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	flag.Usage = func() { fmt.Fprintln(flag.CommandLine.Output(), usage) }
	flag.Parse()

	cs, err := suites.FromName(*suiteFlag)
	if err != nil {
		log.Fatal(err)
	}
	if err := run(cs, flag.Args(), os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func decodeArgs(args []string, names ...string) ([][]byte, error) {
	if len(args) != len(names) {
		return nil, fmt.Errorf("expected arguments: %v", strings.Join(names, " "))
	}
	out := make([][]byte, len(args))
	for i, arg := range args {
		raw, err := hex.DecodeString(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %v: %v", names[i], err)
		}
		out[i] = raw
	}
	return out, nil
}

func run(cs suites.CipherSuite, args []string, w io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	switch args[0] {
	case "prove":
		in, err := decodeArgs(args[1:], "sk", "message")
		if err != nil {
			return err
		}
		defer mem.Zero(in[0])
		proof, err := suites.Prove(cs, in[0], in[1])
		if err != nil {
			return err
		}
		output, err := suites.ProofToHash(cs, proof)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Output: %x\n", output)
		fmt.Fprintf(w, "Proof:  %x\n", proof)

	case "verify":
		in, err := decodeArgs(args[1:], "pk", "message", "proof")
		if err != nil {
			return err
		}
		output, ok, err := suites.ProofToOutput(cs, in[0], in[1], in[2])
		if err != nil {
			return err
		} else if !ok {
			return errVerificationFailed
		}
		fmt.Fprintf(w, "Output: %x\n", output)

	case "hash":
		in, err := decodeArgs(args[1:], "proof")
		if err != nil {
			return err
		}
		output, err := suites.ProofToHash(cs, in[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Output: %x\n", output)

	case "public":
		in, err := decodeArgs(args[1:], "sk")
		if err != nil {
			return err
		}
		defer mem.Zero(in[0])
		pk, err := suites.PublicKey(cs, in[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Public Key: %x\n", pk)

	case "validate":
		in, err := decodeArgs(args[1:], "pk")
		if err != nil {
			return err
		} else if !suites.ValidatePublicKey(cs, in[0]) {
			return errors.New("public key is not valid")
		}
		fmt.Fprintln(w, "Public key is valid.")

	default:
		return fmt.Errorf("unknown command: %v\n%v", args[0], usage)
	}

	return nil
}
