// Command generate-keys outputs fresh VRF keys.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/Bren2010/vrf/crypto/suites"
	"github.com/Bren2010/vrf/internal/mem"
)

var (
	seedFlag = flag.String("seed", "", "Hex-encoded seed of at least 32 bytes to derive the key from, instead of fresh entropy.")
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("Usage: generate-keys [-seed hex] (%v)", strings.Join(suites.Names(), "|"))
	}
	cs, err := suites.FromName(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	var sk, pk []byte
	if *seedFlag == "" {
		sk, pk, err = suites.GenerateKey(cs, rand.Reader)
	} else {
		var seed []byte
		seed, err = hex.DecodeString(*seedFlag)
		if err != nil {
			log.Fatalf("Failed to parse seed: %v", err)
		}
		sk, pk, err = suites.GenerateKeyFromSeed(cs, seed)
		mem.Zero(seed)
	}
	if err != nil {
		log.Fatal(err)
	}
	defer mem.Zero(sk)

	fmt.Printf("Suite:               %v\n", cs.Name())
	fmt.Printf("VRF Private Key:     %x\n", sk)
	fmt.Printf("VRF Public Key:      %x\n", pk)
}
