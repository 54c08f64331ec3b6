package main

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/Bren2010/vrf/crypto/suites"
	"github.com/Bren2010/vrf/crypto/vrf"
	"github.com/Bren2010/vrf/internal/mem"

	"gopkg.in/yaml.v2"
)

const defaultCacheSize = 1024

// Config specifies the file format of config files.
type Config struct {
	ServerAddr  string     `yaml:"addr"`
	MetricsAddr string     `yaml:"metrics-addr"` // Optional; no metrics server if empty.
	TLSConfig   *TLSConfig `yaml:"tls"`
	tlsConfig   *tls.Config

	DatabaseFile string `yaml:"database"` // Optional; evaluations are kept in memory if empty.

	APIConfig *APIConfig `yaml:"api"`
}

// TLSConfig specifies the API server's TLS config. TLS on the server also
// starts requiring a valid client certificate.
type TLSConfig struct {
	Cert     string `yaml:"cert"`
	Key      string `yaml:"key"`
	ClientCA string `yaml:"client-ca"` // CA for validating client certificates.
}

type APIConfig struct {
	HomeRedirect string `yaml:"home"`

	Suite string `yaml:"suite"` // Cipher suite name; defaults to edwards25519.
	suite suites.CipherSuite

	VRFKey string `yaml:"vrf-key"` // Hex-encoded VRF private key, as output by generate-keys.
	vrfKey vrf.PrivateKey

	CacheSize int `yaml:"cache-size"` // Number of evaluations to cache in memory.
}

func ReadConfig(filename string) (*Config, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return parseConfig(raw)
}

func parseConfig(raw []byte) (*Config, error) {
	var parsed Config
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}

	// Check that all required fields are populated.
	if parsed.ServerAddr == "" {
		return nil, fmt.Errorf("field not provided: addr")
	} else if parsed.APIConfig == nil {
		return nil, fmt.Errorf("field not provided: api")
	} else if parsed.APIConfig.HomeRedirect == "" {
		return nil, fmt.Errorf("field not provided: api.home")
	} else if parsed.APIConfig.VRFKey == "" {
		return nil, fmt.Errorf("field not provided: api.vrf-key")
	} else if parsed.APIConfig.CacheSize < 0 {
		return nil, fmt.Errorf("api.cache-size may not be negative")
	}
	if parsed.APIConfig.CacheSize == 0 {
		parsed.APIConfig.CacheSize = defaultCacheSize
	}

	// Parse TLS config if necessary.
	if parsed.TLSConfig != nil {
		cert, err := tls.LoadX509KeyPair(parsed.TLSConfig.Cert, parsed.TLSConfig.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS certificate/key: %v", err)
		}

		certPool := x509.NewCertPool()
		caCerts, err := os.ReadFile(parsed.TLSConfig.ClientCA)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS client CA: %v", err)
		} else if ok := certPool.AppendCertsFromPEM(caCerts); !ok {
			return nil, fmt.Errorf("no client CA certificates successfully parsed from file")
		}

		parsed.tlsConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			ClientAuth:   tls.RequireAndVerifyClientCert,
			ClientCAs:    certPool,
		}
	}

	// Parse cryptographic keys.
	parsed.APIConfig.suite = suites.Default
	if parsed.APIConfig.Suite != "" {
		cs, err := suites.FromName(parsed.APIConfig.Suite)
		if err != nil {
			return nil, err
		}
		parsed.APIConfig.suite = cs
	}

	sk, err := hex.DecodeString(parsed.APIConfig.VRFKey)
	defer mem.Zero(sk)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vrf key: %v", err)
	}
	parsed.APIConfig.vrfKey, err = parsed.APIConfig.suite.ParseVRFPrivateKey(sk)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vrf key: %v", err)
	}
	parsed.APIConfig.VRFKey = ""

	return &parsed, nil
}
