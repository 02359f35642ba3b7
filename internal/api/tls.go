package api

import (
	"crypto/tls"
	"fmt"
	"os"
)

// TLSConfig holds the certificate paths the server listens with.
type TLSConfig struct {
	CertFile string
	KeyFile  string
}

// TLSFromEnv reads SEEDENGINE_TLS_CERT and SEEDENGINE_TLS_KEY. It returns nil
// unless both are set.
func TLSFromEnv() *TLSConfig {
	cert := os.Getenv("SEEDENGINE_TLS_CERT")
	key := os.Getenv("SEEDENGINE_TLS_KEY")
	if cert == "" || key == "" {
		return nil
	}
	return &TLSConfig{CertFile: cert, KeyFile: key}
}

// Enabled reports whether both paths are set.
func (c *TLSConfig) Enabled() bool {
	return c != nil && c.CertFile != "" && c.KeyFile != ""
}

// Load reads the key pair into a tls.Config.
func (c *TLSConfig) Load() (*tls.Config, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("tls: certificate and key paths required")
	}
	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
