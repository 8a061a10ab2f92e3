package httpserver

import (
	"crypto/tls"
	"fmt"
	"sync/atomic"
)

// CertReloader serves a TLS key pair that can be swapped while running.
type CertReloader struct {
	certFile string
	keyFile  string
	cert     atomic.Pointer[tls.Certificate]
}

// NewCertReloader loads the key pair once and returns a reloader for it.
func NewCertReloader(certFile, keyFile string) (*CertReloader, error) {
	r := &CertReloader{certFile: certFile, keyFile: keyFile}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload reads the key pair from disk again. On failure the previous pair stays in use.
func (r *CertReloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair %s: %w", r.certFile, err)
	}
	r.cert.Store(&cert)
	return nil
}

// Files returns the certificate and key paths.
func (r *CertReloader) Files() (certFile, keyFile string) {
	return r.certFile, r.keyFile
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return r.cert.Load(), nil
}
