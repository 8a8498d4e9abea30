// Package certs points TLS clients at the bundled CA file on systems without a trust store.
package certs

import (
	"os"

	"github.com/rotisserie/eris"
)

// EnvCertFile is read by crypto/x509 (and OpenSSL based tools) to locate the CA bundle.
const EnvCertFile = "SSL_CERT_FILE"

// SystemLocations lists the trust stores crypto/x509 probes on Unix systems.
var SystemLocations = []string{
	"/etc/ssl/certs/ca-certificates.crt",
	"/etc/pki/tls/certs/ca-bundle.crt",
	"/etc/ssl/ca-bundle.pem",
	"/etc/pki/tls/cacert.pem",
	"/etc/pki/ca-trust/extracted/pem/tls-ca-bundle.pem",
	"/etc/ssl/cert.pem",
	"/usr/local/etc/ssl/cert.pem",
	"/etc/ssl/certs",
	"/etc/pki/tls/certs",
}

// EnsureBundle sets SSL_CERT_FILE to bundle when no trust store is configured.
// It reports whether the variable was set. Calling it again is a no-op.
func EnsureBundle(bundle string, locations []string) (bool, error) {
	if _, ok := os.LookupEnv(EnvCertFile); ok {
		return false, nil
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return false, nil
		}
	}

	if err := os.Setenv(EnvCertFile, bundle); err != nil {
		return false, eris.Wrapf(err, "failed to set %s", EnvCertFile)
	}
	return true, nil
}
