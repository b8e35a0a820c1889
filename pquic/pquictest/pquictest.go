// Package pquictest provides QUIC listeners with throwaway certificates for tests.
package pquictest

import (
	"context"
	"crypto/ed25519"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/gordian-engine/partials/pquic"
	"github.com/quic-go/quic-go"
	"github.com/stretchr/testify/require"
)

const serverName = "proofs.example.com"

// Listener is a QUIC listener on the loopback interface,
// along with the TLS configuration a client needs to dial it.
type Listener struct {
	QL *quic.Listener

	ClientTLS *tls.Config
}

// NewListener starts a listener with a freshly generated self-signed certificate.
// The listener is closed as part of [*testing.T.Cleanup].
func NewListener(t *testing.T) *Listener {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: serverName},
		DNSNames:     []string{serverName},

		NotBefore: time.Now().Add(-15 * time.Second),
		NotAfter:  time.Now().Add(time.Hour),

		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(nil, template, template, pub, priv)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	serverTLS := &tls.Config{
		Certificates: []tls.Certificate{{
			Certificate: [][]byte{der},
			PrivateKey:  priv,
			Leaf:        cert,
		}},
		NextProtos: []string{pquic.ALPN},
	}

	roots := x509.NewCertPool()
	roots.AddCert(cert)
	clientTLS := &tls.Config{
		RootCAs:    roots,
		ServerName: serverName,
		NextProtos: []string{pquic.ALPN},
	}

	ql, err := quic.ListenAddr("127.0.0.1:0", serverTLS, pquic.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ql.Close() })

	return &Listener{QL: ql, ClientTLS: clientTLS}
}

// Dial opens a client connection to l.
// The connection is closed as part of [*testing.T.Cleanup].
func (l *Listener) Dial(t *testing.T, ctx context.Context) quic.Connection {
	t.Helper()

	qc, err := quic.DialAddr(ctx, l.QL.Addr().String(), l.ClientTLS, pquic.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = qc.CloseWithError(0, "") })

	return qc
}
