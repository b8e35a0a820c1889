package pquic

import (
	"time"

	"github.com/quic-go/quic-go"
)

// ALPN is the application protocol both ends must offer in their TLS config.
const ALPN = "partials-proof/1"

// DefaultConfig is the default QUIC configuration for proof exchange.
func DefaultConfig() *quic.Config {
	return &quic.Config{
		// Defaults to 5 otherwise.
		HandshakeIdleTimeout: 2 * time.Second,

		// Proofs are usually a few kilobytes,
		// but a large composite path can reach megabytes.
		InitialStreamReceiveWindow: 64 * 1024,
		MaxStreamReceiveWindow:     8 * 1024 * 1024,

		InitialConnectionReceiveWindow: 4 * 64 * 1024,
		MaxConnectionReceiveWindow:     32 * 1024 * 1024,

		// One stream per outstanding request.
		MaxIncomingStreams:    32,
		MaxIncomingUniStreams: -1,
	}
}
