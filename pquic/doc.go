// Package pquic serves and fetches proofs over QUIC.
//
// Each request is a single bidirectional stream.
// The client writes a big endian uint16 path count,
// then each path as a big endian uint16 length and its slash-separated text,
// and closes its write side.
// The server replies with one status byte.
// Status 0 is followed by the proof in [pwire] encoding;
// status 1 is followed by a big endian uint16 length and an error message.
package pquic
