// Package pwire encodes proofs for transport or storage.
//
// An encoded proof starts with a single header byte.
// Header 0x00 is followed directly by the raw payload:
// a big endian uint32 record count, then that many records,
// each a big endian uint64 generalized index and a 32-byte chunk,
// in strictly ascending index order.
//
// Header 0x01 is followed by a big endian uint32 length
// and a snappy block of that length, which decodes to the raw payload.
//
// The [Encoder] chooses whichever form is smaller.
package pwire
