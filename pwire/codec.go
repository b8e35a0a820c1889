package pwire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/golang/snappy"
	"github.com/gordian-engine/partials/pnode"
	"github.com/gordian-engine/partials/proof"
)

const (
	rawEncoding    byte = 0
	snappyEncoding byte = 1
)

const (
	// MaxRecords is the largest record count a decoder accepts.
	MaxRecords = 1 << 22

	recordSize = 8 + pnode.ChunkSize

	maxPayload = 4 + MaxRecords*recordSize

	// maxSnappyRatio bounds decoded over encoded size for a snappy block.
	// The densest element is a 3-byte copy producing 64 bytes.
	maxSnappyRatio = 22

	// readStep bounds how far a buffer may grow ahead of the bytes received.
	readStep = 64 * 1024
)

// ErrMalformedProof matches every error caused by invalid input to a [Decoder].
var ErrMalformedProof = errors.New("malformed proof encoding")

// ErrProofTooLarge is returned when encoding a proof
// with more than [MaxRecords] chunks.
var ErrProofTooLarge = errors.New("proof has too many chunks to encode")

// Encoder writes proofs.
// Its buffers are reused across calls,
// so an Encoder is not safe for concurrent use.
type Encoder struct {
	// Header byte followed by the raw payload.
	rawBuf []byte

	// Header byte, uint32 length, then the snappy block.
	encBuf []byte
}

// Encode writes p to w in whichever encoding is shorter.
func (e *Encoder) Encode(w io.Writer, p proof.Proof) error {
	b, err := e.encode(p)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("failed to write encoded proof: %w", err)
	}
	return nil
}

// encode returns the shorter encoding of p.
// The result aliases one of e's buffers.
func (e *Encoder) encode(p proof.Proof) ([]byte, error) {
	if n := p.Len(); n > MaxRecords {
		return nil, fmt.Errorf(
			"%w: %d chunks exceeds maximum %d", ErrProofTooLarge, n, MaxRecords,
		)
	}

	idxs := p.Indices()

	nRaw := 1 + 4 + len(idxs)*recordSize
	if cap(e.rawBuf) < nRaw {
		e.rawBuf = make([]byte, nRaw)
	} else {
		e.rawBuf = e.rawBuf[:nRaw]
	}

	e.rawBuf[0] = rawEncoding
	payload := e.rawBuf[1:]
	binary.BigEndian.PutUint32(payload, uint32(len(idxs)))
	buf := payload[4:]
	for _, idx := range idxs {
		binary.BigEndian.PutUint64(buf, idx)
		c := p.Chunks[idx]
		copy(buf[8:], c[:])
		buf = buf[recordSize:]
	}

	// 1 header byte and 4 length bytes ahead of the block.
	maxEnc := 5 + snappy.MaxEncodedLen(len(payload))
	if cap(e.encBuf) < maxEnc {
		e.encBuf = make([]byte, maxEnc)
	} else {
		e.encBuf = e.encBuf[:maxEnc]
	}
	e.encBuf[0] = snappyEncoding
	res := snappy.Encode(e.encBuf[5:], payload)
	binary.BigEndian.PutUint32(e.encBuf[1:], uint32(len(res)))
	e.encBuf = e.encBuf[:5+len(res)]

	if len(e.encBuf) < len(e.rawBuf) {
		return e.encBuf, nil
	}
	return e.rawBuf, nil
}

// Decoder reads proofs written by an [Encoder].
// Like the Encoder, it reuses buffers and is not safe for concurrent use.
type Decoder struct {
	encBuf []byte
	rawBuf []byte
}

// Decode reads exactly one encoded proof from r.
// It returns [io.EOF] unwrapped if r is exhausted before the header byte,
// so a stream of proofs can be read until EOF.
func (d *Decoder) Decode(r io.Reader) (proof.Proof, error) {
	var h [1]byte
	if _, err := io.ReadFull(r, h[:]); err != nil {
		if err == io.EOF {
			return proof.Proof{}, io.EOF
		}
		return proof.Proof{}, fmt.Errorf("failed to read proof header: %w", err)
	}

	switch h[0] {
	case rawEncoding:
		return d.decodeRaw(r)
	case snappyEncoding:
		return d.decodeSnappy(r)
	default:
		return proof.Proof{}, fmt.Errorf(
			"%w: unknown header byte 0x%x", ErrMalformedProof, h[0],
		)
	}
}

func (d *Decoder) decodeRaw(r io.Reader) (proof.Proof, error) {
	var cb [4]byte
	if _, err := io.ReadFull(r, cb[:]); err != nil {
		return proof.Proof{}, readErr("record count", err)
	}
	n := binary.BigEndian.Uint32(cb[:])
	if n > MaxRecords {
		return proof.Proof{}, fmt.Errorf(
			"%w: %d records exceeds maximum %d", ErrMalformedProof, n, MaxRecords,
		)
	}

	var err error
	d.rawBuf, err = readN(r, d.rawBuf, int(n)*recordSize)
	if err != nil {
		return proof.Proof{}, readErr("records", err)
	}

	return parseRecords(int(n), d.rawBuf)
}

func (d *Decoder) decodeSnappy(r io.Reader) (proof.Proof, error) {
	var lb [4]byte
	if _, err := io.ReadFull(r, lb[:]); err != nil {
		return proof.Proof{}, readErr("snappy length", err)
	}
	encSz := binary.BigEndian.Uint32(lb[:])
	if int64(encSz) > int64(snappy.MaxEncodedLen(maxPayload)) {
		return proof.Proof{}, fmt.Errorf(
			"%w: snappy block of %d bytes is too large", ErrMalformedProof, encSz,
		)
	}

	var err error
	d.encBuf, err = readN(r, d.encBuf, int(encSz))
	if err != nil {
		return proof.Proof{}, readErr("snappy block", err)
	}

	decSz, err := snappy.DecodedLen(d.encBuf)
	if err != nil {
		return proof.Proof{}, fmt.Errorf(
			"%w: calculating snappy-decoded length: %w", ErrMalformedProof, err,
		)
	}
	if decSz > maxPayload {
		return proof.Proof{}, fmt.Errorf(
			"%w: decoded payload of %d bytes is too large", ErrMalformedProof, decSz,
		)
	}
	if decSz > maxSnappyRatio*len(d.encBuf) {
		return proof.Proof{}, fmt.Errorf(
			"%w: snappy block of %d bytes cannot decode to %d bytes",
			ErrMalformedProof, len(d.encBuf), decSz,
		)
	}

	raw, err := snappy.Decode(d.rawBuf[:cap(d.rawBuf)], d.encBuf)
	if err != nil {
		return proof.Proof{}, fmt.Errorf(
			"%w: decoding snappy block: %w", ErrMalformedProof, err,
		)
	}
	// raw could have been nil on error;
	// that's why we used the temporary variable.
	d.rawBuf = raw

	if len(raw) < 4 {
		return proof.Proof{}, fmt.Errorf(
			"%w: payload of %d bytes has no record count", ErrMalformedProof, len(raw),
		)
	}
	n := binary.BigEndian.Uint32(raw)
	if n > MaxRecords {
		return proof.Proof{}, fmt.Errorf(
			"%w: %d records exceeds maximum %d", ErrMalformedProof, n, MaxRecords,
		)
	}
	if want := 4 + int(n)*recordSize; len(raw) != want {
		return proof.Proof{}, fmt.Errorf(
			"%w: payload has %d bytes for %d records (want %d)",
			ErrMalformedProof, len(raw), n, want,
		)
	}

	return parseRecords(int(n), raw[4:])
}

// readN reads exactly n bytes from r into buf, reusing its capacity.
// The declared length comes from the peer,
// so the buffer only grows one step past what has actually arrived.
func readN(r io.Reader, buf []byte, n int) ([]byte, error) {
	buf = buf[:0]
	for len(buf) < n {
		step := min(n-len(buf), readStep)
		buf = slices.Grow(buf, step)
		got, err := io.ReadFull(r, buf[len(buf):len(buf)+step])
		buf = buf[:len(buf)+got]
		if err != nil {
			return buf, err
		}
	}
	return buf, nil
}

// parseRecords reads n records from buf, which must be exactly n records long.
func parseRecords(n int, buf []byte) (proof.Proof, error) {
	if len(buf) != n*recordSize {
		panic(fmt.Errorf(
			"BUG: parseRecords called with %d bytes for %d records", len(buf), n,
		))
	}

	chunks := make(map[uint64]pnode.Chunk, n)
	var prev uint64
	for i := range n {
		rec := buf[i*recordSize:]
		idx := binary.BigEndian.Uint64(rec)
		if i > 0 && idx <= prev {
			if idx == prev {
				return proof.Proof{}, fmt.Errorf(
					"%w: duplicate index %d", ErrMalformedProof, idx,
				)
			}
			return proof.Proof{}, fmt.Errorf(
				"%w: index %d follows %d", ErrMalformedProof, idx, prev,
			)
		}
		prev = idx

		var c pnode.Chunk
		copy(c[:], rec[8:recordSize])
		chunks[idx] = c
	}

	return proof.Proof{Chunks: chunks}, nil
}

func readErr(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated reading %s", ErrMalformedProof, what)
	}
	return fmt.Errorf("failed to read %s: %w", what, err)
}

// Marshal returns the encoding of p.
func Marshal(p proof.Proof) ([]byte, error) {
	var e Encoder
	b, err := e.encode(p)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}

// Unmarshal decodes a single proof that must span all of b.
func Unmarshal(b []byte) (proof.Proof, error) {
	if len(b) >= 5 {
		// Both encodings declare their size right after the header,
		// so a short input is rejected before any buffer is sized from it.
		declared := int64(binary.BigEndian.Uint32(b[1:5]))
		if b[0] == rawEncoding {
			declared *= recordSize
		}
		if (b[0] == rawEncoding || b[0] == snappyEncoding) && declared > int64(len(b)-5) {
			return proof.Proof{}, fmt.Errorf(
				"%w: %d bytes declared but only %d present",
				ErrMalformedProof, declared, len(b)-5,
			)
		}
	}

	r := bytes.NewReader(b)

	var d Decoder
	p, err := d.Decode(r)
	if err != nil {
		if err == io.EOF {
			return proof.Proof{}, fmt.Errorf("%w: empty input", ErrMalformedProof)
		}
		return proof.Proof{}, err
	}
	if r.Len() > 0 {
		return proof.Proof{}, fmt.Errorf(
			"%w: %d trailing bytes", ErrMalformedProof, r.Len(),
		)
	}
	return p, nil
}
