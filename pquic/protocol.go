package pquic

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gordian-engine/partials/pnode"
)

const (
	statusOK    byte = 0
	statusError byte = 1
)

// Stream and application error codes sent when abandoning a stream or connection.
const (
	codeCanceled  = 0x01
	codeMalformed = 0x02
)

// ErrMalformedRequest is returned when a request cannot be decoded.
var ErrMalformedRequest = errors.New("malformed proof request")

// RemoteError is the error the server reported for a request.
type RemoteError struct {
	Msg string
}

func (e *RemoteError) Error() string {
	return "server rejected proof request: " + e.Msg
}

func appendRequest(dst []byte, paths []pnode.Path) ([]byte, error) {
	if len(paths) > math.MaxUint16 {
		return nil, fmt.Errorf("too many paths: %d", len(paths))
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(paths)))
	for _, p := range paths {
		s := p.String()
		if len(s) > math.MaxUint16 {
			return nil, fmt.Errorf("path too long: %d bytes", len(s))
		}
		dst = binary.BigEndian.AppendUint16(dst, uint16(len(s)))
		dst = append(dst, s...)
	}
	return dst, nil
}

// readRequest reads the paths of one request from r,
// rejecting requests with more than maxPaths paths.
func readRequest(r io.Reader, maxPaths int) ([]pnode.Path, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, fmt.Errorf("failed to read path count: %w", err)
	}
	n := int(binary.BigEndian.Uint16(b[:]))
	if n > maxPaths {
		return nil, fmt.Errorf("%w: %d paths exceeds limit %d", ErrMalformedRequest, n, maxPaths)
	}

	paths := make([]pnode.Path, n)
	var buf []byte
	for i := range paths {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, fmt.Errorf("failed to read length of path %d: %w", i, err)
		}
		sz := int(binary.BigEndian.Uint16(b[:]))
		if cap(buf) < sz {
			buf = make([]byte, sz)
		} else {
			buf = buf[:sz]
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("failed to read path %d: %w", i, err)
		}

		p, err := pnode.ParsePath(string(buf))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
		}
		paths[i] = p
	}
	return paths, nil
}

func appendErrorResponse(dst []byte, err error) []byte {
	msg := err.Error()
	if len(msg) > math.MaxUint16 {
		msg = msg[:math.MaxUint16]
	}
	dst = append(dst, statusError)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(msg)))
	return append(dst, msg...)
}

func readErrorMessage(r io.Reader) error {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return fmt.Errorf("failed to read error length: %w", err)
	}
	msg := make([]byte, binary.BigEndian.Uint16(b[:]))
	if _, err := io.ReadFull(r, msg); err != nil {
		return fmt.Errorf("failed to read error message: %w", err)
	}
	return &RemoteError{Msg: string(msg)}
}
