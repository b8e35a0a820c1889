package pquic

import (
	"context"
	"fmt"
	"io"

	"github.com/gordian-engine/partials/pnode"
	"github.com/gordian-engine/partials/proof"
	"github.com/gordian-engine/partials/pwire"
	"github.com/quic-go/quic-go"
)

// Fetch requests a proof of paths over a new stream on qc.
// The returned proof is not verified;
// use [proof.VerifyPaths] against a trusted root.
//
// Canceling ctx abandons the request.
func Fetch(ctx context.Context, qc quic.Connection, paths ...pnode.Path) (proof.Proof, error) {
	req, err := appendRequest(nil, paths)
	if err != nil {
		return proof.Proof{}, err
	}

	st, err := qc.OpenStreamSync(ctx)
	if err != nil {
		return proof.Proof{}, fmt.Errorf("failed to open stream: %w", err)
	}
	return fetch(ctx, st, req)
}

func fetch(ctx context.Context, st stream, req []byte) (proof.Proof, error) {
	if d, ok := ctx.Deadline(); ok {
		if err := st.SetDeadline(d); err != nil {
			return proof.Proof{}, fmt.Errorf("failed to set stream deadline: %w", err)
		}
	}
	stop := context.AfterFunc(ctx, func() {
		st.CancelRead(codeCanceled)
		st.CancelWrite(codeCanceled)
	})
	defer stop()

	if _, err := st.Write(req); err != nil {
		return proof.Proof{}, fmt.Errorf("failed to write request: %w", err)
	}
	// Closing only ends our side; the response can still be read.
	if err := st.Close(); err != nil {
		return proof.Proof{}, fmt.Errorf("failed to close request stream: %w", err)
	}

	var status [1]byte
	if _, err := io.ReadFull(st, status[:]); err != nil {
		return proof.Proof{}, fmt.Errorf("failed to read response status: %w", err)
	}

	switch status[0] {
	case statusOK:
		var dec pwire.Decoder
		p, err := dec.Decode(st)
		if err != nil {
			return proof.Proof{}, fmt.Errorf("failed to decode proof: %w", err)
		}
		return p, nil
	case statusError:
		return proof.Proof{}, readErrorMessage(st)
	default:
		st.CancelRead(codeMalformed)
		return proof.Proof{}, fmt.Errorf("unknown response status 0x%x", status[0])
	}
}
