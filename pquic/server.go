package pquic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordian-engine/partials/proof"
	"github.com/gordian-engine/partials/pwire"
	"github.com/quic-go/quic-go"
)

// ServerConfig is the configuration for [NewServer].
type ServerConfig struct {
	Prover *proof.Prover

	// MaxPaths bounds the number of paths in a single request.
	// Defaults to 1024 if zero.
	MaxPaths int

	// StreamTimeout bounds the time to read a request
	// and write its response.
	// Defaults to 5 seconds if zero.
	StreamTimeout time.Duration
}

// Server answers proof requests on accepted QUIC connections.
type Server struct {
	log *slog.Logger

	prover   *proof.Prover
	maxPaths int
	timeout  time.Duration

	wg sync.WaitGroup
}

func NewServer(log *slog.Logger, cfg ServerConfig) *Server {
	if cfg.Prover == nil {
		panic(errors.New("BUG: ServerConfig.Prover must not be nil"))
	}
	if cfg.MaxPaths < 0 || cfg.StreamTimeout < 0 {
		panic(fmt.Errorf(
			"BUG: MaxPaths and StreamTimeout must be non-negative (got %d, %s)",
			cfg.MaxPaths, cfg.StreamTimeout,
		))
	}

	s := &Server{
		log:      log,
		prover:   cfg.Prover,
		maxPaths: cfg.MaxPaths,
		timeout:  cfg.StreamTimeout,
	}
	if s.maxPaths == 0 {
		s.maxPaths = 1024
	}
	if s.timeout == 0 {
		s.timeout = 5 * time.Second
	}
	return s
}

// Serve accepts connections from ql until ctx is canceled
// or the listener fails.
// It waits for in-flight requests to finish before returning.
func (s *Server) Serve(ctx context.Context, ql *quic.Listener) error {
	defer s.wg.Wait()

	for {
		qc, err := ql.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}
			return fmt.Errorf("failed to accept connection: %w", err)
		}

		s.wg.Add(1)
		go s.handleConn(ctx, qc)
	}
}

func (s *Server) handleConn(ctx context.Context, qc quic.Connection) {
	defer s.wg.Done()

	log := s.log.With("remote", qc.RemoteAddr().String())
	log.Debug("Accepted connection")

	for {
		st, err := qc.AcceptStream(ctx)
		if err != nil {
			// The peer closing the connection is the normal way for this to end.
			log.Debug("Stopped accepting streams", "err", err)
			return
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleStream(log, st)
		}()
	}
}

// stream is the subset of a QUIC stream the server and client use.
type stream interface {
	Read([]byte) (int, error)
	Write([]byte) (int, error)
	Close() error
	CancelRead(quic.StreamErrorCode)
	CancelWrite(quic.StreamErrorCode)
	SetDeadline(time.Time) error
}

func (s *Server) handleStream(log *slog.Logger, st stream) {
	if err := st.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		log.Debug("Failed to set stream deadline", "err", err)
		st.CancelRead(codeCanceled)
		st.CancelWrite(codeCanceled)
		return
	}

	paths, err := readRequest(st, s.maxPaths)
	if err != nil {
		log.Debug("Rejecting proof request", "err", err)
		s.respondError(log, st, err)
		return
	}

	p, err := s.prover.Prove(paths...)
	if err != nil {
		log.Debug("Failed to build requested proof", "n_paths", len(paths), "err", err)
		s.respondError(log, st, err)
		return
	}

	if _, err := st.Write([]byte{statusOK}); err != nil {
		log.Debug("Failed to write response status", "err", err)
		return
	}
	var enc pwire.Encoder
	if err := enc.Encode(st, p); err != nil {
		log.Debug("Failed to write proof", "err", err)
		return
	}
	if err := st.Close(); err != nil {
		log.Debug("Failed to close stream", "err", err)
		return
	}

	log.Debug("Served proof", "n_paths", len(paths), "n_chunks", p.Len())
}

func (s *Server) respondError(log *slog.Logger, st stream, err error) {
	// We are not reading the rest of the request.
	st.CancelRead(codeMalformed)

	if _, werr := st.Write(appendErrorResponse(nil, err)); werr != nil {
		log.Debug("Failed to write error response", "err", werr)
		return
	}
	_ = st.Close()
}
