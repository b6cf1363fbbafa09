package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	ircerr "tinyirc/internal/errors"
	"tinyirc/util"
)

// DefaultPollTimeout bounds how long a Stream read may wait for data.
const DefaultPollTimeout = time.Millisecond

// Stream is a [Transport] over a connection obtained from a [Dialer].
// Reads are made non-blocking with a short read deadline, so the caller's
// tick loop never stalls on a quiet server.  Connections without
// deadline support, such as channels forwarded over SSH, are read by a
// background goroutine instead.
type Stream struct {
	Dialer      Dialer
	PollTimeout time.Duration
	Logger      *util.Logger

	conn net.Conn
	addr string
	pump *readPump
}

// NewStream returns a Stream that dials through d.
func NewStream(d Dialer, logger *util.Logger) *Stream {
	return &Stream{Dialer: d, PollTimeout: DefaultPollTimeout, Logger: logger}
}

// Connect dials host:port over TCP.  A dial that runs out of time
// reports ErrTimeout.
func (s *Stream) Connect(ctx context.Context, host string, port int) error {
	addr := util.FormatAddr(host, port)
	if s.conn != nil {
		return fmt.Errorf("connect %s: already connected to %s", addr, s.addr)
	}

	s.Logger.Verbose("dialing %s", addr)
	conn, err := s.Dialer.Dial(ctx, "tcp", addr)
	if err != nil {
		if ircerr.IsTimeout(err) {
			err = fmt.Errorf("%w: %w", ircerr.ErrTimeout, err)
		}
		return ircerr.Wrap("dial", addr, err)
	}

	s.conn = conn
	s.addr = addr
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		s.Logger.Debug("%s: no read deadlines (%v), reading in background", addr, err)
		s.pump = startReadPump(conn)
	}
	s.Logger.Verbose("connected to %s", conn.RemoteAddr())
	return nil
}

// Read returns data that is already waiting, or ErrWouldBlock.
func (s *Stream) Read(p []byte) (int, error) {
	if s.conn == nil {
		return 0, ircerr.ErrNotConnected
	}

	wait := s.PollTimeout
	if wait <= 0 {
		wait = DefaultPollTimeout
	}

	var n int
	var err error
	if s.pump != nil {
		n, err = s.pump.read(p, wait)
	} else {
		if err := s.conn.SetReadDeadline(time.Now().Add(wait)); err != nil {
			return 0, ircerr.Wrap("read", s.addr, err)
		}
		n, err = s.conn.Read(p)
	}
	if n > 0 {
		// Any error comes back on the next call.
		return n, nil
	}
	switch {
	case err == nil, ircerr.IsWouldBlock(err):
		return 0, ircerr.ErrWouldBlock
	case ircerr.IsClosed(err):
		return 0, io.EOF
	default:
		return 0, ircerr.Wrap("read", s.addr, err)
	}
}

// Write sends p with one call on the underlying connection.
func (s *Stream) Write(p []byte) (int, error) {
	if s.conn == nil {
		return 0, ircerr.ErrNotConnected
	}
	n, err := s.conn.Write(p)
	if err != nil {
		return n, ircerr.Wrap("write", s.addr, err)
	}
	return n, nil
}

// Close closes the connection and the dialer.
func (s *Stream) Close() error {
	var connErr error
	if s.conn != nil {
		connErr = s.conn.Close()
		if s.pump != nil {
			s.pump.stop()
			s.pump = nil
		}
		s.conn = nil
		s.Logger.Verbose("closed connection to %s", s.addr)
	}
	return ircerr.Join(connErr, s.Dialer.Close())
}

// ── background reads ─────────────────────────────────────────────────

type readResult struct {
	data []byte
	err  error
}

// readPump turns blocking reads into polled ones.  The goroutine exits
// once the connection is closed and stop has been called.
type readPump struct {
	results chan readResult
	done    chan struct{}
	once    sync.Once

	pending []byte
	err     error
}

func startReadPump(r io.Reader) *readPump {
	p := &readPump{results: make(chan readResult, 1), done: make(chan struct{})}
	go p.run(r)
	return p
}

func (p *readPump) run(r io.Reader) {
	for {
		buf := make([]byte, 4096)
		n, err := r.Read(buf)
		if n > 0 && !p.send(readResult{data: buf[:n]}) {
			return
		}
		if err != nil {
			p.send(readResult{err: err})
			return
		}
	}
}

func (p *readPump) send(r readResult) bool {
	select {
	case p.results <- r:
		return true
	case <-p.done:
		return false
	}
}

// read copies buffered data into b, waiting at most wait for more.
func (p *readPump) read(b []byte, wait time.Duration) (int, error) {
	if len(p.pending) == 0 {
		if p.err != nil {
			return 0, p.err
		}
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case r := <-p.results:
			if r.err != nil {
				p.err = r.err
				return 0, r.err
			}
			p.pending = r.data
		case <-timer.C:
			return 0, ircerr.ErrWouldBlock
		}
	}
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

func (p *readPump) stop() { p.once.Do(func() { close(p.done) }) }
