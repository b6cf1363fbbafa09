package transport

import (
	"context"
	"io"
	"sync"

	ircerr "tinyirc/internal/errors"
)

// Fake is a deterministic in-memory [Transport].  Tests queue inbound
// chunks with Push, end the stream with Hangup, and inspect what the
// client sent with Written.  It is safe for use from a test goroutine
// while another goroutine drives the client.
type Fake struct {
	// ConnectErr, when set, makes Connect fail with it.
	ConnectErr error
	// WriteErr, when set, makes every Write fail with it.
	WriteErr error
	// ShortWrite, when positive, caps each Write at that many bytes.
	ShortWrite int

	mu        sync.Mutex
	connected bool
	hungUp    bool
	inbound   [][]byte
	writes    []string
	host      string
	port      int
	connects  int
	closes    int
}

// NewFake returns an unconnected Fake.
func NewFake() *Fake { return &Fake{} }

// Push queues one chunk for a future Read.  Chunks are returned one per
// Read call, split further only if the caller's buffer is too small.
func (f *Fake) Push(chunk string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbound = append(f.inbound, []byte(chunk))
}

// Hangup makes Read report remote closure once queued data is drained.
func (f *Fake) Hangup() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hungUp = true
}

// Connect records the address and marks the fake connected.
func (f *Fake) Connect(_ context.Context, host string, port int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.connects++
	f.host, f.port = host, port
	if f.ConnectErr != nil {
		return ircerr.Wrap("dial", host, f.ConnectErr)
	}
	f.connected = true
	f.hungUp = false
	return nil
}

// Read pops the next queued chunk.
func (f *Fake) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.connected {
		return 0, ircerr.ErrNotConnected
	}
	if len(f.inbound) == 0 {
		if f.hungUp {
			return 0, io.EOF
		}
		return 0, ircerr.ErrWouldBlock
	}

	chunk := f.inbound[0]
	n := copy(p, chunk)
	if n < len(chunk) {
		f.inbound[0] = chunk[n:]
	} else {
		f.inbound = f.inbound[1:]
	}
	return n, nil
}

// Write records p (truncated to ShortWrite when set).
func (f *Fake) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.connected {
		return 0, ircerr.ErrNotConnected
	}
	if f.WriteErr != nil {
		return 0, f.WriteErr
	}
	n := len(p)
	if f.ShortWrite > 0 && n > f.ShortWrite {
		n = f.ShortWrite
	}
	f.writes = append(f.writes, string(p[:n]))
	return n, nil
}

// Close marks the fake disconnected.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	f.closes++
	return nil
}

// Written returns every Write payload so far, CRLF included.
func (f *Fake) Written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

// Connects returns how many times Connect was called.
func (f *Fake) Connects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

// Closes returns how many times Close was called.
func (f *Fake) Closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

// Addr returns the host and port of the last Connect.
func (f *Fake) Addr() (string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.host, f.port
}
