// Package transport provides the byte-stream abstraction the IRC client
// reads from and writes to.  Transports handle the "how" of data
// movement (plain TCP, an SSH gateway, or an in-memory fake for tests)
// independent of the protocol spoken over them.
package transport

import (
	"context"
	"net"
)

// Transport is a single server connection with a non-blocking read side.
//
// Read never waits for data.  It reports (0, io.EOF) once the remote end
// has closed the connection and (0, errors.ErrWouldBlock) when nothing
// is available yet.  Any other error is treated by callers as "no data
// this tick".
type Transport interface {
	// Connect opens the connection to host:port.
	Connect(ctx context.Context, host string, port int) error

	// Read copies whatever data is ready into p.
	Read(p []byte) (int, error)

	// Write sends p in a single call.  A short write is not retried.
	Write(p []byte) (int, error)

	// Close releases the connection.  Closing twice is harmless.
	Close() error
}

// Dialer opens outbound network connections.  Implementations include
// a plain TCP dialer and an SSH dialer that routes traffic through an
// encrypted gateway.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH session).  Stateless dialers return nil.
	Close() error
}
