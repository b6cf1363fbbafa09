package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	ircerr "tinyirc/internal/errors"
	"tinyirc/util"
)

// GatewayConfig describes the SSH host that IRC traffic is forwarded
// through when the server is not directly reachable.
type GatewayConfig struct {
	User          string
	Host          string
	Port          int
	KeyPath       string
	PromptPass    bool
	UseAgent      bool
	StrictHostKey bool
	KnownHosts    string
	ConnTimeout   time.Duration
}

// Gateway is an SSH client connection used to open forwarded TCP
// connections with ssh.Client.Dial.
type Gateway struct {
	config *GatewayConfig
	logger *util.Logger

	mu     sync.RWMutex
	client *ssh.Client
	agent  net.Conn // ssh-agent connection backing client's auth, if any
	alive  bool
}

// NewGateway creates a gateway that is ready to [Gateway.Connect].
func NewGateway(cfg *GatewayConfig, logger *util.Logger) *Gateway {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.ConnTimeout == 0 {
		cfg.ConnTimeout = 30 * time.Second
	}
	return &Gateway{config: cfg, logger: logger}
}

// Connect dials the SSH host and completes the handshake.
func (g *Gateway) Connect(ctx context.Context) error {
	hostKeys, err := g.config.hostKeyCallback()
	if err != nil {
		return ircerr.WrapSSH("hostkey", g.config.Host, g.config.Port, err)
	}

	auth, agentConn, err := g.config.authMethods()
	if err != nil {
		return ircerr.WrapSSH("auth", g.config.Host, g.config.Port, err)
	}
	release := func() {
		if agentConn != nil {
			agentConn.Close()
		}
	}

	addr := util.FormatAddr(g.config.Host, g.config.Port)
	g.logger.Debug("ssh: dialing %s as %s", addr, g.config.User)

	var d net.Dialer
	tcpConn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		release()
		return ircerr.Wrap("dial", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(tcpConn, addr, &ssh.ClientConfig{
		User:            g.config.User,
		Auth:            auth,
		HostKeyCallback: hostKeys,
		Timeout:         g.config.ConnTimeout,
	})
	if err != nil {
		tcpConn.Close()
		release()
		return ircerr.WrapSSH("handshake", g.config.Host, g.config.Port, err)
	}

	client := ssh.NewClient(sshConn, chans, reqs)

	g.mu.Lock()
	g.closeLocked() // stale connection from before a drop
	g.client = client
	g.agent = agentConn
	g.alive = true
	g.mu.Unlock()

	go g.watch(client)
	return nil
}

// Dial opens a forwarded connection to address on the far side.
func (g *Gateway) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	g.mu.RLock()
	client, alive := g.client, g.alive
	g.mu.RUnlock()

	if !alive || client == nil {
		return nil, ircerr.ErrTunnelClosed
	}

	g.logger.Debug("ssh: forwarding %s %s", network, address)
	conn, err := client.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("gateway dial %s: %w", address, err)
	}
	return conn, nil
}

// Close shuts down the SSH connection and the agent connection used to
// authenticate it.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.alive = false
	return g.closeLocked()
}

func (g *Gateway) closeLocked() error {
	var err error
	if g.client != nil {
		err = g.client.Close()
		g.client = nil
	}
	if g.agent != nil {
		g.agent.Close()
		g.agent = nil
	}
	return err
}

// IsAlive reports whether the SSH connection is still up.
func (g *Gateway) IsAlive() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.alive
}

// watch blocks until client's connection ends and clears the alive flag.
func (g *Gateway) watch(client *ssh.Client) {
	err := client.Wait()

	g.mu.Lock()
	if g.client == client {
		g.alive = false
	}
	g.mu.Unlock()

	g.logger.Debug("ssh: gateway connection ended: %v", err)
}

// ── dialer ───────────────────────────────────────────────────────────

// SSHDialer routes connections through a [Gateway].  The gateway is
// connected lazily on the first Dial and torn down on Close.
type SSHDialer struct {
	gateway *Gateway
	logger  *util.Logger
}

// NewSSHDialer creates a dialer that forwards connections through an
// SSH gateway.  Nothing is dialed until the first Dial.
func NewSSHDialer(cfg *GatewayConfig, logger *util.Logger) *SSHDialer {
	return &SSHDialer{gateway: NewGateway(cfg, logger), logger: logger}
}

// Dial connects to address through the gateway, (re)establishing the
// SSH connection first when it is down.
func (d *SSHDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	if !d.gateway.IsAlive() {
		cfg := d.gateway.config
		d.logger.Verbose("establishing SSH gateway %s@%s:%d", cfg.User, cfg.Host, cfg.Port)
		if err := d.gateway.Connect(ctx); err != nil {
			return nil, fmt.Errorf("gateway: %w", err)
		}
		d.logger.Verbose("SSH gateway established")
	}
	return d.gateway.Dial(ctx, network, address)
}

// Close tears down the gateway.
func (d *SSHDialer) Close() error { return d.gateway.Close() }
