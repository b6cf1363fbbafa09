package core

import (
	"testing"
	"time"

	"tinyirc/config"
	"tinyirc/internal/client"
	"tinyirc/internal/transport"
	"tinyirc/util"
)

// TestBuildTransport_TCP verifies a plain config dials directly.
func TestBuildTransport_TCP(t *testing.T) {
	cfg := config.Default()
	cfg.ConnTimeout = 5 * time.Second
	logger := util.Nop()

	s := BuildTransport(cfg, logger)
	d, ok := s.Dialer.(*transport.TCPDialer)
	if !ok {
		t.Fatalf("expected *TCPDialer, got %T", s.Dialer)
	}
	if d.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", d.Timeout)
	}
	if s.PollTimeout != config.DefaultPollTimeout {
		t.Errorf("PollTimeout = %v", s.PollTimeout)
	}
}

// TestBuildTransport_Tunnel verifies a tunnel config routes through SSH.
// Nothing is dialed until the first Connect.
func TestBuildTransport_Tunnel(t *testing.T) {
	cfg := config.Default()
	cfg.TunnelSpec = "admin@bastion:2222"
	if err := cfg.Fill(); err != nil {
		t.Fatal(err)
	}

	s := BuildTransport(cfg, util.Nop())
	if _, ok := s.Dialer.(*transport.SSHDialer); !ok {
		t.Errorf("expected *SSHDialer, got %T", s.Dialer)
	}
}

func TestBuildTransport_PollTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.PollTimeout = 5 * time.Millisecond

	if s := BuildTransport(cfg, util.Nop()); s.PollTimeout != 5*time.Millisecond {
		t.Errorf("PollTimeout = %v, want 5ms", s.PollTimeout)
	}
}

func TestBuildIdentity(t *testing.T) {
	cfg := &config.Config{
		Server: "irc.example.net", Port: 6697,
		Nick: "gopher", User: "go", RealName: "Go Pher",
	}
	want := client.Identity{Server: "irc.example.net", Port: 6697, Nick: "gopher", User: "go", RealName: "Go Pher"}
	if got := BuildIdentity(cfg); got != want {
		t.Errorf("BuildIdentity = %+v, want %+v", got, want)
	}
}

func TestBuildBackoff(t *testing.T) {
	cfg := config.Default()
	if b := BuildBackoff(cfg); b != nil {
		t.Errorf("reconnect disabled: got %+v, want nil", b)
	}

	cfg.Reconnect = true
	cfg.MaxRetries = 4
	b := BuildBackoff(cfg)
	if b == nil {
		t.Fatal("reconnect enabled: got nil")
	}
	if b.MaxAttempts != 4 || b.InitialDelay != config.DefaultReconnectBackoff || !b.Jitter {
		t.Errorf("backoff = %+v", b)
	}
}
