package config

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	ircerr "tinyirc/internal/errors"
)

// ── ParseServerSpec ──────────────────────────────────────────────────

func TestParseServerSpec(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"host only", "irc.libera.chat", "irc.libera.chat", 6667, false},
		{"host and port", "irc.example.net:6697", "irc.example.net", 6697, false},
		{"ipv4", "127.0.0.1:7000", "127.0.0.1", 7000, false},
		{"bracketed ipv6", "[::1]:6668", "::1", 6668, false},
		{"bracketed ipv6 no port", "[2001:db8::1]", "2001:db8::1", 6667, false},
		{"bare ipv6", "::1", "::1", 6667, false},
		{"surrounding space", "  irc.example.net  ", "irc.example.net", 6667, false},
		{"empty", "", "", 0, true},
		{"bad port", "irc.example.net:abc", "", 0, true},
		{"port out of range", "irc.example.net:70000", "", 0, true},
		{"port zero", "irc.example.net:0", "", 0, true},
		{"empty host", ":6667", "", 0, true},
		{"unterminated bracket", "[::1:6667", "", 0, true},
		{"junk after bracket", "[::1]x", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := ParseServerSpec(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if host != tt.wantHost || port != tt.wantPort {
				t.Errorf("got (%q, %d), want (%q, %d)", host, port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

// ── ParseTunnelSpec ──────────────────────────────────────────────────

func TestParseTunnelSpec(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantUser string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"full", "admin@bastion.example.com:2222", "admin", "bastion.example.com", 2222, false},
		{"no port", "root@gateway", "root", "gateway", 22, false},
		{"no user", "jump-host:2200", "", "jump-host", 2200, false},
		{"host only", "gateway.local", "", "gateway.local", 22, false},
		{"bad port", "user@host:999999", "", "", 0, true},
		{"empty", "", "", "", 0, true},
		{"colon only", ":", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, host, port, err := ParseTunnelSpec(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if user != tt.wantUser || host != tt.wantHost || port != tt.wantPort {
				t.Errorf("got (%q, %q, %d), want (%q, %q, %d)",
					user, host, port, tt.wantUser, tt.wantHost, tt.wantPort)
			}
		})
	}
}

// ── ParseChannels ────────────────────────────────────────────────────

func TestParseChannels(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"#go", []string{"#go"}},
		{"#go,#irc", []string{"#go", "#irc"}},
		{"#go, #irc ,  #test", []string{"#go", "#irc", "#test"}},
		{"go irc", []string{"#go", "#irc"}},
		{"&local,+modeless,!safe", []string{"&local", "+modeless", "!safe"}},
		{"#go,#go,go", []string{"#go"}},
		{"", nil},
		{" , ,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseChannels(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseChannels(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ── Fill ─────────────────────────────────────────────────────────────

func TestFill_UserDefaultsToNick(t *testing.T) {
	cfg := &Config{Nick: "gopher"}
	if err := cfg.Fill(); err != nil {
		t.Fatal(err)
	}
	if cfg.User != "gopher" {
		t.Errorf("User = %q, want gopher", cfg.User)
	}
	if cfg.RealName != DefaultRealName {
		t.Errorf("RealName = %q, want %q", cfg.RealName, DefaultRealName)
	}
}

func TestFill_Tunnel(t *testing.T) {
	cfg := &Config{Nick: "gopher", TunnelSpec: "admin@bastion:2222"}
	if err := cfg.Fill(); err != nil {
		t.Fatal(err)
	}
	if !cfg.TunnelEnabled || cfg.TunnelUser != "admin" || cfg.TunnelHost != "bastion" || cfg.TunnelPort != 2222 {
		t.Errorf("tunnel = (%v, %q, %q, %d)", cfg.TunnelEnabled, cfg.TunnelUser, cfg.TunnelHost, cfg.TunnelPort)
	}
}

func TestFill_BadTunnel(t *testing.T) {
	cfg := &Config{Nick: "gopher", TunnelSpec: "user@host:0x"}
	err := cfg.Fill()
	var ce *ircerr.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigError, got %T: %v", err, err)
	}
	if ce.Field != "tunnel" {
		t.Errorf("Field = %q, want tunnel", ce.Field)
	}
}

// ── Validate ─────────────────────────────────────────────────────────

func validConfig() *Config {
	cfg := Default()
	cfg.Server = "irc.example.net"
	cfg.Nick = "gopher"
	cfg.User = "gopher"
	return cfg
}

func TestValidate_Default(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"no server", func(c *Config) { c.Server = "" }, "server"},
		{"port zero", func(c *Config) { c.Port = 0 }, "server"},
		{"no nick", func(c *Config) { c.Nick = "" }, "nick"},
		{"nick with space", func(c *Config) { c.Nick = "go pher" }, "nick"},
		{"nick starting with #", func(c *Config) { c.Nick = "#gopher" }, "nick"},
		{"user with space", func(c *Config) { c.User = "a b" }, "user"},
		{"realname with newline", func(c *Config) { c.RealName = "a\r\nQUIT" }, "realname"},
		{"channel with comma", func(c *Config) { c.Channels = []string{"#a,b"} }, "join"},
		{"zero tick", func(c *Config) { c.Tick = 0 }, "tick"},
		{"zero poll", func(c *Config) { c.PollTimeout = 0 }, "poll-timeout"},
		{"poll above tick", func(c *Config) { c.PollTimeout = time.Second }, "poll-timeout"},
		{"unknown encoding", func(c *Config) { c.Encoding = "ebcdic" }, "encoding"},
		{"tunnel without host", func(c *Config) { c.TunnelEnabled = true }, "tunnel"},
		{"password without tunnel", func(c *Config) { c.SSHPassword = true }, "ssh-password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var ce *ircerr.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ConfigError, got %T: %v", err, err)
			}
			if ce.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ce.Field, tt.wantField)
			}
		})
	}
}

// TestValidate_ErrorMessages verifies that Validate returns actionable
// error messages with hints.
func TestValidate_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"server has hint", func(c *Config) { c.Server = "" }, "hint:"},
		{"nick has hint", func(c *Config) { c.Nick = "" }, "TINYIRC_NICK"},
		{"encoding lists choices", func(c *Config) { c.Encoding = "x" }, "latin1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestKnownEncoding(t *testing.T) {
	for _, name := range []string{"utf-8", "UTF-8", "latin1", "cp1252", "koi8-r"} {
		if !KnownEncoding(name) {
			t.Errorf("KnownEncoding(%q) = false", name)
		}
	}
	if KnownEncoding("ebcdic") {
		t.Error("KnownEncoding(ebcdic) = true")
	}
}
