// Package config defines the runtime configuration for tinyirc and
// provides helpers for parsing server, tunnel and channel specifications.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ircerr "tinyirc/internal/errors"
)

// Config holds every tuneable for a single tinyirc session.
type Config struct {
	// ── Server ───────────────────────────────────────────────────────
	Server   string   `yaml:"server"`
	Port     int      `yaml:"port"`
	Nick     string   `yaml:"nick"`
	User     string   `yaml:"user"`
	RealName string   `yaml:"realname"`
	Channels []string `yaml:"channels"` // joined after connect

	// ── Session ──────────────────────────────────────────────────────
	Tick        time.Duration `yaml:"tick"`         // Update interval
	PollTimeout time.Duration `yaml:"poll_timeout"` // per-read deadline
	ConnTimeout time.Duration `yaml:"connect_timeout"`
	Encoding    string        `yaml:"encoding"` // display charset for inbound text
	Reconnect   bool          `yaml:"reconnect"`
	MaxRetries  int           `yaml:"max_retries"`

	// ── SSH gateway ──────────────────────────────────────────────────
	TunnelSpec     string `yaml:"tunnel"` // raw [user@]host[:port] from -T
	TunnelEnabled  bool   `yaml:"-"`
	TunnelUser     string `yaml:"-"`
	TunnelHost     string `yaml:"-"`
	TunnelPort     int    `yaml:"-"`
	SSHKeyPath     string `yaml:"ssh_key"`
	SSHPassword    bool   `yaml:"ssh_password"` // true → prompt interactively
	UseSSHAgent    bool   `yaml:"ssh_agent"`
	StrictHostKey  bool   `yaml:"strict_hostkey"`
	KnownHostsPath string `yaml:"known_hosts"`

	// ── Output ───────────────────────────────────────────────────────
	Verbose int  `yaml:"verbose"`
	DryRun  bool `yaml:"-"`
}

// Default returns a Config populated from defaults.go.
func Default() *Config {
	return &Config{
		Port:        DefaultPort,
		RealName:    DefaultRealName,
		Tick:        DefaultTick,
		PollTimeout: DefaultPollTimeout,
		ConnTimeout: DefaultConnTimeout,
		Encoding:    DefaultEncoding,
		MaxRetries:  DefaultMaxReconnectAttempts,
	}
}

// Fill derives the user name from the nick when it was not given, and
// expands TunnelSpec into the Tunnel* fields.
func (c *Config) Fill() error {
	if c.User == "" {
		c.User = c.Nick
	}
	if c.RealName == "" {
		c.RealName = DefaultRealName
	}
	if c.TunnelSpec == "" {
		c.TunnelEnabled = false
		return nil
	}
	user, host, port, err := ParseTunnelSpec(c.TunnelSpec)
	if err != nil {
		return &ircerr.ConfigError{
			Field:   "tunnel",
			Value:   c.TunnelSpec,
			Message: err.Error(),
			Hint:    "use [user@]host[:port], e.g. -T admin@bastion.example.com",
		}
	}
	c.TunnelEnabled = true
	c.TunnelUser, c.TunnelHost, c.TunnelPort = user, host, port
	return nil
}

// ── Server-spec parser ───────────────────────────────────────────────

// ParseServerSpec splits "host[:port]" into its parts.  Port defaults
// to DefaultPort.  IPv6 literals must be bracketed ("[::1]:6667").
func ParseServerSpec(spec string) (host string, port int, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", 0, fmt.Errorf("server is required")
	}

	host, portStr := spec, ""
	switch {
	case strings.HasPrefix(spec, "["):
		end := strings.Index(spec, "]")
		if end < 0 {
			return "", 0, fmt.Errorf("invalid server %q: missing ']'", spec)
		}
		host = spec[1:end]
		rest := spec[end+1:]
		if rest != "" {
			if !strings.HasPrefix(rest, ":") {
				return "", 0, fmt.Errorf("invalid server %q", spec)
			}
			portStr = rest[1:]
		}
	case strings.Count(spec, ":") == 1:
		i := strings.IndexByte(spec, ':')
		host, portStr = spec[:i], spec[i+1:]
	}

	if host == "" {
		return "", 0, fmt.Errorf("invalid server %q: empty host", spec)
	}
	port = DefaultPort
	if portStr != "" {
		port, err = strconv.Atoi(portStr)
		if err != nil || port < 1 || port > 65535 {
			return "", 0, fmt.Errorf("invalid server port %q", portStr)
		}
	}
	return host, port, nil
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q, expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	return user, host, port, nil
}

// ── Channel list ─────────────────────────────────────────────────────

// ParseChannels splits a comma or space separated list such as
// "#go, #irc" into channel names.  Names without a channel prefix get
// '#' prepended; duplicates are dropped.
func ParseChannels(list string) []string {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	var out []string
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if !strings.ContainsRune("#&+!", rune(f[0])) {
			f = "#" + f
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// ── Validation ───────────────────────────────────────────────────────

// nickRe rejects only what would corrupt the NICK line.
var nickRe = regexp.MustCompile(`^[^\s:#&!@,*?][^\s!@,*?]*$`)

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Server == "" {
		return &ircerr.ConfigError{
			Field:   "server",
			Message: "server is required",
			Hint:    "pass it as an argument or with -s, e.g. tinyirc irc.libera.chat",
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &ircerr.ConfigError{Field: "server", Value: c.Port, Message: "port out of range 1-65535"}
	}
	if c.Nick == "" {
		return &ircerr.ConfigError{
			Field:   "nick",
			Message: "nickname is required",
			Hint:    "use -n <nick> or set TINYIRC_NICK",
		}
	}
	if !nickRe.MatchString(c.Nick) {
		return &ircerr.ConfigError{Field: "nick", Value: c.Nick, Message: "nickname contains invalid characters"}
	}
	if strings.ContainsAny(c.User, " \r\n") {
		return &ircerr.ConfigError{Field: "user", Value: c.User, Message: "user name must be a single word"}
	}
	if strings.ContainsAny(c.RealName, "\r\n") {
		return &ircerr.ConfigError{Field: "realname", Message: "real name must not contain line breaks"}
	}
	for _, ch := range c.Channels {
		if strings.ContainsAny(ch, " ,\a\r\n") {
			return &ircerr.ConfigError{Field: "join", Value: ch, Message: "invalid channel name"}
		}
	}
	if c.Tick <= 0 {
		return &ircerr.ConfigError{Field: "tick", Value: c.Tick, Message: "must be positive"}
	}
	if c.PollTimeout <= 0 {
		return &ircerr.ConfigError{Field: "poll-timeout", Value: c.PollTimeout, Message: "must be positive"}
	}
	if c.PollTimeout > c.Tick {
		return &ircerr.ConfigError{
			Field:   "poll-timeout",
			Value:   c.PollTimeout,
			Message: "must not exceed the tick interval",
			Hint:    fmt.Sprintf("tick is %v", c.Tick),
		}
	}
	if !KnownEncoding(c.Encoding) {
		return &ircerr.ConfigError{
			Field:   "encoding",
			Value:   c.Encoding,
			Message: "unknown encoding",
			Hint:    "one of " + strings.Join(Encodings(), ", "),
		}
	}
	if c.TunnelEnabled && c.TunnelHost == "" {
		return &ircerr.ConfigError{Field: "tunnel", Message: "tunnel host is required"}
	}
	if c.SSHPassword && !c.TunnelEnabled {
		return &ircerr.ConfigError{
			Field:   "ssh-password",
			Message: "only meaningful with an SSH gateway",
			Hint:    "add -T [user@]gateway",
		}
	}
	return nil
}
