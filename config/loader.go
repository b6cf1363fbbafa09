package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Profile file  (file.go, --config)
//   4. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the TINYIRC_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("TINYIRC_SERVER"); v != "" {
		if host, port, err := ParseServerSpec(v); err == nil {
			cfg.Server, cfg.Port = host, port
		}
	}
	if v := os.Getenv("TINYIRC_NICK"); v != "" {
		cfg.Nick = v
	}
	if v := os.Getenv("TINYIRC_USER"); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("TINYIRC_REALNAME"); v != "" {
		cfg.RealName = v
	}
	if v := os.Getenv("TINYIRC_JOIN"); v != "" {
		cfg.Channels = ParseChannels(v)
	}

	// Session
	if v := envDuration("TINYIRC_TICK"); v > 0 {
		cfg.Tick = v
	}
	if v := envInt("TINYIRC_TIMEOUT"); v > 0 {
		cfg.ConnTimeout = secondsDuration(v)
	}
	if v := os.Getenv("TINYIRC_ENCODING"); v != "" {
		cfg.Encoding = strings.ToLower(v)
	}
	if envBool("TINYIRC_RECONNECT") {
		cfg.Reconnect = true
	}

	// SSH gateway
	if v := os.Getenv("TINYIRC_TUNNEL"); v != "" {
		cfg.TunnelSpec = v
	}
	if v := os.Getenv("TINYIRC_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("TINYIRC_SSH_PASSWORD") {
		cfg.SSHPassword = true
	}
	if envBool("TINYIRC_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("TINYIRC_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}
	if v := os.Getenv("TINYIRC_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Output
	if v := envInt("TINYIRC_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

// envDuration accepts Go durations ("50ms") or whole milliseconds.
func envDuration(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return 0
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
