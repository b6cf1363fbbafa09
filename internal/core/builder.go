package core

import (
	"tinyirc/config"
	"tinyirc/internal/client"
	"tinyirc/internal/retry"
	"tinyirc/internal/transport"
	"tinyirc/util"
)

// BuildTransport returns the server transport for cfg: a Stream over a
// plain TCP dialer, or over an SSH gateway when a tunnel is configured.
func BuildTransport(cfg *config.Config, logger *util.Logger) *transport.Stream {
	s := transport.NewStream(buildDialer(cfg, logger), logger)
	if cfg.PollTimeout > 0 {
		s.PollTimeout = cfg.PollTimeout
	}
	return s
}

// BuildIdentity extracts who to connect as from cfg.
func BuildIdentity(cfg *config.Config) client.Identity {
	return client.Identity{
		Server:   cfg.Server,
		Port:     cfg.Port,
		Nick:     cfg.Nick,
		User:     cfg.User,
		RealName: cfg.RealName,
	}
}

// BuildBackoff returns the reconnect policy, or nil when reconnecting
// is disabled.
func BuildBackoff(cfg *config.Config) *retry.Backoff {
	if !cfg.Reconnect {
		return nil
	}
	return retry.NewBackoff(config.DefaultReconnectBackoff, config.DefaultMaxReconnectBackoff, cfg.MaxRetries)
}

// ── shared helpers ───────────────────────────────────────────────────

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.TunnelEnabled {
		return transport.NewSSHDialer(&transport.GatewayConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			ConnTimeout:   cfg.ConnTimeout,
		}, logger)
	}
	return &transport.TCPDialer{Timeout: cfg.ConnTimeout}
}
