// Package cmd wires up the CLI flags and runs an interactive IRC session.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"tinyirc/config"
	"tinyirc/internal/client"
	"tinyirc/internal/console"
	"tinyirc/internal/core"
	"tinyirc/internal/metrics"
	"tinyirc/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X tinyirc/cmd.version=0.2.0"
var version = "0.1.0" //nolint:gochecknoglobals

// flagValues holds raw flag values; they are applied to the Config only
// when the flag was given, so file and environment settings survive.
type flagValues struct {
	server, nick, user, realname, join string
	configPath                         string

	tunnel, sshKey, knownHosts           string
	sshPassword, sshAgent, strictHostKey bool
	tick, pollTimeout, timeout           time.Duration
	encoding                             string
	reconnect                            bool
	maxRetries                           int

	verbose                       int
	dryRun, showVersion, showHelp bool
}

func newFlagSet(v *flagValues) *flag.FlagSet {
	fs := flag.NewFlagSet("tinyirc", flag.ContinueOnError)
	fs.SortFlags = false

	// ── identity ─────────────────────────────────────────────────
	fs.StringVarP(&v.server, "server", "s", "", "Server as host[:port]")
	fs.StringVarP(&v.nick, "nick", "n", "", "Nickname")
	fs.StringVar(&v.user, "user", "", "User name (default: nick)")
	fs.StringVar(&v.realname, "realname", "", "Real name")
	fs.StringVarP(&v.join, "join", "j", "", "Channels to join after connecting (#a,#b)")
	fs.StringVarP(&v.configPath, "config", "c", "", "YAML profile file")

	// ── SSH gateway ──────────────────────────────────────────────
	fs.StringVarP(&v.tunnel, "tunnel", "T", "", "Reach the server through SSH [user@]host[:port]")
	fs.StringVar(&v.sshKey, "ssh-key", "", "SSH private key file")
	fs.BoolVar(&v.sshPassword, "ssh-password", false, "Prompt for SSH password")
	fs.BoolVar(&v.sshAgent, "ssh-agent", false, "Use SSH agent")
	fs.BoolVar(&v.strictHostKey, "strict-hostkey", false, "Verify SSH host keys")
	fs.StringVar(&v.knownHosts, "known-hosts", "", "Custom known_hosts path")

	// ── session ──────────────────────────────────────────────────
	fs.DurationVar(&v.tick, "tick", config.DefaultTick, "Update interval")
	fs.DurationVar(&v.pollTimeout, "poll-timeout", config.DefaultPollTimeout, "Per-read wait")
	fs.DurationVarP(&v.timeout, "timeout", "w", config.DefaultConnTimeout, "Connect timeout")
	fs.StringVar(&v.encoding, "encoding", config.DefaultEncoding,
		"Display charset ("+strings.Join(config.Encodings(), ", ")+")")
	fs.BoolVar(&v.reconnect, "reconnect", false, "Reconnect with backoff when the connection drops")
	fs.IntVar(&v.maxRetries, "max-retries", config.DefaultMaxReconnectAttempts, "Reconnect attempts (0 = unlimited)")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&v.verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&v.dryRun, "dry-run", false, "Validate configuration and exit")
	fs.BoolVar(&v.showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&v.showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }
	return fs
}

// Execute parses args and runs a session until the user quits.
func Execute(ctx context.Context, args []string) error {
	var v flagValues
	fs := newFlagSet(&v)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if v.showHelp || (len(args) == 0 && os.Getenv("TINYIRC_SERVER") == "") {
		printUsage(fs)
		return nil
	}
	if v.showVersion {
		fmt.Printf("tinyirc %s\n", version)
		return nil
	}

	cfg, err := buildConfig(fs, &v)
	if err != nil {
		return err
	}
	if cfg.DryRun {
		printConfig(os.Stdout, cfg)
		return nil
	}
	return run(ctx, cfg)
}

// buildConfig layers defaults, the profile file, the environment and
// finally the flags that were actually given.
func buildConfig(fs *flag.FlagSet, v *flagValues) (*config.Config, error) {
	cfg := config.Default()
	if v.configPath != "" {
		if err := config.LoadFile(v.configPath, cfg); err != nil {
			return nil, err
		}
	}
	config.LoadFromEnv(cfg)

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	var serverErr error
	set("server", func() { cfg.Server, cfg.Port, serverErr = config.ParseServerSpec(v.server) })
	set("nick", func() { cfg.Nick = v.nick })
	set("user", func() { cfg.User = v.user })
	set("realname", func() { cfg.RealName = v.realname })
	set("join", func() { cfg.Channels = config.ParseChannels(v.join) })
	set("tunnel", func() { cfg.TunnelSpec = v.tunnel })
	set("ssh-key", func() { cfg.SSHKeyPath = v.sshKey })
	set("ssh-password", func() { cfg.SSHPassword = v.sshPassword })
	set("ssh-agent", func() { cfg.UseSSHAgent = v.sshAgent })
	set("strict-hostkey", func() { cfg.StrictHostKey = v.strictHostKey })
	set("known-hosts", func() { cfg.KnownHostsPath = v.knownHosts })
	set("tick", func() { cfg.Tick = v.tick })
	set("poll-timeout", func() { cfg.PollTimeout = v.pollTimeout })
	set("timeout", func() { cfg.ConnTimeout = v.timeout })
	set("encoding", func() { cfg.Encoding = strings.ToLower(v.encoding) })
	set("reconnect", func() { cfg.Reconnect = v.reconnect })
	set("max-retries", func() { cfg.MaxRetries = v.maxRetries })
	set("verbose", func() { cfg.Verbose = v.verbose })
	cfg.DryRun = v.dryRun
	if serverErr != nil {
		return nil, fmt.Errorf("server: %w", serverErr)
	}

	// ── positional server ────────────────────────────────────────
	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		host, port, err := config.ParseServerSpec(rest[0])
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		cfg.Server, cfg.Port = host, port
	default:
		return nil, fmt.Errorf("too many arguments: %s", strings.Join(rest, " "))
	}

	if err := cfg.Fill(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run builds the components and runs the session.
func run(ctx context.Context, cfg *config.Config) error {
	logger := util.NewLogger(cfg.Verbose)

	editor := console.NewLineEditor()
	defer editor.Close()
	if editor.IsInteractive() {
		logger.SetOutput(editor)
	}

	con, err := console.New(editor, cfg.Encoding, logger)
	if err != nil {
		return err
	}

	m := metrics.New()
	tr := core.BuildTransport(cfg, logger)
	sess := &core.Session{
		Client:   client.New(tr, logger, m),
		Console:  con,
		Input:    editor,
		Identity: core.BuildIdentity(cfg),
		Channels: cfg.Channels,
		Tick:     cfg.Tick,
		Backoff:  core.BuildBackoff(cfg),
		Logger:   logger,
	}

	if cfg.TunnelEnabled {
		logger.Verbose("routing through SSH gateway %s:%d", cfg.TunnelHost, cfg.TunnelPort)
	}
	err = sess.Run(ctx)

	if cfg.Verbose >= 2 {
		logger.Verbose("session metrics:\n%s", m.JSON())
	}
	return err
}

// ── helpers ──────────────────────────────────────────────────────────

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "server:   %s\n", util.FormatAddr(cfg.Server, cfg.Port))
	fmt.Fprintf(w, "nick:     %s\n", cfg.Nick)
	fmt.Fprintf(w, "user:     %s\n", cfg.User)
	fmt.Fprintf(w, "realname: %s\n", cfg.RealName)
	if len(cfg.Channels) > 0 {
		fmt.Fprintf(w, "join:     %s\n", strings.Join(cfg.Channels, ","))
	}
	if cfg.TunnelEnabled {
		fmt.Fprintf(w, "tunnel:   %s@%s\n", cfg.TunnelUser, util.FormatAddr(cfg.TunnelHost, cfg.TunnelPort))
	}
	fmt.Fprintf(w, "tick:     %v\n", cfg.Tick)
	fmt.Fprintf(w, "encoding: %s\n", cfg.Encoding)
	if cfg.Reconnect {
		fmt.Fprintf(w, "reconnect: up to %d attempts\n", cfg.MaxRetries)
	}
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `tinyirc v%s

A small terminal IRC client.

Usage:
  tinyirc [options] <host[:port]>

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  tinyirc -n gopher irc.libera.chat                 Connect on port 6667
  tinyirc -n gopher -j '#go-nuts' irc.example.net   Connect and join a channel
  tinyirc -T admin@bastion -n gopher irc.internal   Connect through SSH
  tinyirc --config ~/.tinyirc.yaml                  Use a profile

Type /help once connected for the list of commands.
`)
}
