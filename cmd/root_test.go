package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"tinyirc/config"
	ircerr "tinyirc/internal/errors"
)

// TestExecute_Version verifies --version prints a version string.
func TestExecute_Version(t *testing.T) {
	err := Execute(context.Background(), []string{"--version"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestExecute_Help verifies --help (and no args) returns without error.
func TestExecute_Help(t *testing.T) {
	t.Setenv("TINYIRC_SERVER", "")
	for _, args := range [][]string{{"--help"}, {}} {
		name := "no-args"
		if len(args) > 0 {
			name = args[0]
		}
		t.Run(name, func(t *testing.T) {
			err := Execute(context.Background(), args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

// TestExecute_DryRun verifies --dry-run validates and exits cleanly.
func TestExecute_DryRun(t *testing.T) {
	err := Execute(context.Background(), []string{
		"-n", "gopher", "-j", "#go", "--dry-run", "irc.example.net:6697",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestExecute_DryRunInvalid verifies --dry-run still catches bad configs.
func TestExecute_DryRunInvalid(t *testing.T) {
	t.Setenv("TINYIRC_NICK", "")
	err := Execute(context.Background(), []string{
		"--dry-run", "irc.example.net", // no nick
	})
	var ce *ircerr.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigError, got %T: %v", err, err)
	}
	if ce.Field != "nick" {
		t.Errorf("Field = %q, want nick", ce.Field)
	}
}

// TestExecute_InvalidFlags verifies unknown flags produce an error.
func TestExecute_InvalidFlags(t *testing.T) {
	err := Execute(context.Background(), []string{"--nonexistent-flag"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestExecute_TooManyArguments(t *testing.T) {
	err := Execute(context.Background(), []string{"-n", "gopher", "a.example", "b.example"})
	if err == nil || !strings.Contains(err.Error(), "too many arguments") {
		t.Fatalf("expected too-many-arguments error, got %v", err)
	}
}

func TestExecute_BadServer(t *testing.T) {
	err := Execute(context.Background(), []string{"-n", "gopher", "--dry-run", "irc.example.net:http"})
	if err == nil || !strings.Contains(err.Error(), "server") {
		t.Fatalf("expected server error, got %v", err)
	}
}

// ── buildConfig ──────────────────────────────────────────────────────

func parse(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	var v flagValues
	fs := newFlagSet(&v)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return buildConfig(fs, &v)
}

func TestBuildConfig_Flags(t *testing.T) {
	cfg, err := parse(t,
		"-s", "irc.example.net:7000", "-n", "gopher", "--realname", "Go Pher",
		"-j", "go,#irc", "--tick", "20ms", "--encoding", "CP1252", "-vv",
		"-T", "admin@bastion", "--ssh-agent")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server != "irc.example.net" || cfg.Port != 7000 {
		t.Errorf("server = %s:%d", cfg.Server, cfg.Port)
	}
	if cfg.Nick != "gopher" || cfg.User != "gopher" || cfg.RealName != "Go Pher" {
		t.Errorf("identity = (%q, %q, %q)", cfg.Nick, cfg.User, cfg.RealName)
	}
	if !reflect.DeepEqual(cfg.Channels, []string{"#go", "#irc"}) {
		t.Errorf("Channels = %q", cfg.Channels)
	}
	if cfg.Tick != 20*time.Millisecond || cfg.Encoding != "cp1252" || cfg.Verbose != 2 {
		t.Errorf("tick = %v, encoding = %q, verbose = %d", cfg.Tick, cfg.Encoding, cfg.Verbose)
	}
	if !cfg.TunnelEnabled || cfg.TunnelUser != "admin" || cfg.TunnelHost != "bastion" || !cfg.UseSSHAgent {
		t.Errorf("tunnel = %+v", cfg)
	}
}

func TestBuildConfig_PositionalServer(t *testing.T) {
	cfg, err := parse(t, "-n", "gopher", "irc.example.net")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server != "irc.example.net" || cfg.Port != config.DefaultPort {
		t.Errorf("server = %s:%d", cfg.Server, cfg.Port)
	}
}

// TestBuildConfig_Precedence verifies flags > env > file > defaults.
func TestBuildConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	profile := "server: file.example.net\nnick: filenick\nrealname: From File\ntick: 200ms\n"
	if err := os.WriteFile(path, []byte(profile), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TINYIRC_NICK", "envnick")
	t.Setenv("TINYIRC_TICK", "100ms")

	cfg, err := parse(t, "--config", path, "--tick", "30ms")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server != "file.example.net" {
		t.Errorf("Server = %q, want the file value", cfg.Server)
	}
	if cfg.RealName != "From File" {
		t.Errorf("RealName = %q, want the file value", cfg.RealName)
	}
	if cfg.Nick != "envnick" {
		t.Errorf("Nick = %q, env should beat the file", cfg.Nick)
	}
	if cfg.Tick != 30*time.Millisecond {
		t.Errorf("Tick = %v, flag should beat env and file", cfg.Tick)
	}
	if cfg.PollTimeout != config.DefaultPollTimeout {
		t.Errorf("PollTimeout = %v, want the default", cfg.PollTimeout)
	}
}

func TestBuildConfig_MissingProfile(t *testing.T) {
	_, err := parse(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "-n", "x", "irc.example.net")
	var ce *ircerr.ConfigError
	if !errors.As(err, &ce) || ce.Field != "config" {
		t.Fatalf("expected config ConfigError, got %v", err)
	}
}

func TestBuildConfig_BadTunnel(t *testing.T) {
	_, err := parse(t, "-n", "gopher", "-T", "user@host:notaport", "irc.example.net")
	var ce *ircerr.ConfigError
	if !errors.As(err, &ce) || ce.Field != "tunnel" {
		t.Fatalf("expected tunnel ConfigError, got %v", err)
	}
}

func TestPrintConfig(t *testing.T) {
	cfg, err := parse(t, "-n", "gopher", "-j", "#go", "--reconnect", "irc.example.net:6697")
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	printConfig(&b, cfg)

	for _, want := range []string{
		"server:   irc.example.net:6697",
		"nick:     gopher",
		"join:     #go",
		"reconnect: up to 10 attempts",
	} {
		if !strings.Contains(b.String(), want) {
			t.Errorf("output missing %q:\n%s", want, b.String())
		}
	}
}
