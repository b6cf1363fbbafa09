// Package core is the orchestration layer.  It builds the transport
// from a Config and runs an interactive session around one client.
//
// Architecture layers (bottom → top):
//
//	transport  →  protocol  →  client  →  console  →  core  →  cmd (CLI)
//
// The client is not safe for concurrent use, so a Session gives it to a
// single goroutine: that goroutine connects, ticks Update, and executes
// user commands.  A second goroutine only reads input lines and hands
// them over a channel.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"tinyirc/config"
	"tinyirc/internal/client"
	"tinyirc/internal/console"
	ircerr "tinyirc/internal/errors"
	"tinyirc/internal/retry"
	"tinyirc/util"
)

// LineSource supplies user input.  GetLine blocks until a line is
// available; Close must make a blocked GetLine return.
type LineSource interface {
	GetLine(prompt string) (string, error)
	Close() error
}

// Session drives one client from a terminal.
type Session struct {
	Client   *client.Client
	Console  *console.Console
	Input    LineSource
	Identity client.Identity
	Channels []string       // joined once the server welcomes us
	Tick     time.Duration  // Update interval
	Backoff  *retry.Backoff // nil disables reconnecting
	Logger   *util.Logger

	online bool // the user wants to be connected
}

// welcomeHook joins the configured channels once registration completes.
type welcomeHook struct {
	client.Funcs
	s *Session
}

func (h welcomeHook) OnWelcome(string) { h.s.autoJoin() }

// Run connects and processes server traffic and user input until the
// user quits, input ends, or ctx is cancelled.  The connection is
// always closed with a QUIT before Run returns.  Only a failed initial
// connect, or an input error, is returned as an error.
func (s *Session) Run(ctx context.Context) error {
	if s.Logger == nil {
		s.Logger = util.Nop()
	}
	if s.Tick <= 0 {
		s.Tick = config.DefaultTick
	}

	ids := []client.ListenerID{
		s.Client.AddListener(s.Console),
		s.Client.AddListener(welcomeHook{s: s}),
	}
	defer func() {
		for _, id := range ids {
			s.Client.RemoveListener(id)
		}
	}()

	lines := make(chan string)
	stop := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(lines)
		return s.pump(stop, lines)
	})
	g.Go(func() error {
		defer func() {
			close(stop)
			if err := s.Input.Close(); err != nil {
				s.Logger.Debug("input close: %v", err)
			}
		}()
		return s.loop(gctx, lines)
	})
	return g.Wait()
}

// pump forwards input lines until EOF or until the loop stops.
func (s *Session) pump(stop <-chan struct{}, lines chan<- string) error {
	for {
		line, err := s.Input.GetLine(s.Console.Prompt())
		if err != nil {
			select {
			case <-stop:
				return nil
			default:
			}
			if errors.Is(err, io.EOF) {
				s.Logger.Verbose("end of input")
				return nil
			}
			return fmt.Errorf("input: %w", err)
		}

		select {
		case lines <- line:
		case <-stop:
			return nil
		}
	}
}

// loop owns the client.
func (s *Session) loop(ctx context.Context, lines <-chan string) error {
	defer s.Client.Close()

	if err := s.connect(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Logger.Verbose("session cancelled: %v", context.Cause(ctx))
			return nil

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if s.handleInput(ctx, line) {
				return nil
			}

		case <-ticker.C:
			s.Client.Update()
			if s.online && s.Client.State() == client.Disconnected {
				s.dropped(ctx)
			}
		}
	}
}

// handleInput executes one input line and reports whether the user quit.
func (s *Session) handleInput(ctx context.Context, line string) bool {
	cmd, err := console.ParseInput(line)
	if err != nil {
		s.Console.Status("%v", err)
		return false
	}

	switch cmd.Kind {
	case console.KindQuit:
		s.online = false
		if cmd.Text == "" {
			_ = s.Client.Close()
		} else {
			s.Client.Disconnect(cmd.Text)
		}
		return true

	case console.KindConnect:
		if cmd.Target != "" {
			host, port, err := config.ParseServerSpec(cmd.Target)
			if err != nil {
				s.Console.Status("/connect: %v", err)
				return false
			}
			s.Identity.Server, s.Identity.Port = host, port
		}
		if err := s.connect(ctx); err != nil {
			s.Console.Status("%v", err)
		}
		return false
	}

	if err := s.Console.Execute(cmd, s.Client); err != nil {
		s.Console.Status("%v", err)
	}
	return false
}

// connect (re)connects, retrying with the backoff when one is set.
func (s *Session) connect(ctx context.Context) error {
	attempt := func(int) error {
		err := s.Client.Connect(ctx, s.Identity)
		if err != nil && (ircerr.Is(err, ircerr.ErrAuthFailed) || ctx.Err() != nil) {
			return retry.Permanent(err)
		}
		return err
	}

	var err error
	if s.Backoff == nil {
		err = attempt(1)
	} else {
		b := *s.Backoff
		b.OnRetry = func(n int, err error, wait time.Duration) {
			s.Logger.Verbose("connect attempt %d failed (retryable=%v): %v", n, ircerr.IsRetryable(err), err)
			s.Console.Status("Retrying in %v (attempt %d)", wait.Round(100*time.Millisecond), n+1)
		}
		err = b.Do(ctx, attempt)
	}
	if retry.IsPermanent(err) {
		err = errors.Unwrap(err)
	}

	s.online = err == nil
	return err
}

// dropped handles a connection the user did not close.
func (s *Session) dropped(ctx context.Context) {
	if s.Backoff == nil {
		s.online = false
		s.Console.Status("Not connected. Use /connect to reconnect or /quit to exit.")
		return
	}
	if err := s.connect(ctx); err != nil {
		s.Console.Status("Giving up: %v", err)
	}
}

func (s *Session) autoJoin() {
	for _, ch := range s.Channels {
		if err := s.Client.Join(ch); err != nil {
			s.Logger.Warn("auto-join %s: %v", ch, err)
		}
	}
}
