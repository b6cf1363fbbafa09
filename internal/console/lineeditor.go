package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

const (
	historyFileName = ".tinyirc_history"
	historySize     = 500
)

// LineEditor reads user input.  On a terminal it uses readline for line
// editing and history; otherwise (piped input, or inside Emacs) it reads
// plain lines and shows no prompt.
//
// Output written through the editor does not garble a half-typed line.
type LineEditor struct {
	rl *readline.Instance

	scanner *bufio.Scanner
	in      io.Reader
	out     io.Writer

	mu     sync.Mutex // serialises writes in non-interactive mode
	closed bool
}

// NewLineEditor picks interactive mode when stdin is a terminal.
func NewLineEditor() *LineEditor {
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && os.Getenv("INSIDE_EMACS") == ""
	if !interactive {
		return NewPipedEditor(os.Stdin, os.Stdout)
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            historyPath(),
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: readline init failed (%v), using basic input\n", err)
		return NewPipedEditor(os.Stdin, os.Stdout)
	}
	return &LineEditor{rl: rl, out: os.Stdout}
}

// NewPipedEditor reads lines from in and writes output to out, without
// line editing.
func NewPipedEditor(in io.Reader, out io.Writer) *LineEditor {
	return &LineEditor{scanner: bufio.NewScanner(in), in: in, out: out}
}

// IsInteractive reports whether readline is in use.
func (le *LineEditor) IsInteractive() bool { return le.rl != nil }

// GetLine reads one line.  It returns io.EOF at end of input, on Ctrl-D
// and on Ctrl-C.
func (le *LineEditor) GetLine(prompt string) (string, error) {
	if le.rl != nil {
		le.rl.SetPrompt(prompt)
		line, err := le.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				return "", io.EOF
			}
			return "", err
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			le.rl.SaveToHistory(trimmed)
		}
		return line, nil
	}

	if !le.scanner.Scan() {
		if err := le.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return le.scanner.Text(), nil
}

// Write prints p above the input line.
func (le *LineEditor) Write(p []byte) (int, error) {
	if le.rl != nil {
		return le.rl.Write(p)
	}
	le.mu.Lock()
	defer le.mu.Unlock()
	return le.out.Write(p)
}

// Close saves history and makes a blocked GetLine return.  In piped
// mode it closes the input when that is possible.  Close is idempotent.
func (le *LineEditor) Close() error {
	le.mu.Lock()
	defer le.mu.Unlock()
	if le.closed {
		return nil
	}
	le.closed = true

	if le.rl != nil {
		return le.rl.Close()
	}
	if c, ok := le.in.(io.Closer); ok && le.in != os.Stdin {
		return c.Close()
	}
	return nil
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), historyFileName)
	}
	return filepath.Join(home, historyFileName)
}
