package transport

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/term"

	ircerr "tinyirc/internal/errors"
)

// defaultKeyNames are tried in ~/.ssh when nothing is configured.
var defaultKeyNames = []string{"id_ed25519", "id_rsa", "id_ecdsa"}

// authMethods assembles the SSH authentication methods in order of
// preference: key file, agent, password prompt, then automatic defaults.
// The returned agent connection, when not nil, stays open for as long as
// the methods are in use and must be closed by the caller.
func (c *GatewayConfig) authMethods() (methods []ssh.AuthMethod, agentConn net.Conn, err error) {
	defer func() {
		if err != nil && agentConn != nil {
			agentConn.Close()
			agentConn = nil
		}
	}()

	if c.KeyPath != "" {
		m, err := keyFileAuth(c.KeyPath)
		if err != nil {
			return nil, nil, fmt.Errorf("key %s: %w", c.KeyPath, err)
		}
		methods = append(methods, m)
	}

	if c.UseAgent {
		m, conn, err := agentAuth()
		if err != nil {
			return nil, nil, fmt.Errorf("ssh-agent: %w", err)
		}
		methods = append(methods, m)
		agentConn = conn
	}

	if c.PromptPass {
		pass, err := readSecret("SSH password: ")
		if err != nil {
			return nil, agentConn, err
		}
		methods = append(methods, ssh.Password(string(pass)))
	}

	if len(methods) == 0 {
		methods, agentConn = fallbackAuth()
	}
	if len(methods) == 0 {
		return nil, nil, fmt.Errorf("%w: use --ssh-key, --ssh-password, or --ssh-agent", ircerr.ErrAuthFailed)
	}
	return methods, agentConn, nil
}

// hostKeyCallback verifies against known_hosts when strict checking is
// on, and accepts any key otherwise.
func (c *GatewayConfig) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if !c.StrictHostKey {
		//nolint:gosec // user opted out of host key checking
		return ssh.InsecureIgnoreHostKey(), nil
	}

	path := c.KnownHosts
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}

	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("loading known_hosts from %s: %w", path, err)
	}
	return cb, nil
}

func keyFileAuth(path string) (ssh.AuthMethod, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(data)
	var missing *ssh.PassphraseMissingError
	switch {
	case err == nil:
	case ircerr.As(err, &missing):
		pass, perr := readSecret(fmt.Sprintf("Enter passphrase for %s: ", path))
		if perr != nil {
			return nil, perr
		}
		signer, err = ssh.ParsePrivateKeyWithPassphrase(data, pass)
		if err != nil {
			return nil, fmt.Errorf("decrypting key: %w", err)
		}
	default:
		return nil, fmt.Errorf("parsing key: %w", err)
	}
	return ssh.PublicKeys(signer), nil
}

func agentAuth() (ssh.AuthMethod, net.Conn, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, nil, fmt.Errorf("SSH_AUTH_SOCK is not set")
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to agent at %s: %w", sock, err)
	}
	return ssh.PublicKeysCallback(agent.NewClient(conn).Signers), conn, nil
}

// fallbackAuth tries the agent and the usual key files without any
// explicit configuration.
func fallbackAuth() (out []ssh.AuthMethod, agentConn net.Conn) {
	if m, conn, err := agentAuth(); err == nil {
		out = append(out, m)
		agentConn = conn
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return out, agentConn
	}
	for _, name := range defaultKeyNames {
		p := filepath.Join(home, ".ssh", name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if m, err := keyFileAuth(p); err == nil {
			out = append(out, m)
		}
	}
	return out, agentConn
}

// readSecret prompts on stderr and reads a line from the terminal
// without echo.
func readSecret(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot prompt for %q: stdin is not a terminal", prompt)
	}
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading secret: %w", err)
	}
	return secret, nil
}
