package tui

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"net"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	gossh "golang.org/x/crypto/ssh"
)

// ServerConfig holds the SSH listener settings.
type ServerConfig struct {
	Bind               string
	Port               int
	HostKeyPath        string
	AuthorizedKeysPath string
}

// SSHServer serves the terminal dashboard over SSH. With no authorized keys
// file configured it accepts any public key, which is only suitable behind a
// trusted network boundary.
type SSHServer struct {
	srv        *ssh.Server
	base       Services
	authorized []ssh.PublicKey
}

// NewSSHServer builds a wish server that drops each authenticated session
// into the terminal dashboard.
func NewSSHServer(cfg ServerConfig, base Services) (*SSHServer, error) {
	s := &SSHServer{base: base}

	if cfg.AuthorizedKeysPath != "" {
		data, err := os.ReadFile(cfg.AuthorizedKeysPath)
		if err != nil {
			return nil, fmt.Errorf("read authorized keys: %w", err)
		}
		s.authorized = parseAuthorizedKeys(data)
		if len(s.authorized) == 0 {
			return nil, fmt.Errorf("no usable keys in %s", cfg.AuthorizedKeysPath)
		}
	} else {
		log.Println("Warning: TUI_AUTHORIZED_KEYS not set, accepting any public key")
	}

	srv, err := wish.NewServer(
		wish.WithAddress(net.JoinHostPort(cfg.Bind, strconv.Itoa(cfg.Port))),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithPublicKeyAuth(s.allowKey),
		wish.WithMiddleware(
			bm.Middleware(s.teaHandler),
			activeterm.Middleware(),
			logging.Middleware(),
		),
	)
	if err != nil {
		return nil, err
	}
	s.srv = srv
	return s, nil
}

// ListenAndServe blocks serving SSH sessions until Shutdown or Close.
func (s *SSHServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Close immediately closes all listeners and sessions.
func (s *SSHServer) Close() error {
	return s.srv.Close()
}

// Addr returns the configured listen address.
func (s *SSHServer) Addr() string {
	return s.srv.Addr
}

func (s *SSHServer) allowKey(_ ssh.Context, key ssh.PublicKey) bool {
	if len(s.authorized) == 0 {
		return true
	}
	for _, ak := range s.authorized {
		if ssh.KeysEqual(key, ak) {
			return true
		}
	}
	return false
}

func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	svc := s.base
	svc.Username = sess.User()
	svc.UserID = sessionUserID(sess.PublicKey())

	m := NewAppModel(svc)
	pty, _, _ := sess.Pty()
	if pty.Window.Width > 0 && pty.Window.Height > 0 {
		m.SetSize(pty.Window.Width, pty.Window.Height)
	}
	return m, []tea.ProgramOption{tea.WithAltScreen()}
}

// sessionUserID derives a stable ID from the session's public key so advisor
// history survives reconnects without a user store.
func sessionUserID(key ssh.PublicKey) int64 {
	if key == nil {
		return 0
	}
	h := fnv.New64a()
	h.Write([]byte(gossh.FingerprintSHA256(key)))
	return int64(h.Sum64() >> 1)
}

func parseAuthorizedKeys(data []byte) []ssh.PublicKey {
	var keys []ssh.PublicKey
	for len(bytes.TrimSpace(data)) > 0 {
		key, _, _, rest, err := gossh.ParseAuthorizedKey(data)
		if err != nil {
			// Skip the malformed line and keep going
			if i := bytes.IndexByte(data, '\n'); i >= 0 {
				data = data[i+1:]
				continue
			}
			break
		}
		keys = append(keys, key)
		data = rest
	}
	return keys
}
