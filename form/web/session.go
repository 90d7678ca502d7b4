package web

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/twipi/bfhl/backend"
	"github.com/twipi/bfhl/form"
)

type session struct {
	ctrl     *form.Controller
	lastSeen atomic.Int64
}

func (s *session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *session) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(time.Unix(0, s.lastSeen.Load())) > ttl
}

// sessionStore holds one form controller per open page.
type sessionStore struct {
	processor backend.Processor
	logger    *slog.Logger
	sessions  *xsync.MapOf[string, *session]
	ttl       time.Duration
}

func newSessionStore(processor backend.Processor, ttl time.Duration, logger *slog.Logger) *sessionStore {
	return &sessionStore{
		processor: processor,
		logger:    logger,
		sessions:  xsync.NewMapOf[string, *session](),
		ttl:       ttl,
	}
}

// create starts a new session.
func (s *sessionStore) create() (string, *session, error) {
	sess := &session{ctrl: form.NewController(s.processor, s.logger)}
	sess.touch(time.Now())

	token, err := generateToken(s.sessions, sess)
	if err != nil {
		return "", nil, err
	}

	s.logger.Debug("created form session", "sessions", s.sessions.Size())
	return token, sess, nil
}

// lookup returns the session for token, or starts a new one if token is
// unknown or expired. The returned token is the one to render into the page.
func (s *sessionStore) lookup(token string) (string, *session, error) {
	now := time.Now()

	if token != "" {
		sess, ok := s.sessions.Load(token)
		if ok && !sess.expired(now, s.ttl) {
			sess.touch(now)
			return token, sess, nil
		}
		if ok {
			s.sessions.Delete(token)
		}
	}

	return s.create()
}

// sweep drops every expired session and returns how many it dropped.
func (s *sessionStore) sweep(now time.Time) int {
	var n int
	s.sessions.Range(func(token string, sess *session) bool {
		if sess.expired(now, s.ttl) {
			s.sessions.Delete(token)
			n++
		}
		return true
	})
	return n
}

// run sweeps expired sessions until ctx is canceled.
func (s *sessionStore) run(ctx context.Context) error {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if n := s.sweep(now); n > 0 {
				s.logger.Debug(
					"swept expired form sessions",
					"dropped", n,
					"remaining", s.sessions.Size())
			}
		}
	}
}

func generateToken[T any](m *xsync.MapOf[string, T], v T) (string, error) {
	for iter := 0; iter < 1_000; iter++ {
		var r [24]byte
		if _, err := rand.Read(r[:]); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		token := base64.URLEncoding.EncodeToString(r[:])

		_, exists := m.LoadOrStore(token, v)
		if exists {
			continue
		}

		return token, nil
	}

	return "", fmt.Errorf("timed out generating unique session token")
}
