package httpserver

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionTTL = 12 * time.Hour

type session struct {
	user    string
	expires time.Time
}

// sessionStore keeps bearer tokens in memory. Tokens die with the
// process, which is acceptable for a single-user desktop service.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: map[string]session{}}
}

func (s *sessionStore) issue(user string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = session{user: user, expires: time.Now().Add(sessionTTL)}
	s.mu.Unlock()
	return token
}

func (s *sessionStore) lookup(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return "", false
	}
	if time.Now().After(sess.expires) {
		delete(s.sessions, token)
		return "", false
	}
	return sess.user, true
}
