package demoapp

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionCookie names the cookie that carries the session ID.
const SessionCookie = "demo_session"

type session struct {
	email    string
	verified bool
	// code is the OTP the session must present before it is verified.
	code    string
	created time.Time
}

// sessionStore keeps sessions in memory, so a restart signs everyone out.
type sessionStore struct {
	mu   sync.Mutex
	byID map[string]session
}

func newSessionStore() *sessionStore {
	return &sessionStore{byID: map[string]session{}}
}

func (s *sessionStore) create(email, code string, verified bool) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[id] = session{email: email, code: code, verified: verified, created: time.Now()}
	return id
}

func (s *sessionStore) get(id string) (session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	return sess, ok
}

func (s *sessionStore) verify(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.byID[id]; ok {
		sess.verified = true
		sess.code = ""
		s.byID[id] = sess
	}
}

func (s *sessionStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

// reset drops every session and returns how many there were.
func (s *sessionStore) reset() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.byID)
	s.byID = map[string]session{}
	return n
}
