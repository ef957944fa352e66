// Package session carries the logged-in user's identity through the sync
// core. Components receive a *Session explicitly instead of reading ambient
// per-device state; Begin and End tie its lifetime to login and logout.
package session

import "sync"

// Identity is the immutable description of who is logged in.
type Identity struct {
	// UserID is the stable id from the remote identity system.
	UserID string

	// Username is the email-shaped natural key for meals and expenses.
	Username string

	// DisplayName is the full name shown in notifications.
	DisplayName string

	// IsAdmin marks the mess admin.
	IsAdmin bool
}

// Session holds the current identity. The zero value is a logged-out
// session. Safe for concurrent use: the scheduler, sync engine and
// reconciler all read it from their own goroutines.
type Session struct {
	mu sync.RWMutex
	id Identity
	ok bool
}

// New returns a logged-out session.
func New() *Session {
	return &Session{}
}

// Begin installs the identity at login.
func (s *Session) Begin(id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	s.ok = true
}

// End clears the session at logout.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = Identity{}
	s.ok = false
}

// Current returns the identity and whether anyone is logged in.
func (s *Session) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id, s.ok
}

// Username returns the logged-in username, or "" when logged out.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ok {
		return ""
	}
	return s.id.Username
}
