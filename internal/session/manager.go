// Package session issues and resolves bearer tokens for logged-in users.
// Sessions live in memory with a sliding-free TTL: a token is valid from
// login until it expires or the user logs out.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"smartexpense/internal/cache"
	"smartexpense/internal/core"
)

const tokenBytes = 32

// Session is the record behind a bearer token.
type Session struct {
	UserID   int64
	Username string
	Email    string
}

// Manager issues tokens and maps them back to sessions.
type Manager struct {
	sessions *cache.LRU[Session]
}

// NewManager creates a manager whose sessions expire after ttl.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: cache.NewLRU[Session](4096, ttl),
	}
}

// Create starts a session for the user and returns its token.
func (m *Manager) Create(u *core.User) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	m.sessions.Set(token, Session{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
	})
	return token, nil
}

// Get resolves a token to its session, if the session is still live.
func (m *Manager) Get(token string) (Session, bool) {
	return m.sessions.Get(token)
}

// Destroy ends the session behind token. Unknown tokens are a no-op.
func (m *Manager) Destroy(token string) {
	m.sessions.Delete(token)
}
