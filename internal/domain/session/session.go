// Package session issues and verifies login session tokens.
//
// Sessions are held in memory only; restarting the server logs every user
// out. A session stores the username, and the account itself is looked up
// on every request so role changes and deletions take effect immediately.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrUnknown = errors.New("session not found")
	ErrExpired = errors.New("session expired")
)

// Session is one logged-in browser.
type Session struct {
	Token     string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Manager keeps active sessions.
type Manager struct {
	sessions sync.Map // token -> *Session
	maxAge   time.Duration
	now      func() time.Time
}

// NewManager creates a manager whose sessions live for maxAge.
func NewManager(maxAge time.Duration) *Manager {
	return &Manager{maxAge: maxAge, now: time.Now}
}

// MaxAge returns the session lifetime.
func (m *Manager) MaxAge() time.Duration { return m.maxAge }

// Create starts a session for username.
func (m *Manager) Create(username string) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	now := m.now()
	s := &Session{
		Token:     token,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.maxAge),
	}
	m.sessions.Store(token, s)
	return s, nil
}

// Lookup returns the live session for token.
func (m *Manager) Lookup(token string) (*Session, error) {
	v, ok := m.sessions.Load(token)
	if !ok {
		return nil, ErrUnknown
	}
	s := v.(*Session)
	if m.now().After(s.ExpiresAt) {
		m.sessions.Delete(token)
		return nil, ErrExpired
	}
	return s, nil
}

// Revoke ends the session for token.
func (m *Manager) Revoke(token string) {
	m.sessions.Delete(token)
}

// RevokeUser ends every session of username.
func (m *Manager) RevokeUser(username string) int {
	n := 0
	m.sessions.Range(func(k, v any) bool {
		if v.(*Session).Username == username {
			m.sessions.Delete(k)
			n++
		}
		return true
	})
	return n
}

// Sweep drops expired sessions and returns how many were removed.
func (m *Manager) Sweep() int {
	now := m.now()
	n := 0
	m.sessions.Range(func(k, v any) bool {
		if now.After(v.(*Session).ExpiresAt) {
			m.sessions.Delete(k)
			n++
		}
		return true
	})
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
