// Package sessions tracks server-side authentication state. A session
// lives in the code store under its own key; the browser holds a signed
// token naming the session ID. Session state is always passed
// explicitly, never kept in package globals.
package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lanblog/apiserver/internal/codes"
)

// Lifetime is the server-side session window. Cookie lifetime is the
// caller's concern: browser-session cookies still point at a record
// with this TTL.
const Lifetime = 14 * 24 * time.Hour

// ErrNotFound is returned when a session is absent or expired.
var ErrNotFound = errors.New("session not found")

// Session is the server-tracked authentication state for one browser.
type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	Username  string    `json:"username"`
	Remember  bool      `json:"remember"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager creates, resolves, and destroys sessions in the code store.
type Manager struct {
	store codes.Store
}

func NewManager(store codes.Store) *Manager {
	return &Manager{store: store}
}

// Create establishes a new session for the user. Remember only affects
// the cookie the caller sets; the record itself always gets the full
// lifetime.
func (m *Manager) Create(ctx context.Context, userID int, username string, remember bool) (Session, error) {
	now := time.Now()
	session := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Username:  username,
		Remember:  remember,
		CreatedAt: now,
		ExpiresAt: now.Add(Lifetime),
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return Session{}, err
	}
	if err := m.store.Set(ctx, codes.SessionPrefix+session.ID, string(payload), Lifetime); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}

	return session, nil
}

// Get resolves a session by ID.
func (m *Manager) Get(ctx context.Context, id string) (Session, error) {
	payload, err := m.store.Get(ctx, codes.SessionPrefix+id)
	if err != nil {
		if errors.Is(err, codes.ErrNotFound) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}

	var session Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

// Delete destroys a session. Deleting an absent session is not an error.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return m.store.Delete(ctx, codes.SessionPrefix+id)
}

// Refresh rewrites the session record under the same ID, extending its
// TTL. Profile updates use it to keep the cached username current.
func (m *Manager) Refresh(ctx context.Context, session Session) error {
	session.ExpiresAt = time.Now().Add(Lifetime)
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, codes.SessionPrefix+session.ID, string(payload), Lifetime)
}
