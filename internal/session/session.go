// Package session keeps the signed-in user id and one-shot flash messages
// in a signed cookie.
package session

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	CookieName = "sport_bet_session"
	userIDKey  = "user_id"
)

type Manager struct {
	store *sessions.CookieStore
}

func NewManager(secret string, secure bool) *Manager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{store: store}
}

// get never fails: a cookie that does not decode yields a fresh session.
func (m *Manager) get(r *http.Request) *sessions.Session {
	s, _ := m.store.Get(r, CookieName)
	return s
}

func (m *Manager) UserID(r *http.Request) (int64, bool) {
	id, ok := m.get(r).Values[userIDKey].(int64)
	return id, ok && id > 0
}

// Login drops whatever the session held before and binds it to userID.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, userID int64) error {
	const op = "session.Login"

	s := m.get(r)
	for k := range s.Values {
		delete(s.Values, k)
	}
	s.Values[userIDKey] = userID

	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	const op = "session.Logout"

	s := m.get(r)
	for k := range s.Values {
		delete(s.Values, k)
	}

	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, msg string) error {
	const op = "session.AddFlash"

	s := m.get(r)
	s.AddFlash(msg)

	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Flashes pops pending messages. It writes a cookie only when there were any.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) ([]string, error) {
	const op = "session.Flashes"

	s := m.get(r)

	raw := s.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}

	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			msgs = append(msgs, msg)
		}
	}

	if err := s.Save(r, w); err != nil {
		return msgs, fmt.Errorf("%s: %w", op, err)
	}
	return msgs, nil
}
