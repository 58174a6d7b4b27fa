package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"sport_bet/internal/access"
	"sport_bet/internal/models"
	"sport_bet/internal/storage"
)

const (
	LoginPath = "/auth/login"

	// LoginRequiredMessage is flashed on the login page after a gated redirect.
	LoginRequiredMessage = "Log in to continue."
)

type contextKey string

const UserKey = contextKey("user")

type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type Sessions interface {
	UserID(r *http.Request) (int64, bool)
	AddFlash(w http.ResponseWriter, r *http.Request, msg string) error
}

type Identity struct {
	sessions Sessions
	users    UserGetter
	log      *slog.Logger
}

func NewIdentity(sessions Sessions, users UserGetter, log *slog.Logger) *Identity {
	return &Identity{sessions: sessions, users: users, log: log}
}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}

// CurrentUser reports the user resolved for this request, if any.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(UserKey).(*models.User)
	return u, ok && u != nil
}

func RequireUser(ctx context.Context) (*models.User, error) {
	u, ok := CurrentUser(ctx)
	if !ok {
		return nil, access.ErrUnauthenticated
	}
	return u, nil
}

// LoadUser resolves the session to a user. A session pointing at a user
// that no longer exists is treated as anonymous.
func (m *Identity) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const op = "middleware.auth.LoadUser"

		id, ok := m.sessions.UserID(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		u, err := m.users.GetByID(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			m.log.Error("failed to load user",
				slog.String("operation", op),
				slog.Int64("user_id", id),
				slog.String("error", err.Error()))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// RequireLogin sends anonymous requests to the login page with a flash
// explaining why.
func (m *Identity) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const op = "middleware.auth.RequireLogin"

		if _, ok := CurrentUser(r.Context()); !ok {
			if err := m.sessions.AddFlash(w, r, LoginRequiredMessage); err != nil {
				m.log.Warn("failed to save flash",
					slog.String("operation", op),
					slog.String("error", err.Error()))
			}
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
