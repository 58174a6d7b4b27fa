package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"sport_bet/internal/middleware"
	"sport_bet/internal/models"
	"sport_bet/internal/services"
	"sport_bet/internal/storage"
	"sport_bet/internal/views"
)

type UserServicer interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

type AuthController struct {
	pages
	users UserServicer
}

func NewAuthController(users UserServicer, v Renderer, sessions SessionManager, log *slog.Logger) *AuthController {
	return &AuthController{
		pages: pages{views: v, sessions: sessions, log: log},
		users: users,
	}
}

func registerMessage(err error, username string) (string, bool) {
	switch {
	case errors.Is(err, services.ErrUsernameRequired):
		return msgUsernameRequired, true
	case errors.Is(err, services.ErrPasswordRequired):
		return msgPasswordRequired, true
	case errors.Is(err, services.ErrPasswordTooLong):
		return msgPasswordTooLong, true
	case errors.Is(err, storage.ErrExists):
		return fmt.Sprintf("User %s is already registered.", username), true
	}
	return "", false
}

func (c *AuthController) RegisterForm(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, views.PageRegister, &views.Data{Title: "Register"})
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.auth.Register"

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	u, err := c.users.Register(r.Context(), username, password)
	if msg, ok := registerMessage(err, username); ok {
		c.render(w, r, http.StatusOK, views.PageRegister, &views.Data{
			Title:    "Register",
			Username: username,
		}, msg)
		return
	}
	if err != nil {
		c.serverError(w, r, op, err)
		return
	}

	c.log.Info("user registered", slog.String("operation", op), slog.Int64("id", u.ID))

	http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
}

func (c *AuthController) LoginForm(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, views.PageLogin, &views.Data{Title: "Log In"})
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.auth.Login"

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	u, err := c.users.Authenticate(r.Context(), username, password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.log.Info("login failed", slog.String("operation", op), slog.String("username", username))
		c.render(w, r, http.StatusOK, views.PageLogin, &views.Data{
			Title:    "Log In",
			Username: username,
		}, msgInvalidCredentials)
		return
	}
	if err != nil {
		c.serverError(w, r, op, err)
		return
	}

	if err := c.sessions.Login(w, r, u.ID); err != nil {
		c.serverError(w, r, op, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.auth.Logout"

	if err := c.sessions.Logout(w, r); err != nil {
		c.log.Warn(ErrSession.Error(), slog.String("operation", op), slog.String("error", err.Error()))
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func Hello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Hello, World!")
}
