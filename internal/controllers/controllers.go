package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"sport_bet/internal/middleware"
	"sport_bet/internal/views"
)

var (
	ErrRender  = errors.New("failed to render page")
	ErrSession = errors.New("failed to save session")
)

const (
	msgTitleRequired      = "Title is required."
	msgUsernameRequired   = "Username is required."
	msgPasswordRequired   = "Password is required."
	msgPasswordTooLong    = "Password is too long."
	msgInvalidCredentials = "Incorrect username or password."
)

type Renderer interface {
	Render(w http.ResponseWriter, status int, page string, data *views.Data) error
}

type SessionManager interface {
	Login(w http.ResponseWriter, r *http.Request, userID int64) error
	Logout(w http.ResponseWriter, r *http.Request) error
	AddFlash(w http.ResponseWriter, r *http.Request, msg string) error
	Flashes(w http.ResponseWriter, r *http.Request) ([]string, error)
}

// pages is shared by the HTML controllers.
type pages struct {
	views    Renderer
	sessions SessionManager
	log      *slog.Logger
}

// render fills the layout fields and writes page. Pending flashes are popped
// ahead of any flash added for this response.
func (p *pages) render(w http.ResponseWriter, r *http.Request, status int, page string, data *views.Data, flash ...string) {
	const op = "controllers.render"

	if data == nil {
		data = &views.Data{}
	}

	if data.CurrentUser == nil {
		data.CurrentUser, _ = middleware.CurrentUser(r.Context())
	}

	pending, err := p.sessions.Flashes(w, r)
	if err != nil {
		p.log.Warn(ErrSession.Error(), slog.String("operation", op), slog.String("error", err.Error()))
	}
	data.Flashes = append(pending, flash...)

	if err := p.views.Render(w, status, page, data); err != nil {
		p.log.Error(ErrRender.Error(),
			slog.String("operation", op),
			slog.String("page", page),
			slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (p *pages) errorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}

	p.render(w, r, status, views.PageError, &views.Data{
		Title:      http.StatusText(status),
		StatusCode: status,
		Message:    message,
	})
}

func (p *pages) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	p.log.Error("request failed",
		slog.String("operation", op),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))

	p.errorPage(w, r, http.StatusInternalServerError, "")
}

func (p *pages) toLogin(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.toLogin"

	if err := p.sessions.AddFlash(w, r, middleware.LoginRequiredMessage); err != nil {
		p.log.Warn(ErrSession.Error(), slog.String("operation", op), slog.String("error", err.Error()))
	}

	http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
}

// NotFound renders the 404 page for routes nothing matched.
func (p *pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.errorPage(w, r, http.StatusNotFound, "")
}

func (p *pages) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	p.errorPage(w, r, http.StatusMethodNotAllowed, "")
}
