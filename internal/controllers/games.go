package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"sport_bet/internal/access"
	"sport_bet/internal/middleware"
	"sport_bet/internal/models"
	"sport_bet/internal/services"
	"sport_bet/internal/storage"
	"sport_bet/internal/views"

	"github.com/go-chi/chi/v5"
)

type GameServicer interface {
	ListAll(ctx context.Context) ([]models.Game, error)
	GetForModify(ctx context.Context, user *models.User, id int64) (*models.Game, error)
	Create(ctx context.Context, authorID int64, in services.GameInput) (*models.Game, error)
	Update(ctx context.Context, id int64, in services.GameInput) error
	Delete(ctx context.Context, id int64) error
}

type GameController struct {
	pages
	service GameServicer
}

func NewGameController(s GameServicer, v Renderer, sessions SessionManager, log *slog.Logger) *GameController {
	return &GameController{
		pages:   pages{views: v, sessions: sessions, log: log},
		service: s,
	}
}

func gameInput(r *http.Request) services.GameInput {
	return services.GameInput{
		Title:  r.PostFormValue("title"),
		Body:   r.PostFormValue("body"),
		Tipoff: r.PostFormValue("tipoff"),
	}
}

func formFromInput(in services.GameInput) views.GameForm {
	return views.GameForm{Title: in.Title, Body: in.Body, Tipoff: in.Tipoff}
}

func gameID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Index lists every game, most recent tipoff first.
func (c *GameController) Index(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Index"

	games, err := c.service.ListAll(r.Context())
	if err != nil {
		c.serverError(w, r, op, err)
		return
	}

	c.render(w, r, http.StatusOK, views.PageIndex, &views.Data{
		Title: "Games",
		Games: games,
	})
}

func (c *GameController) CreateForm(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.RequireUser(r.Context()); err != nil {
		c.toLogin(w, r)
		return
	}

	c.render(w, r, http.StatusOK, views.PageCreate, &views.Data{Title: "New Game"})
}

func (c *GameController) Create(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Create"

	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		c.toLogin(w, r)
		return
	}

	in := gameInput(r)

	g, err := c.service.Create(r.Context(), user.ID, in)
	if errors.Is(err, services.ErrTitleRequired) {
		c.render(w, r, http.StatusOK, views.PageCreate, &views.Data{
			Title: "New Game",
			Form:  formFromInput(in),
		}, msgTitleRequired)
		return
	}
	if err != nil {
		c.serverError(w, r, op, err)
		return
	}

	c.log.Info("game created",
		slog.String("operation", op),
		slog.Int64("id", g.ID),
		slog.Int64("author_id", user.ID))

	http.Redirect(w, r, "/", http.StatusFound)
}

// lookup resolves {id} to a game the current user may modify and writes the
// error response itself when that fails.
func (c *GameController) lookup(w http.ResponseWriter, r *http.Request, op string) (*models.Game, bool) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		c.toLogin(w, r)
		return nil, false
	}

	id, ok := gameID(r)
	if !ok {
		c.NotFound(w, r)
		return nil, false
	}

	g, err := c.service.GetForModify(r.Context(), user, id)
	switch {
	case err == nil:
		return g, true
	case errors.Is(err, storage.ErrNotFound):
		c.errorPage(w, r, http.StatusNotFound, fmt.Sprintf("Game id %d doesn't exist.", id))
	case errors.Is(err, access.ErrForbidden):
		c.log.Warn("modify denied",
			slog.String("operation", op),
			slog.Int64("id", id),
			slog.Int64("user_id", user.ID))
		c.errorPage(w, r, http.StatusForbidden, "")
	case errors.Is(err, access.ErrUnauthenticated):
		c.toLogin(w, r)
	default:
		c.serverError(w, r, op, err)
	}

	return nil, false
}

func (c *GameController) UpdateForm(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.UpdateForm"

	g, ok := c.lookup(w, r, op)
	if !ok {
		return
	}

	c.render(w, r, http.StatusOK, views.PageUpdate, &views.Data{
		Title: "Edit Game",
		Game:  g,
		Form:  views.FormFromGame(g),
	})
}

func (c *GameController) Update(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Update"

	g, ok := c.lookup(w, r, op)
	if !ok {
		return
	}

	in := gameInput(r)

	err := c.service.Update(r.Context(), g.ID, in)
	switch {
	case errors.Is(err, services.ErrTitleRequired):
		c.render(w, r, http.StatusOK, views.PageUpdate, &views.Data{
			Title: "Edit Game",
			Game:  g,
			Form:  formFromInput(in),
		}, msgTitleRequired)
		return
	case errors.Is(err, storage.ErrNotFound):
		c.errorPage(w, r, http.StatusNotFound, fmt.Sprintf("Game id %d doesn't exist.", g.ID))
		return
	case err != nil:
		c.serverError(w, r, op, err)
		return
	}

	c.log.Info("game updated", slog.String("operation", op), slog.Int64("id", g.ID))

	http.Redirect(w, r, "/", http.StatusFound)
}

// Delete removes the game at once. A row that vanished after the lookup
// still ends in the redirect.
func (c *GameController) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Delete"

	g, ok := c.lookup(w, r, op)
	if !ok {
		return
	}

	err := c.service.Delete(r.Context(), g.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		c.serverError(w, r, op, err)
		return
	}
	if err != nil {
		c.log.Debug("game already gone", slog.String("operation", op), slog.Int64("id", g.ID))
	} else {
		c.log.Info("game deleted", slog.String("operation", op), slog.Int64("id", g.ID))
	}

	http.Redirect(w, r, "/", http.StatusFound)
}
