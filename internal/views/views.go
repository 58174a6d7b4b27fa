// Package views renders the HTML pages from templates embedded in the binary.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"sport_bet/internal/access"
	"sport_bet/internal/models"
)

//go:embed templates/*.html static/*
var files embed.FS

const (
	PageIndex    = "index"
	PageCreate   = "create"
	PageUpdate   = "update"
	PageRegister = "register"
	PageLogin    = "login"
	PageError    = "error"
)

var pages = []string{PageIndex, PageCreate, PageUpdate, PageRegister, PageLogin, PageError}

// GameForm holds the values typed into the create/update form.
type GameForm struct {
	Title  string
	Body   string
	Tipoff string
}

func FormFromGame(g *models.Game) GameForm {
	return GameForm{Title: g.Title, Body: g.Body, Tipoff: g.Tipoff}
}

type Data struct {
	Title       string
	CurrentUser *models.User
	Flashes     []string

	Games []models.Game
	Game  *models.Game
	Form  GameForm

	Username string

	StatusCode int
	Message    string
}

var functions = template.FuncMap{
	"canModify": func(u *models.User, g models.Game) bool {
		return access.CanModify(u, &g)
	},
	"statusText": http.StatusText,
}

type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	const op = "views.New"

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}

	for _, name := range pages {
		ts, err := template.New(name).Funcs(functions).ParseFS(files,
			"templates/base.html",
			"templates/fields.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("%s: page %s: %w", op, name, err)
		}
		r.pages[name] = ts
	}

	return r, nil
}

// Render executes page into a buffer first so a template error never leaves
// a half-written response behind.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data *Data) error {
	const op = "views.Render"

	ts, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("%s: unknown page %q", op, page)
	}

	if data == nil {
		data = &Data{}
	}

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("%s: %s: %w", op, page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)

	return err
}

func Static() http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		// the embed pattern guarantees the directory
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
