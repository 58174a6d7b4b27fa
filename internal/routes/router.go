package routes

import (
	"log/slog"
	"net/http"

	"sport_bet/internal/controllers"
	"sport_bet/internal/middleware"
	"sport_bet/internal/services"
	"sport_bet/internal/session"
	"sport_bet/internal/storage/sqldb"
	"sport_bet/internal/views"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func SetupRouter(
	log *slog.Logger,
	storage *sqldb.Storage,
	sessions *session.Manager,
	renderer *views.Renderer,
	bcryptCost int,
) *chi.Mux {
	r := chi.NewRouter()

	userService := services.NewUserService(storage, log, bcryptCost)
	gameService := services.NewGameService(storage, log)

	identity := middleware.NewIdentity(sessions, userService, log)

	gameController := controllers.NewGameController(gameService, renderer, sessions, log)
	authController := controllers.NewAuthController(userService, renderer, sessions, log)

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimw.Recoverer)

	r.NotFound(identity.LoadUser(http.HandlerFunc(gameController.NotFound)).ServeHTTP)
	r.MethodNotAllowed(identity.LoadUser(http.HandlerFunc(gameController.MethodNotAllowed)).ServeHTTP)

	r.Handle("/static/*", http.StripPrefix("/static/", views.Static()))
	r.Get("/hello", controllers.Hello)

	r.Group(func(r chi.Router) {
		r.Use(identity.LoadUser)

		r.Get("/", gameController.Index)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/register", authController.RegisterForm)
			r.Post("/register", authController.Register)
			r.Get("/login", authController.LoginForm)
			r.Post("/login", authController.Login)
			r.Get("/logout", authController.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(identity.RequireLogin)

			r.Get("/create", gameController.CreateForm)
			r.Post("/create", gameController.Create)

			r.Route("/{id:[0-9]+}", func(r chi.Router) {
				r.Get("/update", gameController.UpdateForm)
				r.Post("/update", gameController.Update)
				r.Post("/delete", gameController.Delete)
			})
		})
	})

	return r
}
