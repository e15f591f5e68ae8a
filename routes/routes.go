package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Dosada05/bracket-engine/handlers"
	"github.com/Dosada05/bracket-engine/middleware"
)

// SetupRoutes wires the HTTP surface. Reads are public; bracket mutation
// requires an organizer or admin token, and forced regeneration additionally
// requires the admin key.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	bracketHandler *handlers.BracketHandler,
	teamHandler *handlers.TeamHandler,
	wsHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Admin-Key"},
		MaxAge:         300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{id}", teamHandler.GetTeam)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.RequireRole(middleware.RoleAdmin, middleware.RoleOrganizer))
			r.Post("/", teamHandler.CreateTeam)
			r.Put("/{id}", teamHandler.UpdateTeam)
			r.Delete("/{id}", teamHandler.DeleteTeam)
		})
	})

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Get("/bracket", bracketHandler.GetBracket)
		r.Get("/standings", bracketHandler.GetStandings)
		r.Get("/matches/{matchUID}", bracketHandler.GetMatch)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.RequireRole(middleware.RoleAdmin, middleware.RoleOrganizer))

			r.Post("/bracket", bracketHandler.GenerateBracket)
			r.Post("/matches/{matchUID}/start", bracketHandler.StartMatch)
			r.Post("/matches/{matchUID}/result", bracketHandler.SubmitResult)
			r.Post("/matches/{matchUID}/cancel", bracketHandler.CancelMatch)
			r.Post("/swiss/rounds", bracketHandler.NextSwissRound)
			r.Post("/playoffs", bracketHandler.PromotePlayoffs)
		})

		// Forced regeneration destroys played matches, so it is kept behind
		// the admin key instead of the regular token check.
		r.Group(func(r chi.Router) {
			r.Use(auth.AdminKey)
			r.Post("/bracket/regenerate", bracketHandler.RegenerateBracket)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", wsHandler.ServeWs)
}
