package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/playmeeple/meeplehub/handlers"
	"github.com/playmeeple/meeplehub/middleware"
	"github.com/playmeeple/meeplehub/models"
)

// SetupRoutes собирает все маршруты приложения на одном роутере.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	gameHandler *handlers.GameHandler,
	tournamentHandler *handlers.TournamentHandler,
	suggestionHandler *handlers.SuggestionHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)

	router.Post("/auth/signup", authHandler.SignUp)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/users", func(r chi.Router) {
		r.Get("/{username}", userHandler.GetProfile)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{username}/follow", userHandler.Follow)
			r.Delete("/{username}/follow", userHandler.Unfollow)
			r.Put("/me/avatar", userHandler.UploadAvatar)
		})
	})

	router.Route("/games", func(r chi.Router) {
		r.Get("/", gameHandler.ListGames)
		r.Get("/{gameID}", gameHandler.GetGame)
		r.Get("/{gameID}/reviews", gameHandler.ListReviews)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{gameID}/like", userHandler.Like)
			r.Delete("/{gameID}/like", userHandler.Unlike)
			r.Post("/{gameID}/reviews", gameHandler.AddReview)
		})

		// Каталог редактируют только администраторы платформы.
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin))
			r.Post("/", gameHandler.CreateGame)
			r.Put("/{gameID}", gameHandler.UpdateGame)
			r.Delete("/{gameID}", gameHandler.DeleteGame)
			r.Put("/{gameID}/boxart", gameHandler.UploadBoxArt)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListTournaments)
		r.Get("/{tournamentID}", tournamentHandler.GetTournament)
		r.Get("/{tournamentID}/difficulty", analyticsHandler.Difficulty)
		r.Get("/{tournamentID}/social-density", analyticsHandler.SocialDensity)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", tournamentHandler.CreateTournament)
			r.Patch("/{tournamentID}", tournamentHandler.UpdateTournament)
			r.Delete("/{tournamentID}", tournamentHandler.DeleteTournament)
			r.Post("/{tournamentID}/register", tournamentHandler.Register)
			r.Delete("/{tournamentID}/register", tournamentHandler.Unregister)
			r.Post("/{tournamentID}/winner", tournamentHandler.SelectWinner)
			r.Post("/{tournamentID}/reconcile", tournamentHandler.Reconcile)
		})
	})

	router.Route("/suggestions", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/users", suggestionHandler.SuggestUsers)
		r.Get("/games", suggestionHandler.SuggestGames)
		r.Get("/tournaments", suggestionHandler.SuggestTournaments)
		r.Get("/similar", suggestionHandler.SimilarUsers)
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
