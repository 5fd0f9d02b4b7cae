package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lmoraleda/fintrack-be/internal/api/handlers"
	"github.com/lmoraleda/fintrack-be/internal/auth"
	"github.com/lmoraleda/fintrack-be/internal/config"
	"github.com/lmoraleda/fintrack-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	cfg *config.Config,
	tokens *auth.TokenManager,
	userService services.UserServiceProvider,
	categoryService services.CategoryServiceProvider,
	transactionService services.TransactionServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, tokens)
	categoryHandler := handlers.NewCategoryHandler(categoryService, userService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, userService)
	adminHandler := handlers.NewAdminHandler(userService)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Unauthenticated auth endpoints
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
	})

	// Everything else requires a bearer token
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokens))

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", transactionHandler.GetAll)
			r.Post("/", transactionHandler.Create)
			r.Get("/summary", transactionHandler.Summary)
			r.Get("/export", transactionHandler.Export)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", transactionHandler.Get)
				r.Put("/", transactionHandler.Update)
				r.Delete("/", transactionHandler.Delete)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.GetAll)
			r.Post("/", categoryHandler.Create)
			r.Delete("/{id}", categoryHandler.Delete)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", adminHandler.ListUsers)
			r.Patch("/users/{id}/promote", adminHandler.Promote)
			r.Patch("/users/{id}/demote", adminHandler.Demote)
		})
	})

	return r
}
