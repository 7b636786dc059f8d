package api

import (
	"log/slog"

	"github.com/eventra/eventra/internal/api/handlers"
	"github.com/eventra/eventra/internal/api/middleware"
	"github.com/eventra/eventra/internal/auth"
	"github.com/eventra/eventra/internal/budget"
	"github.com/eventra/eventra/internal/events"
	"github.com/eventra/eventra/internal/summary"
	"github.com/eventra/eventra/internal/team"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	GoogleService  *auth.GoogleService
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.Redis, cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		// Default to localhost for development - configure in production
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize services
	eventService := events.NewService(cfg.DB)
	budgetService := budget.NewService(cfg.DB)
	summaryService := summary.NewService(cfg.DB)
	teamService := team.NewService(cfg.DB)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.GoogleService)
	eventHandler := handlers.NewEventHandler(cfg.AuthService, eventService)
	budgetItemHandler := handlers.NewBudgetItemHandler(cfg.AuthService, budgetService)
	expenseHandler := handlers.NewExpenseHandler(cfg.AuthService, budgetService)
	checklistHandler := handlers.NewChecklistHandler(cfg.AuthService, eventService)
	summaryHandler := handlers.NewSummaryHandler(cfg.AuthService, summaryService)
	teamHandler := handlers.NewTeamHandler(cfg.AuthService, teamService)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/google", authHandler.GoogleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			r.Get("/me", authHandler.Me)

			// Events
			r.Route("/events", func(r chi.Router) {
				r.Get("/", eventHandler.List)
				r.Post("/", eventHandler.Create)
				r.Get("/{id}", eventHandler.Get)
				r.Put("/{id}", eventHandler.Update)

				r.Route("/{eventID}/budget-items", func(r chi.Router) {
					r.Get("/", budgetItemHandler.List)
					r.Post("/", budgetItemHandler.Create)
				})
				r.Route("/{eventID}/expenses", func(r chi.Router) {
					r.Get("/", expenseHandler.List)
					r.Post("/", expenseHandler.Create)
				})
				r.Route("/{eventID}/checklist", func(r chi.Router) {
					r.Get("/", checklistHandler.List)
					r.Post("/", checklistHandler.Create)
				})
				r.Get("/{eventID}/summary", summaryHandler.Get)
			})

			// Entity-by-id mutations
			r.Put("/budget-items/{id}", budgetItemHandler.Update)
			r.Delete("/budget-items/{id}", budgetItemHandler.Delete)
			r.Put("/expenses/{id}", expenseHandler.Update)
			r.Delete("/expenses/{id}", expenseHandler.Delete)
			r.Put("/checklist/{id}", checklistHandler.Update)
			r.Delete("/checklist/{id}", checklistHandler.Delete)

			// Team management
			r.Route("/team", func(r chi.Router) {
				r.Get("/", teamHandler.List)
				r.Post("/", teamHandler.Create)
				r.Delete("/{id}", teamHandler.DeleteMember)
			})

			// Account deletion
			r.Delete("/account", teamHandler.DeleteOwnAccount)
			r.Delete("/account/organization", teamHandler.DeleteOrganization)
		})
	})

	return &Router{r}
}
