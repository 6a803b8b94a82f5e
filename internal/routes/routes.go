package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/harborcrm/harbor/internal/auth"
	"github.com/harborcrm/harbor/internal/handlers"
	"github.com/harborcrm/harbor/internal/middleware"
	"github.com/harborcrm/harbor/internal/models"
	"github.com/harborcrm/harbor/internal/repositories"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	customerHandler *handlers.CustomerHandler,
	leadHandler *handlers.LeadHandler,
	dashboardHandler *handlers.DashboardHandler,
	tokenManager *auth.TokenManager,
	userRepo *repositories.UserRepository,
) {
	authLimit := middleware.RateLimitByIP(middleware.DefaultAuthRateLimit())
	apiLimit := middleware.RateLimitByUser(middleware.DefaultAPIRateLimit())

	// Public auth endpoints, rate limited per IP
	router.Group(func(r chi.Router) {
		r.Use(authLimit)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/verify-email", authHandler.VerifyEmail)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)
		r.Post("/auth/forgot-password", authHandler.ForgotPassword)
		r.Post("/auth/reset-password", authHandler.ResetPassword)
	})

	// Authenticated API
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager))
		r.Use(apiLimit)

		r.Post("/auth/logout", authHandler.Logout)

		r.Get("/users/me", userHandler.Me)
		r.Get("/users/me/profile", userHandler.GetProfile)
		r.Put("/users/me/profile", userHandler.UpdateProfile)
		r.Put("/users/me/password", userHandler.ChangePassword)

		r.Get("/dashboard/stats", dashboardHandler.Stats)

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", customerHandler.List)
			r.Post("/", customerHandler.Create)
			r.Get("/{id}", customerHandler.Get)
			r.Put("/{id}", customerHandler.Update)
			r.Delete("/{id}", customerHandler.Delete)
		})

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", leadHandler.List)
			r.Post("/", leadHandler.Create)
			r.Get("/{id}", leadHandler.Get)
			r.Put("/{id}", leadHandler.Update)
			r.Delete("/{id}", leadHandler.Delete)
			r.Post("/{id}/convert", leadHandler.Convert)
		})

		// Admin-only user management
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(userRepo, models.RoleAdmin))
			r.Get("/users", userHandler.List)
			r.Get("/users/{id}", userHandler.Get)
			r.Put("/users/{id}", userHandler.Update)
			r.Delete("/users/{id}", userHandler.Delete)
		})
	})
}
