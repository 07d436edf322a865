package main

import (
	"github.com/gin-gonic/gin"

	"github.com/promptvault/promptvault/internal/middleware"
	"github.com/promptvault/promptvault/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, a *app) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for credential endpoints
	authLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "promptvault"})
	})

	api := r.Group("/api/v1")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", a.authHandler.Register)
			auth.POST("/login", a.authHandler.Login)
			auth.POST("/refresh", a.authHandler.Refresh)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.POST("/auth/logout", a.authHandler.Logout)
			protected.GET("/auth/profile", a.authHandler.GetProfile)
			protected.PUT("/auth/profile", a.authHandler.UpdateProfile)

			// Projects
			protected.GET("/projects", a.projectHandler.List)
			protected.POST("/projects", a.projectHandler.Create)
			protected.GET("/projects/:id", a.projectHandler.GetByID)
			protected.PUT("/projects/:id", a.projectHandler.Update)
			protected.DELETE("/projects/:id", a.projectHandler.Delete)
			protected.GET("/projects/:id/statistics", a.projectHandler.Statistics)
			protected.GET("/projects/:id/members", a.projectHandler.Members)
			protected.POST("/projects/:id/invitations", a.projectHandler.Invite)
			protected.PUT("/projects/:id/members/:userId", a.projectHandler.UpdateMember)
			protected.DELETE("/projects/:id/members/:userId", a.projectHandler.RemoveMember)

			// Prompts
			protected.GET("/prompts", a.promptHandler.List)
			protected.POST("/prompts", a.promptHandler.Create)
			protected.GET("/prompts/:id", a.promptHandler.GetByID)
			protected.PUT("/prompts/:id", a.promptHandler.Update)
			protected.DELETE("/prompts/:id", a.promptHandler.Delete)
			protected.POST("/prompts/:id/duplicate", a.promptHandler.Duplicate)
			protected.POST("/prompts/:id/favorite", a.promptHandler.Favorite)
			protected.GET("/prompts/:id/versions", a.promptHandler.ListVersions)
			protected.GET("/prompts/:id/versions/:version", a.promptHandler.GetVersion)
			protected.POST("/prompts/:id/revert/:version", a.promptHandler.Revert)
			protected.GET("/prompts/:id/diff/:v1/:v2", a.promptHandler.Compare)

			// Search
			protected.GET("/search/prompts", a.searchHandler.Prompts)
			protected.GET("/search/suggestions", a.searchHandler.Suggestions)
			protected.POST("/search/advanced", a.searchHandler.Advanced)

			// Tags
			protected.GET("/tags", a.tagHandler.List)
			protected.POST("/tags", a.tagHandler.Create)
			protected.GET("/tags/popular", a.tagHandler.Popular)
			protected.PUT("/tags/:id", a.tagHandler.Update)
			protected.DELETE("/tags/:id", a.tagHandler.Delete)

			// Users
			protected.GET("/users/search", a.userHandler.Search)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/users", a.userHandler.List)
		}
	}
}
