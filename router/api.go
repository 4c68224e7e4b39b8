package router

import (
	"database/sql"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/cargowatch/api/authz"
	"github.com/cargowatch/api/handlers"
	"github.com/cargowatch/api/internal/config"
	"github.com/cargowatch/api/services"
)

func NewGinRouter(pg *sql.DB, rdb *redis.Client) *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize services
	fcmService, err := services.NewFCMService()
	if err != nil {
		log.Printf("Warning: Failed to initialize FCM service, push disabled: %v", err)
	}
	supabaseAuth := services.NewSupabaseAuthService(config.App.SupabaseURL, config.App.SupabaseAnonKey, config.App.SupabaseJWTSecret)
	userService := services.NewUserService(pg, supabaseAuth)
	regionService := services.NewRegionService(pg)
	incidentService := services.NewIncidentService(pg, rdb, regionService)
	notificationService := services.NewNotificationService(pg, fcmService)
	incidentService.SetNotificationService(notificationService)
	commentService := services.NewCommentService(pg)
	evidenceService := services.NewEvidenceService(pg)
	resourceService := services.NewResourceService(pg)

	// Initialize middleware
	authMiddleware := authz.NewAuthMiddleware(supabaseAuth, userService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(supabaseAuth, userService)
	userHandler := handlers.NewUserHandler(userService)
	incidentHandler := handlers.NewIncidentHandler(incidentService, commentService, evidenceService)
	regionHandler := handlers.NewRegionHandler(regionService)
	resourceHandler := handlers.NewResourceHandler(resourceService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	adminHandler := handlers.NewAdminHandler(userService)

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		if err := pg.PingContext(c.Request.Context()); err != nil {
			c.JSON(503, gin.H{"status": "degraded", "error": "database unreachable"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	// PUBLIC ENDPOINTS (no authentication required)

	// Auth entry points
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.GET("/auth/callback", authHandler.Callback)

	// Incident feed, detail, stats, and the per-incident public reads.
	// These stay readable without a session so the community map works
	// for visitors.
	publicIncidents := r.Group("/incidents")
	publicIncidents.Use(authMiddleware.OptionalAuth())
	{
		publicIncidents.GET("", incidentHandler.ListIncidents)
		publicIncidents.GET("/stats", incidentHandler.GetStats)
		publicIncidents.GET("/:id", incidentHandler.GetIncident)
		publicIncidents.GET("/:id/comments", incidentHandler.ListComments)
		publicIncidents.GET("/:id/evidence", incidentHandler.ListEvidence)
	}

	r.GET("/regions", regionHandler.ListRegions)
	r.GET("/regions/hotspots", regionHandler.Hotspots)
	r.GET("/resources", resourceHandler.ListResources)

	// PROTECTED ENDPOINTS (require Supabase authentication; approval
	// state does not matter here so pending users can check status)
	protected := r.Group("/")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.GET("/auth/approval-status", authHandler.ApprovalStatus)
		protected.POST("/auth/logout", authHandler.Logout)

		protected.PATCH("/users/me", userHandler.UpdateProfile)
		protected.PATCH("/users/me/notifications", userHandler.UpdateNotificationPreferences)
		protected.PUT("/users/me/fcm-token", userHandler.UpdateFCMToken)

		notificationRoutes := protected.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.ListNotifications)
			notificationRoutes.POST("/read-all", notificationHandler.MarkAllRead)
			notificationRoutes.POST("/:id/read", notificationHandler.MarkRead)
		}
	}

	// APPROVED ENDPOINTS (approved + active + verified members only)
	approved := r.Group("/")
	approved.Use(authMiddleware.RequireAuth(), authMiddleware.RequireApproved())
	{
		approved.POST("/incidents", incidentHandler.CreateIncident)
		approved.POST("/incidents/:id/comments", incidentHandler.CreateComment)
	}

	// ADMIN ENDPOINTS
	admin := r.Group("/admin")
	admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole("admin"))
	{
		admin.GET("/users/pending", adminHandler.ListPendingUsers)
		admin.POST("/users/:id/approve", adminHandler.ApproveUser)
		admin.POST("/users/:id/reject", adminHandler.RejectUser)
		admin.POST("/users/:id/suspend", adminHandler.SuspendUser)
		admin.POST("/users/:id/reinstate", adminHandler.ReinstateUser)
	}

	return r
}
