package routes

import (
	"github.com/gatherly/api/internal/container"
	"github.com/gatherly/api/internal/handlers"
	"github.com/gatherly/api/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "gatherly-api",
			})
		})

		// public routes
		api.POST("/auth/register", handlers.Register(container.UserService))
		api.POST("/auth/login", handlers.Login(container.UserService))
		api.GET("/events", handlers.GetEvents(container.EventService))
		api.GET("/events/:id", handlers.GetEventByID(container.EventService))
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(container.UserService, container.Logger))

	eventRoutes := protected.Group("/events")
	{
		eventRoutes.POST("", handlers.CreateEvent(container.EventService))
		eventRoutes.PUT("/:id", handlers.UpdateEvent(container.EventService))
		eventRoutes.DELETE("/:id", handlers.DeleteEvent(container.EventService))

		eventRoutes.PUT("/:id/rsvp", handlers.RsvpEvent(container.EventService))
		eventRoutes.PUT("/:id/cancel", handlers.CancelRsvp(container.EventService))

		eventRoutes.POST("/ai-generate", handlers.GenerateDescription(container.DescribeService))
	}

	protected.POST("/upload", handlers.UploadImage(container.Cloudinary))

	return r
}
