package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gatherly/api/internal/helpers"
	"github.com/gatherly/api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", method,
			"path", path,
			"status", statusCode,
			"latency", latency,
			"client_ip", clientIP,
		)
	}
}

// AuthMiddleware verifies the bearer token, loads the identity it names and
// stores it in the context under "user". Requests without a valid token never
// reach the handler.
func AuthMiddleware(userService *services.UserService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized access",
				"error":   "bearer token not found",
			})
			c.Abort()
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := userService.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized access",
				"error":   err.Error(),
			})
			c.Abort()
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.Subject)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized access",
				"error":   "invalid user ID in token",
			})
			c.Abort()
			return
		}

		user, err := userService.GetUser(c.Request.Context(), userID)
		if err != nil {
			logger.Info("Token subject no longer exists", "user_id", claims.Subject)
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized access",
				"error":   "user not found",
			})
			c.Abort()
			return
		}

		c.Set("user", &helpers.AuthClaims{
			CustomClaims: claims,
			UserID:       user.ID.Hex(),
			Name:         user.Name,
			Email:        user.Email,
		})
		c.Next()
	}
}
