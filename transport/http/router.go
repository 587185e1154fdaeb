package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adawatch/charon/ports"
	"github.com/adawatch/charon/service"
)

// SetupRouter sets up the Gin router. chainData may be nil, in which case
// the user-data routes are not registered.
func SetupRouter(authService *service.AuthService, chainData ports.ChainData) *gin.Engine {
	router := gin.Default()

	authHandlers := NewAuthHandlers(authService)

	auth := router.Group("/api/auth")
	{
		auth.POST("/challenge", authHandlers.Challenge)
		auth.POST("/verify", authHandlers.Verify)
	}

	user := router.Group("/api/user")
	user.Use(AuthMiddleware(authService))
	{
		user.GET("/me", authHandlers.Me)
		if chainData != nil {
			userHandlers := NewUserHandlers(chainData)
			user.GET("/summary", userHandlers.Summary)
			user.GET("/transactions", userHandlers.Transactions)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
