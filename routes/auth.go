package routes

import (
	userControllers "github.com/chars3/caplink-store/controllers/user"
	"github.com/chars3/caplink-store/middleware"
	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers the public "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, d Deps) {
	loginLimiter := middleware.NewRateLimiter(d.CheckoutRatePerMinute)

	authGroup := r.Group("/auth")
	authGroup.Use(loginLimiter.Middleware())
	{
		authGroup.POST("/register", userControllers.Register(d.Users))
		authGroup.POST("/login", userControllers.Login(d.Users))
	}
}
