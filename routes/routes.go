package routes

import (
	"net/http"
	"time"

	"github.com/chars3/caplink-store/events"
	"github.com/chars3/caplink-store/middleware"
	"github.com/chars3/caplink-store/services/cart"
	"github.com/chars3/caplink-store/services/favorite"
	"github.com/chars3/caplink-store/services/order"
	"github.com/chars3/caplink-store/services/product"
	"github.com/chars3/caplink-store/services/user"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps is everything the handlers need.
type Deps struct {
	Users     *user.Service
	Products  *product.Service
	Carts     *cart.Service
	Orders    *order.Service
	Favorites *favorite.Service
	Hub       *events.Hub
	Tokens    middleware.TokenParser

	AllowOrigins          []string
	CheckoutRatePerMinute int
}

// NewRouter builds the engine with recovery, request logging and CORS.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(d.AllowOrigins) == 0 || (len(d.AllowOrigins) == 1 && d.AllowOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = d.AllowOrigins
	}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	SetupRoutes(r, d)
	return r
}

// SetupRoutes is the single entry point that wires up every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	SetupAuthRoutes(r, d)
	SetupUserRoutes(r, d)
	SetupProductRoutes(r, d)
	SetupOrderRoutes(r, d)
}
