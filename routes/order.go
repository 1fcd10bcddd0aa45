package routes

import (
	orderControllers "github.com/chars3/caplink-store/controllers/order"
	"github.com/chars3/caplink-store/middleware"
	"github.com/chars3/caplink-store/models"
	"github.com/gin-gonic/gin"
)

func SetupOrderRoutes(r *gin.Engine, d Deps) {
	checkoutLimiter := middleware.NewRateLimiter(d.CheckoutRatePerMinute)

	orders := r.Group("/orders", middleware.ValidateToken(d.Tokens))
	{
		// Turn the cart into an order
		orders.POST("/checkout", checkoutLimiter.Middleware(), orderControllers.CheckoutHandler(d.Orders))

		// Order history of the caller
		orders.GET("", orderControllers.ListOrdersHandler(d.Orders))

		seller := orders.Group("", middleware.RequireRole(models.RoleSeller))
		{
			seller.GET("/dashboard", orderControllers.DashboardHandler(d.Orders))
			seller.GET("/seller/sales", orderControllers.SellerSalesHandler(d.Orders))

			// websocket endpoint for real-time sales
			seller.GET("/seller/ws", orderControllers.SalesFeedHandler(d.Hub))
		}

		orders.GET("/:id", orderControllers.GetOrderHandler(d.Orders))
	}
}
