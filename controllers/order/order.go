package orderControllers

import (
	"net/http"

	"github.com/chars3/caplink-store/controllers/common"
	"github.com/chars3/caplink-store/middleware"
	"github.com/chars3/caplink-store/services/order"
	"github.com/gin-gonic/gin"
)

// POST /orders/checkout
func CheckoutHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		placed, err := svc.Checkout(c.Request.Context(), middleware.CurrentUserID(c))
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, placed)
	}
}

// GET /orders?page&limit
func ListOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := common.ParsePagination(c)
		if err != nil {
			common.RespondError(c, err)
			return
		}

		page, err := svc.List(c.Request.Context(), middleware.CurrentUserID(c), p.Params())
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, common.Wrap(p, page))
	}
}

// GET /orders/:id
func GetOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		found, err := svc.Get(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, found)
	}
}

// GET /orders/dashboard
func DashboardHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.SellerStats(c.Request.Context(), middleware.CurrentUserID(c))
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// GET /orders/seller/sales?page&limit&search
func SellerSalesHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := common.ParsePagination(c)
		if err != nil {
			common.RespondError(c, err)
			return
		}

		page, err := svc.SellerSales(c.Request.Context(), middleware.CurrentUserID(c), order.SalesQuery{
			PageParams: p.Params(),
			Search:     c.Query("search"),
		})
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, common.Wrap(p, page))
	}
}
