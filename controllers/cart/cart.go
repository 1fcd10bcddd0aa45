package cartControllers

import (
	"net/http"

	"github.com/chars3/caplink-store/controllers/common"
	"github.com/chars3/caplink-store/middleware"
	"github.com/chars3/caplink-store/services/cart"
	"github.com/gin-gonic/gin"
)

type CartItemInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// GET /cart
func GetCart(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCart, err := svc.GetOrCreate(c.Request.Context(), middleware.CurrentUserID(c))
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, userCart)
	}
}

// POST /cart
func AddCartItem(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			common.BadRequest(c, err)
			return
		}

		item, err := svc.AddItem(c.Request.Context(), middleware.CurrentUserID(c), input.ProductID, input.Quantity)
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

// DELETE /cart/:itemId
func RemoveCartItem(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := svc.RemoveItem(c.Request.Context(), middleware.CurrentUserID(c), c.Param("itemId"))
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DELETE /cart
func ClearCart(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Clear(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}
