package productcontroller

import (
	"net/http"

	"github.com/chars3/caplink-store/controllers/common"
	"github.com/chars3/caplink-store/middleware"
	"github.com/chars3/caplink-store/services/product"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CreateProductInput struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description" binding:"required"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	ImageURL    string           `json:"image_url" binding:"required,url"`
}

// CreateProduct publishes a product owned by the calling seller.
// POST /products
func CreateProduct(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			common.BadRequest(c, err)
			return
		}

		created, err := svc.Create(c.Request.Context(), middleware.CurrentUserID(c), product.CreateInput{
			Name:        input.Name,
			Description: input.Description,
			Price:       *input.Price,
			ImageURL:    input.ImageURL,
		})
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}
