package productcontroller

import (
	"net/http"

	"github.com/chars3/caplink-store/controllers/common"
	"github.com/chars3/caplink-store/middleware"
	"github.com/chars3/caplink-store/services/product"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// UpdateProductInput fields are all optional; absent ones are left alone.
type UpdateProductInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"image_url" binding:"omitempty,url"`
}

// UpdateProduct edits a product of the calling seller.
// PATCH /products/:id
func UpdateProduct(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			common.BadRequest(c, err)
			return
		}

		updated, err := svc.Update(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), product.UpdateInput{
			Name:        input.Name,
			Description: input.Description,
			Price:       input.Price,
			ImageURL:    input.ImageURL,
		})
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}
