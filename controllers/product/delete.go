package productcontroller

import (
	"net/http"

	"github.com/chars3/caplink-store/controllers/common"
	"github.com/chars3/caplink-store/middleware"
	"github.com/chars3/caplink-store/services/product"
	"github.com/gin-gonic/gin"
)

// DeleteProduct withdraws a product of the calling seller.
// DELETE /products/:id
func DeleteProduct(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}
