package productcontroller

import (
	"net/http"

	"github.com/chars3/caplink-store/controllers/common"
	"github.com/chars3/caplink-store/services/product"
	"github.com/gin-gonic/gin"
)

// GetProductByID returns a single product with its seller name.
// URL param: /products/:id
func GetProductByID(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		found, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, found)
	}
}
