package productcontroller

import (
	"net/http"

	"github.com/chars3/caplink-store/controllers/common"
	"github.com/chars3/caplink-store/services/product"
	"github.com/gin-gonic/gin"
)

// GetProducts lists the catalog.
// GET /products?page&limit&search&sellerId
func GetProducts(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := common.ParsePagination(c)
		if err != nil {
			common.RespondError(c, err)
			return
		}

		page, err := svc.List(c.Request.Context(), product.ListQuery{
			PageParams: p.Params(),
			Search:     c.Query("search"),
			SellerID:   c.Query("sellerId"),
		})
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, common.Wrap(p, page))
	}
}
