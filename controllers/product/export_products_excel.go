package productcontroller

import (
	"bytes"
	"net/http"

	"github.com/chars3/caplink-store/controllers/common"
	"github.com/chars3/caplink-store/middleware"
	"github.com/chars3/caplink-store/services/product"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportProductsToExcel downloads the calling seller's catalog.
// GET /products/export
func ExportProductsToExcel(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Buffer first so a failure can still be reported as JSON.
		var buf bytes.Buffer
		if err := svc.Export(c.Request.Context(), middleware.CurrentUserID(c), &buf); err != nil {
			common.RespondError(c, err)
			return
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}
