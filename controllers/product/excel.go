package productcontroller

import (
	"net/http"

	"github.com/chars3/caplink-store/controllers/common"
	"github.com/chars3/caplink-store/middleware"
	"github.com/chars3/caplink-store/services/product"
	"github.com/gin-gonic/gin"
)

// ImportProducts bulk-creates products from a .csv or .xlsx upload in the
// "file" form field.
// POST /products/upload
func ImportProducts(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "CSV or Excel file is required"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
			return
		}
		defer file.Close()

		result, err := svc.Import(c.Request.Context(), middleware.CurrentUserID(c), fileHeader.Filename, file)
		if err != nil {
			common.RespondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":  "Import completed",
			"imported": result.Imported,
			"skipped":  result.Skipped,
		})
	}
}
