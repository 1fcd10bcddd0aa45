package routes

import (
	productcontroller "github.com/chars3/caplink-store/controllers/product"
	"github.com/chars3/caplink-store/middleware"
	"github.com/chars3/caplink-store/models"
	"github.com/gin-gonic/gin"
)

// SetupProductRoutes registers the public catalog and the seller's product management.
func SetupProductRoutes(r *gin.Engine, d Deps) {
	products := r.Group("/products")

	seller := products.Group("", middleware.ValidateToken(d.Tokens), middleware.RequireRole(models.RoleSeller))
	{
		seller.POST("", productcontroller.CreateProduct(d.Products))
		seller.PATCH("/:id", productcontroller.UpdateProduct(d.Products))
		seller.DELETE("/:id", productcontroller.DeleteProduct(d.Products))
		seller.POST("/upload", productcontroller.ImportProducts(d.Products))
		seller.GET("/export", productcontroller.ExportProductsToExcel(d.Products))
	}

	products.GET("", productcontroller.GetProducts(d.Products))
	products.GET("/:id", productcontroller.GetProductByID(d.Products))
}
