package favoriteControllers

import (
	"net/http"

	"github.com/chars3/caplink-store/controllers/common"
	"github.com/chars3/caplink-store/middleware"
	"github.com/chars3/caplink-store/services/favorite"
	"github.com/gin-gonic/gin"
)

// POST /favorites/:productId
func ToggleFavorite(svc *favorite.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		added, err := svc.Toggle(c.Request.Context(), middleware.CurrentUserID(c), c.Param("productId"))
		if err != nil {
			common.RespondError(c, err)
			return
		}

		message := "Removed from favorites"
		if added {
			message = "Added to favorites"
		}
		c.JSON(http.StatusOK, gin.H{"message": message, "favorite": added})
	}
}

// GET /favorites
func ListFavorites(svc *favorite.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		favorites, err := svc.List(c.Request.Context(), middleware.CurrentUserID(c))
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, favorites)
	}
}
