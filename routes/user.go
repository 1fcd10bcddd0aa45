package routes

import (
	cartControllers "github.com/chars3/caplink-store/controllers/cart"
	favoriteControllers "github.com/chars3/caplink-store/controllers/favorite"
	userControllers "github.com/chars3/caplink-store/controllers/user"
	"github.com/chars3/caplink-store/middleware"
	"github.com/gin-gonic/gin"
)

// SetupUserRoutes registers the account, cart and favorites endpoints. Requires JWT.
func SetupUserRoutes(r *gin.Engine, d Deps) {
	authenticated := middleware.ValidateToken(d.Tokens)

	// ──────────────── User Profile ────────────────
	me := r.Group("/users/me", authenticated)
	{
		me.GET("", userControllers.GetUser(d.Users))
		me.PATCH("", userControllers.UpdateUser(d.Users))
		me.DELETE("", userControllers.DeleteUser(d.Users))
	}

	// ──────────────── Shopping Cart ────────────────
	cartGroup := r.Group("/cart", authenticated)
	{
		cartGroup.GET("", cartControllers.GetCart(d.Carts))
		cartGroup.POST("", cartControllers.AddCartItem(d.Carts))
		cartGroup.DELETE("/:itemId", cartControllers.RemoveCartItem(d.Carts))
		cartGroup.DELETE("", cartControllers.ClearCart(d.Carts))
	}

	// ──────────────── Favorites ────────────────
	favorites := r.Group("/favorites", authenticated)
	{
		favorites.POST("/:productId", favoriteControllers.ToggleFavorite(d.Favorites))
		favorites.GET("", favoriteControllers.ListFavorites(d.Favorites))
	}
}
