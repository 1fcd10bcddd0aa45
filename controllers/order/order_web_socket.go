package orderControllers

import (
	"github.com/chars3/caplink-store/events"
	"github.com/chars3/caplink-store/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// GET /orders/seller/ws streams the seller's new sales as they happen.
func SalesFeedHandler(hub *events.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID := middleware.CurrentUserID(c)
		if err := hub.Serve(c.Writer, c.Request, sellerID); err != nil {
			// The upgrader has already answered the client.
			log.Debug().Err(err).Str("seller_id", sellerID).Msg("sales feed upgrade failed")
		}
	}
}
