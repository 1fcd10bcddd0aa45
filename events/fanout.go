package events

import (
	"context"

	"github.com/chars3/caplink-store/models"
	"github.com/chars3/caplink-store/services/order"
)

// Fanout forwards every completed order to each listener in turn.
type Fanout []order.Listener

// NewFanout drops nil listeners.
func NewFanout(listeners ...order.Listener) Fanout {
	var f Fanout
	for _, l := range listeners {
		if l != nil {
			f = append(f, l)
		}
	}
	return f
}

func (f Fanout) OrderCompleted(ctx context.Context, o *models.Order) {
	for _, l := range f {
		l.OrderCompleted(ctx, o)
	}
}
