package events

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/chars3/caplink-store/models"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

// SaleEvent is pushed to a seller when an order contains their products.
type SaleEvent struct {
	Type      string             `json:"type"`
	OrderID   string             `json:"order_id"`
	CreatedAt time.Time          `json:"created_at"`
	Revenue   decimal.Decimal    `json:"revenue"`
	Items     []models.OrderItem `json:"items"`
}

type subscriber struct {
	sellerID string
	conn     *websocket.Conn
	send     chan []byte
}

// Hub keeps the live websocket subscribers of every seller.
type Hub struct {
	upgrader websocket.Upgrader

	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
}

func NewHub(checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Hub{
		upgrader:    websocket.Upgrader{CheckOrigin: checkOrigin},
		subscribers: make(map[string]map[*subscriber]struct{}),
	}
}

// Serve upgrades the request and streams the seller's sales until the client
// goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sellerID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sub := &subscriber{sellerID: sellerID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(sub)
	log.Debug().Str("seller_id", sellerID).Msg("sales feed subscribed")

	go h.writeLoop(sub)
	h.readLoop(sub)
	return nil
}

// Subscribers counts the open feeds of a seller.
func (h *Hub) Subscribers(sellerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[sellerID])
}

// OrderCompleted sends each seller the items of the order that are theirs.
func (h *Hub) OrderCompleted(_ context.Context, order *models.Order) {
	bySeller := make(map[string][]models.OrderItem)
	for _, item := range order.Items {
		if item.Product == nil {
			continue
		}
		bySeller[item.Product.SellerID] = append(bySeller[item.Product.SellerID], item)
	}

	for sellerID, items := range bySeller {
		if h.Subscribers(sellerID) == 0 {
			continue
		}
		revenue := decimal.Zero
		for _, item := range items {
			revenue = revenue.Add(item.LineTotal())
		}
		payload, err := json.Marshal(SaleEvent{
			Type:      "sale",
			OrderID:   order.ID,
			CreatedAt: order.CreatedAt,
			Revenue:   revenue,
			Items:     items,
		})
		if err != nil {
			log.Error().Err(err).Str("order_id", order.ID).Msg("failed to encode sale event")
			continue
		}
		h.broadcast(sellerID, payload)
	}
}

func (h *Hub) broadcast(sellerID string, payload []byte) {
	h.mu.RLock()
	var slow []*subscriber
	for sub := range h.subscribers[sellerID] {
		select {
		case sub.send <- payload:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		log.Warn().Str("seller_id", sellerID).Msg("dropping slow sales feed")
		h.remove(sub)
	}
}

func (h *Hub) add(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[sub.sellerID] == nil {
		h.subscribers[sub.sellerID] = make(map[*subscriber]struct{})
	}
	h.subscribers[sub.sellerID][sub] = struct{}{}
}

// remove is safe to call more than once for the same subscriber.
func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.subscribers[sub.sellerID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subscribers, sub.sellerID)
	}
	close(sub.send)
}

// readLoop only watches for close and pong frames; the feed is one-way.
func (h *Hub) readLoop(sub *subscriber) {
	defer func() {
		h.remove(sub)
		sub.conn.Close()
	}()

	sub.conn.SetReadLimit(512)
	_ = sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.remove(sub)
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(sub)
				return
			}
		}
	}
}
