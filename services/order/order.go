// Package order turns carts into orders and reports on order history.
package order

import (
	"context"
	"errors"

	"github.com/chars3/caplink-store/apperr"
	"github.com/chars3/caplink-store/models"
	"github.com/chars3/caplink-store/services/cart"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Listener is told about every committed order. It must not block for long and
// cannot fail the checkout.
type Listener interface {
	OrderCompleted(ctx context.Context, order *models.Order)
}

type Service struct {
	db       *gorm.DB
	listener Listener
}

// NewService wires the store and an optional listener (nil for none).
func NewService(db *gorm.DB, listener Listener) *Service {
	return &Service{db: db, listener: listener}
}

// -------- Checkout --------

// Checkout materializes the user's cart into a COMPLETED order with per-item
// price snapshots and empties the cart, all in one transaction.
func (s *Service) Checkout(ctx context.Context, userID string) (*models.Order, error) {
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Cart item writes lock the same row, so nothing can change the items
		// between the read below and the clear.
		var c models.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrEmptyCart
			}
			return apperr.Store("failed to fetch cart", err)
		}

		var items []models.CartItem
		if err := tx.Preload("Product").
			Where("cart_id = ?", c.ID).
			Order("created_at ASC").
			Find(&items).Error; err != nil {
			return apperr.Store("failed to fetch cart items", err)
		}
		if len(items) == 0 {
			return apperr.ErrEmptyCart
		}

		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			if item.Product == nil {
				return apperr.NotFound("product in cart is no longer available")
			}
			price := item.Product.Price
			total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			orderItems = append(orderItems, models.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     price,
			})
		}

		order = models.Order{
			UserID: userID,
			Total:  total,
			Status: models.OrderStatusCompleted,
			Items:  orderItems,
		}
		if err := tx.Create(&order).Error; err != nil {
			return apperr.Store("failed to create order", err)
		}

		if err := cart.ClearItems(tx, c.ID); err != nil {
			return err
		}

		for i := range order.Items {
			order.Items[i].Product = items[i].Product
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("order_id", order.ID).
		Str("user_id", userID).
		Int("items", len(order.Items)).
		Str("total", order.Total.StringFixed(2)).
		Msg("order placed")

	if s.listener != nil {
		s.listener.OrderCompleted(ctx, &order)
	}
	return &order, nil
}

// -------- Order history --------

// List returns one page of the user's orders, newest first.
func (s *Service) List(ctx context.Context, userID string, params models.PageParams) (*models.Page[models.Order], error) {
	page := &models.Page[models.Order]{Data: []models.Order{}}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Where("user_id = ?", userID).Count(&page.Total).Error; err != nil {
			return apperr.Store("failed to count orders", err)
		}
		if err := tx.Where("user_id = ?", userID).
			Preload("Items.Product", unscoped).
			Order("created_at DESC").Order("id").
			Offset(params.Offset()).Limit(params.Limit()).
			Find(&page.Data).Error; err != nil {
			return apperr.Store("failed to fetch orders", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Get returns one order; orders of other users are reported as not found.
func (s *Service) Get(ctx context.Context, userID, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items.Product", unscoped).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, apperr.Store("failed to fetch order", err)
	}
	return &order, nil
}

// Sold products may be deleted later; their order history still shows them.
func unscoped(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}
