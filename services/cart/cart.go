// Package cart owns the per-user shopping cart and its line items.
package cart

import (
	"context"
	"errors"
	"time"

	"github.com/chars3/caplink-store/apperr"
	"github.com/chars3/caplink-store/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetOrCreate returns the user's cart with every item and its product,
// creating an empty cart on first access.
func (s *Service) GetOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	return GetOrCreate(s.db.WithContext(ctx), userID)
}

// AddItem adds quantity units of a product, incrementing the existing line if any.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, apperr.Invalid("quantity must be a positive integer")
	}

	var item models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product not found")
			}
			return apperr.Store("failed to validate product", err)
		}

		cart, err := findOrCreate(tx, userID, true)
		if err != nil {
			return err
		}

		// Single-statement upsert so concurrent adds of the same product never lose an increment.
		line := models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + ?", quantity),
				"updated_at": time.Now(),
			}),
		}).Create(&line).Error; err != nil {
			return apperr.Store("failed to add item to cart", err)
		}

		if err := tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error; err != nil {
			return apperr.Store("failed to fetch cart item", err)
		}
		item.Product = &product
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Str("user_id", userID).Str("product_id", productID).Int("quantity", item.Quantity).Msg("cart item saved")
	return &item, nil
}

// RemoveItem deletes a line only if it belongs to the requesting user's cart.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (*models.CartItem, error) {
	var removed models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := findOrCreate(tx, userID, true)
		if err != nil {
			return err
		}
		if err := loadItems(tx, cart); err != nil {
			return err
		}

		found := false
		for _, it := range cart.Items {
			if it.ID == itemID {
				removed = it
				found = true
				break
			}
		}
		if !found {
			return apperr.NotFound("item not found in cart")
		}

		if err := tx.Where("id = ? AND cart_id = ?", itemID, cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return apperr.Store("failed to delete cart item", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

// Clear removes every item from the user's cart.
func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := findOrCreate(tx, userID, true)
		if err != nil {
			return err
		}
		return ClearItems(tx, cart.ID)
	})
}

// GetOrCreate is the transaction-scoped form of Service.GetOrCreate.
func GetOrCreate(tx *gorm.DB, userID string) (*models.Cart, error) {
	cart, err := findOrCreate(tx, userID, false)
	if err != nil {
		return nil, err
	}
	if err := loadItems(tx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func loadItems(tx *gorm.DB, cart *models.Cart) error {
	if err := tx.Preload("Product").
		Where("cart_id = ?", cart.ID).
		Order("created_at ASC").
		Find(&cart.Items).Error; err != nil {
		return apperr.Store("failed to fetch cart items", err)
	}
	return nil
}

// ClearItems deletes all lines of a cart.
func ClearItems(tx *gorm.DB, cartID string) error {
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return apperr.Store("failed to clear cart", err)
	}
	return nil
}

// findOrCreate loads the user's cart row. With lock set the row is held FOR
// UPDATE until the transaction ends, so item changes wait for a checkout
// that is already reading the cart.
func findOrCreate(tx *gorm.DB, userID string, lock bool) (*models.Cart, error) {
	read := func() *gorm.DB {
		if lock {
			return tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		return tx
	}

	var cart models.Cart
	err := read().Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Store("failed to fetch cart", err)
	}

	// Two first requests may race here; the loser's insert is a no-op.
	cart = models.Cart{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cart).Error; err != nil {
		return nil, apperr.Store("failed to create cart", err)
	}

	cart = models.Cart{}
	if err := read().Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, apperr.Store("failed to fetch cart", err)
	}
	return &cart, nil
}
