// Package product manages the seller catalog.
package product

import (
	"context"
	"errors"
	"strings"

	"github.com/chars3/caplink-store/apperr"
	"github.com/chars3/caplink-store/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultBatchSize = 1000

type Service struct {
	db        *gorm.DB
	batchSize int
}

// NewService uses batchSize rows per insert when importing; non-positive means 1000.
func NewService(db *gorm.DB, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Service{db: db, batchSize: batchSize}
}

type CreateInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
}

// UpdateInput carries only the fields to change.
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	ImageURL    *string
}

type ListQuery struct {
	models.PageParams
	Search   string
	SellerID string
}

func (s *Service) Create(ctx context.Context, sellerID string, in CreateInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Invalid("name is required")
	}
	if !in.Price.IsPositive() {
		return nil, apperr.Invalid("price must be positive")
	}

	p := models.Product{
		Name:        name,
		Description: in.Description,
		Price:       in.Price.Round(2),
		ImageURL:    in.ImageURL,
		SellerID:    sellerID,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, apperr.Store("failed to create product", err)
	}

	log.Info().Str("product_id", p.ID).Str("seller_id", sellerID).Msg("product created")
	return &p, nil
}

// List returns products of active sellers, most recently published first.
func (s *Service) List(ctx context.Context, q ListQuery) (*models.Page[models.Product], error) {
	page := &models.Page[models.Product]{Data: []models.Product{}}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		filtered := func() *gorm.DB {
			query := tx.Model(&models.Product{}).
				Joins("JOIN users ON users.id = products.seller_id AND users.active = ?", true)
			if q.SellerID != "" {
				query = query.Where("products.seller_id = ?", q.SellerID)
			}
			if search := strings.TrimSpace(q.Search); search != "" {
				pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
				query = query.Where(`LOWER(products.name) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\'`, pattern, pattern)
			}
			return query
		}

		if err := filtered().Count(&page.Total).Error; err != nil {
			return apperr.Store("failed to count products", err)
		}
		if err := filtered().
			Select("products.*, users.name AS seller_name").
			Order("products.published_at DESC").Order("products.id").
			Offset(q.Offset()).Limit(q.Limit()).
			Find(&page.Data).Error; err != nil {
			return apperr.Store("failed to fetch products", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Get returns one live product with its seller name.
func (s *Service) Get(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).
		Select("products.*, users.name AS seller_name").
		Joins("JOIN users ON users.id = products.seller_id").
		Where("products.id = ?", id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, apperr.Store("failed to fetch product", err)
	}
	return &p, nil
}

// Update changes an owned product. Past order items keep their own price.
func (s *Service) Update(ctx context.Context, sellerID, id string, in UpdateInput) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned, err := findOwned(tx, sellerID, id)
		if err != nil {
			return err
		}
		p = *owned

		updates := map[string]interface{}{}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.Invalid("name cannot be empty")
			}
			updates["name"] = name
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Price != nil {
			if !in.Price.IsPositive() {
				return apperr.Invalid("price must be positive")
			}
			updates["price"] = in.Price.Round(2)
		}
		if in.ImageURL != nil {
			updates["image_url"] = *in.ImageURL
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&p).Updates(updates).Error; err != nil {
			return apperr.Store("failed to update product", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete soft-deletes an owned product and drops it from every cart and
// favorites list. Orders keep pointing at it.
func (s *Service) Delete(ctx context.Context, sellerID, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := findOwned(tx, sellerID, id)
		if err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&models.CartItem{}).Error; err != nil {
			return apperr.Store("failed to remove product from carts", err)
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&models.Favorite{}).Error; err != nil {
			return apperr.Store("failed to remove product from favorites", err)
		}
		if err := tx.Delete(p).Error; err != nil {
			return apperr.Store("failed to delete product", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Str("product_id", id).Str("seller_id", sellerID).Msg("product deleted")
	return nil
}

func findOwned(tx *gorm.DB, sellerID, id string) (*models.Product, error) {
	var p models.Product
	if err := tx.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, apperr.Store("failed to fetch product", err)
	}
	if p.SellerID != sellerID {
		return nil, apperr.Forbidden("product belongs to another seller")
	}
	return &p, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
