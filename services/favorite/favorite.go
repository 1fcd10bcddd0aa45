// Package favorite keeps the per-user list of liked products.
package favorite

import (
	"context"
	"errors"

	"github.com/chars3/caplink-store/apperr"
	"github.com/chars3/caplink-store/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Toggle removes the favorite when present and adds it otherwise. It reports
// whether the product is a favorite afterwards.
func (s *Service) Toggle(ctx context.Context, userID, productID string) (bool, error) {
	added := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Favorite{})
		if res.Error != nil {
			return apperr.Store("failed to remove favorite", res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}

		var product models.Product
		if err := tx.Select("id").First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product not found")
			}
			return apperr.Store("failed to validate product", err)
		}

		fav := models.Favorite{UserID: userID, ProductID: productID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fav).Error; err != nil {
			return apperr.Store("failed to add favorite", err)
		}
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// List returns the user's favorites with their products, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.Favorite, error) {
	favorites := []models.Favorite{}
	if err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id").
		Find(&favorites).Error; err != nil {
		return nil, apperr.Store("failed to fetch favorites", err)
	}
	return favorites, nil
}
