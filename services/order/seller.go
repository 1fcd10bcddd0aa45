package order

import (
	"context"
	"errors"
	"strings"

	"github.com/chars3/caplink-store/apperr"
	"github.com/chars3/caplink-store/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SellerStats is the seller dashboard summary. Money comes from the order item
// price snapshots, so editing a product price never rewrites past revenue.
type SellerStats struct {
	TotalProducts      int64           `json:"total_products"`
	TotalSold          int64           `json:"total_sold"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	BestSellingProduct *models.Product `json:"best_selling_product"`
}

// SalesQuery filters and pages the seller sales ledger.
type SalesQuery struct {
	models.PageParams
	Search string
}

// SellerStats aggregates every order item sold from the seller's catalog. All
// figures are read in one transaction.
func (s *Service) SellerStats(ctx context.Context, sellerID string) (*SellerStats, error) {
	stats := &SellerStats{TotalRevenue: decimal.Zero}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("seller_id = ?", sellerID).Count(&stats.TotalProducts).Error; err != nil {
			return apperr.Store("failed to count products", err)
		}

		var sold []models.OrderItem
		// Explicit select: ordered_at only exists in the sales query.
		if err := sellerItems(tx, sellerID).Select("order_items.*").Find(&sold).Error; err != nil {
			return apperr.Store("failed to fetch sold items", err)
		}

		productSales := make(map[string]int64)
		for _, item := range sold {
			stats.TotalSold += int64(item.Quantity)
			stats.TotalRevenue = stats.TotalRevenue.Add(item.LineTotal())
			productSales[item.ProductID] += int64(item.Quantity)
		}

		bestID := bestSeller(productSales)
		if bestID == "" {
			return nil
		}

		var best models.Product
		if err := tx.Unscoped().First(&best, "id = ?", bestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return apperr.Store("failed to fetch best selling product", err)
		}
		stats.BestSellingProduct = &best
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// SellerSales returns one page of the seller's sold items, newest order first,
// with the unpaged count read in the same transaction.
func (s *Service) SellerSales(ctx context.Context, sellerID string, q SalesQuery) (*models.Page[models.OrderItem], error) {
	page := &models.Page[models.OrderItem]{Data: []models.OrderItem{}}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		filtered := func() *gorm.DB {
			query := sellerItems(tx, sellerID)
			if search := strings.TrimSpace(q.Search); search != "" {
				query = query.Where(`LOWER(products.name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(search))+"%")
			}
			return query
		}

		if err := filtered().Count(&page.Total).Error; err != nil {
			return apperr.Store("failed to count sales", err)
		}

		if err := filtered().
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Select("order_items.*, orders.created_at AS ordered_at").
			Preload("Product", unscoped).
			Order("orders.created_at DESC").Order("order_items.id").
			Offset(q.Offset()).Limit(q.Limit()).
			Find(&page.Data).Error; err != nil {
			return apperr.Store("failed to fetch sales", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// sellerItems selects order items whose product belongs to the seller. The raw
// join keeps soft-deleted products in the history.
func sellerItems(db *gorm.DB, sellerID string) *gorm.DB {
	return db.Model(&models.OrderItem{}).
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ?", sellerID)
}

// bestSeller picks the product with the strictly highest quantity. Ties go to
// the lowest product id so the answer never depends on map iteration order.
func bestSeller(productSales map[string]int64) string {
	var bestID string
	var maxSales int64
	for id, sales := range productSales {
		if sales > maxSales || (sales == maxSales && sales > 0 && id < bestID) {
			bestID = id
			maxSales = sales
		}
	}
	return bestID
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
