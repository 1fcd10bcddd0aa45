package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	ImageURL    string          `json:"image_url"`
	SellerID    string          `gorm:"type:uuid;not null;index" json:"seller_id"`
	Seller      *User           `gorm:"foreignKey:SellerID" json:"-"`
	SellerName  string          `gorm:"->;-:migration" json:"seller_name,omitempty"` // filled by joined queries
	PublishedAt time.Time       `gorm:"autoCreateTime;index" json:"published_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}
