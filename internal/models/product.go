package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a single auction listing. CurrentPrice starts at StartingPrice and
// only ever moves up as bids are accepted. Once IsActive goes false the auction
// is closed for good.
type Product struct {
	ID            uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	SellerID      uuid.UUID       `gorm:"type:char(36);index;not null" json:"sellerId"`
	Seller        User            `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE" json:"seller,omitempty"`
	Title         string          `gorm:"size:255;not null" json:"title"`
	Description   string          `gorm:"type:text" json:"description"`
	CategoryID    *uuid.UUID      `gorm:"type:char(36);index" json:"categoryId,omitempty"`
	Category      *Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	StartingPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"startingPrice"`
	CurrentPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"currentPrice"`
	StartTime     time.Time       `gorm:"not null" json:"startTime"`
	EndTime       time.Time       `gorm:"not null" json:"endTime"`
	IsActive      bool            `gorm:"not null;default:true" json:"isActive"`
	ImageURL      string          `gorm:"size:2048" json:"imageUrl,omitempty"`
	Bids          []Bid           `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"bids,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
