package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Bid struct {
	ID        uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	ProductID uuid.UUID       `gorm:"type:char(36);index;not null" json:"productId"`
	BidderID  uuid.UUID       `gorm:"type:char(36);index;not null" json:"bidderId"`
	Bidder    User            `gorm:"foreignKey:BidderID;constraint:OnDelete:CASCADE" json:"bidder,omitempty"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	CreatedAt time.Time       `gorm:"index" json:"createdAt"`
}

func (b *Bid) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
