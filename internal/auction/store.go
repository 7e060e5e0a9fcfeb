package auction

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Hasninemamud/AuctionCraft/internal/models"
)

// Settlement is the consistent snapshot taken while an auction is closed:
// the full bid ledger and every distinct bidder.
type Settlement struct {
	Bids    []models.Bid
	Bidders []models.User
}

// Store is the persistence surface the auction service needs.
//
//go:generate mockgen -source=store.go -destination=mock_store.go -package=auction
type Store interface {
	ProductByID(id uuid.UUID) (models.Product, error)
	// PlaceBid appends the bid and raises the product price in one
	// transaction. priceSeen is the current price the bidder validated
	// against; if the row no longer carries it (or the auction is no longer
	// active) nothing is written and ErrPriceChanged or ErrAuctionClosed is
	// returned.
	PlaceBid(bid *models.Bid, priceSeen decimal.Decimal) error
	// CloseAuction flips is_active to false, stamps end_time and computes
	// the settlement snapshot in one transaction. Returns ErrAlreadyClosed
	// if the flag was already false.
	CloseAuction(productID uuid.UUID, endedAt time.Time) (Settlement, error)
	SaveNotification(n *models.Notification) error
}

// GormStore implements Store on a relational database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ProductByID(id uuid.UUID) (models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Product{}, ErrProductNotFound
		}
		return models.Product{}, fmt.Errorf("store: load product %s: %w", id, err)
	}
	return product, nil
}

func (s *GormStore) PlaceBid(bid *models.Bid, priceSeen decimal.Decimal) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		// Conditional update closes the read-compare-write race: of two
		// concurrent bids that validated against the same price, only one
		// finds the row still carrying it.
		res := tx.Model(&models.Product{}).
			Where("id = ? AND is_active = ? AND current_price = ?", bid.ProductID, true, priceSeen).
			Update("current_price", bid.Amount)
		if res.Error != nil {
			return fmt.Errorf("store: update price for product %s: %w", bid.ProductID, res.Error)
		}
		if res.RowsAffected == 0 {
			var product models.Product
			if err := tx.First(&product, "id = ?", bid.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return fmt.Errorf("store: recheck product %s: %w", bid.ProductID, err)
			}
			if !product.IsActive {
				return ErrAuctionClosed
			}
			return ErrPriceChanged
		}

		if err := tx.Create(bid).Error; err != nil {
			return fmt.Errorf("store: record bid for product %s: %w", bid.ProductID, err)
		}
		return nil
	})
}

func (s *GormStore) CloseAuction(productID uuid.UUID, endedAt time.Time) (Settlement, error) {
	var settlement Settlement

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND is_active = ?", productID, true).
			Updates(map[string]interface{}{"is_active": false, "end_time": endedAt})
		if res.Error != nil {
			return fmt.Errorf("store: close product %s: %w", productID, res.Error)
		}
		if res.RowsAffected == 0 {
			var product models.Product
			if err := tx.First(&product, "id = ?", productID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return fmt.Errorf("store: recheck product %s: %w", productID, err)
			}
			return ErrAlreadyClosed
		}

		if err := tx.Preload("Bidder").
			Where("product_id = ?", productID).
			Order("amount DESC, created_at ASC").
			Find(&settlement.Bids).Error; err != nil {
			return fmt.Errorf("store: load bids for product %s: %w", productID, err)
		}

		var bidderIDs []uuid.UUID
		if err := tx.Model(&models.Bid{}).
			Where("product_id = ?", productID).
			Distinct("bidder_id").
			Pluck("bidder_id", &bidderIDs).Error; err != nil {
			return fmt.Errorf("store: list bidders for product %s: %w", productID, err)
		}
		if len(bidderIDs) > 0 {
			if err := tx.Where("id IN ?", bidderIDs).Find(&settlement.Bidders).Error; err != nil {
				return fmt.Errorf("store: load bidders for product %s: %w", productID, err)
			}
		}
		return nil
	})
	if err != nil {
		return Settlement{}, err
	}
	return settlement, nil
}

func (s *GormStore) SaveNotification(n *models.Notification) error {
	if err := s.db.Create(n).Error; err != nil {
		return fmt.Errorf("store: save notification for user %s: %w", n.UserID, err)
	}
	return nil
}
