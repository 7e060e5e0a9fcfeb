package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Hasninemamud/AuctionCraft/internal/auction"
	"github.com/Hasninemamud/AuctionCraft/internal/models"
)

type BidHandler struct {
	DB       *gorm.DB
	Auctions *auction.Service
}

type createBidRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
}

func NewBidHandler(db *gorm.DB, auctions *auction.Service) *BidHandler {
	return &BidHandler{DB: db, Auctions: auctions}
}

func (h *BidHandler) List(c *gin.Context) {
	query := h.DB.Preload("Bidder").Order("created_at desc")
	if raw := c.Query("product"); raw != "" {
		productID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product filter"})
			return
		}
		query = query.Where("product_id = ?", productID)
	}

	var bids []models.Bid
	if err := query.Find(&bids).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load bids"})
		return
	}
	c.JSON(http.StatusOK, bids)
}

// Create places a bid with the caller as the bidder. It runs through the same
// validated path as the product place_bid action.
func (h *BidHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
		return
	}

	bid, err := h.Auctions.PlaceBid(productID, userID, req.Amount)
	if err != nil {
		respondAuctionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bid)
}
