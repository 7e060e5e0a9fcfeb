package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Hasninemamud/AuctionCraft/internal/auction"
	"github.com/Hasninemamud/AuctionCraft/internal/models"
)

type ProductHandler struct {
	DB       *gorm.DB
	Auctions *auction.Service
}

type createProductRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	CategoryID    string `json:"categoryId"`
	StartingPrice string `json:"startingPrice" binding:"required"`
	StartTime     string `json:"startTime" binding:"required"`
	EndTime       string `json:"endTime" binding:"required"`
	ImageURL      string `json:"imageUrl"`
}

type updateProductRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	CategoryID  string `json:"categoryId"`
	EndTime     string `json:"endTime"`
	ImageURL    string `json:"imageUrl"`
}

type placeBidRequest struct {
	Amount string `json:"amount" binding:"required"`
}

func NewProductHandler(db *gorm.DB, auctions *auction.Service) *ProductHandler {
	return &ProductHandler{DB: db, Auctions: auctions}
}

func (h *ProductHandler) List(c *gin.Context) {
	var products []models.Product
	if err := h.DB.Preload("Seller").Preload("Category").
		Order("created_at desc").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Get(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var product models.Product
	if err := h.DB.Preload("Seller").Preload("Category").
		Preload("Bids", func(db *gorm.DB) *gorm.DB {
			return db.Order("bids.created_at desc")
		}).
		Preload("Bids.Bidder").
		First(&product, "id = ?", productID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	startingPrice, err := decimal.NewFromString(req.StartingPrice)
	if err != nil || startingPrice.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startingPrice"})
		return
	}
	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startTime"})
		return
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil || !endTime.After(startTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endTime"})
		return
	}
	categoryID, err := parseCategoryID(req.CategoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid categoryId"})
		return
	}

	product := models.Product{
		SellerID:      userID,
		Title:         req.Title,
		Description:   req.Description,
		CategoryID:    categoryID,
		StartingPrice: startingPrice,
		CurrentPrice:  startingPrice,
		StartTime:     startTime,
		EndTime:       endTime,
		IsActive:      true,
		ImageURL:      req.ImageURL,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	product, ok := h.ownedProduct(c)
	if !ok {
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	categoryID, err := parseCategoryID(req.CategoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid categoryId"})
		return
	}

	product.Title = req.Title
	product.Description = req.Description
	product.CategoryID = categoryID
	product.ImageURL = req.ImageURL
	if req.EndTime != "" {
		endTime, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endTime"})
			return
		}
		product.EndTime = endTime
	}

	if err := h.DB.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	product, ok := h.ownedProduct(c)
	if !ok {
		return
	}

	if err := h.DB.Select("Bids").Delete(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *ProductHandler) PlaceBid(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	bid, err := h.Auctions.PlaceBid(productID, userID, req.Amount)
	if err != nil {
		respondAuctionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bid)
}

func (h *ProductHandler) CloseAuction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	result, err := h.Auctions.CloseAuction(productID, userID, currentUserIsStaff(c))
	if err != nil {
		respondAuctionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "auction closed and bidders notified",
		"winner":   result.Winner,
		"notified": result.Notified,
	})
}

// ownedProduct loads the product from the path and enforces that the caller
// is its seller or staff.
func (h *ProductHandler) ownedProduct(c *gin.Context) (models.Product, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return models.Product{}, false
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return models.Product{}, false
	}

	var product models.Product
	if err := h.DB.First(&product, "id = ?", productID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return models.Product{}, false
	}

	if product.SellerID != userID && !currentUserIsStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return models.Product{}, false
	}

	return product, true
}

func parseCategoryID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// respondAuctionError maps service errors onto the HTTP taxonomy:
// missing product 404, authorization 403, business rules 400.
func respondAuctionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auction.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, auction.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, auction.ErrAuctionClosed),
		errors.Is(err, auction.ErrAlreadyClosed),
		errors.Is(err, auction.ErrInvalidAmount),
		errors.Is(err, auction.ErrBidTooLow),
		errors.Is(err, auction.ErrPriceChanged):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
