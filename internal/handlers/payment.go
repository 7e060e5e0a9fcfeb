package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/Hasninemamud/AuctionCraft/internal/payments"
)

type PaymentHandler struct {
	Gateway *payments.Gateway
}

type createIntentRequest struct {
	Amount string `json:"amount" binding:"required"`
}

func NewPaymentHandler(gateway *payments.Gateway) *PaymentHandler {
	return &PaymentHandler{Gateway: gateway}
}

func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing amount"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	clientSecret, err := h.Gateway.CreateIntent(amount)
	if err != nil {
		// provider errors go back to the caller as-is
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"clientSecret": clientSecret})
}

func (h *PaymentHandler) ConfirmOrder(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"message": "order recorded"})
}

// Webhook verifies the provider's signature and acknowledges the event. A
// failed verification returns a bare 400 with no detail.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	event, err := h.Gateway.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if event.Type == "payment_intent.succeeded" {
		// TODO: fulfil the order once order records exist
		log.WithField("event", event.ID).Info("payment intent succeeded")
	}

	c.Status(http.StatusOK)
}
