package auction

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/Hasninemamud/AuctionCraft/internal/models"
)

// Notifier delivers a message to a user over an external channel (email).
// Delivery is best-effort: errors are logged by the caller, never propagated.
type Notifier interface {
	Deliver(user models.User, title, message string) error
}

// EventPublisher pushes domain events onto the event bus, best-effort.
type EventPublisher interface {
	Publish(subject string, payload interface{}) error
}

// Service implements bid placement and auction settlement.
type Service struct {
	store    Store
	notifier Notifier
	events   EventPublisher
}

// NewService creates a Service. notifier and events may be nil, in which case
// the corresponding fan-out is skipped.
func NewService(store Store, notifier Notifier, events EventPublisher) *Service {
	return &Service{store: store, notifier: notifier, events: events}
}

// CloseResult summarizes a settled auction.
type CloseResult struct {
	Winner   *models.Bid `json:"winner,omitempty"`
	Notified int         `json:"notified"`
}

// PlaceBid validates and records a bid on an active auction, raising the
// product's current price to the bid amount.
func (s *Service) PlaceBid(productID uuid.UUID, bidderID uuid.UUID, rawAmount string) (models.Bid, error) {
	product, err := s.store.ProductByID(productID)
	if err != nil {
		return models.Bid{}, err
	}

	now := time.Now().UTC()
	if !product.IsActive || !now.Before(product.EndTime) {
		return models.Bid{}, ErrAuctionClosed
	}

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil || amount.Sign() <= 0 {
		return models.Bid{}, ErrInvalidAmount
	}
	if amount.Cmp(product.CurrentPrice) <= 0 {
		return models.Bid{}, fmt.Errorf("%w (current price is %s)", ErrBidTooLow, product.CurrentPrice.StringFixed(2))
	}

	bid := models.Bid{
		ID:        uuid.New(),
		ProductID: product.ID,
		BidderID:  bidderID,
		Amount:    amount,
		CreatedAt: now,
	}
	if err := s.store.PlaceBid(&bid, product.CurrentPrice); err != nil {
		return models.Bid{}, err
	}

	s.publish("auctions.bid.placed", map[string]interface{}{
		"productId": product.ID,
		"bidId":     bid.ID,
		"amount":    amount.StringFixed(2),
	})

	return bid, nil
}

// CloseAuction irreversibly ends an auction and notifies every distinct
// bidder. Only the seller or a staff account may close it. Notification
// delivery failures are logged and do not affect the settlement.
func (s *Service) CloseAuction(productID uuid.UUID, callerID uuid.UUID, isStaff bool) (CloseResult, error) {
	product, err := s.store.ProductByID(productID)
	if err != nil {
		return CloseResult{}, err
	}
	if callerID != product.SellerID && !isStaff {
		return CloseResult{}, ErrNotAuthorized
	}

	settlement, err := s.store.CloseAuction(product.ID, time.Now().UTC())
	if err != nil {
		return CloseResult{}, err
	}

	winner := winningBid(settlement.Bids)
	result := CloseResult{Winner: winner}
	for _, bidder := range settlement.Bidders {
		title, message := settlementMessage(product.Title, winner, bidder.ID)

		notification := models.Notification{
			UserID:  bidder.ID,
			Title:   title,
			Message: message,
		}
		if err := s.store.SaveNotification(&notification); err != nil {
			log.WithFields(log.Fields{"product": product.ID, "user": bidder.ID}).
				WithError(err).Error("failed to persist settlement notification")
			continue
		}
		result.Notified++

		if s.notifier != nil {
			if err := s.notifier.Deliver(bidder, title, message); err != nil {
				log.WithFields(log.Fields{"product": product.ID, "user": bidder.ID}).
					WithError(err).Warn("failed to deliver settlement notification")
			}
		}
	}

	payload := map[string]interface{}{"productId": product.ID}
	if winner != nil {
		payload["winnerId"] = winner.BidderID
		payload["amount"] = winner.Amount.StringFixed(2)
	}
	s.publish("auctions.closed", payload)

	return result, nil
}

// winningBid picks the bid with the highest amount, ties broken by the
// earliest timestamp. Returns nil when there are no bids.
func winningBid(bids []models.Bid) *models.Bid {
	var winner *models.Bid
	for i := range bids {
		bid := &bids[i]
		if winner == nil ||
			bid.Amount.Cmp(winner.Amount) > 0 ||
			(bid.Amount.Cmp(winner.Amount) == 0 && bid.CreatedAt.Before(winner.CreatedAt)) {
			winner = bid
		}
	}
	return winner
}

// settlementMessage builds the notification for one bidder: a congratulation
// for the winner, an auction-ended summary for everyone else.
func settlementMessage(productTitle string, winner *models.Bid, bidderID uuid.UUID) (string, string) {
	if winner != nil && bidderID == winner.BidderID {
		title := fmt.Sprintf("You won the auction for '%s'!", productTitle)
		message := fmt.Sprintf(
			"Congratulations! You are the winner of the auction '%s' with a bid of %s. Please follow up with the seller to complete the transaction.",
			productTitle, winner.Amount.StringFixed(2))
		return title, message
	}

	title := fmt.Sprintf("Auction ended: '%s'", productTitle)
	winnerInfo := "No winner (no bids)"
	if winner != nil {
		winnerInfo = fmt.Sprintf("Winner: %s with %s", winner.Bidder.Username, winner.Amount.StringFixed(2))
	}
	message := fmt.Sprintf("The auction '%s' has ended. %s. Thank you for participating.", productTitle, winnerInfo)
	return title, message
}

func (s *Service) publish(subject string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(subject, payload); err != nil {
		log.WithField("subject", subject).WithError(err).Warn("failed to publish event")
	}
}
