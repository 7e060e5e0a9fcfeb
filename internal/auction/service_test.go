package auction

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Hasninemamud/AuctionCraft/internal/models"
)

// recordingNotifier captures deliveries and can be made to fail.
type recordingNotifier struct {
	delivered []uuid.UUID
	err       error
}

func (n *recordingNotifier) Deliver(user models.User, title, message string) error {
	n.delivered = append(n.delivered, user.ID)
	return n.err
}

func activeProduct(sellerID uuid.UUID, currentPrice int64) models.Product {
	now := time.Now().UTC()
	return models.Product{
		ID:            uuid.New(),
		SellerID:      sellerID,
		Title:         "Vintage Clock",
		StartingPrice: decimal.NewFromInt(currentPrice),
		CurrentPrice:  decimal.NewFromInt(currentPrice),
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(time.Hour),
		IsActive:      true,
	}
}

// Tests PlaceBid
func TestService_PlaceBid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sellerID := uuid.New()
	bidderID := uuid.New()

	tests := []struct {
		name          string
		amount        string
		mockSetup     func(store *MockStore)
		expectedError error
	}{
		{
			name:   "valid_first_bid",
			amount: "15.00",
			mockSetup: func(store *MockStore) {
				store.EXPECT().ProductByID(gomock.Any()).Return(activeProduct(sellerID, 10), nil)
				store.EXPECT().PlaceBid(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:   "product_not_found",
			amount: "15.00",
			mockSetup: func(store *MockStore) {
				store.EXPECT().ProductByID(gomock.Any()).Return(models.Product{}, ErrProductNotFound)
			},
			expectedError: ErrProductNotFound,
		},
		{
			name:   "inactive_auction",
			amount: "15.00",
			mockSetup: func(store *MockStore) {
				product := activeProduct(sellerID, 10)
				product.IsActive = false
				store.EXPECT().ProductByID(gomock.Any()).Return(product, nil)
			},
			expectedError: ErrAuctionClosed,
		},
		{
			name:   "past_end_time",
			amount: "15.00",
			mockSetup: func(store *MockStore) {
				product := activeProduct(sellerID, 10)
				product.EndTime = time.Now().UTC().Add(-time.Minute)
				store.EXPECT().ProductByID(gomock.Any()).Return(product, nil)
			},
			expectedError: ErrAuctionClosed,
		},
		{
			name:   "non_numeric_amount",
			amount: "fifteen",
			mockSetup: func(store *MockStore) {
				store.EXPECT().ProductByID(gomock.Any()).Return(activeProduct(sellerID, 10), nil)
			},
			expectedError: ErrInvalidAmount,
		},
		{
			name:   "negative_amount",
			amount: "-5.00",
			mockSetup: func(store *MockStore) {
				store.EXPECT().ProductByID(gomock.Any()).Return(activeProduct(sellerID, 10), nil)
			},
			expectedError: ErrInvalidAmount,
		},
		{
			name:   "amount_equal_to_current_price",
			amount: "10.00",
			mockSetup: func(store *MockStore) {
				store.EXPECT().ProductByID(gomock.Any()).Return(activeProduct(sellerID, 10), nil)
			},
			expectedError: ErrBidTooLow,
		},
		{
			name:   "amount_below_current_price",
			amount: "9.99",
			mockSetup: func(store *MockStore) {
				store.EXPECT().ProductByID(gomock.Any()).Return(activeProduct(sellerID, 10), nil)
			},
			expectedError: ErrBidTooLow,
		},
		{
			name:   "concurrent_bid_wins_the_race",
			amount: "15.00",
			mockSetup: func(store *MockStore) {
				store.EXPECT().ProductByID(gomock.Any()).Return(activeProduct(sellerID, 10), nil)
				store.EXPECT().PlaceBid(gomock.Any(), gomock.Any()).Return(ErrPriceChanged)
			},
			expectedError: ErrPriceChanged,
		},
		{
			name:   "auction_closed_between_read_and_write",
			amount: "15.00",
			mockSetup: func(store *MockStore) {
				store.EXPECT().ProductByID(gomock.Any()).Return(activeProduct(sellerID, 10), nil)
				store.EXPECT().PlaceBid(gomock.Any(), gomock.Any()).Return(ErrAuctionClosed)
			},
			expectedError: ErrAuctionClosed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := NewMockStore(ctrl)
			tc.mockSetup(store)
			service := NewService(store, nil, nil)

			bid, err := service.PlaceBid(uuid.New(), bidderID, tc.amount)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, bidderID, bid.BidderID)
			require.True(t, bid.Amount.Equal(decimal.RequireFromString(tc.amount)))
		})
	}
}

// The accepted bid must raise the price to exactly its amount, validated
// against the price the bidder saw.
func TestService_PlaceBid_RaisesPrice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockStore(ctrl)
	product := activeProduct(uuid.New(), 10)
	store.EXPECT().ProductByID(product.ID).Return(product, nil)
	store.EXPECT().PlaceBid(gomock.Any(), gomock.Any()).DoAndReturn(
		func(bid *models.Bid, priceSeen decimal.Decimal) error {
			require.True(t, priceSeen.Equal(decimal.NewFromInt(10)))
			require.True(t, bid.Amount.GreaterThan(priceSeen))
			require.Equal(t, product.ID, bid.ProductID)
			return nil
		})

	service := NewService(store, nil, nil)
	bid, err := service.PlaceBid(product.ID, uuid.New(), "12.50")
	require.NoError(t, err)
	require.Equal(t, "12.50", bid.Amount.StringFixed(2))
}

// Tests CloseAuction
func TestService_CloseAuction_Authorization(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sellerID := uuid.New()
	stranger := uuid.New()

	store := NewMockStore(ctrl)
	product := activeProduct(sellerID, 10)
	store.EXPECT().ProductByID(product.ID).Return(product, nil)

	service := NewService(store, nil, nil)
	_, err := service.CloseAuction(product.ID, stranger, false)
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestService_CloseAuction_AlreadyClosed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sellerID := uuid.New()
	store := NewMockStore(ctrl)
	product := activeProduct(sellerID, 10)
	store.EXPECT().ProductByID(product.ID).Return(product, nil)
	store.EXPECT().CloseAuction(product.ID, gomock.Any()).Return(Settlement{}, ErrAlreadyClosed)

	service := NewService(store, nil, nil)
	_, err := service.CloseAuction(product.ID, sellerID, false)
	require.ErrorIs(t, err, ErrAlreadyClosed)
}

func TestService_CloseAuction_NotifiesDistinctBidders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sellerID := uuid.New()
	product := activeProduct(sellerID, 10)

	winner := models.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com"}
	loser := models.User{ID: uuid.New(), Username: "bob", Email: "bob@example.com"}

	base := time.Now().UTC()
	settlement := Settlement{
		// alice bid twice; only one notification must reach her
		Bids: []models.Bid{
			{ProductID: product.ID, BidderID: loser.ID, Bidder: loser, Amount: decimal.NewFromInt(12), CreatedAt: base},
			{ProductID: product.ID, BidderID: winner.ID, Bidder: winner, Amount: decimal.NewFromInt(15), CreatedAt: base.Add(time.Second)},
			{ProductID: product.ID, BidderID: winner.ID, Bidder: winner, Amount: decimal.NewFromInt(13), CreatedAt: base.Add(2 * time.Second)},
		},
		Bidders: []models.User{winner, loser},
	}

	store := NewMockStore(ctrl)
	store.EXPECT().ProductByID(product.ID).Return(product, nil)
	store.EXPECT().CloseAuction(product.ID, gomock.Any()).Return(settlement, nil)

	var saved []models.Notification
	store.EXPECT().SaveNotification(gomock.Any()).DoAndReturn(
		func(n *models.Notification) error {
			saved = append(saved, *n)
			return nil
		}).Times(2)

	notifier := &recordingNotifier{}
	service := NewService(store, notifier, nil)

	result, err := service.CloseAuction(product.ID, sellerID, false)
	require.NoError(t, err)
	require.NotNil(t, result.Winner)
	require.Equal(t, winner.ID, result.Winner.BidderID)
	require.Equal(t, 2, result.Notified)
	require.Len(t, saved, 2)
	require.Len(t, notifier.delivered, 2)

	byUser := map[uuid.UUID]models.Notification{}
	for _, n := range saved {
		byUser[n.UserID] = n
	}
	require.Contains(t, byUser[winner.ID].Title, "You won")
	require.Contains(t, byUser[winner.ID].Message, "15.00")
	require.Contains(t, byUser[loser.ID].Title, "Auction ended")
	require.Contains(t, byUser[loser.ID].Message, "alice")
}

func TestService_CloseAuction_NoBids(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sellerID := uuid.New()
	product := activeProduct(sellerID, 10)

	store := NewMockStore(ctrl)
	store.EXPECT().ProductByID(product.ID).Return(product, nil)
	store.EXPECT().CloseAuction(product.ID, gomock.Any()).Return(Settlement{}, nil)

	service := NewService(store, &recordingNotifier{}, nil)
	result, err := service.CloseAuction(product.ID, sellerID, false)
	require.NoError(t, err)
	require.Nil(t, result.Winner)
	require.Zero(t, result.Notified)
}

func TestService_CloseAuction_StaffMayClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	product := activeProduct(uuid.New(), 10)
	store := NewMockStore(ctrl)
	store.EXPECT().ProductByID(product.ID).Return(product, nil)
	store.EXPECT().CloseAuction(product.ID, gomock.Any()).Return(Settlement{}, nil)

	service := NewService(store, nil, nil)
	_, err := service.CloseAuction(product.ID, uuid.New(), true)
	require.NoError(t, err)
}

// Delivery failure is logged, never surfaced: settlement still succeeds and
// the notification rows are still written.
func TestService_CloseAuction_DeliveryFailureIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sellerID := uuid.New()
	product := activeProduct(sellerID, 10)
	bidder := models.User{ID: uuid.New(), Username: "carol", Email: "carol@example.com"}
	settlement := Settlement{
		Bids:    []models.Bid{{ProductID: product.ID, BidderID: bidder.ID, Bidder: bidder, Amount: decimal.NewFromInt(20), CreatedAt: time.Now().UTC()}},
		Bidders: []models.User{bidder},
	}

	store := NewMockStore(ctrl)
	store.EXPECT().ProductByID(product.ID).Return(product, nil)
	store.EXPECT().CloseAuction(product.ID, gomock.Any()).Return(settlement, nil)
	store.EXPECT().SaveNotification(gomock.Any()).Return(nil)

	notifier := &recordingNotifier{err: errors.New("smtp: connection refused")}
	service := NewService(store, notifier, nil)

	result, err := service.CloseAuction(product.ID, sellerID, false)
	require.NoError(t, err)
	require.Equal(t, 1, result.Notified)
}

func TestWinningBid(t *testing.T) {
	base := time.Now().UTC()
	bidderA := uuid.New()
	bidderB := uuid.New()
	bidderC := uuid.New()

	bids := []models.Bid{
		{BidderID: bidderA, Amount: decimal.NewFromInt(10), CreatedAt: base.Add(1 * time.Second)},
		{BidderID: bidderB, Amount: decimal.NewFromInt(15), CreatedAt: base.Add(2 * time.Second)},
		{BidderID: bidderC, Amount: decimal.NewFromInt(15), CreatedAt: base.Add(3 * time.Second)},
	}

	// highest amount wins, ties broken by the earlier bid
	winner := winningBid(bids)
	require.NotNil(t, winner)
	require.Equal(t, bidderB, winner.BidderID)

	require.Nil(t, winningBid(nil))
}

func TestSettlementMessage(t *testing.T) {
	winnerUser := models.User{ID: uuid.New(), Username: "alice"}
	winner := &models.Bid{BidderID: winnerUser.ID, Bidder: winnerUser, Amount: decimal.RequireFromString("42.50")}

	title, message := settlementMessage("Vintage Clock", winner, winnerUser.ID)
	require.Equal(t, "You won the auction for 'Vintage Clock'!", title)
	require.Contains(t, message, "42.50")

	title, message = settlementMessage("Vintage Clock", winner, uuid.New())
	require.Equal(t, "Auction ended: 'Vintage Clock'", title)
	require.Contains(t, message, "Winner: alice with 42.50")

	_, message = settlementMessage("Vintage Clock", nil, uuid.New())
	require.Contains(t, message, "No winner (no bids)")
}
