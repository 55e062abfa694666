package market_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commerce/adapters/store"
	"commerce/market"
	"commerce/models"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{name: "integer", raw: "150", want: 150},
		{name: "decimal with spaces", raw: " 12.50 ", want: 12.5},
		{name: "empty", raw: "", wantErr: true},
		{name: "not a number", raw: "abc", wantErr: true},
		{name: "nan", raw: "NaN", wantErr: true},
		{name: "infinity", raw: "Inf", wantErr: true},
		{name: "overflow", raw: "1e400", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := market.ParsePrice(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, market.ErrInvalidPrice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubmitBid(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	engine, err := market.NewBiddingEngine(s)
	require.NoError(t, err)

	owner, _ := createUser(t, s, "owner")
	alice, _ := createUser(t, s, "alice")
	bob, _ := createUser(t, s, "bob")
	auction := createAuction(t, s, owner.ID, 100)

	// 依序執行，每一步都依賴前一步的結果
	steps := []struct {
		name      string
		bidder    uuid.UUID
		price     string
		wantErr   error
		wantPrice float64
		wantTop   uuid.UUID
	}{
		{name: "equal to asking price", bidder: alice.ID, price: "100", wantErr: market.ErrBidTooLow, wantPrice: 100},
		{name: "invalid price", bidder: alice.ID, price: "abc", wantErr: market.ErrInvalidPrice, wantPrice: 100},
		{name: "first bid", bidder: alice.ID, price: "150", wantPrice: 150, wantTop: alice.ID},
		{name: "same price again", bidder: alice.ID, price: "150", wantErr: market.ErrBidTooLow, wantPrice: 150, wantTop: alice.ID},
		{name: "lower bid from another user", bidder: bob.ID, price: "120", wantErr: market.ErrBidTooLow, wantPrice: 150, wantTop: alice.ID},
		{name: "higher bid from another user", bidder: bob.ID, price: "200", wantPrice: 200, wantTop: bob.ID},
		{name: "rebid", bidder: alice.ID, price: "250.5", wantPrice: 250.5, wantTop: alice.ID},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			bid, err := engine.SubmitBid(ctx, auction.ID, step.bidder, step.price)
			if step.wantErr != nil {
				assert.ErrorIs(t, err, step.wantErr)
				assert.Nil(t, bid)
			} else {
				require.NoError(t, err)
				assert.Equal(t, step.wantPrice, bid.Price)
			}

			got, err := s.FindAuction(ctx, auction.ID)
			require.NoError(t, err)
			assert.Equal(t, step.wantPrice, got.Price)
			if step.wantTop == uuid.Nil {
				assert.Nil(t, got.TopBid)
			} else {
				require.NotNil(t, got.TopBid)
				assert.Equal(t, step.wantTop, got.TopBid.BidderID)
				assert.Equal(t, got.Price, got.TopBid.Price)
			}
		})
	}

	// 每個競標者只會有一筆出價
	count, err := s.CountBids(ctx, alice.ID, auction.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSubmitBidRejectsInactiveOrMissingAuction(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	engine, err := market.NewBiddingEngine(s)
	require.NoError(t, err)

	owner, _ := createUser(t, s, "owner")
	bidder, _ := createUser(t, s, "bidder")

	for _, status := range []models.Status{models.StatusDeactive, models.StatusClosed} {
		t.Run(string(status), func(t *testing.T) {
			auction := createAuction(t, s, owner.ID, 10)
			auction.Status = status
			require.NoError(t, s.UpdateAuction(ctx, auction))

			_, err := engine.SubmitBid(ctx, auction.ID, bidder.ID, "1000")
			assert.ErrorIs(t, err, market.ErrAuctionNotActive)
			_, found, err := s.FindBid(ctx, bidder.ID, auction.ID)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}

	_, err = engine.SubmitBid(ctx, uuid.New(), bidder.ID, "1000")
	assert.ErrorIs(t, err, market.ErrAuctionNotFound)
}

// racingStore 模擬在檢查價格之後，其他人搶先完成了更高的出價
type racingStore struct {
	market.BidStore
	apply func(ctx context.Context, bid *models.Bid) error
}

func (r *racingStore) ApplyBid(ctx context.Context, bid *models.Bid) error {
	return r.apply(ctx, bid)
}

func TestSubmitBidLosesRace(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	owner, _ := createUser(t, s, "owner")
	alice, _ := createUser(t, s, "alice")
	bob, _ := createUser(t, s, "bob")
	auction := createAuction(t, s, owner.ID, 100)

	racing := &racingStore{BidStore: s}
	racing.apply = func(ctx context.Context, bid *models.Bid) error {
		// bob 在 alice 的檢查之後出了更高的價格
		require.NoError(t, s.ApplyBid(ctx, &models.Bid{Price: 300, BidderID: bob.ID, AuctionID: auction.ID}))
		return s.ApplyBid(ctx, bid)
	}
	engine, err := market.NewBiddingEngine(racing)
	require.NoError(t, err)

	_, err = engine.SubmitBid(ctx, auction.ID, alice.ID, "200")
	assert.ErrorIs(t, err, market.ErrBidTooLow)

	got, err := s.FindAuction(ctx, auction.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, got.Price)
	assert.Equal(t, bob.ID, got.TopBid.BidderID)
	_, found, err := s.FindBid(ctx, alice.ID, auction.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

type failingBidStore struct {
	market.BidStore
}

func (f failingBidStore) ApplyBid(ctx context.Context, bid *models.Bid) error {
	return errors.New("connection reset")
}

func TestSubmitBidStoreFailure(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	owner, _ := createUser(t, s, "owner")
	auction := createAuction(t, s, owner.ID, 100)

	engine, err := market.NewBiddingEngine(failingBidStore{BidStore: s})
	require.NoError(t, err)
	_, err = engine.SubmitBid(ctx, auction.ID, owner.ID, "200")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, market.ErrBidTooLow))
	assert.False(t, errors.Is(err, store.ErrBidRejected))
}
