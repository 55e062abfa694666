package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"commerce/adapters/store"
	"commerce/models"
)

const meterName = "commerce/market"

// BiddingEngine 處理出價
//
// 出價必須嚴格大於商品目前的價格才會成為最高出價。
// 價格的比較與寫入由 BidStore.ApplyBid 在同一個交易中完成，
// 同時送出的出價最多只有一筆會成功。
type BiddingEngine struct {
	store   BidStore
	logger  *slog.Logger
	counter metric.Int64Counter
}

type BiddingEngineOption func(*BiddingEngine)

func WithBiddingLogger(logger *slog.Logger) BiddingEngineOption {
	return func(e *BiddingEngine) {
		e.logger = logger
	}
}

// WithBiddingMeterProvider 設定紀錄出價數量的 MeterProvider，預設使用全域的 provider
func WithBiddingMeterProvider(provider metric.MeterProvider) BiddingEngineOption {
	return func(e *BiddingEngine) {
		counter, err := provider.Meter(meterName).Int64Counter("commerce.bids", metric.WithDescription("Number of submitted bids"))
		if err == nil {
			e.counter = counter
		}
	}
}

func NewBiddingEngine(bidStore BidStore, opts ...BiddingEngineOption) (*BiddingEngine, error) {
	const op = "NewBiddingEngine"
	counter, err := otel.Meter(meterName).Int64Counter("commerce.bids", metric.WithDescription("Number of submitted bids"))
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create bid counter, err=%w", op, err)
	}
	engine := &BiddingEngine{
		store:   bidStore,
		logger:  slog.Default(),
		counter: counter,
	}
	for _, opt := range opts {
		opt(engine)
	}
	engine.logger = engine.logger.With("caller", "BiddingEngine")
	return engine, nil
}

// ParsePrice 解析使用者輸入的金額
// 空字串、非數字、NaN 與無限大都會回傳 ErrInvalidPrice
func ParsePrice(raw string) (float64, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidPrice
	}
	price := value.InexactFloat64()
	if math.IsInf(price, 0) || math.IsNaN(price) {
		return 0, ErrInvalidPrice
	}
	return price, nil
}

// SubmitBid 送出出價
//
// 流程:
//   - 1. 解析金額
//   - 2. 取得商品並確認仍在拍賣中
//   - 3a. 競標者已經出過價時沿用原本的出價紀錄
//   - 3b. 否則建立新的出價
//   - 4. 金額小於等於目前價格時直接拒絕，不做任何寫入
//   - 5. 在同一個交易中寫入出價並更新商品價格
func (e *BiddingEngine) SubmitBid(ctx context.Context, auctionID, bidderID uuid.UUID, submittedPrice string) (*models.Bid, error) {
	const op = "SubmitBid"
	price, err := ParsePrice(submittedPrice)
	if err != nil {
		return nil, err
	}
	auction, err := e.store.FindAuction(ctx, auctionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAuctionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to find auction, err=%w", op, err)
	}
	if !auction.IsActive() {
		e.record(ctx, false)
		return nil, ErrAuctionNotActive
	}

	candidate, found, err := e.store.FindBid(ctx, bidderID, auctionID)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to find bid, err=%w", op, err)
	}
	if !found {
		candidate = &models.Bid{BidderID: bidderID, AuctionID: auctionID}
	}
	candidate.Price = price

	if !decimal.NewFromFloat(price).GreaterThan(decimal.NewFromFloat(auction.Price)) {
		e.record(ctx, false)
		return nil, ErrBidTooLow
	}
	if err := e.store.ApplyBid(ctx, candidate); err != nil {
		if errors.Is(err, store.ErrBidRejected) {
			// 其他人在檢查之後搶先出了更高的價格
			e.logger.Info("Ignore bid lower than the latest price", slog.String("auction", auctionID.String()), slog.Float64("price", price))
			e.record(ctx, false)
			return nil, ErrBidTooLow
		}
		return nil, fmt.Errorf("[%s] Fail to apply bid, err=%w", op, err)
	}
	e.record(ctx, true)
	return candidate, nil
}

func (e *BiddingEngine) record(ctx context.Context, accepted bool) {
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	e.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
