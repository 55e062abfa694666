package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"commerce/adapters/store"
	"commerce/models"
)

const (
	DefaultIndexLimit   = 10
	DefaultCommentLimit = 10
	DefaultPageSize     = 10
)

// Filter 是列表頁的篩選條件，nil 代表不篩選
type Filter struct {
	Category *models.Category
	Status   *models.Status
	MinPrice *float64
	MaxPrice *float64
	// Page 從 1 開始
	Page     int
	PageSize int
}

type Page struct {
	Items    []models.Auction `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	NumPages int              `json:"num_pages"`
}

// Detail 是拍賣商品的詳細資料與最新留言
type Detail struct {
	Auction  *models.Auction
	Comments []models.Comment
}

type ListingConfig struct {
	IndexLimit   int
	CommentLimit int
	PageSize     int
}

// Listing 提供拍賣商品的查詢
type Listing struct {
	store  AuctionStore
	config ListingConfig
}

func NewListing(auctionStore AuctionStore, config ListingConfig) *Listing {
	if config.IndexLimit <= 0 {
		config.IndexLimit = DefaultIndexLimit
	}
	if config.CommentLimit <= 0 {
		config.CommentLimit = DefaultCommentLimit
	}
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}
	return &Listing{store: auctionStore, config: config}
}

// Query 依條件列出拍賣商品，依建立時間由舊到新排序
// 超出範圍的頁數回傳空的列表與實際的總數
func (l *Listing) Query(ctx context.Context, filter Filter) (*Page, error) {
	const op = "Query"
	pageSize := lo.Ternary(filter.PageSize > 0, filter.PageSize, l.config.PageSize)
	page := max(filter.Page, 1)
	auctions, total, err := l.store.ListAuctions(ctx, store.AuctionFilter{
		Category: filter.Category,
		Status:   filter.Status,
		MinPrice: filter.MinPrice,
		MaxPrice: filter.MaxPrice,
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to list auctions, err=%w", op, err)
	}
	return &Page{
		Items:    auctions,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		NumPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// Index 列出首頁顯示的拍賣中商品
func (l *Listing) Index(ctx context.Context) ([]models.Auction, error) {
	const op = "Index"
	auctions, _, err := l.store.ListAuctions(ctx, store.AuctionFilter{
		Status: lo.ToPtr(models.StatusActive),
		Limit:  l.config.IndexLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to list auctions, err=%w", op, err)
	}
	return auctions, nil
}

// Detail 取得拍賣商品、賣家、最高出價以及最新的留言
func (l *Listing) Detail(ctx context.Context, id uuid.UUID) (*Detail, error) {
	const op = "Detail"
	auction, err := l.store.FindAuction(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAuctionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to find auction, err=%w", op, err)
	}
	comments, err := l.store.RecentComments(ctx, id, l.config.CommentLimit)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to list comments, err=%w", op, err)
	}
	return &Detail{Auction: auction, Comments: comments}, nil
}
