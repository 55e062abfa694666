package market

import (
	"context"

	"github.com/google/uuid"

	"commerce/adapters/store"
	"commerce/models"
)

// AuctionStore 是拍賣商品相關的儲存操作
type AuctionStore interface {
	CreateAuction(ctx context.Context, auction *models.Auction) error
	FindAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error)
	UpdateAuction(ctx context.Context, auction *models.Auction) error
	ListAuctions(ctx context.Context, filter store.AuctionFilter) ([]models.Auction, int64, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	RecentComments(ctx context.Context, auctionID uuid.UUID, limit int) ([]models.Comment, error)
}

// BidStore 是出價流程需要的儲存操作
type BidStore interface {
	FindAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error)
	FindBid(ctx context.Context, bidderID, auctionID uuid.UUID) (*models.Bid, bool, error)
	ApplyBid(ctx context.Context, bid *models.Bid) error
}

type WatchListStore interface {
	FindAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error)
	AddToWatchList(ctx context.Context, profileID, auctionID uuid.UUID) error
	RemoveFromWatchList(ctx context.Context, profileID, auctionID uuid.UUID) error
	WatchList(ctx context.Context, profileID uuid.UUID) ([]models.Auction, error)
	InWatchList(ctx context.Context, profileID, auctionID uuid.UUID) (bool, error)
}

type AccountStore interface {
	CreateUserWithProfile(ctx context.Context, user *models.User) (*models.Profile, error)
	EnsureProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	ImportUsers(ctx context.Context, users []models.User) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	FindProfileByUser(ctx context.Context, userID uuid.UUID) (*models.Profile, bool, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
}

// ImageStorage 是上傳圖片使用的儲存後端
type ImageStorage interface {
	Save(ctx context.Context, dir, ext, contentType string, content []byte) (string, error)
}
