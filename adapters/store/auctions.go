package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"commerce/models"
)

// AuctionFilter 是列出拍賣商品時的篩選條件
// 所有條件都是選填，價格的上下限各自獨立套用
type AuctionFilter struct {
	Category *models.Category
	Status   *models.Status
	MinPrice *float64
	MaxPrice *float64
	Offset   int
	Limit    int
}

func (s *Store) CreateAuction(ctx context.Context, auction *models.Auction) error {
	const op = "CreateAuction"
	if result := s.db.WithContext(ctx).Omit(clause.Associations).Create(auction); result.Error != nil {
		return fmt.Errorf("[%s] Fail to create auction, err=%w", op, translate(result.Error))
	}
	return nil
}

// ImportAuctions 批次匯入拍賣商品
func (s *Store) ImportAuctions(ctx context.Context, auctions []models.Auction) error {
	const op = "ImportAuctions"
	if len(auctions) == 0 {
		return nil
	}
	if result := s.db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(auctions, 100); result.Error != nil {
		return fmt.Errorf("[%s] Fail to import auctions, err=%w", op, translate(result.Error))
	}
	return nil
}

// FindAuction 取得拍賣商品，包含賣家與最高出價
func (s *Store) FindAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	const op = "FindAuction"
	auction := models.Auction{}
	if result := s.db.WithContext(ctx).
		Preload("Owner").
		Preload("TopBid.Bidder").
		Where("id = ?", id).
		First(&auction); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to find auction, id=%s, err=%w", op, id, translate(result.Error))
	}
	return &auction, nil
}

// UpdateAuction 只允許擁有者修改未結束的拍賣商品
// 價格與擁有者不會被修改；條件不符合時回傳 ErrNotFound
func (s *Store) UpdateAuction(ctx context.Context, auction *models.Auction) error {
	const op = "UpdateAuction"
	result := s.db.WithContext(ctx).
		Model(&models.Auction{ID: auction.ID}).
		Where("owner_id = ? AND status <> ?", auction.OwnerID, models.StatusClosed).
		Select("name", "description", "picture", "category", "status", "updated_at").
		Updates(auction)
	if result.Error != nil {
		return fmt.Errorf("[%s] Fail to update auction, id=%s, err=%w", op, auction.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("[%s] Fail to update auction, id=%s, err=%w", op, auction.ID, ErrNotFound)
	}
	return nil
}

// DeleteAuction 刪除拍賣商品以及其出價、留言與關注紀錄
func (s *Store) DeleteAuction(ctx context.Context, id uuid.UUID) error {
	const op = "DeleteAuction"
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if result := tx.Model(&models.Auction{}).Where("id = ?", id).Count(&count); result.Error != nil {
			return result.Error
		}
		if count == 0 {
			return ErrNotFound
		}
		return deleteAuctions(tx, []uuid.UUID{id})
	})
	if err != nil {
		return fmt.Errorf("[%s] Fail to delete auction, id=%s, err=%w", op, id, err)
	}
	return nil
}

func deleteAuctions(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	// 先清除最高出價的參照，避免出價刪除後殘留
	if result := tx.Model(&models.Auction{}).Where("id IN ?", ids).Update("top_bid_id", nil); result.Error != nil {
		return result.Error
	}
	for _, model := range []any{&models.WatchListEntry{}, &models.Comment{}, &models.Bid{}} {
		if result := tx.Where("auction_id IN ?", ids).Delete(model); result.Error != nil {
			return result.Error
		}
	}
	if result := tx.Where("id IN ?", ids).Delete(&models.Auction{}); result.Error != nil {
		return result.Error
	}
	return nil
}

// ListAuctions 依條件列出拍賣商品，並回傳符合條件的總數
func (s *Store) ListAuctions(ctx context.Context, filter AuctionFilter) ([]models.Auction, int64, error) {
	const op = "ListAuctions"
	query := s.db.WithContext(ctx).Model(&models.Auction{})
	//  - category
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	//  - status
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	//  - price
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	var total int64
	if result := query.Session(&gorm.Session{}).Count(&total); result.Error != nil {
		return nil, 0, fmt.Errorf("[%s] Fail to count auctions, err=%w", op, result.Error)
	}
	query = query.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: "created_at"}, Desc: false},
		{Column: clause.Column{Name: "id"}, Desc: false},
	}})
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var auctions []models.Auction
	if result := query.Preload("Owner").Find(&auctions); result.Error != nil {
		return nil, 0, fmt.Errorf("[%s] Fail to list auctions, err=%w", op, result.Error)
	}
	return auctions, total, nil
}

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	const op = "CreateComment"
	if result := s.db.WithContext(ctx).Omit(clause.Associations).Create(comment); result.Error != nil {
		return fmt.Errorf("[%s] Fail to create comment, err=%w", op, translate(result.Error))
	}
	return nil
}

// RecentComments 取得商品最新的留言，依時間由新到舊
func (s *Store) RecentComments(ctx context.Context, auctionID uuid.UUID, limit int) ([]models.Comment, error) {
	const op = "RecentComments"
	var comments []models.Comment
	query := s.db.WithContext(ctx).
		Preload("Commenter").
		Where("auction_id = ?", auctionID).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "created_at"}, Desc: true},
			{Column: clause.Column{Name: "id"}, Desc: true},
		}})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if result := query.Find(&comments); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list comments, auction=%s, err=%w", op, auctionID, result.Error)
	}
	return comments, nil
}
