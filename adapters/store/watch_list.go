package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"commerce/models"
)

// AddToWatchList 將拍賣商品加入關注清單，已存在時不做任何事
func (s *Store) AddToWatchList(ctx context.Context, profileID, auctionID uuid.UUID) error {
	const op = "AddToWatchList"
	entry := models.WatchListEntry{ProfileID: profileID, AuctionID: auctionID}
	if result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry); result.Error != nil {
		return fmt.Errorf("[%s] Fail to add auction to watch list, profile=%s, auction=%s, err=%w", op, profileID, auctionID, result.Error)
	}
	return nil
}

// RemoveFromWatchList 將拍賣商品移出關注清單，不存在時不做任何事
func (s *Store) RemoveFromWatchList(ctx context.Context, profileID, auctionID uuid.UUID) error {
	const op = "RemoveFromWatchList"
	if result := s.db.WithContext(ctx).
		Where("profile_id = ? AND auction_id = ?", profileID, auctionID).
		Delete(&models.WatchListEntry{}); result.Error != nil {
		return fmt.Errorf("[%s] Fail to remove auction from watch list, profile=%s, auction=%s, err=%w", op, profileID, auctionID, result.Error)
	}
	return nil
}

// WatchList 取得關注清單中的拍賣商品，依加入時間由新到舊
func (s *Store) WatchList(ctx context.Context, profileID uuid.UUID) ([]models.Auction, error) {
	const op = "WatchList"
	var auctions []models.Auction
	if result := s.db.WithContext(ctx).
		Joins("JOIN watch_list_entries ON watch_list_entries.auction_id = auctions.id").
		Where("watch_list_entries.profile_id = ?", profileID).
		Order("watch_list_entries.created_at DESC").
		Find(&auctions); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list watch list, profile=%s, err=%w", op, profileID, result.Error)
	}
	return auctions, nil
}

// InWatchList 判斷拍賣商品是否在關注清單中
func (s *Store) InWatchList(ctx context.Context, profileID, auctionID uuid.UUID) (bool, error) {
	const op = "InWatchList"
	var count int64
	if result := s.db.WithContext(ctx).
		Model(&models.WatchListEntry{}).
		Where("profile_id = ? AND auction_id = ?", profileID, auctionID).
		Count(&count); result.Error != nil {
		return false, fmt.Errorf("[%s] Fail to check watch list, profile=%s, auction=%s, err=%w", op, profileID, auctionID, result.Error)
	}
	return count > 0, nil
}
