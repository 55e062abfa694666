package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"commerce/models"
)

// FindBid 取得競標者在拍賣商品上的出價，不存在時 found 為 false
func (s *Store) FindBid(ctx context.Context, bidderID, auctionID uuid.UUID) (*models.Bid, bool, error) {
	const op = "FindBid"
	bid := models.Bid{}
	// 找不到是正常情況，用 Find 避免 gorm 記錄 record not found
	result := s.db.WithContext(ctx).Where("bidder_id = ? AND auction_id = ?", bidderID, auctionID).Limit(1).Find(&bid)
	if result.Error != nil {
		return nil, false, fmt.Errorf("[%s] Fail to find bid, bidder=%s, auction=%s, err=%w", op, bidderID, auctionID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, false, nil
	}
	return &bid, true, nil
}

// CountBids 計算競標者在拍賣商品上的出價筆數
func (s *Store) CountBids(ctx context.Context, bidderID, auctionID uuid.UUID) (int64, error) {
	const op = "CountBids"
	var count int64
	if result := s.db.WithContext(ctx).Model(&models.Bid{}).Where("bidder_id = ? AND auction_id = ?", bidderID, auctionID).Count(&count); result.Error != nil {
		return 0, fmt.Errorf("[%s] Fail to count bids, err=%w", op, result.Error)
	}
	return count, nil
}

// ApplyBid 在同一個交易中寫入出價並更新拍賣商品的最高出價
//
// 流程:
//   - 1. 新出價(ID 為空)建立新紀錄，既有出價只更新金額，保留 ID 與建立時間
//   - 2. 以 price < 新出價 作為條件更新商品的 price 與 top_bid_id
//   - 3a. 沒有任何商品被更新時回滾交易並返回 ErrBidRejected
//   - 3b. 否則提交交易
func (s *Store) ApplyBid(ctx context.Context, bid *models.Bid) error {
	const op = "ApplyBid"
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if bid.ID == uuid.Nil {
			if result := tx.Omit(clause.Associations).Create(bid); result.Error != nil {
				// 同一個競標者同時送出第一筆出價時，只有一筆能成功
				if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
					return ErrBidRejected
				}
				return result.Error
			}
		} else {
			result := tx.Model(&models.Bid{ID: bid.ID}).Update("price", bid.Price)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrNotFound
			}
		}
		result := tx.Model(&models.Auction{}).
			Where("id = ? AND status = ? AND price < ?", bid.AuctionID, models.StatusActive, bid.Price).
			Updates(map[string]any{
				"price":      bid.Price,
				"top_bid_id": bid.ID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBidRejected
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("[%s] Fail to apply bid, auction=%s, err=%w", op, bid.AuctionID, err)
	}
	return nil
}
