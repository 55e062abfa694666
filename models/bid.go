package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bid 代表拍賣商品的出價紀錄
// 每個競標者在同一個商品上只會有一筆出價，重新出價時會更新原本那筆的金額
type Bid struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"<-:create"`
	UpdatedAt time.Time
	Price     float64   `gorm:"not null"`
	BidderID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bid_bidder_auction;<-:create"`
	AuctionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bid_bidder_auction;index;<-:create"`

	// 外鍵關聯
	Bidder *User `gorm:"foreignKey:BidderID"`
}

func (b *Bid) BeforeCreate(tx *gorm.DB) error {
	return assignID(&b.ID)
}
