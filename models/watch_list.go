package models

import (
	"time"

	"github.com/google/uuid"
)

// WatchListEntry 是 Profile 與 Auction 之間關注清單的關聯表
type WatchListEntry struct {
	ProfileID uuid.UUID `gorm:"type:uuid;primaryKey"`
	AuctionID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"<-:create"`
}

// All 回傳所有需要遷移的模型，順序即建立資料表的順序
func All() []any {
	return []any{
		&User{},
		&Profile{},
		&Auction{},
		&Bid{},
		&Comment{},
		&WatchListEntry{},
	}
}
