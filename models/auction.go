package models

import (
	"path"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// DefaultPicture 是拍賣商品未上傳圖片時使用的預設圖片
	DefaultPicture = "auction.png"
	// AuctionImagesDir 是拍賣商品圖片上傳的目錄
	AuctionImagesDir = "auction_images"
	// AuctionNameMaxLength 是拍賣商品名稱的最大字數
	AuctionNameMaxLength = 50
)

// Auction 代表拍賣系統中的商品
// Price 在沒有任何出價前是賣家的起標價，之後永遠等於 TopBid 的出價
type Auction struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt   time.Time `gorm:"<-:create;index"`
	UpdatedAt   time.Time
	Name        string     `gorm:"type:varchar(50);not null"`
	Description string     `gorm:"type:text;not null;default:''"`
	Picture     string     `gorm:"type:text;not null;default:auction.png"`
	Price       float64    `gorm:"not null"`
	Category    Category   `gorm:"type:varchar(2);not null;default:'11';index"`
	Status      Status     `gorm:"type:varchar(1);not null;default:'A';index"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index;<-:create"`
	TopBidID    *uuid.UUID `gorm:"type:uuid"`

	// 外鍵關聯
	Owner    *User     `gorm:"foreignKey:OwnerID"`
	TopBid   *Bid      `gorm:"foreignKey:TopBidID"`
	Bids     []Bid     `gorm:"foreignKey:AuctionID"`
	Comments []Comment `gorm:"foreignKey:AuctionID"`
}

func (a *Auction) BeforeCreate(tx *gorm.DB) error {
	if a.Picture == "" {
		a.Picture = DefaultPicture
	}
	if a.Category == "" {
		a.Category = CategoryOther
	}
	if a.Status == "" {
		a.Status = StatusActive
	}
	return assignID(&a.ID)
}

// HasDefaultPicture 判斷商品圖片是否為系統預設圖片
func (a Auction) HasDefaultPicture() bool {
	return a.Picture == "" || a.Picture == DefaultPicture
}

// IsActive 判斷商品是否可以出價
func (a Auction) IsActive() bool {
	return a.Status == StatusActive
}

// AuctionImageRef 產生商品圖片在媒體目錄下的參照路徑
func AuctionImageRef(name string) string {
	return path.Join(AuctionImagesDir, name)
}
