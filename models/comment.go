package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentMaxLength 是留言的最大字數
const CommentMaxLength = 600

// Comment 代表使用者在拍賣商品下的留言，建立後不會再被修改
type Comment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt   time.Time `gorm:"<-:create;index"`
	Text        string    `gorm:"type:varchar(600);not null;<-:create"`
	CommenterID uuid.UUID `gorm:"type:uuid;not null;index;<-:create"`
	AuctionID   uuid.UUID `gorm:"type:uuid;not null;index;<-:create"`

	// 外鍵關聯
	Commenter *User `gorm:"foreignKey:CommenterID"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	return assignID(&c.ID)
}
