package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 代表拍賣系統中的使用者
// 包含登入用的使用者名稱、密碼雜湊以及基本的個人資料
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt    time.Time `gorm:"<-:create"`
	UpdatedAt    time.Time
	Username     string `gorm:"type:varchar(150);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:text;not null"`
	Email        string `gorm:"type:varchar(30);not null"`
	FirstName    string `gorm:"type:varchar(30);not null"`
	LastName     string `gorm:"type:varchar(30);not null"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	return assignID(&u.ID)
}

// assignID 為尚未指定主鍵的紀錄產生 UUIDv7
func assignID(id *uuid.UUID) error {
	if *id != uuid.Nil {
		return nil
	}
	v, err := uuid.NewV7()
	if err != nil {
		return err
	}
	*id = v
	return nil
}
