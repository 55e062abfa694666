package models

import (
	"path"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// DefaultAvatar 是使用者未上傳頭像時使用的預設圖片
	DefaultAvatar = "default.png"
	// ProfileImagesDir 是頭像上傳的目錄
	ProfileImagesDir = "profile_images"
	// BioMaxLength 是自我介紹的最大字數
	BioMaxLength = 3000
)

// Profile 代表使用者的個人檔案，與 User 一對一
// 包含頭像、自我介紹以及關注清單
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"<-:create"`
	UpdatedAt time.Time
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;<-:create"`
	Avatar    string    `gorm:"type:text;not null;default:default.png"`
	Bio       string    `gorm:"type:text;not null;default:''"`

	// 外鍵關聯
	User      *User     `gorm:"foreignKey:UserID"`
	WatchList []Auction `gorm:"many2many:watch_list_entries"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.Avatar == "" {
		p.Avatar = DefaultAvatar
	}
	return assignID(&p.ID)
}

// HasDefaultAvatar 判斷頭像是否為系統預設圖片
func (p Profile) HasDefaultAvatar() bool {
	return p.Avatar == "" || p.Avatar == DefaultAvatar
}

// ProfileImageRef 產生頭像在媒體目錄下的參照路徑
func ProfileImageRef(name string) string {
	return path.Join(ProfileImagesDir, name)
}
