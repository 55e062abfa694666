package api

import (
	"time"

	"commerce/adapters/media"
	"commerce/adapters/store"
	"commerce/market"
)

type ServerConfig struct {
	DB      store.Config
	Redis   RedisConfig
	Session SessionConfig
	Media   MediaConfig
	S3      media.S3Config
	Listing market.ListingConfig
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type SessionConfig struct {
	KeyForCookie string
	CookieMaxAge time.Duration
	CookieSecure bool
}

// MediaConfig 設定圖片的儲存位置
// Backend 為 local 時圖片存放在 Root 目錄下，為 s3 時使用 S3Config
type MediaConfig struct {
	Backend string
	Root    string
}

const (
	MediaBackendLocal = "local"
	MediaBackendS3    = "s3"
)
