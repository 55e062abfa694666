package api

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"commerce/adapters/media"
	"commerce/adapters/store"
	"commerce/market"
)

// EnvPrefix 是環境變數的前綴，例如 COMMERCE_DB_HOST
const EnvPrefix = "COMMERCE"

// RegisterStorageFlags 註冊資料庫與圖片儲存的參數，server 與清理工具共用
func RegisterStorageFlags(fs *pflag.FlagSet) {
	// db config
	fs.String("db-driver", "postgres", "postgres or sqlite")
	fs.String("db-user", "", "")
	fs.String("db-password", "", "")
	fs.String("db-host", "localhost", "")
	fs.Int("db-port", 5432, "")
	fs.String("db-database", "", "")
	fs.String("db-schema", "", "")
	fs.String("db-path", "commerce.db", "sqlite database file")

	// media config
	fs.String("media-backend", MediaBackendLocal, "local or s3")
	fs.String("media-root", "media", "root directory of the local media backend")

	// s3 config
	fs.String("s3-endpoint", "", "")
	fs.String("s3-region", "auto", "")
	fs.String("s3-bucket", "", "")
	fs.String("s3-prefix", "", "")
	fs.String("s3-public-base-url", "", "")
	fs.String("s3-access-key-id", "", "")
	fs.String("s3-secret-access-key", "", "")
}

// RegisterServerFlags 註冊 server 專用的參數
func RegisterServerFlags(fs *pflag.FlagSet) {
	// redis config
	fs.String("redis-addr", "localhost:6379", "")
	fs.String("redis-password", "", "")
	fs.Int("redis-db", 0, "")
	fs.String("redis-key-prefix", "commerce:", "")

	// session config
	fs.String("session-cookie-key", DefaultSessionKeyForCookie, "")
	fs.Duration("session-max-age", DefaultSessionMaxAge, "")
	fs.Bool("session-cookie-secure", false, "send the session cookie over https only")

	// listing config
	fs.Int("index-limit", market.DefaultIndexLimit, "")
	fs.Int("comment-limit", market.DefaultCommentLimit, "")
	fs.Int("page-size", market.DefaultPageSize, "")
}

// BindViper 將參數綁定到 viper，並啟用環境變數
func BindViper(v *viper.Viper, fs *pflag.FlagSet) error {
	if err := v.BindPFlags(fs); err != nil {
		return err
	}
	v.AutomaticEnv()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	return nil
}

// LoadConfig 從 viper 讀取設定，沒有註冊的參數會是零值
func LoadConfig(v *viper.Viper) ServerConfig {
	return ServerConfig{
		DB: store.Config{
			Driver:   v.GetString("db-driver"),
			User:     v.GetString("db-user"),
			Password: v.GetString("db-password"),
			Host:     v.GetString("db-host"),
			Port:     v.GetInt("db-port"),
			Database: v.GetString("db-database"),
			Schema:   v.GetString("db-schema"),
			Path:     v.GetString("db-path"),
		},
		Redis: RedisConfig{
			Addr:      v.GetString("redis-addr"),
			Password:  v.GetString("redis-password"),
			DB:        v.GetInt("redis-db"),
			KeyPrefix: v.GetString("redis-key-prefix"),
		},
		Session: SessionConfig{
			KeyForCookie: v.GetString("session-cookie-key"),
			CookieMaxAge: v.GetDuration("session-max-age"),
			CookieSecure: v.GetBool("session-cookie-secure"),
		},
		Media: MediaConfig{
			Backend: v.GetString("media-backend"),
			Root:    v.GetString("media-root"),
		},
		S3: media.S3Config{
			Endpoint:        v.GetString("s3-endpoint"),
			Region:          v.GetString("s3-region"),
			Bucket:          v.GetString("s3-bucket"),
			Prefix:          v.GetString("s3-prefix"),
			PublicBaseURL:   v.GetString("s3-public-base-url"),
			AccessKeyID:     v.GetString("s3-access-key-id"),
			SecretAccessKey: v.GetString("s3-secret-access-key"),
		},
		Listing: market.ListingConfig{
			IndexLimit:   v.GetInt("index-limit"),
			CommentLimit: v.GetInt("comment-limit"),
			PageSize:     v.GetInt("page-size"),
		},
	}
}

// Validate 檢查必要的設定
func (config ServerConfig) Validate() error {
	switch config.DB.Driver {
	case "", "postgres":
		if config.DB.Database == "" {
			return errMissing("db-database")
		}
	case "sqlite":
		if config.DB.Path == "" {
			return errMissing("db-path")
		}
	}
	switch config.Media.Backend {
	case "", MediaBackendLocal:
		if config.Media.Root == "" {
			return errMissing("media-root")
		}
	case MediaBackendS3:
		if config.S3.Bucket == "" {
			return errMissing("s3-bucket")
		}
	}
	return nil
}

func errMissing(flag string) error {
	return fmt.Errorf("missing argument: --%s", flag)
}
