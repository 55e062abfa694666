package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"commerce/models"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicated  = errors.New("record already exists")
	ErrBidRejected = errors.New("bid rejected")
)

// Config 是資料庫連線設定
type Config struct {
	Driver   string
	User     string
	Password string
	Host     string
	Port     int
	Database string
	Schema   string
	// Path 只在 sqlite 時使用
	Path string
}

// Store 是以 gorm 實作的拍賣紀錄儲存層
type Store struct {
	db *gorm.DB
}

// Open 依照設定開啟資料庫連線
func Open(config Config) (*gorm.DB, error) {
	const op = "Open"
	gormConfig := &gorm.Config{
		TranslateError: true,
		// auctions 與 bids 互相參照，外鍵約束交由 Store 的刪除流程處理
		DisableForeignKeyConstraintWhenMigrating: true,
	}
	var dialector gorm.Dialector
	switch config.Driver {
	case "", "postgres":
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", config.User, config.Password, config.Host, config.Port, config.Database)
		if config.Schema != "" {
			dsn += "&search_path=" + config.Schema
			gormConfig.NamingStrategy = schema.NamingStrategy{
				TablePrefix: config.Schema + ".",
			}
		}
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(config.Path)
	default:
		return nil, fmt.Errorf("[%s] Unsupported database driver: %s", op, config.Driver)
	}
	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}
	return db, nil
}

// New 建立 Store，並註冊關注清單的關聯表
func New(db *gorm.DB) (*Store, error) {
	const op = "New"
	if err := db.SetupJoinTable(&models.Profile{}, "WatchList", &models.WatchListEntry{}); err != nil {
		return nil, fmt.Errorf("[%s] Fail to setup watch list join table, err=%w", op, err)
	}
	return &Store{db: db}, nil
}

// Migrate 建立或更新所有資料表
func (s *Store) Migrate(ctx context.Context) error {
	const op = "Migrate"
	if err := s.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("[%s] Fail to migrate database, err=%w", op, err)
	}
	return nil
}

// DB 回傳底層的 gorm 連線
func (s *Store) DB() *gorm.DB {
	return s.db
}

// translate 將 gorm 的錯誤轉換為 Store 的錯誤
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicated
	}
	return err
}
