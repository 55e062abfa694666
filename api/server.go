package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"commerce/adapters/media"
	redisAdapter "commerce/adapters/redis"
	"commerce/adapters/session"
	"commerce/adapters/store"
	"commerce/market"
)

const (
	DefaultSessionKeyForCookie = "sessionid"
	DefaultSessionMaxAge       = 14 * 24 * time.Hour
)

// Server 處理所有 HTTP 請求
type Server struct {
	db           *gorm.DB
	store        *store.Store
	redisClient  redis.UniversalClient
	sessionStore session.IStore
	media        media.Storage
	logger       *slog.Logger

	accounts  *market.Accounts
	auctions  *market.Auctions
	listing   *market.Listing
	watchList *market.WatchList
	bidding   *market.BiddingEngine

	// closers 是由 Server 自己建立、需要在 Close 時釋放的資源
	closers []func() error
	config  ServerConfig
}

type ServerOption func(*Server)

// WithDB 使用既有的資料庫連線，Server 關閉時不會關閉它
func WithDB(db *gorm.DB) ServerOption {
	return func(s *Server) {
		s.db = db
	}
}

// WithRedisClient 使用既有的 Redis 連線，Server 關閉時不會關閉它
func WithRedisClient(client redis.UniversalClient) ServerOption {
	return func(s *Server) {
		s.redisClient = client
	}
}

func WithMediaStorage(storage media.Storage) ServerOption {
	return func(s *Server) {
		s.media = storage
	}
}

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(ctx context.Context, config ServerConfig, opts ...ServerOption) (*Server, error) {
	const op = "NewServer"
	server := &Server{
		logger: slog.Default(),
		config: config,
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.config.Session.KeyForCookie == "" {
		server.config.Session.KeyForCookie = DefaultSessionKeyForCookie
	}
	if server.config.Session.CookieMaxAge <= 0 {
		server.config.Session.CookieMaxAge = DefaultSessionMaxAge
	}
	config = server.config

	// 初始化資料庫連線
	if server.db == nil {
		db, err := store.Open(config.DB)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to open database, err=%w", op, err)
		}
		server.db = db
		server.closers = append(server.closers, func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
	}
	recordStore, err := store.New(server.db)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create store, err=%w", op, err)
	}
	server.store = recordStore

	// 初始化Redis連線
	if server.redisClient == nil {
		client := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		server.redisClient = client
		server.closers = append(server.closers, client.Close)
	}
	server.sessionStore = redisAdapter.NewStore(
		server.redisClient,
		redisAdapter.WithStorePrefix(config.Redis.KeyPrefix+"session:"),
		redisAdapter.WithStoreTTL(config.Session.CookieMaxAge),
	)

	// 初始化圖片儲存
	if server.media == nil {
		storage, err := NewMediaStorage(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to create media storage, err=%w", op, err)
		}
		server.media = storage
	}

	policy := bluemonday.UGCPolicy()
	server.accounts = market.NewAccounts(recordStore, server.media,
		market.WithAccountsLogger(server.logger),
		market.WithAccountsPolicy(policy),
	)
	server.auctions = market.NewAuctions(recordStore, server.media,
		market.WithAuctionsLogger(server.logger),
		market.WithAuctionsPolicy(policy),
	)
	server.listing = market.NewListing(recordStore, config.Listing)
	server.watchList = market.NewWatchList(recordStore)
	server.bidding, err = market.NewBiddingEngine(recordStore, market.WithBiddingLogger(server.logger))
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create bidding engine, err=%w", op, err)
	}
	return server, nil
}

// NewMediaStorage 依照設定建立本機或 S3 的圖片儲存
func NewMediaStorage(ctx context.Context, config ServerConfig) (media.Storage, error) {
	switch config.Media.Backend {
	case "", MediaBackendLocal:
		return media.NewLocal(config.Media.Root), nil
	case MediaBackendS3:
		client, err := media.NewS3Client(ctx, config.S3)
		if err != nil {
			return nil, err
		}
		return media.NewS3Storage(client, config.S3.Bucket, config.S3.Prefix, config.S3.PublicBaseURL)
	}
	return nil, fmt.Errorf("unsupported media backend: %s", config.Media.Backend)
}

// Migrate 建立或更新資料表
func (s *Server) Migrate(ctx context.Context) error {
	return s.store.Migrate(ctx)
}

// Close 釋放 Server 建立的連線
func (s *Server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("Fail to close resource", slog.Any("error", err))
		}
	}
}

// Router 建立並註冊所有路由
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = media.MaxImageSize * 2
	router.Use(s.SessionMiddleware())

	if local, ok := s.media.(*media.Local); ok {
		router.Static("/media", local.Root())
	}

	// 帳號
	router.GET("/register", s.GetRegister)
	router.POST("/register", s.PostRegister)
	router.POST("/login", s.PostLogin)
	router.POST("/logout", s.PostLogout)

	// 拍賣商品
	router.GET("/", s.GetIndex)
	router.GET("/listing", s.GetListing)
	router.GET("/auction/:id", s.GetAuction)
	router.GET("/categories", s.GetCategories)

	authorized := router.Group("/", s.LoginRequired())
	authorized.GET("/userprofile", s.GetUserProfile)
	authorized.POST("/userprofile", s.PostUserProfile)
	authorized.GET("/add_auction", s.GetAddAuction)
	authorized.POST("/add_auction", s.PostAddAuction)
	authorized.GET("/edit_auction/:id", s.GetEditAuction)
	authorized.POST("/edit_auction/:id", s.PostEditAuction)
	authorized.POST("/bid/:id", s.PostBid)
	authorized.POST("/comment/:id", s.PostComment)
	authorized.GET("/watch_list", s.GetWatchList)
	authorized.POST("/watch_list/:id/:action", s.PostWatchList)

	router.NoRoute(func(c *gin.Context) {
		s.respond(c, http.StatusNotFound, gin.H{"message": "not found"})
	})
	return router
}
