// cleanup 刪除沒有被任何個人檔案或拍賣商品參照的圖片
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"commerce/adapters/store"
	"commerce/api"
	"commerce/reconciler"
)

func main() {
	// 只輸出 LEVEL 與訊息
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Fail to load .env", slog.Any("error", err))
	}
	pflag.BoolP("yes", "y", false, "remove the files without confirmation")
	api.RegisterStorageFlags(pflag.CommandLine)
	pflag.Parse()
	v := viper.GetViper()
	if err := api.BindViper(v, pflag.CommandLine); err != nil {
		logger.Error("Fail to bind flags", slog.Any("error", err))
		os.Exit(2)
	}
	config := api.LoadConfig(v)
	if err := config.Validate(); err != nil {
		logger.Error("Invalid arguments", slog.Any("error", err))
		os.Exit(2)
	}

	// Ctrl+C 會中斷確認
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, v.GetBool("yes"), logger); err != nil {
		logger.Error(err.Error())
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, config api.ServerConfig, yes bool, logger *slog.Logger) error {
	db, err := store.Open(config.DB)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	recordStore, err := store.New(db)
	if err != nil {
		return err
	}
	storage, err := api.NewMediaStorage(ctx, config)
	if err != nil {
		return err
	}
	r, err := reconciler.New(recordStore, storage,
		reconciler.WithSkipConfirmation(yes),
		reconciler.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	_, err = r.Run(ctx)
	return err
}
