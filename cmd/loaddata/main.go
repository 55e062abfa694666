// loaddata 匯入使用者與拍賣商品，匯入的使用者不會建立個人檔案
//
//	loaddata [flags] [file.json]
//
// --purge-user 與 --purge-auction 會在匯入之前刪除指定的資料以及所有相關的紀錄
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"commerce/adapters/store"
	"commerce/api"
)

type loadOptions struct {
	File          string
	Migrate       bool
	PurgeUsers    []string
	PurgeAuctions []string
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Fail to load .env", slog.Any("error", err))
	}
	pflag.Bool("migrate", false, "migrate the database schema before importing")
	pflag.StringSlice("purge-user", nil, "username to delete together with its profile, auctions, bids and comments")
	pflag.StringSlice("purge-auction", nil, "auction id to delete together with its bids, comments and watch list entries")
	api.RegisterStorageFlags(pflag.CommandLine)
	pflag.Parse()
	v := viper.GetViper()
	if err := api.BindViper(v, pflag.CommandLine); err != nil {
		panic(err)
	}
	opts := loadOptions{
		File:          pflag.Arg(0),
		Migrate:       v.GetBool("migrate"),
		PurgeUsers:    v.GetStringSlice("purge-user"),
		PurgeAuctions: v.GetStringSlice("purge-auction"),
	}
	if pflag.NArg() > 1 || (opts.File == "" && len(opts.PurgeUsers) == 0 && len(opts.PurgeAuctions) == 0) {
		fmt.Fprintln(os.Stderr, "usage: loaddata [flags] [file.json]")
		pflag.PrintDefaults()
		os.Exit(2)
	}
	config := api.LoadConfig(v)

	if err := run(context.Background(), config.DB, opts); err != nil {
		slog.Error("Fail to load data", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, config store.Config, opts loadOptions) error {
	const op = "run"
	var fixture *Fixture
	if opts.File != "" {
		f, err := os.Open(opts.File)
		if err != nil {
			return fmt.Errorf("[%s] Fail to open fixture, err=%w", op, err)
		}
		defer f.Close()
		if fixture, err = DecodeFixture(f); err != nil {
			return err
		}
	}

	db, err := store.Open(config)
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
	if opts.Migrate {
		if err := recordStore.Migrate(ctx); err != nil {
			return err
		}
	}
	if err := purge(ctx, recordStore, opts); err != nil {
		return err
	}
	if fixture == nil {
		return nil
	}

	users, auctions, err := fixture.Models()
	if err != nil {
		return err
	}
	if err := recordStore.ImportUsers(ctx, users); err != nil {
		return fmt.Errorf("[%s] Fail to import users, err=%w", op, err)
	}
	if err := recordStore.ImportAuctions(ctx, auctions); err != nil {
		return fmt.Errorf("[%s] Fail to import auctions, err=%w", op, err)
	}
	slog.Info("Data loaded", slog.Int("users", len(users)), slog.Int("auctions", len(auctions)))
	return nil
}

// purge 先刪除拍賣商品再刪除使用者，任何一筆找不到都會中止
func purge(ctx context.Context, recordStore *store.Store, opts loadOptions) error {
	const op = "purge"
	for _, raw := range opts.PurgeAuctions {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("[%s] Invalid auction id: %s, err=%w", op, raw, err)
		}
		if err := recordStore.DeleteAuction(ctx, id); err != nil {
			return fmt.Errorf("[%s] Fail to delete auction %s, err=%w", op, raw, err)
		}
		slog.Info("Auction deleted", slog.String("auction", raw))
	}
	for _, username := range opts.PurgeUsers {
		user, err := recordStore.FindUserByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("[%s] Fail to find user %s, err=%w", op, username, err)
		}
		if err := recordStore.DeleteUser(ctx, user.ID); err != nil {
			return fmt.Errorf("[%s] Fail to delete user %s, err=%w", op, username, err)
		}
		slog.Info("User deleted", slog.String("user", username))
	}
	return nil
}
