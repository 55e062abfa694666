package main

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"commerce/api"
)

func ParseArgs() Args {
	// 有 .env 時先載入，已存在的環境變數不會被覆蓋
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Fail to load .env", slog.Any("error", err))
	}

	// server config
	pflag.String("server-url", "0.0.0.0:8080", "")
	pflag.Bool("migrate", true, "migrate the database schema before serving")
	api.RegisterStorageFlags(pflag.CommandLine)
	api.RegisterServerFlags(pflag.CommandLine)

	// bind pflag to viper
	pflag.Parse()
	if err := api.BindViper(viper.GetViper(), pflag.CommandLine); err != nil {
		panic(err)
	}

	// initial arguments
	return Args{
		ServerURL:    viper.GetString("server-url"),
		Migrate:      viper.GetBool("migrate"),
		ServerConfig: api.LoadConfig(viper.GetViper()),
	}
}

type Args struct {
	ServerURL    string
	Migrate      bool
	ServerConfig api.ServerConfig
}

func (args Args) Validate() error {
	if args.ServerURL == "" {
		return errors.New("missing argument: --server-url")
	}
	return args.ServerConfig.Validate()
}
