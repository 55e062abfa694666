package main

import (
	"context"
	"log/slog"
	"os"

	"commerce/api"
)

func main() {
	args := ParseArgs()
	if err := args.Validate(); err != nil {
		slog.Error("Invalid arguments", slog.Any("error", err))
		os.Exit(2)
	}
	ctx := context.Background()
	server, err := api.NewServer(ctx, args.ServerConfig)
	if err != nil {
		panic(err)
	}
	defer server.Close()

	if args.Migrate {
		if err := server.Migrate(ctx); err != nil {
			panic(err)
		}
	}

	router := server.Router()
	if err := router.Run(args.ServerURL); err != nil {
		panic(err)
	}
}
