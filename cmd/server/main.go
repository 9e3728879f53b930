package main

import (
	"context"
	"fmt"

	"github.com/luozhen/go-chat-keeper/internal/config"
	"github.com/luozhen/go-chat-keeper/internal/logger"
	"github.com/luozhen/go-chat-keeper/internal/server"
	"github.com/luozhen/go-chat-keeper/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("chat-keeper-server")
	cfg, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	db, err := store.NewSQLiteDB(cfg.DSN, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open history database")
	}
	defer db.Close()

	repo := store.NewHistoryRepository(db, log)

	if cfg.Seed {
		if err = server.Seed(context.Background(), repo, "demo"); err != nil {
			log.Fatal().Err(err).Msg("seed demo history")
		}
		log.Info().Msg("seeded demo project")
	}

	handlers := server.NewHandlers(repo, log)
	srv := server.NewServer(handlers, cfg, log)
	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
