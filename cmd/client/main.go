package main

import (
	"fmt"

	"github.com/luozhen/go-chat-keeper/internal/adapter"
	"github.com/luozhen/go-chat-keeper/internal/client"
	"github.com/luozhen/go-chat-keeper/internal/config"
	"github.com/luozhen/go-chat-keeper/internal/logger"
	"github.com/luozhen/go-chat-keeper/internal/service"
	"github.com/luozhen/go-chat-keeper/internal/tui"
	"github.com/luozhen/go-chat-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewClientLogger("chat-keeper-client")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	conversationSvc := adapter.NewHTTPConversationService(adapter.HTTPClientConfig{
		BaseURL: cfg.Adapter.BaseURL,
		Timeout: cfg.Adapter.RequestTimeout,
	}, log)

	consumer := func(info models.SessionInfo) {
		log.Info().
			Bool("active", info.HasActiveConversation).
			Int("messages", info.MessageCount).
			Int("providers", len(info.Providers)).
			Msg("session restored")
	}

	services := service.NewClientServices(conversationSvc, cfg.App.ProjectID, consumer, log)

	ui, err := tui.New(services, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating ui")
	}

	app, err := client.NewApp(services, ui, cfg.Workers, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
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
