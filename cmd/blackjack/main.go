package main

import (
	"fmt"
	"os"

	"github.com/anchal00/blackjack/internal/config"
	"github.com/anchal00/blackjack/internal/db"
	"github.com/anchal00/blackjack/internal/game"
	"github.com/anchal00/blackjack/internal/identity"
	"github.com/anchal00/blackjack/internal/logger"
	"github.com/anchal00/blackjack/internal/server"
)

func main() {
	log := logger.New("api_server")
	cfg := config.Load(log)
	if cfg.Production && len(cfg.BotToken) == 0 {
		log.Error("BOT_TOKEN must be set in production", nil)
		os.Exit(1)
	}

	repo, err := db.SetupDB(cfg.Database)
	if err != nil {
		os.Exit(1)
	}
	hub := server.NewConnectionStore(logger.New("hub"))
	service := game.NewService(repo, hub, game.Options{
		Timings: cfg.Timings,
		Logger:  logger.New("session"),
	})
	auth := identity.NewResolver(
		identity.NewTelegramVerifier(cfg.BotToken),
		identity.NewTokens(cfg.TokenSecret),
		repo,
		!cfg.Production,
		logger.New("identity"),
	)
	gs := server.NewGameServer(service, auth, hub, server.ServerOptions{
		Port:      cfg.Port,
		StaticDir: cfg.StaticDir,
	}, log)
	gs.OnShutdown(repo.CloseConnection)
	if !cfg.Production {
		log.Info(fmt.Sprintf("Development mode: dev identity headers accepted, static files from %s", cfg.StaticDir))
	}
	gs.Run()
}
