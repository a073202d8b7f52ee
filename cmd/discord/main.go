// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "wigglebot/internal/responses/awaken"
	_ "wigglebot/internal/responses/basic"
	_ "wigglebot/internal/responses/cancel"
	_ "wigglebot/internal/responses/gpt"
	_ "wigglebot/internal/responses/help"
	_ "wigglebot/internal/responses/itsyou"
	_ "wigglebot/internal/responses/mock"
	_ "wigglebot/internal/responses/points"
	_ "wigglebot/internal/responses/rate"
	_ "wigglebot/internal/responses/register"

	"wigglebot/internal/bot"
	"wigglebot/internal/config"
	"wigglebot/internal/discord"
	"wigglebot/internal/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("[INIT] Invalid configuration")
	}
	if err := cfg.RequireToken(); err != nil {
		log.Fatal().Err(err).Msg("[INIT] Invalid configuration")
	}
	closer := logging.Setup(cfg.LogLevel, cfg.LogFile)
	defer closer.Close()

	log.Info().Msg("[INIT] Starting wigglebot...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := discord.NewBot(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("[INIT] Failed to create Discord session")
	}

	app, err := bot.New(ctx, cfg, session.Client(), bot.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("[INIT] Failed to assemble bot")
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error().Err(err).Msg("[INIT] Shutdown was not clean")
		}
	}()

	session.OnMessage(app.Dispatcher.HandleMessage)
	session.OnReady(app.Start)

	errCh := make(chan error, 1)
	go func() {
		if err := session.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Stringer("signal", s).Msg("[INIT] Received signal, shutting down...")
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("[INIT] Discord bot error")
		}
		cancel()
	case <-ctx.Done():
	}
	for range errCh {
	}

	log.Info().Msg("[INIT] Discord bot exited cleanly")
}
