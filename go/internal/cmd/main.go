package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mcdev12/guessword/go/internal/words"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg := loadConfig()
	setupLogging(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A missing word list is not fatal: the server runs and create_game
	// reports that no words are available.
	bank, err := loadWords(ctx, cfg)
	if err != nil {
		var cfgErr *words.ConfigurationError
		if !errors.As(err, &cfgErr) {
			log.Fatal().Err(err).Msg("failed to load words")
		}
		log.Warn().Err(err).Msg("no usable words, games cannot be created")
		bank = words.NewBank(nil)
	}

	services := setupServices(ctx, cfg, bank)

	services.Start(ctx)

	server := setupServer(cfg, services)
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("word_source", cfg.WordSource).
			Int("words", bank.Len()).
			Msg("guess the word server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	services.Shutdown(shutdownCtx)
	log.Info().Msg("guess the word server shutdown complete")
}
