package main

import (
	"context"
	"fmt"

	"github.com/mcdev12/guessword/go/internal/config"
	"github.com/mcdev12/guessword/go/internal/dbconfig"
	"github.com/mcdev12/guessword/go/internal/words"
	"github.com/rs/zerolog/log"
)

// loadWords builds the word bank from the configured source
func loadWords(ctx context.Context, cfg config.Config) (*words.Bank, error) {
	switch cfg.WordSource {
	case config.WordSourcePostgres:
		dbCfg := dbconfig.NewConfigFromEnv()
		pool, err := dbCfg.NewPool(ctx)
		if err != nil {
			return nil, &words.ConfigurationError{Source: "postgres:words", Err: err}
		}
		defer pool.Close()

		log.Info().
			Str("host", dbCfg.Host).
			Str("database", dbCfg.Database).
			Msg("connected to database")
		return words.LoadFromDatabase(ctx, pool, cfg.MinWordLength)

	case config.WordSourceFile:
		return words.LoadFile(cfg.WordListPath, cfg.MinWordLength)
	}
	return nil, fmt.Errorf("unknown word source %q", cfg.WordSource)
}
