package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mcdev12/guessword/go/internal/game/events"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prints every game event published to the stream until interrupted.
func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := events.DefaultJetStreamConsumerConfig()
	if url := os.Getenv("NATS_URL"); url != "" {
		cfg.URL = url
	}
	if name := os.Getenv("CONSUMER_NAME"); name != "" {
		cfg.ConsumerName = name
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer, err := events.NewConsumer(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("nats_url", cfg.URL).Msg("failed to create event consumer")
	}
	defer consumer.Close()

	out := zerolog.New(os.Stdout).With().Timestamp().Logger()
	err = consumer.Run(ctx, func(ctx context.Context, event events.Event) error {
		out.Info().
			Str("event_id", event.ID.String()).
			Str("event_type", string(event.Type)).
			Time("emitted_at", event.Timestamp).
			RawJSON("payload", event.Payload).
			Msg("game event")
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("event consumer failed")
	}
}
