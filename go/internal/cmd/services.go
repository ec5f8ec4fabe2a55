package main

import (
	"context"

	"github.com/mcdev12/guessword/go/internal/config"
	"github.com/mcdev12/guessword/go/internal/game/events"
	"github.com/mcdev12/guessword/go/internal/game/gateway"
	"github.com/mcdev12/guessword/go/internal/game/protocol"
	"github.com/mcdev12/guessword/go/internal/game/session"
	"github.com/mcdev12/guessword/go/internal/words"
	"github.com/rs/zerolog/log"
)

const eventBufferSize = 1024

type Services struct {
	Session   *session.Session
	Gateway   *gateway.Service
	Relay     *events.Relay
	publisher *events.JetStreamPublisher
	stopRelay context.CancelFunc
}

func setupServices(ctx context.Context, cfg config.Config, bank *words.Bank) *Services {
	// Event sink: JetStream when configured, the log otherwise
	var publisher events.Publisher = events.LogPublisher{}
	var jsPublisher *events.JetStreamPublisher
	if cfg.NATSURL != "" {
		jsCfg := events.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATSURL
		p, err := events.NewJetStreamPublisher(ctx, jsCfg)
		if err != nil {
			log.Warn().Err(err).Str("nats_url", cfg.NATSURL).Msg("event bus unavailable, logging events instead")
		} else {
			publisher = p
			jsPublisher = p
		}
	}
	relay := events.NewRelay(publisher, eventBufferSize)

	// Connections → session → protocol
	connConfig := gateway.DefaultConnectionConfig()
	connConfig.AllowedOrigins = cfg.AllowedOrigins
	connections := gateway.NewConnectionManager(connConfig)

	sessionConfig := session.DefaultConfig()
	sessionConfig.RoundDuration = cfg.RoundDuration()
	sessionConfig.CorrectGuessPoints = cfg.CorrectGuessPoints
	game := session.New(sessionConfig, bank, connections, session.WithEmitter(relay))

	dispatcher := protocol.NewDispatcher(game)

	return &Services{
		Session:   game,
		Gateway:   gateway.NewService(connections, dispatcher, game),
		Relay:     relay,
		publisher: jsPublisher,
	}
}

// Start runs the event relay in the background
func (s *Services) Start(ctx context.Context) {
	relayCtx, cancel := context.WithCancel(ctx)
	s.stopRelay = cancel
	go s.Relay.Start(relayCtx)
}

// Shutdown closes every client, stops the countdown and flushes queued events
// before the publisher goes away.
func (s *Services) Shutdown(ctx context.Context) {
	s.Gateway.Stop()
	s.Session.Close()

	if s.stopRelay != nil {
		s.stopRelay()
		select {
		case <-s.Relay.Done():
		case <-ctx.Done():
			log.Warn().Msg("timed out flushing game events")
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close event publisher")
		}
	}

	published, dropped, failed := s.Relay.Stats()
	log.Info().
		Uint64("events_published", published).
		Uint64("events_dropped", dropped).
		Uint64("events_failed", failed).
		Msg("game services stopped")
}
