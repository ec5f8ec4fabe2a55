package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// ErrInvalidEvent is returned for stream messages that do not hold a game event
var ErrInvalidEvent = errors.New("invalid event")

// Handler processes one event read from the stream
type Handler func(ctx context.Context, event Event) error

// JetStreamConsumerConfig holds configuration for the JetStream consumer
type JetStreamConsumerConfig struct {
	URL           string
	StreamName    string
	ConsumerName  string
	SubjectFilter string
	DeliverPolicy jetstream.DeliverPolicy
	MaxDeliver    int
	AckWait       time.Duration
	MaxAckPending int
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultJetStreamConsumerConfig returns default JetStream consumer configuration
func DefaultJetStreamConsumerConfig() JetStreamConsumerConfig {
	pub := DefaultJetStreamConfig()
	return JetStreamConsumerConfig{
		URL:           pub.URL,
		StreamName:    pub.StreamName,
		ConsumerName:  "guessword-tail",
		SubjectFilter: pub.SubjectPrefix + ".>",
		DeliverPolicy: jetstream.DeliverNewPolicy,
		MaxDeliver:    5,
		AckWait:       30 * time.Second,
		MaxAckPending: 100,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// Consumer reads game events back from the JetStream stream
type Consumer struct {
	nc       *nats.Conn
	consumer jetstream.Consumer
	config   JetStreamConsumerConfig
}

// NewConsumer connects to NATS and creates or reuses the durable consumer
func NewConsumer(ctx context.Context, config JetStreamConsumerConfig) (*Consumer, error) {
	nc, err := nats.Connect(config.URL,
		nats.Name(config.ConsumerName),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	consumer, err := js.CreateOrUpdateConsumer(ctx, config.StreamName, jetstream.ConsumerConfig{
		Name:          config.ConsumerName,
		Durable:       config.ConsumerName,
		Description:   "Guess-the-word event reader",
		FilterSubject: config.SubjectFilter,
		DeliverPolicy: config.DeliverPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    config.MaxDeliver,
		AckWait:       config.AckWait,
		MaxAckPending: config.MaxAckPending,
		ReplayPolicy:  jetstream.ReplayInstantPolicy,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure consumer: %w", err)
	}

	log.Info().
		Str("consumer", config.ConsumerName).
		Str("stream", config.StreamName).
		Msg("JetStream consumer ready")

	return &Consumer{nc: nc, consumer: consumer, config: config}, nil
}

// Run hands every event to handle until ctx is cancelled. Messages that fail
// to decode are terminated; handler errors are retried through a NAK.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	messageCh := make(chan jetstream.Msg, c.config.MaxAckPending)

	consumeCtx, err := c.consumer.Consume(func(msg jetstream.Msg) {
		select {
		case messageCh <- msg:
		case <-ctx.Done():
			msg.Nak()
		}
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer consumeCtx.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("event consumer shutting down")
			return nil
		case msg := <-messageCh:
			c.process(ctx, msg, handle)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg jetstream.Msg, handle Handler) {
	event, err := DecodeEvent(msg.Data())
	if err != nil {
		log.Error().Err(err).Str("subject", msg.Subject()).Msg("dropping undecodable message")
		if termErr := msg.Term(); termErr != nil {
			log.Error().Err(termErr).Msg("failed to terminate message")
		}
		return
	}

	if err := handle(ctx, event); err != nil {
		log.Error().
			Err(err).
			Str("event_id", event.ID.String()).
			Str("event_type", string(event.Type)).
			Msg("failed to handle event")
		if nakErr := msg.Nak(); nakErr != nil {
			log.Error().Err(nakErr).Msg("failed to NAK message")
		}
		return
	}

	if ackErr := msg.Ack(); ackErr != nil {
		log.Error().Err(ackErr).Msg("failed to ACK message")
	}
}

// Close closes the NATS connection
func (c *Consumer) Close() {
	if c.nc != nil {
		c.nc.Close()
	}
}

// DecodeEvent parses a published event envelope
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if event.Type == "" {
		return Event{}, fmt.Errorf("%w: missing type", ErrInvalidEvent)
	}
	if !knownEventType(event.Type) {
		return Event{}, fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, event.Type)
	}
	return event, nil
}

func knownEventType(t EventType) bool {
	switch t {
	case EventTypeGameCreated, EventTypePlayerJoined, EventTypeGameStarted,
		EventTypeWordGuessed, EventTypeTimeUp, EventTypeMatchOver:
		return true
	}
	return false
}
