package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultRelayBuffer = 256
	publishTimeout     = 5 * time.Second
)

// Relay buffers domain events and hands them to a Publisher from a single
// goroutine, so callers holding locks never wait on the event bus.
type Relay struct {
	publisher Publisher
	eventCh   chan Event

	published atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64

	stopOnce sync.Once
	done     chan struct{}
}

// NewRelay creates a relay with the given buffer size
func NewRelay(publisher Publisher, buffer int) *Relay {
	if buffer <= 0 {
		buffer = defaultRelayBuffer
	}
	return &Relay{
		publisher: publisher,
		eventCh:   make(chan Event, buffer),
		done:      make(chan struct{}),
	}
}

// Emit queues an event without blocking. Events are dropped when the buffer is full.
func (r *Relay) Emit(eventType EventType, payload any) {
	event, err := NewEvent(eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to build event")
		return
	}

	select {
	case r.eventCh <- event:
	default:
		r.dropped.Add(1)
		log.Warn().Str("event_type", string(eventType)).Msg("event buffer full, dropping event")
	}
}

// Start publishes queued events until ctx is cancelled, then flushes whatever
// is still buffered.
func (r *Relay) Start(ctx context.Context) {
	defer r.stopOnce.Do(func() { close(r.done) })
	log.Info().Msg("event relay started")

	for {
		select {
		case <-ctx.Done():
			r.flush()
			log.Info().Msg("event relay stopped")
			return
		case event := <-r.eventCh:
			r.publish(event)
		}
	}
}

// Done is closed once Start has returned
func (r *Relay) Done() <-chan struct{} {
	return r.done
}

// Stats returns the published, dropped and failed counters
func (r *Relay) Stats() (published, dropped, failed uint64) {
	return r.published.Load(), r.dropped.Load(), r.failed.Load()
}

func (r *Relay) flush() {
	for {
		select {
		case event := <-r.eventCh:
			r.publish(event)
		default:
			return
		}
	}
}

func (r *Relay) publish(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := r.publisher.Publish(ctx, event); err != nil {
		r.failed.Add(1)
		log.Error().
			Err(err).
			Str("event_id", event.ID.String()).
			Str("event_type", string(event.Type)).
			Msg("failed to publish event")
		return
	}
	r.published.Add(1)
}
