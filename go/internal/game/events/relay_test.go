package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) snapshot() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

func TestRelayPublishesInOrder(t *testing.T) {
	pub := &recordingPublisher{}
	relay := NewRelay(pub, 8)

	relay.Emit(EventTypeGameCreated, GameCreatedPayload{HostName: "Host", WordLength: 6})
	relay.Emit(EventTypePlayerJoined, PlayerJoinedPayload{PlayerName: "Bob"})

	ctx, cancel := context.WithCancel(context.Background())
	go relay.Start(ctx)

	deadline := time.Now().Add(time.Second)
	for len(pub.snapshot()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-relay.Done()

	got := pub.snapshot()
	if len(got) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(got))
	}
	if got[0].Type != EventTypeGameCreated || got[1].Type != EventTypePlayerJoined {
		t.Errorf("unexpected order: %s, %s", got[0].Type, got[1].Type)
	}

	var payload GameCreatedPayload
	if err := json.Unmarshal(got[0].Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.HostName != "Host" || payload.WordLength != 6 {
		t.Errorf("unexpected payload: %+v", payload)
	}

	if published, _, _ := relay.Stats(); published != 2 {
		t.Errorf("published counter = %d", published)
	}
}

func TestRelayDropsWhenFull(t *testing.T) {
	relay := NewRelay(&recordingPublisher{}, 1)

	relay.Emit(EventTypeTimeUp, TimeUpPayload{})
	relay.Emit(EventTypeTimeUp, TimeUpPayload{})

	if _, dropped, _ := relay.Stats(); dropped != 1 {
		t.Errorf("expected 1 dropped event, got %d", dropped)
	}
}

func TestRelayFlushesOnShutdown(t *testing.T) {
	pub := &recordingPublisher{}
	relay := NewRelay(pub, 4)
	relay.Emit(EventTypeMatchOver, MatchOverPayload{WordsPlayed: 3})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	relay.Start(ctx)

	if len(pub.snapshot()) != 1 {
		t.Errorf("expected buffered event to be flushed on shutdown")
	}
}

func TestRelayCountsFailures(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("bus down")}
	relay := NewRelay(pub, 4)
	relay.Emit(EventTypeGameStarted, GameStartedPayload{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	relay.Start(ctx)

	if _, _, failed := relay.Stats(); failed != 1 {
		t.Errorf("expected 1 failed publish, got %d", failed)
	}
}
