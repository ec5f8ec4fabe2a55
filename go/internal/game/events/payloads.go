// Package events defines the game's domain events and relays them to an event bus.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of game event
type EventType string

const (
	EventTypeGameCreated  EventType = "GameCreated"
	EventTypePlayerJoined EventType = "PlayerJoined"
	EventTypeGameStarted  EventType = "GameStarted"
	EventTypeWordGuessed  EventType = "WordGuessed"
	EventTypeTimeUp       EventType = "TimeUp"
	EventTypeMatchOver    EventType = "MatchOver"
)

// Event is the envelope published for every domain event
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEvent marshals payload into a fresh event envelope
func NewEvent(eventType EventType, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   data,
	}, nil
}

// GameCreatedPayload is the payload for a GameCreated event
type GameCreatedPayload struct {
	HostName   string    `json:"host_name"`
	WordLength int       `json:"word_length"`
	PoolSize   int       `json:"pool_size"`
	CreatedAt  time.Time `json:"created_at"`
}

// PlayerJoinedPayload is the payload for a PlayerJoined event
type PlayerJoinedPayload struct {
	PlayerName string    `json:"player_name"`
	Score      int       `json:"score"`
	Rejoined   bool      `json:"rejoined"`
	JoinedAt   time.Time `json:"joined_at"`
}

// GameStartedPayload is the payload for a GameStarted event
type GameStartedPayload struct {
	WordLength   int       `json:"word_length"`
	RoundSeconds int       `json:"round_seconds"`
	StartedAt    time.Time `json:"started_at"`
}

// WordGuessedPayload is the payload for a WordGuessed event
type WordGuessedPayload struct {
	PlayerName string    `json:"player_name"`
	Word       string    `json:"word"`
	Score      int       `json:"score"`
	GuessedAt  time.Time `json:"guessed_at"`
}

// TimeUpPayload is the payload for a TimeUp event
type TimeUpPayload struct {
	WordLength int       `json:"word_length"`
	ExpiredAt  time.Time `json:"expired_at"`
}

// MatchOverPayload is the payload for a MatchOver event
type MatchOverPayload struct {
	WordsPlayed int            `json:"words_played"`
	Scores      map[string]int `json:"scores"`
	EndedAt     time.Time      `json:"ended_at"`
}
