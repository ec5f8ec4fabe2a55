package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDecodeEvent(t *testing.T) {
	original, err := NewEvent(EventTypeWordGuessed, WordGuessedPayload{
		PlayerName: "Bob",
		Word:       "BRIDGE",
		Score:      10,
		GuessedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if got.ID != original.ID || got.Type != EventTypeWordGuessed {
		t.Errorf("got %+v, want id %s type %s", got, original.ID, EventTypeWordGuessed)
	}

	var payload WordGuessedPayload
	if err := json.Unmarshal(got.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.PlayerName != "Bob" || payload.Score != 10 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	for name, data := range map[string]string{
		"not json":     `nope`,
		"missing type": `{"id":"4b1c5f0e-6f1e-4c8e-9a59-0d4b7f7c2d11","payload":{}}`,
		"unknown type": `{"id":"4b1c5f0e-6f1e-4c8e-9a59-0d4b7f7c2d11","type":"PickMade"}`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeEvent([]byte(data)); !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("DecodeEvent() error = %v, want ErrInvalidEvent", err)
			}
		})
	}
}
