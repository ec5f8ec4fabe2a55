// Package protocol decodes client frames and routes them to the game session.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Action names a client request
type Action string

const (
	ActionCreateGame  Action = "create_game"
	ActionJoinGame    Action = "join_game"
	ActionStartGame   Action = "start_game"
	ActionGuessWord   Action = "guess_word"
	ActionLeaderboard Action = "leaderboard"
)

var (
	// ErrMalformedMessage is returned for frames that are not a JSON object
	ErrMalformedMessage = errors.New("malformed message")
	// ErrMissingAction is returned when the envelope carries no action
	ErrMissingAction = errors.New("missing action")
	// ErrUnknownAction is returned for unrecognized action names
	ErrUnknownAction = errors.New("unknown action")
)

// MissingFieldError reports a required envelope field that was absent or empty
type MissingFieldError struct {
	Action Action
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %s", e.Action, e.Field)
}

// Text is a string field that also accepts JSON numbers, so a numeric
// passcode like 7777 decodes the same as "7777".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*t = Text(n.String())
	return nil
}

func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

// Envelope is the client to server message
type Envelope struct {
	Action     Action `json:"action"`
	HostName   Text   `json:"host_name,omitempty"`
	PlayerName Text   `json:"player_name,omitempty"`
	Passcode   Text   `json:"passcode,omitempty"`
	Guess      Text   `json:"guess,omitempty"`
}

// Decode parses a raw frame and checks the fields its action requires
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	env.Action = Action(strings.TrimSpace(string(env.Action)))
	if env.Action == "" {
		return env, ErrMissingAction
	}

	return env, env.Validate()
}

type field struct {
	name  string
	value Text
}

// Validate checks that the fields required by the action are present
func (e Envelope) Validate() error {
	var required []field
	switch e.Action {
	case ActionCreateGame:
		required = []field{{"host_name", e.HostName}, {"passcode", e.Passcode}}
	case ActionJoinGame:
		required = []field{{"player_name", e.PlayerName}, {"passcode", e.Passcode}}
	case ActionGuessWord:
		required = []field{{"player_name", e.PlayerName}, {"guess", e.Guess}}
	case ActionStartGame, ActionLeaderboard:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, e.Action)
	}

	for _, f := range required {
		if f.value.String() == "" {
			return &MissingFieldError{Action: e.Action, Field: f.name}
		}
	}
	return nil
}
