package session

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Text frames sent to clients
const (
	MsgInvalidPasscode  = "Invalid passcode!"
	MsgNoActiveWord     = "No word set for the game. Create the game first!"
	MsgNoWordsAvailable = "No words available. Check the word list configuration."
	MsgNoSession        = "No active game. Create the game first!"
	MsgMatchOver        = "The game is over. Create a new game to keep playing!"
	MsgIncorrectGuess   = "Incorrect guess, try again!"
	MsgTimeUp           = "Time is up!"
	MsgPoolExhausted    = "No words left. Game over!"
)

// MaskWord renders one placeholder per letter, separated by spaces
func MaskWord(word string) string {
	n := len([]rune(word))
	if n == 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("_ ", n), " ")
}

func CreatedMessage(passcode string) string {
	return fmt.Sprintf("Game created! Passcode: %s", passcode)
}

func WelcomeMessage(player string, score int) string {
	return fmt.Sprintf("Welcome %s! Your score is %d.", player, score)
}

func JoinedMessage(player string) string {
	return fmt.Sprintf("%s joined the game!", player)
}

func StartedMessage(word string) string {
	return fmt.Sprintf("Game started! Word to guess: %s", MaskWord(word))
}

func GuessedMessage(player, word string) string {
	return fmt.Sprintf("%s guessed the word! The word was %s", player, word)
}

func NextWordMessage(word string) string {
	return fmt.Sprintf("Next word: %s", MaskWord(word))
}

func TimeLeftMessage(seconds int) string {
	return fmt.Sprintf("Time left: %d seconds", seconds)
}

func UnknownPlayerMessage(player string) string {
	return fmt.Sprintf("Player %s has not joined the game.", player)
}

// LeaderboardEntry is one player/score pair. It encodes as a two-element JSON array.
type LeaderboardEntry struct {
	Player string
	Score  int
}

func (e LeaderboardEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Player, e.Score})
}

func (e *LeaderboardEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("leaderboard entry: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.Player); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &e.Score)
}

// LeaderboardMessage renders the private leaderboard reply
func LeaderboardMessage(entries []LeaderboardEntry) string {
	return marshalFrame(struct {
		Leaderboard []LeaderboardEntry `json:"leaderboard"`
	}{Leaderboard: nonNil(entries)})
}

// ScoresMessage renders the scores broadcast that follows a correct guess
func ScoresMessage(entries []LeaderboardEntry) string {
	return marshalFrame(struct {
		Scores []LeaderboardEntry `json:"scores"`
	}{Scores: nonNil(entries)})
}

func nonNil(entries []LeaderboardEntry) []LeaderboardEntry {
	if entries == nil {
		return []LeaderboardEntry{}
	}
	return entries
}

func marshalFrame(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal frame")
		return "{}"
	}
	return string(data)
}
