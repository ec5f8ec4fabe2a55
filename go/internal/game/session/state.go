package session

import (
	"slices"
	"time"

	"github.com/samber/lo"
)

// Phase is the lifecycle position of the game
type Phase string

const (
	PhaseIdle      Phase = "IDLE"
	PhaseLobby     Phase = "LOBBY"
	PhaseActive    Phase = "ACTIVE"
	PhaseExhausted Phase = "EXHAUSTED"
)

// State is the single mutable game record. It is only touched under Session.mu.
type State struct {
	phase         Phase
	secretWord    string
	scores        map[string]int
	order         []string // join order, breaks leaderboard ties
	guessed       []string
	passcode      string
	timeRemaining int
	wordsPlayed   int
	startedAt     time.Time
}

func newState() State {
	return State{
		phase:  PhaseIdle,
		scores: make(map[string]int),
	}
}

func (st *State) addPlayer(name string) (score int, existed bool) {
	if score, ok := st.scores[name]; ok {
		return score, true
	}
	st.scores[name] = 0
	st.order = append(st.order, name)
	return 0, false
}

// entries returns scores in join order
func (st *State) entries() []LeaderboardEntry {
	return lo.Map(st.order, func(name string, _ int) LeaderboardEntry {
		return LeaderboardEntry{Player: name, Score: st.scores[name]}
	})
}

// ranked returns scores sorted by score descending, ties kept in join order
func (st *State) ranked() []LeaderboardEntry {
	entries := st.entries()
	slices.SortStableFunc(entries, func(a, b LeaderboardEntry) int {
		return b.Score - a.Score
	})
	return entries
}

// Snapshot is a read-only view of the session. It never exposes the secret word
// or the passcode.
type Snapshot struct {
	Phase          Phase              `json:"phase"`
	MaskedWord     string             `json:"masked_word,omitempty"`
	WordLength     int                `json:"word_length"`
	TimeRemaining  int                `json:"time_remaining_sec"`
	TimerRunning   bool               `json:"timer_running"`
	Scores         []LeaderboardEntry `json:"scores"`
	GuessedCount   int                `json:"guessed_count"`
	WordsPlayed    int                `json:"words_played"`
	WordsRemaining int                `json:"words_remaining"`
	StartedAt      *time.Time         `json:"started_at,omitempty"`
}
