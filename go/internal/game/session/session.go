// Package session owns the single shared game state and every rule that mutates it.
//
// All operations run under one mutation lock. Broadcasts issued while the lock
// is held are non-blocking enqueues onto the connection registry, so the order
// clients see matches the order state changed in.
package session

import (
	"crypto/subtle"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/guessword/go/internal/game/events"
	"github.com/mcdev12/guessword/go/internal/words"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Broadcaster delivers a text frame to every connected client
type Broadcaster interface {
	Broadcast(text string)
}

// EventEmitter receives domain events. Implementations must not block.
type EventEmitter interface {
	Emit(eventType events.EventType, payload any)
}

// Clock is the subset of clockwork.Clock the countdown needs.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) clockwork.Timer
}

// Config holds the game rules
type Config struct {
	RoundDuration      time.Duration
	TickInterval       time.Duration
	CorrectGuessPoints int
}

// DefaultConfig returns a 60 second round with 10 points per correct guess
func DefaultConfig() Config {
	return Config{
		RoundDuration:      60 * time.Second,
		TickInterval:       time.Second,
		CorrectGuessPoints: 10,
	}
}

// Option customizes a Session
type Option func(*Session)

// WithClock replaces the real clock, mainly for tests
func WithClock(clock Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// WithEmitter sets where domain events go
func WithEmitter(emitter EventEmitter) Option {
	return func(s *Session) { s.emitter = emitter }
}

// Session is the process-wide game session
type Session struct {
	mu          sync.Mutex
	state       State
	bank        *words.Bank
	broadcaster Broadcaster
	emitter     EventEmitter
	clock       Clock
	config      Config

	countdown *countdown
	nextID    uint64
}

// New creates an idle session. A nil or empty bank is allowed; every
// CreateGame then fails with ErrNoWordsAvailable.
func New(cfg Config, bank *words.Bank, broadcaster Broadcaster, opts ...Option) *Session {
	def := DefaultConfig()
	if cfg.RoundDuration <= 0 {
		cfg.RoundDuration = def.RoundDuration
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.CorrectGuessPoints <= 0 {
		cfg.CorrectGuessPoints = def.CorrectGuessPoints
	}

	s := &Session{
		state:       newState(),
		bank:        bank,
		broadcaster: broadcaster,
		clock:       clockwork.NewRealClock(),
		config:      cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateResult describes a freshly created game
type CreateResult struct {
	Passcode   string
	WordLength int
}

// JoinResult describes a successful join
type JoinResult struct {
	Player   string
	Score    int
	Rejoined bool
}

// GuessResult describes the outcome of a guess. Exhausted is set when the
// guess solved the last available word.
type GuessResult struct {
	Correct   bool
	Word      string
	Score     int
	Exhausted bool
}

// CreateGame resets the session for a new match hosted by host
func (s *Session) CreateGame(host, passcode string) (CreateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bank.Len() == 0 {
		return CreateResult{}, ErrNoWordsAvailable
	}

	s.stopCountdownLocked()
	s.bank.Reset()
	word, ok := s.bank.Next()
	if !ok {
		return CreateResult{}, ErrNoWordsAvailable
	}

	st := newState()
	st.phase = PhaseLobby
	st.secretWord = word
	st.passcode = passcode
	st.timeRemaining = s.roundSeconds()
	st.addPlayer(host)
	s.state = st

	log.Info().
		Str("host", host).
		Int("word_length", len([]rune(word))).
		Int("pool_size", s.bank.Len()).
		Msg("game created")

	s.emit(events.EventTypeGameCreated, events.GameCreatedPayload{
		HostName:   host,
		WordLength: len([]rune(word)),
		PoolSize:   s.bank.Len(),
		CreatedAt:  s.clock.Now().UTC(),
	})

	return CreateResult{Passcode: passcode, WordLength: len([]rune(word))}, nil
}

// JoinGame adds player to the running game. Joining again under the same name
// keeps the existing score.
func (s *Session) JoinGame(player, passcode string) (JoinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state.phase {
	case PhaseIdle:
		return JoinResult{}, ErrNoSession
	case PhaseExhausted:
		return JoinResult{}, ErrMatchOver
	}

	if subtle.ConstantTimeCompare([]byte(passcode), []byte(s.state.passcode)) != 1 {
		log.Debug().Str("player", player).Msg("join rejected: invalid passcode")
		return JoinResult{}, ErrInvalidPasscode
	}

	score, existed := s.state.addPlayer(player)
	s.broadcast(JoinedMessage(player))

	log.Info().
		Str("player", player).
		Bool("rejoined", existed).
		Int("players", len(s.state.scores)).
		Msg("player joined")

	s.emit(events.EventTypePlayerJoined, events.PlayerJoinedPayload{
		PlayerName: player,
		Score:      score,
		Rejoined:   existed,
		JoinedAt:   s.clock.Now().UTC(),
	})

	return JoinResult{Player: player, Score: score, Rejoined: existed}, nil
}

// StartGame starts (or restarts) the countdown for the current word
func (s *Session) StartGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.secretWord == "" {
		return ErrNoActiveWord
	}

	s.state.phase = PhaseActive
	s.state.timeRemaining = s.roundSeconds()
	s.state.startedAt = s.clock.Now()
	s.startCountdownLocked()

	s.broadcast(StartedMessage(s.state.secretWord))

	log.Info().
		Int("word_length", len([]rune(s.state.secretWord))).
		Int("round_seconds", s.state.timeRemaining).
		Msg("game started")

	s.emit(events.EventTypeGameStarted, events.GameStartedPayload{
		WordLength:   len([]rune(s.state.secretWord)),
		RoundSeconds: s.state.timeRemaining,
		StartedAt:    s.state.startedAt.UTC(),
	})
	return nil
}

// GuessWord checks guess against the secret word. A wrong guess changes nothing
// and is never broadcast.
func (s *Session) GuessWord(player, guess string) (GuessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.state.phase == PhaseExhausted:
		return GuessResult{}, ErrMatchOver
	case s.state.secretWord == "":
		return GuessResult{}, ErrNoActiveWord
	}

	score, ok := s.state.scores[player]
	if !ok {
		return GuessResult{}, ErrUnknownPlayer
	}

	if strings.ToUpper(strings.TrimSpace(guess)) != s.state.secretWord {
		return GuessResult{Correct: false, Score: score}, nil
	}

	solved := s.state.secretWord
	score += s.config.CorrectGuessPoints
	s.state.scores[player] = score
	s.state.guessed = append(s.state.guessed, player)
	s.state.wordsPlayed++

	s.broadcast(GuessedMessage(player, solved))
	s.broadcast(ScoresMessage(s.state.entries()))

	log.Info().
		Str("player", player).
		Int("score", score).
		Int("words_played", s.state.wordsPlayed).
		Msg("word guessed")

	s.emit(events.EventTypeWordGuessed, events.WordGuessedPayload{
		PlayerName: player,
		Word:       solved,
		Score:      score,
		GuessedAt:  s.clock.Now().UTC(),
	})

	result := GuessResult{Correct: true, Word: solved, Score: score}

	next, ok := s.bank.Next()
	if !ok {
		s.stopCountdownLocked()
		s.state.secretWord = ""
		s.state.phase = PhaseExhausted
		s.broadcast(MsgPoolExhausted)

		log.Info().Int("words_played", s.state.wordsPlayed).Msg("word pool exhausted, match over")
		s.emit(events.EventTypeMatchOver, events.MatchOverPayload{
			WordsPlayed: s.state.wordsPlayed,
			Scores: lo.SliceToMap(s.state.entries(), func(e LeaderboardEntry) (string, int) {
				return e.Player, e.Score
			}),
			EndedAt: s.clock.Now().UTC(),
		})

		result.Exhausted = true
		return result, nil
	}

	s.state.secretWord = next
	s.broadcast(NextWordMessage(next))
	return result, nil
}

// Leaderboard returns every player sorted by score, highest first. Equal
// scores keep join order.
func (s *Session) Leaderboard() []LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ranked()
}

// Guessed returns the players who solved a word, in solve order
func (s *Session) Guessed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.state.guessed...)
}

// Phase returns the current lifecycle phase
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.phase
}

// Snapshot returns a read-only view for status endpoints
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Phase:          s.state.phase,
		MaskedWord:     MaskWord(s.state.secretWord),
		WordLength:     len([]rune(s.state.secretWord)),
		TimeRemaining:  s.state.timeRemaining,
		TimerRunning:   s.countdown != nil,
		Scores:         s.state.entries(),
		GuessedCount:   len(s.state.guessed),
		WordsPlayed:    s.state.wordsPlayed,
		WordsRemaining: s.bank.Remaining(),
	}
	if !s.state.startedAt.IsZero() {
		startedAt := s.state.startedAt.UTC()
		snap.StartedAt = &startedAt
	}
	return snap
}

// Close cancels the running countdown and waits for it to exit
func (s *Session) Close() {
	s.mu.Lock()
	cd := s.countdown
	s.countdown = nil
	s.mu.Unlock()

	if cd != nil {
		cd.cancel()
		<-cd.done
		log.Debug().Uint64("countdown", cd.id).Msg("countdown stopped on close")
	}
}

func (s *Session) roundSeconds() int {
	return max(1, int(s.config.RoundDuration/time.Second))
}

func (s *Session) broadcast(text string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(text)
}

func (s *Session) emit(eventType events.EventType, payload any) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(eventType, payload)
}
