package protocol

import (
	"context"
	"errors"

	"github.com/mcdev12/guessword/go/internal/game/session"
	"github.com/rs/zerolog/log"
)

// Reply texts for protocol level failures
const (
	MsgInvalidJSON   = "Invalid JSON format."
	MsgInvalidFormat = "Invalid message format."
	MsgUnknownAction = "Unknown action."
	MsgInternalError = "Something went wrong, please try again."
)

// Client is the connection a frame arrived on
type Client interface {
	ID() string
	Send(text string)
}

// Game is the set of session operations the protocol drives
type Game interface {
	CreateGame(host, passcode string) (session.CreateResult, error)
	JoinGame(player, passcode string) (session.JoinResult, error)
	StartGame() error
	GuessWord(player, guess string) (session.GuessResult, error)
	Leaderboard() []session.LeaderboardEntry
}

// Dispatcher routes decoded frames to the game and sends private replies.
// Broadcasts are issued by the game itself.
type Dispatcher struct {
	game Game
}

// NewDispatcher creates a dispatcher for game
func NewDispatcher(game Game) *Dispatcher {
	return &Dispatcher{game: game}
}

// HandleMessage processes one inbound frame. Every failure becomes a private
// reply to client; nothing here closes the connection.
func (d *Dispatcher) HandleMessage(ctx context.Context, client Client, raw []byte) {
	env, err := Decode(raw)
	if err != nil {
		log.Debug().
			Err(err).
			Str("connection_id", client.ID()).
			Msg("rejected client message")
		client.Send(ReplyForError(err))
		return
	}

	log.Debug().
		Str("connection_id", client.ID()).
		Str("action", string(env.Action)).
		Msg("handling client action")

	if reply := d.dispatch(env); reply != "" {
		client.Send(reply)
	}
}

func (d *Dispatcher) dispatch(env Envelope) string {
	switch env.Action {
	case ActionCreateGame:
		res, err := d.game.CreateGame(env.HostName.String(), env.Passcode.String())
		if err != nil {
			return ReplyForError(err)
		}
		return session.CreatedMessage(res.Passcode)

	case ActionJoinGame:
		res, err := d.game.JoinGame(env.PlayerName.String(), env.Passcode.String())
		if err != nil {
			return ReplyForError(err)
		}
		return session.WelcomeMessage(res.Player, res.Score)

	case ActionStartGame:
		if err := d.game.StartGame(); err != nil {
			return ReplyForError(err)
		}
		return ""

	case ActionGuessWord:
		player := env.PlayerName.String()
		res, err := d.game.GuessWord(player, env.Guess.String())
		if err != nil {
			if errors.Is(err, session.ErrUnknownPlayer) {
				return session.UnknownPlayerMessage(player)
			}
			return ReplyForError(err)
		}
		if !res.Correct {
			return session.MsgIncorrectGuess
		}
		return ""

	case ActionLeaderboard:
		return session.LeaderboardMessage(d.game.Leaderboard())
	}

	return MsgUnknownAction
}

// ReplyForError maps an error to the private text sent to the client
func ReplyForError(err error) string {
	var missing *MissingFieldError
	switch {
	case errors.As(err, &missing):
		return "Missing required field: " + missing.Field
	case errors.Is(err, ErrMalformedMessage):
		return MsgInvalidJSON
	case errors.Is(err, ErrMissingAction):
		return MsgInvalidFormat
	case errors.Is(err, ErrUnknownAction):
		return MsgUnknownAction
	case errors.Is(err, session.ErrInvalidPasscode):
		return session.MsgInvalidPasscode
	case errors.Is(err, session.ErrNoActiveWord):
		return session.MsgNoActiveWord
	case errors.Is(err, session.ErrNoWordsAvailable):
		return session.MsgNoWordsAvailable
	case errors.Is(err, session.ErrNoSession):
		return session.MsgNoSession
	case errors.Is(err, session.ErrMatchOver):
		return session.MsgMatchOver
	}

	log.Error().Err(err).Msg("unmapped game error")
	return MsgInternalError
}
