package session

import "errors"

var (
	// ErrInvalidPasscode is returned when a join attempt carries the wrong passcode
	ErrInvalidPasscode = errors.New("invalid passcode")
	// ErrNoActiveWord is returned when no secret word is set
	ErrNoActiveWord = errors.New("no active word")
	// ErrNoWordsAvailable is returned when the word bank has nothing to draw from
	ErrNoWordsAvailable = errors.New("no words available")
	// ErrNoSession is returned when joining before any game was created
	ErrNoSession = errors.New("no game session")
	// ErrMatchOver is returned after the word pool ran out
	ErrMatchOver = errors.New("match is over")
	// ErrUnknownPlayer is returned when a guess comes from a player who never joined
	ErrUnknownPlayer = errors.New("unknown player")
)
