package session

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/guessword/go/internal/game/events"
	"github.com/rs/zerolog/log"
)

// countdown is the handle of the running round timer
type countdown struct {
	id     uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// startCountdownLocked replaces any running countdown with a new one.
// Caller must hold s.mu.
func (s *Session) startCountdownLocked() {
	s.stopCountdownLocked()

	s.nextID++
	ctx, cancel := context.WithCancel(context.Background())
	cd := &countdown{
		id:     s.nextID,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.countdown = cd

	go s.runCountdown(ctx, cd)

	log.Debug().
		Uint64("countdown", cd.id).
		Int("seconds", s.state.timeRemaining).
		Msg("countdown started")
}

// stopCountdownLocked cancels the running countdown without waiting for it:
// its goroutine may be blocked on s.mu. A tick that slips through is discarded
// because the countdown is no longer current. Caller must hold s.mu.
func (s *Session) stopCountdownLocked() {
	if s.countdown == nil {
		return
	}
	s.countdown.cancel()
	log.Debug().Uint64("countdown", s.countdown.id).Msg("cancelled existing countdown")
	s.countdown = nil
}

func (s *Session) runCountdown(ctx context.Context, cd *countdown) {
	defer close(cd.done)

	timer := s.clock.NewTimer(s.config.TickInterval)
	defer stopAndDrainTimer(timer)

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.Chan():
			if finished := s.tick(ctx, cd); finished {
				return
			}
			timer.Reset(s.config.TickInterval)
		}
	}
}

// tick advances the round by one second. It reports whether the countdown is over.
func (s *Session) tick(ctx context.Context, cd *countdown) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil || s.countdown != cd {
		return true
	}

	s.state.timeRemaining = max(0, s.state.timeRemaining-1)
	s.broadcast(TimeLeftMessage(s.state.timeRemaining))
	if s.state.timeRemaining > 0 {
		return false
	}

	s.broadcast(MsgTimeUp)
	s.countdown = nil
	if s.state.phase == PhaseActive {
		s.state.phase = PhaseLobby
	}

	log.Info().Uint64("countdown", cd.id).Msg("round time is up")
	s.emit(events.EventTypeTimeUp, events.TimeUpPayload{
		WordLength: len([]rune(s.state.secretWord)),
		ExpiredAt:  s.clock.Now().UTC(),
	})
	return true
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
