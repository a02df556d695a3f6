package api

import (
	"sync"
	"time"

	"github.com/yourusername/tablabaki/pkg/engine"
)

// Session is one live game. All access to the engine goes through do,
// which serializes callers on the session's mutex.
type Session struct {
	ID            string
	Variant       string
	StartPosition string // Position ID the game started from
	Created       time.Time

	mu   sync.Mutex
	game *engine.Game

	subMu  sync.Mutex
	subs   map[chan GameState]struct{}
	closed bool
}

func newSession(id, variantName, start string, g *engine.Game) *Session {
	return &Session{
		ID:            id,
		Variant:       variantName,
		StartPosition: start,
		Created:       time.Now().UTC(),
		game:          g,
		subs:          make(map[chan GameState]struct{}),
	}
}

func (s *Session) do(fn func(g *engine.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.game)
}

// Subscribe returns a channel receiving the game state after every change,
// and a function that cancels the subscription. Slow subscribers miss
// updates rather than block the game.
func (s *Session) Subscribe() (<-chan GameState, func()) {
	ch := make(chan GameState, 16)
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}
	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
}

func (s *Session) publish(st GameState) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- st:
		default:
		}
	}
}

// close ends every subscription; called when the game is deleted.
func (s *Session) close() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.closed = true
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}
