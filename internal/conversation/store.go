// Package conversation keeps the short-term dialogue history that gives the
// assistant context across turns.
package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InactivityWindow is how long history survives without a new turn. A session
// resumed after a longer gap starts from a clean slate.
const InactivityWindow = 5 * time.Minute

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one utterance or response in the dialogue.
type Turn struct {
	ID        string
	Role      Role
	Text      string
	Timestamp time.Time
}

// Store is a bounded, expiring history of dialogue turns. The bound is read
// through LimitFunc on every append, so a profile switch shrinks history
// lazily without the store knowing about profiles.
type Store struct {
	mu           sync.Mutex
	turns        []Turn
	lastActivity time.Time

	// LimitFunc returns the current max number of retained turns.
	limitFunc func() int

	logger zerolog.Logger
	now    func() time.Time
}

// NewStore creates a Store whose capacity is read from limitFunc.
func NewStore(logger zerolog.Logger, limitFunc func() int) *Store {
	return &Store{
		limitFunc: limitFunc,
		logger:    logger.With().Str("component", "conversation").Logger(),
		now:       time.Now,
	}
}

// Append records a turn, evicting the oldest entries beyond the current
// limit. If the history has sat idle past the inactivity window it is
// cleared first, so a stale exchange never bleeds into a new one. Append
// reports whether expiry occurred.
func (s *Store) Append(role Role, text string) (expired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.expiredLocked(now) {
		s.logger.Info().Int("dropped", len(s.turns)).Msg("History expired, starting fresh")
		s.turns = nil
		expired = true
	}

	s.turns = append(s.turns, Turn{
		ID:        uuid.New().String(),
		Role:      role,
		Text:      text,
		Timestamp: now,
	})
	s.lastActivity = now

	limit := s.limitFunc()
	if limit > 0 && len(s.turns) > limit {
		s.turns = s.turns[len(s.turns)-limit:]
	}

	return expired
}

// Recent returns up to n most recent turns, oldest first. Expired history
// returns nothing.
func (s *Store) Recent(n int) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expiredLocked(s.now()) || n <= 0 {
		return nil
	}

	start := len(s.turns) - n
	if start < 0 {
		start = 0
	}

	out := make([]Turn, len(s.turns)-start)
	copy(out, s.turns[start:])
	return out
}

// Len returns the number of retained turns, counting expired history as zero.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expiredLocked(s.now()) {
		return 0
	}
	return len(s.turns)
}

// Clear drops all history immediately.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = nil
	s.lastActivity = time.Time{}
	s.logger.Info().Msg("History cleared")
}

// IsExpired reports whether the history has passed the inactivity window.
func (s *Store) IsExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiredLocked(s.now())
}

// LastActivity returns the timestamp of the most recent turn.
func (s *Store) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Store) expiredLocked(now time.Time) bool {
	return len(s.turns) > 0 && now.Sub(s.lastActivity) > InactivityWindow
}
