package profile

import (
	"sync"

	"github.com/rs/zerolog"
)

// Manager holds the active profile. Switching takes effect on the next
// dialogue cycle; readers always see a consistent snapshot.
type Manager struct {
	mu      sync.RWMutex
	current Profile
	logger  zerolog.Logger
}

// NewManager creates a Manager starting on the given profile.
func NewManager(logger zerolog.Logger, initial Profile) *Manager {
	return &Manager{
		current: initial,
		logger:  logger.With().Str("component", "profile").Logger(),
	}
}

// Current returns the active profile.
func (m *Manager) Current() Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Switch activates the profile named by a spoken or configured alias. On an
// unknown name the active profile is left untouched.
func (m *Manager) Switch(name string) (Profile, error) {
	p, err := Resolve(name)
	if err != nil {
		return m.Current(), err
	}

	m.mu.Lock()
	previous := m.current
	m.current = p
	m.mu.Unlock()

	if previous.ID != p.ID {
		m.logger.Info().
			Str("from", string(previous.ID)).
			Str("to", string(p.ID)).
			Msg("Profile switched")
	}
	return p, nil
}
