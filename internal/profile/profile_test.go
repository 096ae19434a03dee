package profile

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Aliases(t *testing.T) {
	tests := []struct {
		name string
		want ID
	}{
		{"minimal", Minimal},
		{"gaming", Minimal},
		{"low", Minimal},
		{"standard", Standard},
		{"normal", Standard},
		{"balanced", Standard},
		{"default", Standard},
		{"performance", Performance},
		{"fast", Performance},
		{"maximum", Performance},
		{"  Gaming  ", Minimal},
		{"PERFORMANCE", Performance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Resolve(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.ID)
		})
	}
}

func TestResolve_Unknown(t *testing.T) {
	_, err := Resolve("turbo")
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestProfiles_ScaleMonotonically(t *testing.T) {
	all := All()
	require.Len(t, all, 3)

	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		assert.Greater(t, cur.MaxContextTokens, prev.MaxContextTokens)
		assert.Greater(t, cur.MaxHistoryTurns, prev.MaxHistoryTurns)
		assert.Greater(t, cur.ResponseTokenCap, prev.ResponseTokenCap)
		assert.Greater(t, cur.ConvMaxRecording, prev.ConvMaxRecording)
		assert.Greater(t, cur.CommandMaxRecording, prev.CommandMaxRecording)
	}
}

func TestManager_SwitchValid(t *testing.T) {
	m := NewManager(zerolog.Nop(), Get(Standard))

	p, err := m.Switch("gaming")
	require.NoError(t, err)
	assert.Equal(t, Minimal, p.ID)
	assert.Equal(t, Minimal, m.Current().ID)
	assert.Equal(t, 2*time.Second, m.Current().ConvSilenceTimeout)
}

func TestManager_SwitchUnknownKeepsCurrent(t *testing.T) {
	m := NewManager(zerolog.Nop(), Get(Standard))

	p, err := m.Switch("ludicrous")
	assert.ErrorIs(t, err, ErrUnknownProfile)
	assert.Equal(t, Standard, p.ID, "failed switch returns the active profile")
	assert.Equal(t, Standard, m.Current().ID)
}
