package tts

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name      string
	available bool
	err       error
	spoke     []string
}

func (p *fakeProvider) Name() string      { return p.name }
func (p *fakeProvider) IsAvailable() bool { return p.available }

func (p *fakeProvider) Speak(ctx context.Context, text string) error {
	if p.err != nil {
		return p.err
	}
	p.spoke = append(p.spoke, text)
	return nil
}

func TestSpeaker_UsesFirstAvailableProvider(t *testing.T) {
	primary := &fakeProvider{name: "primary", available: true}
	fallback := &fakeProvider{name: "fallback", available: true}

	speaker := NewSpeaker(zerolog.Nop(), primary, fallback)
	require.NoError(t, speaker.Speak(context.Background(), "hello"))

	assert.Equal(t, []string{"hello"}, primary.spoke)
	assert.Empty(t, fallback.spoke)
}

func TestSpeaker_FallsBackWhenUnavailable(t *testing.T) {
	primary := &fakeProvider{name: "primary", available: false}
	fallback := &fakeProvider{name: "fallback", available: true}

	speaker := NewSpeaker(zerolog.Nop(), primary, fallback)
	require.NoError(t, speaker.Speak(context.Background(), "hello"))

	assert.Equal(t, []string{"hello"}, fallback.spoke)
}

func TestSpeaker_FallsBackOnFailure(t *testing.T) {
	primary := &fakeProvider{name: "primary", available: true, err: errors.New("boom")}
	fallback := &fakeProvider{name: "fallback", available: true}

	speaker := NewSpeaker(zerolog.Nop(), primary, fallback)
	require.NoError(t, speaker.Speak(context.Background(), "hello"))

	assert.Equal(t, []string{"hello"}, fallback.spoke)
}

func TestSpeaker_CancellationDoesNotFallThrough(t *testing.T) {
	primary := &fakeProvider{name: "primary", available: true, err: context.Canceled}
	fallback := &fakeProvider{name: "fallback", available: true}

	speaker := NewSpeaker(zerolog.Nop(), primary, fallback)
	err := speaker.Speak(context.Background(), "hello")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fallback.spoke, "an interrupted response must not restart on another engine")
}

func TestSpeaker_AllProvidersFail(t *testing.T) {
	primary := &fakeProvider{name: "primary", available: true, err: errors.New("boom")}
	fallback := &fakeProvider{name: "fallback", available: false}

	speaker := NewSpeaker(zerolog.Nop(), primary, fallback)
	err := speaker.Speak(context.Background(), "hello")

	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestSpeaker_EmptyTextIsNoop(t *testing.T) {
	primary := &fakeProvider{name: "primary", available: true}

	speaker := NewSpeaker(zerolog.Nop(), primary)
	require.NoError(t, speaker.Speak(context.Background(), ""))
	assert.Empty(t, primary.spoke)
}
