package tts

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Speaker tries providers in order until one of them speaks the text. The
// usual chain is piper first for quality, espeak as the fallback.
type Speaker struct {
	providers []Provider
	logger    zerolog.Logger
}

// NewSpeaker creates a Speaker over the given provider chain.
func NewSpeaker(logger zerolog.Logger, providers ...Provider) *Speaker {
	return &Speaker{
		providers: providers,
		logger:    logger.With().Str("component", "speaker").Logger(),
	}
}

// Speak plays the text through the first provider that succeeds.
// Cancellation is not treated as a provider failure; it propagates
// immediately so an interruption never falls through to the next engine.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	var lastErr error
	for _, p := range s.providers {
		if !p.IsAvailable() {
			s.logger.Debug().Str("provider", p.Name()).Msg("Provider unavailable, trying next")
			continue
		}

		err := p.Speak(ctx, text)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		s.logger.Warn().Err(err).Str("provider", p.Name()).Msg("Provider failed, trying next")
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("%w: %v", ErrNoProvider, lastErr)
	}
	return ErrNoProvider
}
