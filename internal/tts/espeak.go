package tts

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"
)

// EspeakProvider is the fallback synthesis engine. Robotic, but present on
// virtually every Linux box.
type EspeakProvider struct {
	logger zerolog.Logger
	config *Config
}

// NewEspeakProvider creates an espeak provider.
func NewEspeakProvider(logger zerolog.Logger, config *Config) *EspeakProvider {
	if config == nil {
		config = DefaultConfig()
	}
	return &EspeakProvider{
		logger: logger.With().Str("provider", "espeak").Logger(),
		config: config,
	}
}

func (p *EspeakProvider) Name() string {
	return "espeak"
}

func (p *EspeakProvider) IsAvailable() bool {
	_, err := exec.LookPath("espeak")
	return err == nil
}

func (p *EspeakProvider) Speak(ctx context.Context, text string) error {
	cmd := exec.CommandContext(ctx, "espeak",
		"-s", fmt.Sprintf("%d", p.config.EspeakSpeed),
		"-v", p.config.EspeakVoice,
		text,
	)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			p.logger.Debug().Msg("Playback interrupted")
			return ctx.Err()
		}
		return fmt.Errorf("espeak failed: %w", err)
	}
	return nil
}
