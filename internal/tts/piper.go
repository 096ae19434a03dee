package tts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// piperSampleRate matches the output rate of the medium-quality voices.
const piperSampleRate = 22050

// PiperProvider synthesizes speech with a local Piper neural TTS binary and
// plays it through aplay. https://github.com/rhasspy/piper
type PiperProvider struct {
	logger     zerolog.Logger
	config     *Config
	binaryPath string
	modelPath  string
}

// NewPiperProvider creates a Piper provider, resolving the binary and voice
// model from the config or common install locations.
func NewPiperProvider(logger zerolog.Logger, config *Config) *PiperProvider {
	if config == nil {
		config = DefaultConfig()
	}

	binaryPath := config.PiperBinary
	if binaryPath == "" || binaryPath == "piper" {
		if found, err := exec.LookPath("piper"); err == nil {
			binaryPath = found
		} else {
			homeDir, _ := os.UserHomeDir()
			candidates := []string{
				filepath.Join(homeDir, ".local/bin/piper"),
				"/usr/local/bin/piper",
			}
			for _, path := range candidates {
				if _, err := os.Stat(path); err == nil {
					binaryPath = path
					break
				}
			}
		}
	}

	modelPath := config.PiperModel
	if modelPath == "" {
		homeDir, _ := os.UserHomeDir()
		modelPath = filepath.Join(homeDir, ".ziggy/voices/en_US-amy-medium.onnx")
	}

	return &PiperProvider{
		logger:     logger.With().Str("provider", "piper").Logger(),
		config:     config,
		binaryPath: binaryPath,
		modelPath:  modelPath,
	}
}

func (p *PiperProvider) Name() string {
	return "piper"
}

// IsAvailable checks that both the binary and the voice model exist.
func (p *PiperProvider) IsAvailable() bool {
	if p.binaryPath == "" {
		return false
	}
	if _, err := os.Stat(p.binaryPath); err != nil {
		p.logger.Debug().Str("path", p.binaryPath).Msg("Piper binary not accessible")
		return false
	}
	if _, err := os.Stat(p.modelPath); err != nil {
		p.logger.Debug().Str("model", p.modelPath).Msg("Piper voice model not found")
		return false
	}
	return true
}

// Speak pipes raw Piper output straight into aplay. Killing the pipeline on
// context cancellation is what makes barge-in cut the audio off mid-word.
func (p *PiperProvider) Speak(ctx context.Context, text string) error {
	if !p.IsAvailable() {
		return ErrProviderUnavailable
	}

	synth := exec.CommandContext(ctx, p.binaryPath,
		"--model", p.modelPath,
		"--output-raw",
	)
	synth.Stdin = strings.NewReader(text)

	play := exec.CommandContext(ctx, "aplay",
		"-r", fmt.Sprintf("%d", piperSampleRate),
		"-f", "S16_LE",
		"-t", "raw",
		"-q",
		"-",
	)

	pipe, err := synth.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create synthesis pipe: %w", err)
	}
	play.Stdin = pipe

	if err := synth.Start(); err != nil {
		return fmt.Errorf("failed to start piper: %w", err)
	}
	if err := play.Start(); err != nil {
		synth.Process.Kill()
		synth.Wait()
		return fmt.Errorf("failed to start playback: %w", err)
	}

	synthErr := synth.Wait()
	playErr := play.Wait()

	if ctx.Err() != nil {
		p.logger.Debug().Msg("Playback interrupted")
		return ctx.Err()
	}
	if synthErr != nil {
		return fmt.Errorf("piper synthesis failed: %w", synthErr)
	}
	if playErr != nil {
		return fmt.Errorf("playback failed: %w", playErr)
	}

	return nil
}
