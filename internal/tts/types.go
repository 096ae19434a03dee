// Package tts turns response text into audible speech through local
// synthesis engines.
package tts

import (
	"context"
	"errors"
)

var (
	// ErrProviderUnavailable means the synthesis engine is not installed
	// or not usable on this machine.
	ErrProviderUnavailable = errors.New("TTS provider unavailable")

	// ErrNoProvider means every configured provider failed or was
	// unavailable.
	ErrNoProvider = errors.New("no TTS provider could speak")
)

// Provider is a single speech synthesis engine.
type Provider interface {
	// Name returns the provider identifier (e.g., "piper", "espeak")
	Name() string

	// Speak synthesizes and plays the text, blocking until playback
	// finishes or the context is cancelled. Cancellation must stop the
	// audio promptly.
	Speak(ctx context.Context, text string) error

	// IsAvailable reports whether the engine can be used right now
	IsAvailable() bool
}

// Config holds synthesis settings.
type Config struct {
	PiperBinary string `json:"piper_binary" mapstructure:"piper_binary"`
	PiperModel  string `json:"piper_model" mapstructure:"piper_model"`
	EspeakSpeed int    `json:"espeak_speed" mapstructure:"espeak_speed"`
	EspeakVoice string `json:"espeak_voice" mapstructure:"espeak_voice"`
}

// DefaultConfig returns sensible defaults for local synthesis.
func DefaultConfig() *Config {
	return &Config{
		PiperBinary: "piper",
		PiperModel:  "",
		EspeakSpeed: 150,
		EspeakVoice: "en",
	}
}
