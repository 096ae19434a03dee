// Package profile defines resource profiles that scale conversation depth,
// recording limits, and response length to the hardware the assistant is
// running on.
package profile

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownProfile is returned for names that match no profile or alias.
var ErrUnknownProfile = errors.New("unknown profile")

// ID identifies a resource profile.
type ID string

const (
	Minimal     ID = "minimal"
	Standard    ID = "standard"
	Performance ID = "performance"
)

// Profile bundles every tunable that scales with available resources.
type Profile struct {
	ID   ID
	Name string

	// MaxContextTokens bounds the prompt sent to the model.
	MaxContextTokens int

	// MaxHistoryTurns bounds how many past turns are retained.
	MaxHistoryTurns int

	// ResponseTokenCap bounds the model's reply length.
	ResponseTokenCap int

	// ConvSilenceTimeout ends a conversational-mode utterance after this
	// much silence. Command mode uses a fixed shorter pause.
	ConvSilenceTimeout time.Duration

	// ConvMaxRecording is the absolute cap on a conversational utterance.
	ConvMaxRecording time.Duration

	// CommandMaxRecording is the absolute cap on a command utterance.
	CommandMaxRecording time.Duration
}

var profiles = map[ID]Profile{
	Minimal: {
		ID:                  Minimal,
		Name:                "Minimal",
		MaxContextTokens:    8000,
		MaxHistoryTurns:     10,
		ResponseTokenCap:    500,
		ConvSilenceTimeout:  2 * time.Second,
		ConvMaxRecording:    120 * time.Second,
		CommandMaxRecording: 30 * time.Second,
	},
	Standard: {
		ID:                  Standard,
		Name:                "Standard",
		MaxContextTokens:    16000,
		MaxHistoryTurns:     20,
		ResponseTokenCap:    1000,
		ConvSilenceTimeout:  3 * time.Second,
		ConvMaxRecording:    300 * time.Second,
		CommandMaxRecording: 60 * time.Second,
	},
	Performance: {
		ID:                  Performance,
		Name:                "Performance",
		MaxContextTokens:    32000,
		MaxHistoryTurns:     50,
		ResponseTokenCap:    2000,
		ConvSilenceTimeout:  4 * time.Second,
		ConvMaxRecording:    600 * time.Second,
		CommandMaxRecording: 120 * time.Second,
	},
}

// aliases map spoken shorthand onto profile IDs.
var aliases = map[string]ID{
	"minimal":     Minimal,
	"gaming":      Minimal,
	"game":        Minimal,
	"low":         Minimal,
	"standard":    Standard,
	"normal":      Standard,
	"balanced":    Standard,
	"default":     Standard,
	"performance": Performance,
	"fast":        Performance,
	"high":        Performance,
	"max":         Performance,
	"maximum":     Performance,
}

// Resolve maps a spoken or configured name to a profile.
func Resolve(name string) (Profile, error) {
	id, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return profiles[id], nil
}

// Get returns the profile for a known ID.
func Get(id ID) Profile {
	return profiles[id]
}

// All returns every profile in ascending resource order.
func All() []Profile {
	return []Profile{profiles[Minimal], profiles[Standard], profiles[Performance]}
}
