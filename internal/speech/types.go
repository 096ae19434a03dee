package speech

import (
	"errors"
	"time"
)

var (
	// ErrNotConnected is returned when audio is fed before Connect succeeds.
	ErrNotConnected = errors.New("recognition server not connected")

	// ErrServerUnavailable is returned when the recognition server cannot
	// be reached.
	ErrServerUnavailable = errors.New("recognition server unavailable")
)

// Config holds connection settings for the recognition server.
type Config struct {
	ServerURL   string        `json:"server_url" mapstructure:"server_url"`
	SampleRate  int           `json:"sample_rate" mapstructure:"sample_rate"`
	DialTimeout time.Duration `json:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout time.Duration `json:"read_timeout" mapstructure:"read_timeout"`
}

// DefaultConfig returns settings for a local recognition server.
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   "ws://localhost:2700",
		SampleRate:  16000,
		DialTimeout: 10 * time.Second,
		ReadTimeout: 5 * time.Second,
	}
}

// Match reports a trigger phrase heard in the audio stream.
type Match struct {
	Phrase string    // the configured phrase that matched
	Heard  string    // the recognizer text the phrase was found in
	At     time.Time // when the match was detected
}
