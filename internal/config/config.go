// Package config provides configuration management for Ziggy
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	WakeWord       string        `mapstructure:"wake_word"`
	ShutdownPhrase string        `mapstructure:"shutdown_phrase"`
	Profile        string        `mapstructure:"profile"` // profile name or "auto"
	Audio          AudioConfig   `mapstructure:"audio"`
	Speech         SpeechConfig  `mapstructure:"speech"`
	AI             AIConfig      `mapstructure:"ai"`
	TTS            TTSConfig     `mapstructure:"tts"`
	Log            LogConfig     `mapstructure:"log"`
	Metrics        MetricsConfig `mapstructure:"metrics"`
}

// AudioConfig configures audio capture
type AudioConfig struct {
	InputDevice string        `mapstructure:"input_device"`
	SampleRate  int           `mapstructure:"sample_rate"`
	FrameDur    time.Duration `mapstructure:"frame_duration"`
}

// SpeechConfig configures the external speech-recognition engine
type SpeechConfig struct {
	ServerURL   string        `mapstructure:"server_url"` // websocket endpoint
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// AIConfig configures the generative backend
type AIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TTSConfig configures text-to-speech output
type TTSConfig struct {
	PiperBinary string `mapstructure:"piper_binary"`
	PiperModel  string `mapstructure:"piper_model"`
	EspeakSpeed int    `mapstructure:"espeak_speed"`
	EspeakVoice string `mapstructure:"espeak_voice"`
}

// LogConfig configures logging
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Dir     string `mapstructure:"dir"`
	Console bool   `mapstructure:"console"`
}

// MetricsConfig configures the optional Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		WakeWord:       "ziggy",
		ShutdownPhrase: "take a break",
		Profile:        "auto",
		Audio: AudioConfig{
			InputDevice: "default",
			SampleRate:  16000,
			FrameDur:    100 * time.Millisecond,
		},
		Speech: SpeechConfig{
			ServerURL:   "ws://localhost:2700",
			ReadTimeout: 5 * time.Second,
			DialTimeout: 5 * time.Second,
		},
		AI: AIConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.2:latest",
			Timeout: 30 * time.Second,
		},
		TTS: TTSConfig{
			PiperBinary: filepath.Join(home, ".local", "share", "piper", "piper"),
			PiperModel:  filepath.Join(home, ".local", "share", "piper", "en_US-amy-medium.onnx"),
			EspeakSpeed: 150,
			EspeakVoice: "en",
		},
		Log: LogConfig{
			Level:   "info",
			Dir:     filepath.Join(home, ".ziggy", "logs"),
			Console: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  "localhost:9477",
		},
	}
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configDir, err := Dir()
	if err != nil {
		return cfg, err
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return cfg, err
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("ZIGGY")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, err
		}
		// Config file not found, use defaults and create one
		if err := Save(cfg); err != nil {
			return cfg, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Save writes the configuration to file
func Save(cfg *Config) error {
	configDir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	viper.Set("wake_word", cfg.WakeWord)
	viper.Set("shutdown_phrase", cfg.ShutdownPhrase)
	viper.Set("profile", cfg.Profile)
	viper.Set("audio", cfg.Audio)
	viper.Set("speech", cfg.Speech)
	viper.Set("ai", cfg.AI)
	viper.Set("tts", cfg.TTS)
	viper.Set("log", cfg.Log)
	viper.Set("metrics", cfg.Metrics)

	return viper.WriteConfigAs(filepath.Join(configDir, "config.yaml"))
}

// Watch re-reads the config file on change and invokes onChange with the
// fresh Config. Unparseable edits are ignored and the previous config stays
// in effect.
func Watch(onChange func(*Config)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		fresh := DefaultConfig()
		if err := viper.Unmarshal(fresh); err != nil {
			return
		}
		onChange(fresh)
	})
	viper.WatchConfig()
}

// Dir returns the configuration directory path
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ziggy"), nil
}
