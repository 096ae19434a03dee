package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/normanking/ziggy/internal/ai"
	"github.com/normanking/ziggy/internal/audio"
	"github.com/normanking/ziggy/internal/bus"
	"github.com/normanking/ziggy/internal/command"
	"github.com/normanking/ziggy/internal/config"
	"github.com/normanking/ziggy/internal/conversation"
	"github.com/normanking/ziggy/internal/health"
	"github.com/normanking/ziggy/internal/hw"
	"github.com/normanking/ziggy/internal/logging"
	"github.com/normanking/ziggy/internal/profile"
	"github.com/normanking/ziggy/internal/session"
	"github.com/normanking/ziggy/internal/speech"
	"github.com/normanking/ziggy/internal/tts"
)

var rootCmd = &cobra.Command{
	Use:   "ziggy",
	Short: "ziggy - local voice assistant",
	RunE:  runAssistant,
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List resource profiles",
	RunE:  runProfiles,
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio capture devices",
	RunE:  runDevices,
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the local services the assistant depends on",
	RunE:  runDoctor,
}

var profileFlag string

func init() {
	rootCmd.Flags().StringVar(&profileFlag, "profile", "", "Resource profile to start on (overrides config)")
	rootCmd.AddCommand(profilesCmd, devicesCmd, doctorCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAssistant(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logCloser, err := logging.New(&logging.Config{
		LogDir:  cfg.Log.Dir,
		Level:   cfg.Log.Level,
		Console: cfg.Log.Console,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profiles, err := pickProfile(ctx, logger, cfg)
	if err != nil {
		return err
	}

	events := bus.NewEventBus()
	events.SubscribeMultiple(bus.Types(), func(ev bus.Event) {
		logger.Debug().Str("event", string(ev.Type)).Fields(ev.Data).Msg("Bus event")
	})

	source := audio.NewArecordSource(&audio.CaptureConfig{
		Device:     cfg.Audio.InputDevice,
		SampleRate: cfg.Audio.SampleRate,
		FrameDur:   cfg.Audio.FrameDur,
	}, logger)
	defer source.Close()

	engine := speech.NewEngine(logger, &speech.Config{
		ServerURL:   cfg.Speech.ServerURL,
		SampleRate:  cfg.Audio.SampleRate,
		DialTimeout: cfg.Speech.DialTimeout,
		ReadTimeout: cfg.Speech.ReadTimeout,
	})
	if err := engine.Connect(ctx); err != nil {
		return fmt.Errorf("connect recognition server: %w", err)
	}
	defer engine.Close()

	recorder := audio.NewRecorder(source, engine, logger)
	wake := speech.NewWakeListener(source, engine, logger)

	ttsCfg := &tts.Config{
		PiperBinary: cfg.TTS.PiperBinary,
		PiperModel:  cfg.TTS.PiperModel,
		EspeakSpeed: cfg.TTS.EspeakSpeed,
		EspeakVoice: cfg.TTS.EspeakVoice,
	}
	speaker := tts.NewSpeaker(logger,
		tts.NewPiperProvider(logger, ttsCfg),
		tts.NewEspeakProvider(logger, ttsCfg),
	)

	backend := ai.NewClient(logger, &ai.Config{
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	})
	if !backend.IsAvailable(ctx) {
		logger.Warn().Str("url", cfg.AI.BaseURL).Msg("Model server not reachable; answers will be limited until it comes up")
	}

	store := conversation.NewStore(logger, func() int {
		return profiles.Current().MaxHistoryTurns
	})
	router := command.NewRouter(logger, cfg.ShutdownPhrase)

	if cfg.Metrics.Enabled {
		go serveMetrics(logger, cfg.Metrics.Listen)
	}

	// A config edit can retarget the profile without a restart; everything
	// else requires one.
	config.Watch(func(fresh *config.Config) {
		if fresh.Profile == "" || fresh.Profile == "auto" {
			return
		}
		if _, err := profiles.Switch(fresh.Profile); err != nil {
			logger.Warn().Err(err).Str("profile", fresh.Profile).Msg("Ignoring profile from config change")
		}
	})

	orch := session.New(
		logger,
		session.Config{
			WakeWord:       cfg.WakeWord,
			ShutdownPhrase: cfg.ShutdownPhrase,
		},
		recorder,
		wake,
		speaker,
		backend,
		router,
		store,
		profiles,
		events,
	)

	logger.Info().
		Str("wakeWord", cfg.WakeWord).
		Str("profile", string(profiles.Current().ID)).
		Msg("Assistant starting")

	return orch.Run(ctx)
}

// pickProfile resolves the starting profile: an explicit flag wins, then the
// config, then a hardware probe.
func pickProfile(ctx context.Context, logger zerolog.Logger, cfg *config.Config) (*profile.Manager, error) {
	name := cfg.Profile
	if profileFlag != "" {
		name = profileFlag
	}

	if name == "" || name == "auto" {
		memoryMB := hw.DetectMemoryMB(ctx, logger)
		id := hw.SuggestProfile(memoryMB)
		logger.Info().Int("memoryMB", memoryMB).Str("profile", string(id)).Msg("Profile chosen from hardware")
		return profile.NewManager(logger, profile.Get(id)), nil
	}

	p, err := profile.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", name, err)
	}
	return profile.NewManager(logger, p), nil
}

func serveMetrics(logger zerolog.Logger, listen string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info().Str("listen", listen).Msg("Metrics endpoint up")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("Metrics endpoint failed")
	}
}

func runDevices(cmd *cobra.Command, args []string) error {
	devices, err := audio.ListCaptureDevices(cmd.Context())
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Println("No capture devices found.")
		return nil
	}
	for _, d := range devices {
		fmt.Printf("%-10s %s\n", d.ID, d.Name)
	}
	return nil
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	checker := health.NewChecker(zerolog.Nop(), &health.Config{
		SpeechServerURL: cfg.Speech.ServerURL,
		AIBaseURL:       cfg.AI.BaseURL,
		Timeout:         2 * time.Second,
	})

	healthy := true
	for _, report := range checker.Check(cmd.Context()) {
		mark := "ok"
		if report.Status != health.StatusOK {
			mark = string(report.Status)
			healthy = false
		}
		fmt.Printf("%-20s %-8s %s\n", report.Name, mark, report.Detail)
	}
	if !healthy {
		return fmt.Errorf("some dependencies are not ready")
	}
	return nil
}

func runProfiles(cmd *cobra.Command, args []string) error {
	for _, p := range profile.All() {
		fmt.Printf("%-12s context=%d tokens  history=%d turns  response=%d tokens  pause=%s  recording=%s/%s\n",
			p.Name,
			p.MaxContextTokens,
			p.MaxHistoryTurns,
			p.ResponseTokenCap,
			p.ConvSilenceTimeout,
			p.CommandMaxRecording,
			p.ConvMaxRecording,
		)
	}
	return nil
}
