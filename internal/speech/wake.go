package speech

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/ziggy/internal/audio"
)

// StreamRecognizer is the recognizer surface the wake listener needs: the
// per-frame feed plus the ability to discard a partially heard stream.
type StreamRecognizer interface {
	audio.Recognizer
	Reset(ctx context.Context) error
}

// WakeListener scans a continuous audio stream for trigger phrases. It is
// used both to gate the idle state on the wake word and to watch for
// interruptions while a response is being spoken.
type WakeListener struct {
	source audio.Source
	engine StreamRecognizer
	logger zerolog.Logger
}

// NewWakeListener creates a listener over the given capture source.
func NewWakeListener(source audio.Source, engine StreamRecognizer, logger zerolog.Logger) *WakeListener {
	return &WakeListener{
		source: source,
		engine: engine,
		logger: logger.With().Str("component", "wake").Logger(),
	}
}

// Listen blocks until one of the given phrases is heard or the context is
// cancelled. Phrases are matched case-insensitively as whole substrings of
// the recognizer's hypotheses. The recognizer is reset on every exit path so
// idle chatter never leaks into the next recording.
func (w *WakeListener) Listen(ctx context.Context, phrases ...string) (Match, error) {
	lowered := make([]string, len(phrases))
	for i, p := range phrases {
		lowered[i] = strings.ToLower(strings.TrimSpace(p))
	}

	defer func() {
		resetCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := w.engine.Reset(resetCtx); err != nil {
			w.logger.Debug().Err(err).Msg("Failed to reset recognizer after listen")
		}
	}()

	for {
		frame, err := w.source.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return Match{}, ctx.Err()
			}
			return Match{}, fmt.Errorf("%w: %v", audio.ErrCaptureFailed, err)
		}

		sig, err := w.engine.Feed(ctx, frame.Data)
		if err != nil {
			return Match{}, fmt.Errorf("speech engine rejected frame: %w", err)
		}

		if sig.Partial != "" {
			if phrase, ok := matchPhrase(sig.Partial, lowered); ok {
				w.logger.Info().Str("phrase", phrase).Str("heard", sig.Partial).Msg("Trigger phrase detected")
				return Match{Phrase: phrase, Heard: sig.Partial, At: time.Now()}, nil
			}
			continue
		}

		if sig.Speech {
			// A segment just completed without the phrase showing up in
			// any partial. Flush it, scan the full text once, and start
			// the stream over so idle speech cannot pile up.
			text, err := w.engine.Finalize(ctx)
			if err != nil {
				return Match{}, fmt.Errorf("failed to flush completed segment: %w", err)
			}
			if phrase, ok := matchPhrase(text, lowered); ok {
				w.logger.Info().Str("phrase", phrase).Str("heard", text).Msg("Trigger phrase detected")
				return Match{Phrase: phrase, Heard: text, At: time.Now()}, nil
			}
		}
	}
}

func matchPhrase(heard string, phrases []string) (string, bool) {
	lowered := strings.ToLower(heard)
	for _, p := range phrases {
		if p != "" && strings.Contains(lowered, p) {
			return p, true
		}
	}
	return "", false
}
