package audio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// CommandSilenceTimeout bounds the pause that ends a command-mode utterance.
// Conversational mode draws its (longer) timeout from the active profile.
const CommandSilenceTimeout = 1500 * time.Millisecond

// Recorder owns one recording session at a time: it drives captured frames
// through the Detector until end-of-utterance or forced-stop, then asks the
// recognizer for the final transcript.
type Recorder struct {
	source Source
	engine Recognizer
	logger zerolog.Logger
}

// NewRecorder creates a Recorder over the given capture source and recognizer
func NewRecorder(source Source, engine Recognizer, logger zerolog.Logger) *Recorder {
	return &Recorder{
		source: source,
		engine: engine,
		logger: logger.With().Str("component", "recorder").Logger(),
	}
}

// Record captures one utterance under the given limits. It returns
// ErrNoUtterance when the session ends without any detected speech, or when
// the recognizer produces an empty transcript, so callers can re-prompt
// instead of misreading silence as a command.
func (r *Recorder) Record(ctx context.Context, mode Mode, limits Limits) (*Result, error) {
	// Hard deadline slightly past the cap so a stalled source cannot hang
	// the session.
	ctx, cancel := context.WithTimeout(ctx, limits.MaxDuration+2*time.Second)
	defer cancel()

	det := NewDetector(limits)
	start := time.Now()

	r.logger.Debug().
		Str("mode", string(mode)).
		Dur("silenceTimeout", limits.SilenceTimeout).
		Dur("maxDuration", limits.MaxDuration).
		Msg("Recording started")

	for {
		frame, err := r.source.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				if det.SawSpeech() {
					// Cancelled after speech was heard; salvage what we have.
					return r.finalize(context.Background(), det, StopForced, start)
				}
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
		}

		sig, err := r.engine.Feed(ctx, frame.Data)
		if err != nil {
			return nil, fmt.Errorf("speech engine rejected frame: %w", err)
		}

		_, event := det.Observe(frame, sig)
		switch event {
		case EventEndOfUtterance:
			return r.finalize(ctx, det, StopEndOfUtterance, start)
		case EventForcedStop:
			if !det.SawSpeech() {
				r.logger.Debug().Dur("elapsed", det.Elapsed()).Msg("Recording timed out with no speech")
				return nil, ErrNoUtterance
			}
			return r.finalize(ctx, det, StopForced, start)
		}
	}
}

func (r *Recorder) finalize(ctx context.Context, det *Detector, reason StopReason, start time.Time) (*Result, error) {
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	finalCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	text, err := r.engine.Finalize(finalCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize transcript: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoUtterance
	}

	elapsed := time.Since(start)
	r.logger.Debug().
		Str("reason", string(reason)).
		Dur("elapsed", elapsed).
		Str("transcript", text).
		Msg("Recording finalized")

	return &Result{
		Transcript: text,
		Reason:     reason,
		Elapsed:    elapsed,
	}, nil
}
