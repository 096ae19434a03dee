// Package session runs the dialogue loop: wake word, utterance, routing,
// spoken response, and everything that can interrupt it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/normanking/ziggy/internal/ai"
	"github.com/normanking/ziggy/internal/audio"
	"github.com/normanking/ziggy/internal/bus"
	"github.com/normanking/ziggy/internal/command"
	"github.com/normanking/ziggy/internal/conversation"
	"github.com/normanking/ziggy/internal/metrics"
	"github.com/normanking/ziggy/internal/profile"
	"github.com/normanking/ziggy/internal/speech"
)

// Canned lines. Everything here is spoken, never printed.
const (
	msgAck        = "Yes?"
	msgNoSpeech   = "I didn't hear anything."
	msgGoodbye    = "Okay, bye!"
	msgFreshStart = "Okay, starting fresh."
	msgAIDown     = "Sorry, I'm having trouble thinking right now. Try again in a moment."
)

// errShutdown ends Run from inside a cycle.
var errShutdown = errors.New("session shutdown requested")

// Transcriber records one utterance. Satisfied by audio.Recorder.
type Transcriber interface {
	Record(ctx context.Context, mode audio.Mode, limits audio.Limits) (*audio.Result, error)
}

// WakeSource blocks until a trigger phrase is heard. Satisfied by
// speech.WakeListener.
type WakeSource interface {
	Listen(ctx context.Context, phrases ...string) (speech.Match, error)
}

// Responder speaks text aloud. Satisfied by tts.Speaker.
type Responder interface {
	Speak(ctx context.Context, text string) error
}

// Backend generates model replies. Satisfied by ai.Client.
type Backend interface {
	Chat(ctx context.Context, messages []ai.Message, maxTokens int) (string, error)
}

// Config holds the trigger phrases the session listens for.
type Config struct {
	WakeWord       string
	ShutdownPhrase string
}

// Orchestrator drives the dialogue state machine.
type Orchestrator struct {
	config   Config
	recorder Transcriber
	wake     WakeSource
	speaker  Responder
	backend  Backend
	router   *command.Router
	store    *conversation.Store
	profiles *profile.Manager
	events   *bus.EventBus
	logger   zerolog.Logger

	stateMu sync.Mutex
	state   DialogueState
}

// New wires up an Orchestrator.
func New(
	logger zerolog.Logger,
	config Config,
	recorder Transcriber,
	wake WakeSource,
	speaker Responder,
	backend Backend,
	router *command.Router,
	store *conversation.Store,
	profiles *profile.Manager,
	events *bus.EventBus,
) *Orchestrator {
	return &Orchestrator{
		config:   config,
		recorder: recorder,
		wake:     wake,
		speaker:  speaker,
		backend:  backend,
		router:   router,
		store:    store,
		profiles: profiles,
		events:   events,
		logger:   logger.With().Str("component", "session").Logger(),
		state:    StateIdle,
	}
}

// State returns the current dialogue state. It is safe to call from any
// goroutine while Run is active.
func (o *Orchestrator) State() DialogueState {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	return o.state
}

// Run blocks until the shutdown phrase is spoken or the context is
// cancelled. Cancellation is the normal signal-driven exit and returns nil.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.speak(ctx, fmt.Sprintf("Hello! Say %s when you need me.", o.config.WakeWord))

	for {
		o.setState(StateIdle)

		match, err := o.wake.Listen(ctx, o.config.WakeWord, o.config.ShutdownPhrase)
		if err != nil {
			if ctx.Err() != nil {
				o.logger.Info().Msg("Session stopped")
				return nil
			}
			return fmt.Errorf("wake listening failed: %w", err)
		}

		if match.Phrase == o.config.ShutdownPhrase {
			o.shutdown(ctx)
			return nil
		}

		metrics.WakeDetections.Inc()
		o.events.Publish(bus.Event{Type: bus.EventTypeWakeDetected, Data: map[string]any{
			"heard": match.Heard,
		}})
		o.speak(ctx, msgAck)

		mode := audio.ModeCommand
		for {
			cont, next, err := o.cycle(ctx, mode)
			if errors.Is(err, errShutdown) {
				return nil
			}
			if err != nil {
				if ctx.Err() != nil {
					o.logger.Info().Msg("Session stopped")
					return nil
				}
				return err
			}
			if !cont {
				break
			}
			mode = next
		}
	}
}

// cycle handles one utterance end to end. It reports whether to keep
// listening and in which mode.
func (o *Orchestrator) cycle(ctx context.Context, mode audio.Mode) (bool, audio.Mode, error) {
	prof := o.profiles.Current()

	limits := audio.Limits{
		SilenceTimeout: audio.CommandSilenceTimeout,
		MaxDuration:    prof.CommandMaxRecording,
	}
	if mode == audio.ModeConversational {
		limits = audio.Limits{
			SilenceTimeout: prof.ConvSilenceTimeout,
			MaxDuration:    prof.ConvMaxRecording,
		}
	}

	o.setState(StateListening)
	result, err := o.recorder.Record(ctx, mode, limits)
	if err != nil {
		if errors.Is(err, audio.ErrNoUtterance) {
			metrics.EmptyRecordings.Inc()
			o.events.Publish(bus.Event{Type: bus.EventTypeNoUtterance})
			o.speak(ctx, msgNoSpeech)
			return false, mode, nil
		}
		return false, mode, err
	}

	metrics.Utterances.WithLabelValues(string(mode)).Inc()
	o.events.Publish(bus.Event{Type: bus.EventTypeUtterance, Data: map[string]any{
		"transcript": result.Transcript,
		"mode":       string(mode),
	}})
	o.logger.Info().Str("transcript", result.Transcript).Str("mode", string(mode)).Msg("Heard utterance")

	o.setState(StateRouting)
	history := o.store.Recent(prof.MaxHistoryTurns)
	action := o.router.Route(result.Transcript, history, prof)
	metrics.RoutedActions.WithLabelValues(string(action.Kind)).Inc()

	var reply string
	switch action.Kind {
	case command.ActionShutdown:
		o.shutdown(ctx)
		return false, mode, errShutdown

	case command.ActionConversationReset:
		o.store.Clear()
		o.events.Publish(bus.Event{Type: bus.EventTypeHistoryReset})
		reply = msgFreshStart

	case command.ActionProfileSwitch:
		reply = o.switchProfile(action.ProfileName)

	case command.ActionStatusQuery:
		reply = o.statusLine(prof)

	case command.ActionLocalAnswer:
		o.appendTurn(conversation.RoleUser, result.Transcript)
		o.appendTurn(conversation.RoleAssistant, action.Answer)
		reply = action.Answer

	case command.ActionAIQuery:
		o.appendTurn(conversation.RoleUser, result.Transcript)
		o.events.Publish(bus.Event{Type: bus.EventTypeAIQuery, Data: map[string]any{
			"transcript": result.Transcript,
		}})

		text, err := o.backend.Chat(ctx, action.Prompt, prof.ResponseTokenCap)
		if err != nil {
			if ctx.Err() != nil {
				return false, mode, err
			}
			metrics.AIFailures.Inc()
			o.events.Publish(bus.Event{Type: bus.EventTypeAIError, Data: map[string]any{
				"error": err.Error(),
			}})
			o.logger.Error().Err(err).Msg("Model request failed")
			o.speak(ctx, msgAIDown)
			return false, mode, nil
		}
		o.appendTurn(conversation.RoleAssistant, text)
		reply = text
	}

	barged, err := o.respond(ctx, reply)
	if err != nil {
		return false, mode, err
	}
	if barged {
		// The user cut in; take a fresh command immediately.
		return true, audio.ModeCommand, nil
	}
	if ContainsQuestion(reply) {
		// The reply asks something back, so stay in the exchange and give
		// the user the longer conversational pause.
		return true, audio.ModeConversational, nil
	}
	return false, mode, nil
}

// respond speaks the reply while watching for the wake word. Whichever
// finishes first cancels the other; on barge-in the audio is confirmed
// stopped before recording starts, so the assistant never hears itself.
func (o *Orchestrator) respond(ctx context.Context, text string) (bool, error) {
	if text == "" {
		return false, nil
	}

	o.setState(StateResponding)
	o.events.Publish(bus.Event{Type: bus.EventTypeTTSStarted, Data: map[string]any{
		"text": text,
	}})

	playCtx, cancelPlay := context.WithCancel(ctx)
	defer cancelPlay()
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()

	playDone := make(chan error, 1)
	go func() {
		playDone <- o.speaker.Speak(playCtx, text)
	}()

	// The watcher resets the shared recognizer on its way out, so the next
	// listening phase must not start until watchDone is closed.
	bargeCh := make(chan speech.Match, 1)
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		match, err := o.wake.Listen(watchCtx, o.config.WakeWord)
		if err == nil {
			bargeCh <- match
		}
	}()

	select {
	case err := <-playDone:
		cancelWatch()
		<-watchDone
		if err != nil && ctx.Err() == nil {
			o.events.Publish(bus.Event{Type: bus.EventTypeTTSError, Data: map[string]any{
				"error": err.Error(),
			}})
			o.logger.Error().Err(err).Msg("Failed to speak response")
		}
		return false, ctx.Err()

	case match := <-bargeCh:
		cancelPlay()
		<-playDone
		<-watchDone
		metrics.BargeIns.Inc()
		o.events.Publish(bus.Event{Type: bus.EventTypeBargeIn, Data: map[string]any{
			"heard": match.Heard,
		}})
		o.logger.Info().Str("heard", match.Heard).Msg("Response interrupted")
		return true, nil

	case <-ctx.Done():
		cancelPlay()
		cancelWatch()
		<-playDone
		<-watchDone
		return false, ctx.Err()
	}
}

func (o *Orchestrator) switchProfile(name string) string {
	p, err := o.profiles.Switch(name)
	if err != nil {
		o.events.Publish(bus.Event{Type: bus.EventTypeProfileRejected, Data: map[string]any{
			"name": name,
		}})
		return fmt.Sprintf("I don't know a profile called %s.", name)
	}
	o.events.Publish(bus.Event{Type: bus.EventTypeProfileSwitched, Data: map[string]any{
		"profile": string(p.ID),
	}})
	return fmt.Sprintf("Switched to the %s profile.", p.Name)
}

func (o *Orchestrator) statusLine(prof profile.Profile) string {
	turns := o.store.Len()
	switch turns {
	case 0:
		return fmt.Sprintf("I'm running the %s profile with no conversation history.", prof.Name)
	case 1:
		return fmt.Sprintf("I'm running the %s profile and remembering 1 turn.", prof.Name)
	default:
		return fmt.Sprintf("I'm running the %s profile and remembering %d turns.", prof.Name, turns)
	}
}

func (o *Orchestrator) appendTurn(role conversation.Role, text string) {
	if expired := o.store.Append(role, text); expired {
		metrics.HistoryExpirations.Inc()
		o.events.Publish(bus.Event{Type: bus.EventTypeHistoryExpired})
	}
}

func (o *Orchestrator) shutdown(ctx context.Context) {
	o.events.Publish(bus.Event{Type: bus.EventTypeShutdown})
	o.speak(ctx, msgGoodbye)
	o.logger.Info().Msg("Session shut down by voice")
}

// speak plays a line without the barge-in watcher. Prompt lines are short,
// and a failed prompt should never take the session down.
func (o *Orchestrator) speak(ctx context.Context, text string) {
	if err := o.speaker.Speak(ctx, text); err != nil && ctx.Err() == nil {
		o.logger.Error().Err(err).Str("text", text).Msg("Failed to speak")
	}
}

func (o *Orchestrator) setState(next DialogueState) {
	o.stateMu.Lock()
	if o.state == next {
		o.stateMu.Unlock()
		return
	}
	prev := o.state
	o.state = next
	o.stateMu.Unlock()
	metrics.StateTransitions.WithLabelValues(string(prev), string(next)).Inc()
	o.events.Publish(bus.Event{Type: bus.EventTypeStateChanged, Data: map[string]any{
		"from": string(prev),
		"to":   string(next),
	}})
	o.logger.Debug().Str("from", string(prev)).Str("to", string(next)).Msg("State changed")
}
