package command

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/ziggy/internal/conversation"
	"github.com/normanking/ziggy/internal/profile"
)

// resetPhrases clear the conversation history.
var resetPhrases = []string{
	"new conversation",
	"start over",
	"clear history",
	"fresh start",
}

// statusPhrases ask for the runtime status report.
var statusPhrases = []string{
	"system status",
	"what profile",
	"which profile",
	"current profile",
	"status report",
}

// strongProfileTriggers mark an explicit switch request even when the named
// profile is unknown, so a bad name gets rejected aloud instead of being
// sent to the model.
var strongProfileTriggers = []string{
	"switch to",
	"change to",
	"set profile",
}

// Router classifies utterances. Control phrases win over local handlers,
// local handlers win over the model, so "what time is it" never burns a
// model round-trip and "new conversation" is never misread as small talk.
type Router struct {
	shutdownPhrase string
	logger         zerolog.Logger
	clock          func() time.Time
}

// NewRouter creates a Router. shutdownPhrase ends the session when spoken.
func NewRouter(logger zerolog.Logger, shutdownPhrase string) *Router {
	return &Router{
		shutdownPhrase: strings.ToLower(strings.TrimSpace(shutdownPhrase)),
		logger:         logger.With().Str("component", "router").Logger(),
		clock:          time.Now,
	}
}

// Route decides what to do with an utterance. The history and active profile
// shape the prompt when the utterance goes to the model.
func (r *Router) Route(utterance string, history []conversation.Turn, prof profile.Profile) Action {
	text := strings.ToLower(strings.TrimSpace(utterance))

	if r.shutdownPhrase != "" && strings.Contains(text, r.shutdownPhrase) {
		r.logger.Info().Msg("Shutdown phrase spoken")
		return Action{Kind: ActionShutdown}
	}

	for _, phrase := range resetPhrases {
		if strings.Contains(text, phrase) {
			r.logger.Info().Str("phrase", phrase).Msg("Conversation reset requested")
			return Action{Kind: ActionConversationReset}
		}
	}

	if name, ok := profileRequest(text); ok {
		r.logger.Info().Str("profile", name).Msg("Profile switch requested")
		return Action{Kind: ActionProfileSwitch, ProfileName: name}
	}

	for _, phrase := range statusPhrases {
		if strings.Contains(text, phrase) {
			return Action{Kind: ActionStatusQuery}
		}
	}

	if answer, ok := r.localAnswer(text); ok {
		r.logger.Debug().Str("answer", answer).Msg("Answered locally")
		return Action{Kind: ActionLocalAnswer, Answer: answer}
	}

	return Action{
		Kind:   ActionAIQuery,
		Prompt: BuildPrompt(utterance, history, prof),
	}
}

func (r *Router) localAnswer(text string) (string, bool) {
	// Math first: "3 times 5" must not be mistaken for a time question.
	if answer, ok := handleMath(text); ok {
		return answer, true
	}
	if answer, ok := handleConversion(text); ok {
		return answer, true
	}
	if answer, ok := handleTime(text, r.clock()); ok {
		return answer, true
	}
	if answer, ok := handleDate(text, r.clock()); ok {
		return answer, true
	}
	return "", false
}

// profileRequest detects "switch to gaming mode" style utterances.
func profileRequest(text string) (string, bool) {
	strong := false
	for _, t := range strongProfileTriggers {
		if strings.Contains(text, t) {
			strong = true
			break
		}
	}
	weak := strings.Contains(text, "mode") || strings.Contains(text, "profile")
	if !strong && !weak {
		return "", false
	}

	words := strings.Fields(text)
	for _, word := range words {
		if _, err := profile.Resolve(word); err == nil {
			return word, true
		}
	}

	if strong && len(words) >= 2 {
		// "switch to turbo mode": no known alias, but the intent is
		// unmistakable. Surface the bad name for rejection.
		candidate := words[len(words)-1]
		if candidate == "mode" || candidate == "profile" {
			candidate = words[len(words)-2]
		}
		if candidate != "to" && candidate != "mode" && candidate != "profile" {
			return candidate, true
		}
	}
	return "", false
}
