// Package command decides what to do with a transcribed utterance: answer it
// locally, treat it as a control command, or send it to the model.
package command

import (
	"github.com/normanking/ziggy/internal/ai"
)

// ActionKind classifies the outcome of routing an utterance.
type ActionKind string

const (
	// ActionLocalAnswer carries a reply computed without the model.
	ActionLocalAnswer ActionKind = "local_answer"

	// ActionProfileSwitch asks for the named resource profile.
	ActionProfileSwitch ActionKind = "profile_switch"

	// ActionConversationReset clears the dialogue history.
	ActionConversationReset ActionKind = "conversation_reset"

	// ActionStatusQuery asks for the assistant's runtime status.
	ActionStatusQuery ActionKind = "status_query"

	// ActionShutdown ends the session.
	ActionShutdown ActionKind = "shutdown"

	// ActionAIQuery carries a prompt for the model.
	ActionAIQuery ActionKind = "ai_query"
)

// Action is the routed form of one utterance.
type Action struct {
	Kind        ActionKind
	Answer      string       // set for ActionLocalAnswer
	ProfileName string       // set for ActionProfileSwitch
	Prompt      []ai.Message // set for ActionAIQuery
}
