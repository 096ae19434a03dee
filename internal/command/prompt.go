package command

import (
	"github.com/normanking/ziggy/internal/ai"
	"github.com/normanking/ziggy/internal/conversation"
	"github.com/normanking/ziggy/internal/profile"
)

// systemPrompt frames every model request. Responses are spoken aloud, so
// the model is steered away from markdown and long enumerations.
const systemPrompt = "You are Ziggy, a friendly voice assistant. " +
	"Your answers are spoken aloud, so keep them short, conversational, and free of markdown, " +
	"lists, and code. If you need to ask a clarifying question, ask exactly one."

// estimateTokens approximates the token count of a string. Four characters
// per token is the usual rule of thumb for English text.
func estimateTokens(s string) int {
	return (len(s) + 3) / 4
}

// BuildPrompt assembles the model messages for an utterance: system prompt,
// as much recent history as the profile's context window allows, then the
// utterance itself. History is admitted newest-first so that when the budget
// runs out, it is the oldest turns that fall away.
func BuildPrompt(utterance string, history []conversation.Turn, prof profile.Profile) []ai.Message {
	budget := prof.MaxContextTokens - prof.ResponseTokenCap
	budget -= estimateTokens(systemPrompt)
	budget -= estimateTokens(utterance)

	included := 0
	for i := len(history) - 1; i >= 0; i-- {
		cost := estimateTokens(history[i].Text)
		if cost > budget {
			break
		}
		budget -= cost
		included++
	}

	messages := make([]ai.Message, 0, included+2)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: systemPrompt})
	for _, turn := range history[len(history)-included:] {
		role := ai.RoleUser
		if turn.Role == conversation.RoleAssistant {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Content: turn.Text})
	}
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: utterance})

	return messages
}
