package session

// DialogueState is where the session currently is in its cycle.
type DialogueState string

const (
	// StateIdle means the assistant is waiting for the wake word.
	StateIdle DialogueState = "idle"

	// StateListening means an utterance is being recorded.
	StateListening DialogueState = "listening"

	// StateRouting means a transcript is being classified and, if needed,
	// sent to the model.
	StateRouting DialogueState = "routing"

	// StateResponding means a reply is being spoken.
	StateResponding DialogueState = "responding"
)
