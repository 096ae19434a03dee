package session

import "strings"

// questionWords open an interrogative sentence.
var questionWords = []string{
	"what", "when", "where", "who", "whom", "whose", "why", "how", "which",
	"is", "are", "was", "were", "do", "does", "did",
	"can", "could", "would", "should", "will", "shall", "may",
}

// questionPhrases mark a question anywhere in the sentence.
var questionPhrases = []string{
	"would you like",
	"do you want",
	"should i",
	"shall i",
}

// ContainsQuestion reports whether spoken text is asking the listener
// something. Punctuation is unreliable in synthesized or transcribed text,
// so sentence-initial question words and common asking phrases count too.
func ContainsQuestion(text string) bool {
	if strings.Contains(text, "?") {
		return true
	}

	lowered := strings.ToLower(text)
	for _, phrase := range questionPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}

	for _, sentence := range splitSentences(lowered) {
		words := strings.Fields(sentence)
		if len(words) == 0 {
			continue
		}
		first := strings.Trim(words[0], `"'`)
		for _, q := range questionWords {
			if first == q {
				return true
			}
		}
	}
	return false
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
}
