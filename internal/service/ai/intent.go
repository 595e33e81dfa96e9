package ai

import "strings"

// Intent is the coarse meaning detected in a user utterance.
type Intent string

const (
	IntentGreeting Intent = "greeting"
	IntentThanks   Intent = "thanks"
	IntentFarewell Intent = "farewell"
	IntentUnknown  Intent = "unknown"
)

var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentGreeting, []string{"hola"}},
	{IntentThanks, []string{"gracias"}},
	{IntentFarewell, []string{"adiós", "adios", "bye"}},
}

var cannedReplies = map[Intent]string{
	IntentGreeting: "¡Hola! ¿Cómo puedo ayudarte? 😊",
	IntentThanks:   "¡De nada! Siempre estoy aquí para ayudarte. 🙌",
	IntentFarewell: "¡Adiós! Que tengas un gran día. 🌟",
	IntentUnknown:  "Lo siento, no entiendo tu mensaje. 🤔",
}

// Detect matches text against the keyword rules, first rule wins.
func Detect(text string) Intent {
	normalized := strings.ToLower(text)
	for _, rule := range intentKeywords {
		for _, kw := range rule.keywords {
			if strings.Contains(normalized, kw) {
				return rule.intent
			}
		}
	}
	return IntentUnknown
}

// Reply is the canned answer for the intent.
func (i Intent) Reply() string {
	if reply, ok := cannedReplies[i]; ok {
		return reply
	}
	return cannedReplies[IntentUnknown]
}
