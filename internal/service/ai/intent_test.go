package ai

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestDetectIntent(t *testing.T) {
	cases := map[string]Intent{
		"Hola, ¿qué tal?": IntentGreeting,
		"muchas GRACIAS":  IntentThanks,
		"bueno, adiós":    IntentFarewell,
		"adios amigo":     IntentFarewell,
		"bye":             IntentFarewell,
		"¿qué hora es?":   IntentUnknown,
		"hola y gracias":  IntentGreeting,
	}
	for text, want := range cases {
		if got := Detect(text); got != want {
			t.Fatalf("Detect(%q) = %s, want %s", text, got, want)
		}
	}
}

func TestResponderWithoutModelUsesCannedReplies(t *testing.T) {
	r, err := NewResponder(context.Background(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewResponder err: %v", err)
	}
	if r.LLMEnabled() {
		t.Fatal("expected LLM to be disabled")
	}

	reply, intent := r.Reply(context.Background(), nil, "hola")
	if intent != IntentGreeting {
		t.Fatalf("unexpected intent %s", intent)
	}
	if reply != "¡Hola! ¿Cómo puedo ayudarte? 😊" {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestUnknownIntentReply(t *testing.T) {
	if got := Intent("other").Reply(); got != IntentUnknown.Reply() {
		t.Fatalf("unexpected fallback reply %q", got)
	}
}
