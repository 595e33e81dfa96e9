package chat

import "strings"

// Sender tags where a message came from.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one bubble of a conversation. Turn links a bot reply to the
// user message that triggered it; history messages carry Turn 0.
type Message struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
	Turn   uint64 `json:"turn,omitempty"`
}

// UserMessage builds a user-authored message.
func UserMessage(text string, turn uint64) Message {
	return Message{Text: text, Sender: SenderUser, Turn: turn}
}

// BotMessage builds a bot reply.
func BotMessage(text string, turn uint64) Message {
	return Message{Text: text, Sender: SenderBot, Turn: turn}
}

// Append returns a new slice holding prior followed by msgs. prior is never
// modified, so snapshots handed out earlier stay valid.
func Append(prior []Message, msgs ...Message) []Message {
	next := make([]Message, 0, len(prior)+len(msgs))
	next = append(next, prior...)
	return append(next, msgs...)
}

// Blank reports whether text has no visible content.
func Blank(text string) bool {
	return strings.TrimSpace(text) == ""
}
