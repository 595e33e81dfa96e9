package chat

import "time"

// Exchange is one question/answer pair as stored by the backend.
type Exchange struct {
	Pregunta  string `json:"pregunta"`
	Respuesta string `json:"respuesta"`
}

// Flatten expands history pairs into user/bot messages, keeping pair order.
func Flatten(history []Exchange) []Message {
	messages := make([]Message, 0, len(history)*2)
	for _, ex := range history {
		messages = append(messages,
			UserMessage(ex.Pregunta, 0),
			BotMessage(ex.Respuesta, 0),
		)
	}
	return messages
}

// Record is a stored exchange with its server-side identity.
type Record struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Exchange  Exchange  `json:"exchange"`
	CreatedAt time.Time `json:"createdAt"`
}
