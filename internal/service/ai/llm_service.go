package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/sentibot/internal/model/chat"
)

const historyLimit = 10

const systemPrompt = "Eres un asistente conversacional amable que responde en español, con frases breves y cálidas. " +
	"Si el usuario expresa emociones, reconócelas antes de responder. No inventes datos personales del usuario."

// Responder produces the bot answer for one user utterance.
type Responder struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
	log       zerolog.Logger
}

// NewResponder compiles the LLM chain when chatModel is set; otherwise the
// responder answers from the canned intent rules.
func NewResponder(ctx context.Context, chatModel model.ChatModel, logger zerolog.Logger) (*Responder, error) {
	r := &Responder{chatModel: chatModel, log: logger}
	if chatModel == nil {
		return r, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile reply chain: %w", err)
	}
	r.chain = runnable
	return r, nil
}

// LLMEnabled reports whether replies come from the language model.
func (r *Responder) LLMEnabled() bool {
	return r != nil && r.chain != nil
}

// ChatModel 返回底层的聊天模型，供其他服务复用
func (r *Responder) ChatModel() model.ChatModel {
	return r.chatModel
}

// Reply answers text given the prior exchanges. LLM failures fall back to
// the canned rules so the caller always gets an answer.
func (r *Responder) Reply(ctx context.Context, history []chat.Exchange, text string) (string, Intent) {
	intent := Detect(text)
	if !r.LLMEnabled() {
		return intent.Reply(), intent
	}

	input := map[string]any{
		"system":  systemPrompt,
		"history": buildHistoryMessages(history),
		"query":   text,
	}

	msg, err := r.chain.Invoke(ctx, input)
	if err != nil {
		r.log.Warn().Err(err).Msg("reply chain failed, using canned reply")
		return intent.Reply(), intent
	}
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return intent.Reply(), intent
	}
	return content, intent
}

func buildHistoryMessages(history []chat.Exchange) []*schema.Message {
	if len(history) == 0 {
		return nil
	}

	start := 0
	if len(history) > historyLimit {
		start = len(history) - historyLimit
	}

	messages := make([]*schema.Message, 0, 2*(len(history)-start))
	for _, ex := range history[start:] {
		messages = append(messages,
			schema.UserMessage(ex.Pregunta),
			schema.AssistantMessage(ex.Respuesta, nil),
		)
	}
	return messages
}
