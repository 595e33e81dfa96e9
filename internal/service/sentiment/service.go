package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	analysis "github.com/zhouzirui/sentibot/internal/analysis/sentiment"
	"github.com/zhouzirui/sentibot/internal/model/chat"
)

// Config 控制情感分析服务的行为。
type Config struct {
	Enabled      bool
	HistoryLimit int
}

// Source 标明分数的来源。
type Source string

const (
	SourceLLM       Source = "llm"
	SourceHeuristic Source = "heuristic"
)

// Result 表示情感均值及其来源。
type Result struct {
	Average float64
	Source  Source
	Samples int
}

// Service 使用大模型对用户消息进行情感打分，模型不可用或输出异常时回退到关键词启发式规则。
type Service struct {
	enabled      bool
	classifier   compose.Runnable[map[string]any, *schema.Message]
	fallback     func(utterances []string) float64
	historyLimit int
	log          zerolog.Logger
}

// NewService 创建情感分析服务。chatModel 可重用回复生成所用的模型实例。
func NewService(ctx context.Context, chatModel model.ChatModel, cfg Config, logger zerolog.Logger) (*Service, error) {
	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 20
	}

	svc := &Service{
		enabled:      cfg.Enabled && chatModel != nil,
		fallback:     analysis.Average,
		historyLimit: historyLimit,
		log:          logger,
	}

	if !svc.enabled {
		return svc, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(sentimentSystemPrompt),
		schema.UserMessage(sentimentUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile sentiment classifier chain: %w", err)
	}

	svc.classifier = runnable
	return svc, nil
}

// Enabled 返回大模型分类器是否启用。
func (s *Service) Enabled() bool {
	return s != nil && s.enabled && s.classifier != nil
}

// Average 对历史记录中用户的提问进行打分。
func (s *Service) Average(ctx context.Context, history []chat.Exchange) Result {
	utterances := make([]string, 0, len(history))
	for _, ex := range history {
		if text := strings.TrimSpace(ex.Pregunta); text != "" {
			utterances = append(utterances, text)
		}
	}

	if !s.Enabled() || len(utterances) == 0 {
		return s.heuristic(utterances)
	}

	recent := utterances
	if len(recent) > s.historyLimit {
		recent = recent[len(recent)-s.historyLimit:]
	}

	msg, err := s.classifier.Invoke(ctx, map[string]any{"messages": formatUtterances(recent)})
	if err != nil {
		s.log.Warn().Err(err).Msg("sentiment classifier invoke failed, using heuristic")
		return s.heuristic(utterances)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return s.heuristic(utterances)
	}

	score, err := parseClassifierOutput(msg.Content)
	if err != nil {
		s.log.Warn().Err(err).Msg("sentiment classifier output unparsable, using heuristic")
		return s.heuristic(utterances)
	}
	return Result{Average: score, Source: SourceLLM, Samples: len(recent)}
}

func (s *Service) heuristic(utterances []string) Result {
	return Result{Average: s.fallback(utterances), Source: SourceHeuristic, Samples: len(utterances)}
}

// parseClassifierOutput 解析大模型返回的 JSON。
func parseClassifierOutput(content string) (float64, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return 0, fmt.Errorf("missing json object")
	}

	var payload struct {
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &payload); err != nil {
		return 0, err
	}
	if payload.Score == nil {
		return 0, fmt.Errorf("missing score field")
	}
	score := *payload.Score
	if score < 0 || score > 1 {
		return 0, fmt.Errorf("score %v out of range", score)
	}
	return score, nil
}

func formatUtterances(utterances []string) string {
	var builder strings.Builder
	for i, u := range utterances {
		fmt.Fprintf(&builder, "%d. %s", i+1, u)
		if i < len(utterances)-1 {
			builder.WriteString("\n")
		}
	}
	return builder.String()
}

const sentimentSystemPrompt = "Eres un analista de sentimiento. Lee los mensajes de un usuario y estima su sentimiento promedio. " +
	"Responde únicamente con un objeto JSON con el campo score, un número entre 0 (muy negativo) y 1 (muy positivo); 0.5 es neutral."

const sentimentUserPrompt = "Mensajes del usuario:\n{messages}\n\nDevuelve el JSON."
