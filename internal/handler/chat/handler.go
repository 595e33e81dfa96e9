package chat

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/sentibot/internal/api"
	"github.com/zhouzirui/sentibot/internal/metrics"
	"github.com/zhouzirui/sentibot/internal/model/chat"
	aiService "github.com/zhouzirui/sentibot/internal/service/ai"
	chatService "github.com/zhouzirui/sentibot/internal/service/chat"
	sentimentService "github.com/zhouzirui/sentibot/internal/service/sentiment"
	"github.com/zhouzirui/sentibot/pkg/utils"
)

// Handler 聊天服务的HTTP处理器（回复、历史记录与情感均值）
type Handler struct {
	chatSvc      *chatService.Service
	responder    *aiService.Responder
	sentimentSvc *sentimentService.Service
	log          zerolog.Logger
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, responder *aiService.Responder, sentimentSvc *sentimentService.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		chatSvc:      chatSvc,
		responder:    responder,
		sentimentSvc: sentimentSvc,
		log:          logger.With().Str("component", "chat_handler").Logger(),
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post(api.PathDetectIntent, h.handleDetectIntent)
	r.Post(api.PathChatByToken, h.handleHistory)
	r.Post(api.PathSentimentAverage, h.handleSentimentAverage)
}

// handleDetectIntent 生成回复并保存本轮问答
func (h *Handler) handleDetectIntent(w http.ResponseWriter, r *http.Request) {
	var payload api.DetectIntentRequest
	if !utils.DecodeJSON(w, r, &payload) {
		return
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}
	if payload.Token == "" {
		utils.RespondError(w, http.StatusBadRequest, "token is required")
		return
	}

	history, err := h.chatSvc.History(r.Context(), payload.Token)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	reply, intent := h.responder.Reply(r.Context(), history, text)
	source := "canned"
	if h.responder.LLMEnabled() {
		source = "llm"
	}
	metrics.IntentsDetected.WithLabelValues(string(intent), source).Inc()

	if _, err := h.chatSvc.SaveExchange(r.Context(), payload.Token, chat.Exchange{Pregunta: text, Respuesta: reply}); err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, api.DetectIntentResponse{Respuesta: reply})
}

// handleHistory 返回历史问答
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	var payload api.TokenRequest
	if !utils.DecodeJSON(w, r, &payload) {
		return
	}

	history, err := h.chatSvc.History(r.Context(), payload.Token)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, api.HistoryResponse(history))
}

// handleSentimentAverage 计算情感均值
func (h *Handler) handleSentimentAverage(w http.ResponseWriter, r *http.Request) {
	var payload api.TokenRequest
	if !utils.DecodeJSON(w, r, &payload) {
		return
	}

	history, err := h.chatSvc.History(r.Context(), payload.Token)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	result := h.sentimentSvc.Average(r.Context(), history)
	metrics.SentimentRequests.WithLabelValues(string(result.Source)).Inc()
	h.log.Debug().
		Float64("average", result.Average).
		Str("source", string(result.Source)).
		Int("samples", result.Samples).
		Msg("sentiment average computed")

	utils.RespondJSON(w, http.StatusOK, api.SentimentResponse{SentimentAverage: result.Average})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, chatService.ErrTokenRequired) {
		utils.RespondError(w, http.StatusBadRequest, "token is required")
		return
	}
	h.log.Error().Err(err).Msg("chat service failed")
	utils.RespondError(w, http.StatusInternalServerError, "internal error")
}
