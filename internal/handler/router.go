package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/sentibot/internal/handler/account"
	"github.com/zhouzirui/sentibot/internal/handler/chat"
	"github.com/zhouzirui/sentibot/internal/handler/middleware"
	accountService "github.com/zhouzirui/sentibot/internal/service/account"
	aiService "github.com/zhouzirui/sentibot/internal/service/ai"
	chatService "github.com/zhouzirui/sentibot/internal/service/chat"
	sentimentService "github.com/zhouzirui/sentibot/internal/service/sentiment"
	"github.com/zhouzirui/sentibot/pkg/utils"
)

// Services groups the backends the router dispatches to.
type Services struct {
	Accounts  *accountService.Service
	Chat      *chatService.Service
	Responder *aiService.Responder
	Sentiment *sentimentService.Service
}

// NewRouter wires HTTP routes to core services.
func NewRouter(logger zerolog.Logger, svc Services) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Metrics)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"llm":       svc.Responder.LLMEnabled(),
			"users":     svc.Accounts.Count(),
			"exchanges": svc.Chat.Total(),
		})
	})

	chat.New(svc.Chat, svc.Responder, svc.Sentiment, logger).RegisterRoutes(r)
	account.New(svc.Accounts, logger).RegisterRoutes(r)

	return r
}
