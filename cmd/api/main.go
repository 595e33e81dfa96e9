package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/sentibot/internal/config"
	"github.com/zhouzirui/sentibot/internal/handler"
	"github.com/zhouzirui/sentibot/internal/logging"
	"github.com/zhouzirui/sentibot/internal/service/account"
	"github.com/zhouzirui/sentibot/internal/service/ai"
	"github.com/zhouzirui/sentibot/internal/service/chat"
	"github.com/zhouzirui/sentibot/internal/service/sentiment"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New(os.Stderr, "info", false)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.JSON)
	if envErr != nil {
		logger.Debug().Err(envErr).Msg("no .env file, using process environment only")
	}

	router := buildRouter(ctx, cfg, logger)

	if err := runServer(ctx, logger, cfg.Server, router); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

// buildRouter 初始化各项服务并挂载路由；大模型不可用时退回到预设回复。
func buildRouter(ctx context.Context, cfg *config.Config, logger zerolog.Logger) http.Handler {
	var chatModel model.ChatModel
	if cfg.AI.Enabled() {
		var err error
		chatModel, err = cfg.AI.NewChatModel(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialize chat model, continuing with canned replies")
			chatModel = nil
		} else {
			logger.Info().Str("model", cfg.AI.Model).Msg("chat model initialized")
		}
	} else {
		logger.Info().Msg("ark credentials not configured, using canned replies")
	}

	responder, err := ai.NewResponder(ctx, chatModel, logger.With().Str("component", "responder").Logger())
	if err != nil {
		logger.Warn().Err(err).Msg("failed to compile reply chain, using canned replies")
		responder, _ = ai.NewResponder(ctx, nil, logger)
	}

	sentimentCfg := sentiment.Config{
		Enabled:      cfg.AI.SentimentLLMEnabled,
		HistoryLimit: cfg.AI.SentimentHistoryLimit,
	}
	sentimentSvc, err := sentiment.NewService(ctx, responder.ChatModel(), sentimentCfg, logger.With().Str("component", "sentiment").Logger())
	if err != nil {
		logger.Warn().Err(err).Msg("failed to compile sentiment classifier, using heuristic")
		sentimentSvc, _ = sentiment.NewService(ctx, nil, sentiment.Config{}, logger)
	} else if sentimentSvc.Enabled() {
		logger.Info().Msg("sentiment classifier enabled")
	} else if sentimentCfg.Enabled {
		logger.Info().Msg("sentiment classifier requested but chat model unavailable, using heuristic")
	}

	return handler.NewRouter(logger, handler.Services{
		Accounts:  account.NewService(cfg.Account.BcryptCost),
		Chat:      chat.NewService(),
		Responder: responder,
		Sentiment: sentimentSvc,
	})
}

func runServer(ctx context.Context, logger zerolog.Logger, serverCfg config.ServerConfig, router http.Handler) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", serverCfg.Addr).Msg("sentibot backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer cancel()
		logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
