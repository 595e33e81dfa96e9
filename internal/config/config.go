package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Account AccountConfig
	Log     LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	account, err := loadAccountConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Account: account, Log: loadLogConfig()}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	shutdown := 10 * time.Second
	if seconds, err := parseOptionalIntEnv("SHUTDOWN_TIMEOUT"); err != nil {
		return ServerConfig{}, err
	} else if seconds != nil && *seconds > 0 {
		shutdown = time.Duration(*seconds) * time.Second
	}

	if strings.Contains(port, ":") {
		// 允许直接传入 ":8080" 或 "127.0.0.1:8080"
		return ServerConfig{Addr: port, ShutdownTimeout: shutdown}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, ShutdownTimeout: shutdown}, nil
}

// AIConfig 描述大模型相关配置，回复与情感分析共用。
type AIConfig struct {
	APIKey                string
	AccessKey             string
	SecretKey             string
	Model                 string
	BaseURL               string
	Region                string
	Temperature           *float64
	TopP                  *float64
	MaxTokens             *int
	SentimentLLMEnabled   bool
	SentimentHistoryLimit int
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY and Model, or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	sentimentEnabled, err := parseBoolEnv("AI_SENTIMENT_LLM_ENABLED", false)
	if err != nil {
		return AIConfig{}, err
	}

	historyLimit := 20
	if override, err := parseOptionalIntEnv("AI_SENTIMENT_HISTORY_LIMIT"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		historyLimit = max(*override, 1)
	}

	return AIConfig{
		APIKey:                strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:             strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:             strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:                 strings.TrimSpace(os.Getenv("Model")),
		BaseURL:               getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:                getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:           temperature,
		TopP:                  topP,
		MaxTokens:             maxTokens,
		SentimentLLMEnabled:   sentimentEnabled,
		SentimentHistoryLimit: historyLimit,
	}, nil
}

// AccountConfig 描述账号服务配置。
type AccountConfig struct {
	BcryptCost int
}

func loadAccountConfig() (AccountConfig, error) {
	cost, err := parseOptionalIntEnv("ACCOUNT_BCRYPT_COST")
	if err != nil {
		return AccountConfig{}, err
	}
	if cost == nil {
		return AccountConfig{}, nil
	}
	return AccountConfig{BcryptCost: *cost}, nil
}

// LogConfig 控制日志级别与输出格式。
type LogConfig struct {
	Level string
	JSON  bool
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level: getEnvOrDefault("LOG_LEVEL", "info"),
		JSON:  strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_FORMAT")), "json"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
