package client

import (
	"context"

	"github.com/zhouzirui/sentibot/internal/api"
	"github.com/zhouzirui/sentibot/internal/model/chat"
)

// DetectIntent sends one user utterance and returns the bot's answer.
func (c *Client) DetectIntent(ctx context.Context, token, text string) (string, error) {
	var resp api.DetectIntentResponse
	if err := c.post(ctx, api.PathDetectIntent, api.DetectIntentRequest{Text: text, Token: token}, &resp); err != nil {
		return "", err
	}
	return resp.Respuesta, nil
}

// ChatHistory fetches every stored question/answer pair for token.
func (c *Client) ChatHistory(ctx context.Context, token string) ([]chat.Exchange, error) {
	var resp api.HistoryResponse
	if err := c.post(ctx, api.PathChatByToken, api.TokenRequest{Token: token}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SentimentAverage fetches the average sentiment score for token.
func (c *Client) SentimentAverage(ctx context.Context, token string) (float64, error) {
	var resp api.SentimentResponse
	if err := c.post(ctx, api.PathSentimentAverage, api.TokenRequest{Token: token}, &resp); err != nil {
		return 0, err
	}
	return resp.SentimentAverage, nil
}
