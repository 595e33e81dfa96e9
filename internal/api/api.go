// Package api describes the JSON contract between the chat front-end and the
// intent-detection backend. Field names follow the backend (Spanish).
package api

import (
	"github.com/zhouzirui/sentibot/internal/model/account"
	"github.com/zhouzirui/sentibot/internal/model/chat"
)

// Route paths. Every call is a POST with a JSON body.
const (
	PathDetectIntent         = "/detect-intent"
	PathChatByToken          = "/get-chat-by-token"
	PathSentimentAverage     = "/get-sentiment-average"
	PathLoginWithEmail       = "/login-with-email"
	PathLoginWithGoogle      = "/login-with-google"
	PathLoginWithFacebook    = "/login-with-facebook"
	PathRegisterWithEmail    = "/register-with-email"
	PathRegisterWithGoogle   = "/register-with-google"
	PathRegisterWithFacebook = "/register-with-facebook"
)

type DetectIntentRequest struct {
	Text  string `json:"text"`
	Token string `json:"token"`
}

type DetectIntentResponse struct {
	Respuesta string `json:"respuesta"`
}

// TokenRequest addresses history, sentiment and Facebook calls.
type TokenRequest struct {
	Token string `json:"token"`
}

// HistoryResponse is the bare array returned by the history call.
type HistoryResponse []chat.Exchange

type SentimentResponse struct {
	SentimentAverage float64 `json:"sentiment_average"`
}

type EmailLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleTokenRequest struct {
	GoogleToken string `json:"googleToken"`
}

type LoginResponse struct {
	ExistingUser account.User `json:"existingUser"`
}

type EmailRegisterRequest struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Foto     string `json:"foto,omitempty"`
}

type RegisterResponse struct {
	User account.User `json:"user"`
}

// ErrorResponse is the body of every non-200 reply from the dev backend.
type ErrorResponse struct {
	Error string `json:"error"`
}
