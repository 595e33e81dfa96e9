package account

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/sentibot/internal/api"
	"github.com/zhouzirui/sentibot/internal/metrics"
	"github.com/zhouzirui/sentibot/internal/model/account"
	accountService "github.com/zhouzirui/sentibot/internal/service/account"
	"github.com/zhouzirui/sentibot/pkg/utils"
)

// Handler serves login and registration.
type Handler struct {
	accounts *accountService.Service
	log      zerolog.Logger
}

// New creates the account handler.
func New(accounts *accountService.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		accounts: accounts,
		log:      logger.With().Str("component", "account_handler").Logger(),
	}
}

// RegisterRoutes mounts the account routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post(api.PathLoginWithEmail, h.handleLoginEmail)
	r.Post(api.PathLoginWithGoogle, h.handleGoogle(h.accounts.LoginSocial, "login"))
	r.Post(api.PathLoginWithFacebook, h.handleFacebook(h.accounts.LoginSocial, "login"))
	r.Post(api.PathRegisterWithEmail, h.handleRegisterEmail)
	r.Post(api.PathRegisterWithGoogle, h.handleGoogle(h.accounts.RegisterSocial, "register"))
	r.Post(api.PathRegisterWithFacebook, h.handleFacebook(h.accounts.RegisterSocial, "register"))
}

type socialFunc func(ctx context.Context, provider account.Provider, token string) (account.User, error)

func (h *Handler) handleLoginEmail(w http.ResponseWriter, r *http.Request) {
	var payload api.EmailLoginRequest
	if !utils.DecodeJSON(w, r, &payload) {
		return
	}

	user, err := h.accounts.LoginEmail(r.Context(), payload.Email, payload.Password)
	h.record("login", account.ProviderEmail, err)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, api.LoginResponse{ExistingUser: user})
}

func (h *Handler) handleRegisterEmail(w http.ResponseWriter, r *http.Request) {
	var payload api.EmailRegisterRequest
	if !utils.DecodeJSON(w, r, &payload) {
		return
	}

	user, err := h.accounts.RegisterEmail(r.Context(), payload.Nombre, payload.Apellido, payload.Email, payload.Password, payload.Foto)
	h.record("register", account.ProviderEmail, err)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, api.RegisterResponse{User: user})
}

func (h *Handler) handleGoogle(fn socialFunc, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload api.GoogleTokenRequest
		if !utils.DecodeJSON(w, r, &payload) {
			return
		}
		h.respondSocial(w, r, fn, action, account.ProviderGoogle, payload.GoogleToken)
	}
}

func (h *Handler) handleFacebook(fn socialFunc, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload api.TokenRequest
		if !utils.DecodeJSON(w, r, &payload) {
			return
		}
		h.respondSocial(w, r, fn, action, account.ProviderFacebook, payload.Token)
	}
}

func (h *Handler) respondSocial(w http.ResponseWriter, r *http.Request, fn socialFunc, action string, provider account.Provider, token string) {
	user, err := fn(r.Context(), provider, token)
	h.record(action, provider, err)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if action == "login" {
		utils.RespondJSON(w, http.StatusOK, api.LoginResponse{ExistingUser: user})
		return
	}
	utils.RespondJSON(w, http.StatusOK, api.RegisterResponse{User: user})
}

func (h *Handler) record(action string, provider account.Provider, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.AuthAttempts.WithLabelValues(action, string(provider), outcome).Inc()
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accountService.ErrInvalidInput):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, accountService.ErrInvalidCredentials):
		utils.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, accountService.ErrUserNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, accountService.ErrUserExists):
		utils.RespondError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error().Err(err).Msg("account service failed")
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
