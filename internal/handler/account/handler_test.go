package account

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/zhouzirui/sentibot/internal/api"
	accountService "github.com/zhouzirui/sentibot/internal/service/account"
)

func setupRouter() *chi.Mux {
	r := chi.NewRouter()
	New(accountService.NewService(bcrypt.MinCost), zerolog.Nop()).RegisterRoutes(r)
	return r
}

func post(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestEmailRegisterThenLogin(t *testing.T) {
	r := setupRouter()

	resp := post(t, r, api.PathRegisterWithEmail, api.EmailRegisterRequest{
		Nombre: "Ana", Apellido: "Pérez", Email: "ana@example.com", Password: "secreto1", Foto: "file:///tmp/ana.png",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	var reg api.RegisterResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reg))
	assert.NotEmpty(t, reg.User.ID)
	assert.Equal(t, "file:///tmp/ana.png", reg.User.Foto)

	resp = post(t, r, api.PathLoginWithEmail, api.EmailLoginRequest{Email: "ANA@example.com", Password: "secreto1"})
	require.Equal(t, http.StatusOK, resp.Code)
	var login api.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	assert.Equal(t, reg.User, login.ExistingUser)
}

func TestEmailStatusCodes(t *testing.T) {
	r := setupRouter()
	register := api.EmailRegisterRequest{Nombre: "Ana", Email: "ana@example.com", Password: "secreto1"}
	require.Equal(t, http.StatusOK, post(t, r, api.PathRegisterWithEmail, register).Code)

	assert.Equal(t, http.StatusConflict, post(t, r, api.PathRegisterWithEmail, register).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, r, api.PathRegisterWithEmail, api.EmailRegisterRequest{Email: "x@example.com"}).Code)
	assert.Equal(t, http.StatusUnauthorized,
		post(t, r, api.PathLoginWithEmail, api.EmailLoginRequest{Email: "ana@example.com", Password: "mal"}).Code)
	assert.Equal(t, http.StatusUnauthorized,
		post(t, r, api.PathLoginWithEmail, api.EmailLoginRequest{Email: "nadie@example.com", Password: "x"}).Code)
}

func TestSocialFlows(t *testing.T) {
	r := setupRouter()

	assert.Equal(t, http.StatusNotFound, post(t, r, api.PathLoginWithGoogle, api.GoogleTokenRequest{GoogleToken: "g-1"}).Code)

	resp := post(t, r, api.PathRegisterWithGoogle, api.GoogleTokenRequest{GoogleToken: "g-1"})
	require.Equal(t, http.StatusOK, resp.Code)
	var reg api.RegisterResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reg))

	resp = post(t, r, api.PathLoginWithGoogle, api.GoogleTokenRequest{GoogleToken: "g-1"})
	require.Equal(t, http.StatusOK, resp.Code)
	var login api.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	assert.Equal(t, reg.User.ID, login.ExistingUser.ID)

	assert.Equal(t, http.StatusConflict, post(t, r, api.PathRegisterWithGoogle, api.GoogleTokenRequest{GoogleToken: "g-1"}).Code)

	// Same token under a different provider is a different identity.
	assert.Equal(t, http.StatusNotFound, post(t, r, api.PathLoginWithFacebook, api.TokenRequest{Token: "g-1"}).Code)
	assert.Equal(t, http.StatusOK, post(t, r, api.PathRegisterWithFacebook, api.TokenRequest{Token: "g-1"}).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, r, api.PathLoginWithFacebook, api.TokenRequest{}).Code)
}
