package client

import (
	"context"

	"github.com/zhouzirui/sentibot/internal/api"
	"github.com/zhouzirui/sentibot/internal/model/account"
)

// LoginWithEmail authenticates with email and password.
func (c *Client) LoginWithEmail(ctx context.Context, email, password string) (account.User, error) {
	var resp api.LoginResponse
	err := c.post(ctx, api.PathLoginWithEmail, api.EmailLoginRequest{Email: email, Password: password}, &resp)
	return resp.ExistingUser, err
}

// LoginWithGoogle exchanges a Google id token for the stored user.
func (c *Client) LoginWithGoogle(ctx context.Context, googleToken string) (account.User, error) {
	var resp api.LoginResponse
	err := c.post(ctx, api.PathLoginWithGoogle, api.GoogleTokenRequest{GoogleToken: googleToken}, &resp)
	return resp.ExistingUser, err
}

// LoginWithFacebook exchanges a Facebook access token for the stored user.
func (c *Client) LoginWithFacebook(ctx context.Context, token string) (account.User, error) {
	var resp api.LoginResponse
	err := c.post(ctx, api.PathLoginWithFacebook, api.TokenRequest{Token: token}, &resp)
	return resp.ExistingUser, err
}

// RegisterWithEmail creates an account from the sign-up form.
func (c *Client) RegisterWithEmail(ctx context.Context, reg account.Registration) (account.User, error) {
	body := api.EmailRegisterRequest{
		Nombre:   reg.Nombre,
		Apellido: reg.Apellido,
		Email:    reg.Email,
		Password: reg.Password,
	}
	if reg.Picture != nil {
		body.Foto = reg.Picture.URI
	}

	var resp api.RegisterResponse
	err := c.post(ctx, api.PathRegisterWithEmail, body, &resp)
	return resp.User, err
}

// RegisterWithGoogle creates an account bound to a Google identity.
func (c *Client) RegisterWithGoogle(ctx context.Context, googleToken string) (account.User, error) {
	var resp api.RegisterResponse
	err := c.post(ctx, api.PathRegisterWithGoogle, api.GoogleTokenRequest{GoogleToken: googleToken}, &resp)
	return resp.User, err
}

// RegisterWithFacebook creates an account bound to a Facebook identity.
func (c *Client) RegisterWithFacebook(ctx context.Context, token string) (account.User, error) {
	var resp api.RegisterResponse
	err := c.post(ctx, api.PathRegisterWithFacebook, api.TokenRequest{Token: token}, &resp)
	return resp.User, err
}
