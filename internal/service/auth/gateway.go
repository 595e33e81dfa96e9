// Package auth runs the sign-in and sign-up flows against the backend and
// the external identity providers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/sentibot/internal/model/account"
)

var (
	ErrNotConfigured      = errors.New("identity providers are not configured")
	ErrProviderMissing    = errors.New("identity provider not available")
	ErrSignInCancelled    = errors.New("sign-in cancelled")
	ErrSignInInProgress   = errors.New("sign-in already in progress")
	ErrServiceUnavailable = errors.New("identity service unavailable")
	ErrNoRememberedUser   = errors.New("no previous sign-in to unlock")
	ErrMissingField       = errors.New("required field missing")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password too short")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

const minPasswordLen = 6

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Backend is the account half of the API.
type Backend interface {
	LoginWithEmail(ctx context.Context, email, password string) (account.User, error)
	LoginWithGoogle(ctx context.Context, googleToken string) (account.User, error)
	LoginWithFacebook(ctx context.Context, token string) (account.User, error)
	RegisterWithEmail(ctx context.Context, reg account.Registration) (account.User, error)
	RegisterWithGoogle(ctx context.Context, googleToken string) (account.User, error)
	RegisterWithFacebook(ctx context.Context, token string) (account.User, error)
}

// SocialProvider runs an external sign-in for the configured client id and
// returns its token.
type SocialProvider interface {
	SignIn(ctx context.Context, clientID string) (string, error)
}

// BiometricPrompter asks the device owner to confirm their identity.
type BiometricPrompter interface {
	Authenticate(ctx context.Context, reason string) error
}

// ProviderConfig is applied once at bootstrap. A social provider without a
// client id stays unavailable. OfflineAccess keeps the last signed-in
// identity so the biometric prompt can unlock it later.
type ProviderConfig struct {
	GoogleClientID string
	FacebookAppID  string
	OfflineAccess  bool
}

// Gateway coordinates sign-in flows. Only one flow runs at a time.
type Gateway struct {
	backend   Backend
	google    SocialProvider
	facebook  SocialProvider
	biometric BiometricPrompter
	log       zerolog.Logger

	mu         sync.Mutex
	configured bool
	cfg        ProviderConfig
	busy       bool
	last       *account.User
}

// Option configures a Gateway.
type Option func(*Gateway)

func WithGoogle(p SocialProvider) Option       { return func(g *Gateway) { g.google = p } }
func WithFacebook(p SocialProvider) Option     { return func(g *Gateway) { g.facebook = p } }
func WithBiometric(p BiometricPrompter) Option { return func(g *Gateway) { g.biometric = p } }
func WithLogger(l zerolog.Logger) Option       { return func(g *Gateway) { g.log = l } }

// NewGateway creates an unconfigured gateway.
func NewGateway(backend Backend, opts ...Option) *Gateway {
	g := &Gateway{backend: backend, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Configure applies the provider settings. Only the first call has effect;
// it reports whether this call did the configuration.
func (g *Gateway) Configure(cfg ProviderConfig) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.configured {
		return false
	}
	g.cfg = cfg
	g.configured = true
	g.log.Debug().
		Bool("google", cfg.GoogleClientID != "").
		Bool("facebook", cfg.FacebookAppID != "").
		Msg("identity providers configured")
	return true
}

func (g *Gateway) Configured() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.configured
}

// Available reports whether a sign-in method can be offered.
func (g *Gateway) Available(p account.Provider) bool {
	switch p {
	case account.ProviderEmail:
		return true
	case account.ProviderGoogle, account.ProviderFacebook:
		provider, clientID := g.socialFor(p)
		return provider != nil && clientID != ""
	case account.ProviderBiometric:
		return g.biometric != nil
	default:
		return false
	}
}

// socialFor returns the provider for p and the client id configured for it.
func (g *Gateway) socialFor(p account.Provider) (SocialProvider, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch p {
	case account.ProviderGoogle:
		return g.google, g.cfg.GoogleClientID
	case account.ProviderFacebook:
		return g.facebook, g.cfg.FacebookAppID
	default:
		return nil, ""
	}
}

// LastUser is the identity of the most recent successful sign-in, kept only
// when offline access was configured.
func (g *Gateway) LastUser() (account.User, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last == nil {
		return account.User{}, false
	}
	return *g.last, true
}

// LoginWithEmail signs in with email and password.
func (g *Gateway) LoginWithEmail(ctx context.Context, email, password string) (account.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return account.User{}, ErrMissingField
	}
	return g.run(ctx, account.ProviderEmail, false, func(ctx context.Context) (account.User, error) {
		return g.backend.LoginWithEmail(ctx, email, password)
	})
}

// LoginWithGoogle runs the Google flow then resolves the stored user.
func (g *Gateway) LoginWithGoogle(ctx context.Context) (account.User, error) {
	return g.social(ctx, account.ProviderGoogle, g.backend.LoginWithGoogle)
}

// LoginWithFacebook runs the Facebook flow then resolves the stored user.
func (g *Gateway) LoginWithFacebook(ctx context.Context) (account.User, error) {
	return g.social(ctx, account.ProviderFacebook, g.backend.LoginWithFacebook)
}

// LoginWithBiometrics unlocks the last signed-in user after the device
// confirms the owner. Nothing is persisted across process restarts.
func (g *Gateway) LoginWithBiometrics(ctx context.Context) (account.User, error) {
	if g.biometric == nil {
		return account.User{}, ErrProviderMissing
	}
	return g.run(ctx, account.ProviderBiometric, true, func(ctx context.Context) (account.User, error) {
		user, ok := g.LastUser()
		if !ok {
			return account.User{}, ErrNoRememberedUser
		}
		if err := g.biometric.Authenticate(ctx, "Inicia sesión con tu huella"); err != nil {
			return account.User{}, err
		}
		return user, nil
	})
}

// RegisterWithEmail validates the sign-up form and creates the account.
func (g *Gateway) RegisterWithEmail(ctx context.Context, reg account.Registration) (account.User, error) {
	if err := ValidateRegistration(reg); err != nil {
		return account.User{}, err
	}
	reg.Email = strings.TrimSpace(reg.Email)
	return g.run(ctx, account.ProviderEmail, false, func(ctx context.Context) (account.User, error) {
		return g.backend.RegisterWithEmail(ctx, reg)
	})
}

// RegisterWithGoogle creates an account from a Google identity.
func (g *Gateway) RegisterWithGoogle(ctx context.Context) (account.User, error) {
	return g.social(ctx, account.ProviderGoogle, g.backend.RegisterWithGoogle)
}

// RegisterWithFacebook creates an account from a Facebook identity.
func (g *Gateway) RegisterWithFacebook(ctx context.Context) (account.User, error) {
	return g.social(ctx, account.ProviderFacebook, g.backend.RegisterWithFacebook)
}

// PickPicture asks picker for a profile picture; cancelling is not an error.
func PickPicture(ctx context.Context, picker account.Picker) (*account.Picture, error) {
	if picker == nil {
		return nil, nil
	}
	pic, err := picker.Pick(ctx)
	if errors.Is(err, account.ErrPickCancelled) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pick picture: %w", err)
	}
	return &pic, nil
}

// ValidateRegistration checks the sign-up form fields.
func ValidateRegistration(reg account.Registration) error {
	if strings.TrimSpace(reg.Nombre) == "" || strings.TrimSpace(reg.Email) == "" || reg.Password == "" {
		return ErrMissingField
	}
	if !emailRegex.MatchString(strings.TrimSpace(reg.Email)) {
		return ErrInvalidEmail
	}
	if len(reg.Password) < minPasswordLen {
		return ErrWeakPassword
	}
	if reg.Password != reg.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

func (g *Gateway) social(ctx context.Context, p account.Provider, exchange func(context.Context, string) (account.User, error)) (account.User, error) {
	provider, _ := g.socialFor(p)
	if provider == nil {
		return account.User{}, ErrProviderMissing
	}
	return g.run(ctx, p, true, func(ctx context.Context) (account.User, error) {
		// run has already checked Configure, so the client id is final here.
		_, clientID := g.socialFor(p)
		if clientID == "" {
			return account.User{}, ErrProviderMissing
		}
		token, err := provider.SignIn(ctx, clientID)
		if err != nil {
			return account.User{}, err
		}
		return exchange(ctx, token)
	})
}

// run guards a flow against concurrent flows and remembers the result.
func (g *Gateway) run(ctx context.Context, p account.Provider, needsConfig bool, flow func(context.Context) (account.User, error)) (account.User, error) {
	g.mu.Lock()
	if needsConfig && !g.configured {
		g.mu.Unlock()
		return account.User{}, ErrNotConfigured
	}
	if g.busy {
		g.mu.Unlock()
		return account.User{}, ErrSignInInProgress
	}
	g.busy = true
	g.mu.Unlock()

	user, err := flow(ctx)

	g.mu.Lock()
	g.busy = false
	if err == nil && g.cfg.OfflineAccess {
		u := user
		g.last = &u
	}
	g.mu.Unlock()

	if err != nil {
		g.log.Warn().Err(err).Str("provider", string(p)).Msg("sign-in failed")
		return account.User{}, fmt.Errorf("%s sign-in: %w", p, err)
	}
	g.log.Info().Str("provider", string(p)).Str("user", user.ID).Msg("signed in")
	return user, nil
}
