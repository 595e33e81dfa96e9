package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/sentibot/internal/client"
	"github.com/zhouzirui/sentibot/internal/model/account"
)

type fakeBackend struct {
	users    map[string]account.User
	loginErr error
	tokens   []string
	reg      *account.Registration
}

func (f *fakeBackend) LoginWithEmail(_ context.Context, email, _ string) (account.User, error) {
	if f.loginErr != nil {
		return account.User{}, f.loginErr
	}
	return f.users[email], nil
}

func (f *fakeBackend) LoginWithGoogle(_ context.Context, token string) (account.User, error) {
	f.tokens = append(f.tokens, "google:"+token)
	return account.User{ID: "g-user"}, nil
}

func (f *fakeBackend) LoginWithFacebook(_ context.Context, token string) (account.User, error) {
	f.tokens = append(f.tokens, "facebook:"+token)
	return account.User{ID: "fb-user"}, nil
}

func (f *fakeBackend) RegisterWithEmail(_ context.Context, reg account.Registration) (account.User, error) {
	f.reg = &reg
	return account.User{ID: "new", Nombre: reg.Nombre, Email: reg.Email}, nil
}

func (f *fakeBackend) RegisterWithGoogle(_ context.Context, token string) (account.User, error) {
	return account.User{ID: "g-new"}, nil
}

func (f *fakeBackend) RegisterWithFacebook(_ context.Context, token string) (account.User, error) {
	return account.User{ID: "fb-new"}, nil
}

type providerFunc func(ctx context.Context, clientID string) (string, error)

func (f providerFunc) SignIn(ctx context.Context, clientID string) (string, error) {
	return f(ctx, clientID)
}

var providerIDs = ProviderConfig{GoogleClientID: "google-web", FacebookAppID: "fb-app", OfflineAccess: true}

type biometricFunc func(ctx context.Context, reason string) error

func (f biometricFunc) Authenticate(ctx context.Context, reason string) error { return f(ctx, reason) }

func TestConfigureIsIdempotent(t *testing.T) {
	g := NewGateway(&fakeBackend{})

	assert.False(t, g.Configured())
	assert.True(t, g.Configure(ProviderConfig{GoogleClientID: "a"}))
	assert.False(t, g.Configure(ProviderConfig{GoogleClientID: "b"}))
	assert.Equal(t, "a", g.cfg.GoogleClientID)
}

func TestSocialLoginRequiresConfigure(t *testing.T) {
	g := NewGateway(&fakeBackend{}, WithGoogle(providerFunc(func(context.Context, string) (string, error) {
		return "tok", nil
	})))

	_, err := g.LoginWithGoogle(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, g.Available(account.ProviderGoogle))

	g.Configure(providerIDs)
	assert.True(t, g.Available(account.ProviderGoogle))
	user, err := g.LoginWithGoogle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "g-user", user.ID)
}

func TestSocialLoginUsesConfiguredClientID(t *testing.T) {
	backend := &fakeBackend{}
	var seen []string
	g := NewGateway(backend, WithFacebook(providerFunc(func(_ context.Context, clientID string) (string, error) {
		seen = append(seen, clientID)
		return "fb-token", nil
	})))
	g.Configure(providerIDs)

	_, err := g.LoginWithFacebook(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"fb-app"}, seen)
	assert.Equal(t, []string{"facebook:fb-token"}, backend.tokens)
}

func TestSocialProviderWithoutClientIDIsUnavailable(t *testing.T) {
	called := false
	g := NewGateway(&fakeBackend{}, WithGoogle(providerFunc(func(context.Context, string) (string, error) {
		called = true
		return "tok", nil
	})))
	g.Configure(ProviderConfig{FacebookAppID: "fb-app"})

	assert.False(t, g.Available(account.ProviderGoogle))
	_, err := g.LoginWithGoogle(context.Background())
	assert.ErrorIs(t, err, ErrProviderMissing)
	assert.Equal(t, ReasonServiceUnavailable, NoticeFor(err).Reason)
	assert.False(t, called)
}

func TestMissingProvider(t *testing.T) {
	g := NewGateway(&fakeBackend{})
	g.Configure(ProviderConfig{})

	_, err := g.LoginWithGoogle(context.Background())
	assert.ErrorIs(t, err, ErrProviderMissing)
	assert.False(t, g.Available(account.ProviderGoogle))
	assert.True(t, g.Available(account.ProviderEmail))
}

func TestConcurrentFlowIsRejected(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	g := NewGateway(&fakeBackend{}, WithGoogle(providerFunc(func(context.Context, string) (string, error) {
		close(started)
		<-release
		return "tok", nil
	})))
	g.Configure(providerIDs)

	done := make(chan error, 1)
	go func() {
		_, err := g.LoginWithGoogle(context.Background())
		done <- err
	}()
	<-started

	_, err := g.LoginWithEmail(context.Background(), "a@b.co", "secret")
	assert.ErrorIs(t, err, ErrSignInInProgress)
	assert.Equal(t, ReasonInProgress, NoticeFor(err).Reason)

	close(release)
	require.NoError(t, <-done)
}

func TestBiometricUnlocksLastUser(t *testing.T) {
	backend := &fakeBackend{users: map[string]account.User{"ana@example.com": {ID: "ana"}}}
	var reasons []string
	g := NewGateway(backend, WithBiometric(biometricFunc(func(_ context.Context, reason string) error {
		reasons = append(reasons, reason)
		return nil
	})))
	g.Configure(providerIDs)

	_, err := g.LoginWithBiometrics(context.Background())
	assert.ErrorIs(t, err, ErrNoRememberedUser)

	_, err = g.LoginWithEmail(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)

	user, err := g.LoginWithBiometrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ana", user.ID)
	assert.Len(t, reasons, 1)
}

func TestBiometricNeedsOfflineAccess(t *testing.T) {
	backend := &fakeBackend{users: map[string]account.User{"ana@example.com": {ID: "ana"}}}
	g := NewGateway(backend, WithBiometric(biometricFunc(func(context.Context, string) error { return nil })))
	g.Configure(ProviderConfig{})

	_, err := g.LoginWithEmail(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)

	_, ok := g.LastUser()
	assert.False(t, ok)
	_, err = g.LoginWithBiometrics(context.Background())
	assert.ErrorIs(t, err, ErrNoRememberedUser)
}

func TestBiometricCancelled(t *testing.T) {
	backend := &fakeBackend{users: map[string]account.User{"ana@example.com": {ID: "ana"}}}
	g := NewGateway(backend, WithBiometric(biometricFunc(func(context.Context, string) error {
		return ErrSignInCancelled
	})))
	g.Configure(providerIDs)
	_, err := g.LoginWithEmail(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)

	_, err = g.LoginWithBiometrics(context.Background())
	assert.Equal(t, ReasonCancelled, NoticeFor(err).Reason)
}

func TestRegisterWithEmailValidates(t *testing.T) {
	backend := &fakeBackend{}
	g := NewGateway(backend)
	base := account.Registration{Nombre: "Ana", Email: "ana@example.com", Password: "secret1", ConfirmPassword: "secret1"}

	cases := map[string]struct {
		mutate func(*account.Registration)
		want   error
	}{
		"missing name": {func(r *account.Registration) { r.Nombre = " " }, ErrMissingField},
		"bad email":    {func(r *account.Registration) { r.Email = "ana@" }, ErrInvalidEmail},
		"short pass":   {func(r *account.Registration) { r.Password, r.ConfirmPassword = "abc", "abc" }, ErrWeakPassword},
		"mismatch":     {func(r *account.Registration) { r.ConfirmPassword = "other1" }, ErrPasswordMismatch},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			reg := base
			tc.mutate(&reg)
			_, err := g.RegisterWithEmail(context.Background(), reg)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Nil(t, backend.reg)

	user, err := g.RegisterWithEmail(context.Background(), base)
	require.NoError(t, err)
	assert.Equal(t, "new", user.ID)
}

func TestPickPictureCancelIsNotError(t *testing.T) {
	pic, err := PickPicture(context.Background(), account.PickerFunc(func(context.Context) (account.Picture, error) {
		return account.Picture{}, account.ErrPickCancelled
	}))
	require.NoError(t, err)
	assert.Nil(t, pic)

	pic, err = PickPicture(context.Background(), account.PickerFunc(func(context.Context) (account.Picture, error) {
		return account.Picture{URI: "file:///a.png"}, nil
	}))
	require.NoError(t, err)
	assert.Equal(t, "file:///a.png", pic.URI)
}

func TestNoticeForStatusErrors(t *testing.T) {
	assert.Equal(t, ReasonServiceUnavailable, NoticeFor(&client.StatusError{Code: http.StatusBadGateway}).Reason)

	unauthorized := NoticeFor(&client.StatusError{Code: http.StatusUnauthorized})
	assert.Equal(t, ReasonGeneric, unauthorized.Reason)
	assert.Equal(t, "Credenciales incorrectas.", unauthorized.Message)

	assert.Equal(t, ReasonGeneric, NoticeFor(errors.New("weird")).Reason)
}
