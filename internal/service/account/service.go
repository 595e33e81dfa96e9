package account

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/zhouzirui/sentibot/internal/model/account"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type storedUser struct {
	user         account.User
	passwordHash []byte
}

// Service is the development account backend. Social tokens are treated as
// opaque external subjects: the same token always maps to the same user.
type Service struct {
	mu       sync.RWMutex
	byID     map[string]*storedUser
	byEmail  map[string]*storedUser
	bySocial map[string]*storedUser
	cost     int
}

// NewService creates an empty store hashing passwords with the given bcrypt
// cost (bcrypt.DefaultCost when out of range).
func NewService(cost int) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		byID:     make(map[string]*storedUser),
		byEmail:  make(map[string]*storedUser),
		bySocial: make(map[string]*storedUser),
		cost:     cost,
	}
}

// RegisterEmail creates a password account.
func (s *Service) RegisterEmail(_ context.Context, nombre, apellido, email, password, foto string) (account.User, error) {
	email = normalizeEmail(email)
	if strings.TrimSpace(nombre) == "" || email == "" || password == "" {
		return account.User{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return account.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return account.User{}, ErrUserExists
	}

	stored := &storedUser{
		user: account.User{
			ID:       uuid.NewString(),
			Nombre:   strings.TrimSpace(nombre),
			Apellido: strings.TrimSpace(apellido),
			Email:    email,
			Foto:     foto,
		},
		passwordHash: hash,
	}
	s.byID[stored.user.ID] = stored
	s.byEmail[email] = stored
	return stored.user, nil
}

// LoginEmail checks the password of an email account.
func (s *Service) LoginEmail(_ context.Context, email, password string) (account.User, error) {
	s.mu.RLock()
	stored, ok := s.byEmail[normalizeEmail(email)]
	s.mu.RUnlock()

	if !ok || stored.passwordHash == nil {
		return account.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(stored.passwordHash, []byte(password)); err != nil {
		return account.User{}, ErrInvalidCredentials
	}
	return stored.user, nil
}

// RegisterSocial creates an account bound to a provider token.
func (s *Service) RegisterSocial(_ context.Context, provider account.Provider, token string) (account.User, error) {
	if strings.TrimSpace(token) == "" {
		return account.User{}, ErrInvalidInput
	}
	key := socialKey(provider, token)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySocial[key]; exists {
		return account.User{}, ErrUserExists
	}
	stored := &storedUser{user: account.User{ID: uuid.NewString(), Nombre: providerLabel(provider)}}
	s.byID[stored.user.ID] = stored
	s.bySocial[key] = stored
	return stored.user, nil
}

// LoginSocial resolves the account bound to a provider token.
func (s *Service) LoginSocial(_ context.Context, provider account.Provider, token string) (account.User, error) {
	if strings.TrimSpace(token) == "" {
		return account.User{}, ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.bySocial[socialKey(provider, token)]
	if !ok {
		return account.User{}, ErrUserNotFound
	}
	return stored.user, nil
}

// FindByID looks up a user by identifier.
func (s *Service) FindByID(id string) (account.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.byID[id]
	if !ok {
		return account.User{}, false
	}
	return stored.user, true
}

// Count returns the number of registered users.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func providerLabel(p account.Provider) string {
	switch p {
	case account.ProviderGoogle:
		return "Usuario de Google"
	case account.ProviderFacebook:
		return "Usuario de Facebook"
	default:
		return string(p)
	}
}

func socialKey(provider account.Provider, token string) string {
	return string(provider) + ":" + token
}
