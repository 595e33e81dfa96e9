package chat

import (
	"context"
	"crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/zhouzirui/sentibot/internal/model/chat"
)

var ErrTokenRequired = errors.New("token is required")

// Service keeps every exchange per user token in memory.
type Service struct {
	mu      sync.RWMutex
	records map[string][]chat.Record
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewService bootstraps the in-memory transcript store.
func NewService() *Service {
	return &Service{
		records: make(map[string][]chat.Record),
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SaveExchange appends one question/answer pair to the token's transcript.
func (s *Service) SaveExchange(_ context.Context, token string, ex chat.Exchange) (chat.Record, error) {
	if token == "" {
		return chat.Record{}, ErrTokenRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	record := chat.Record{
		ID:        ulid.MustNew(ulid.Timestamp(now), s.entropy).String(),
		Token:     token,
		Exchange:  ex,
		CreatedAt: now,
	}
	s.records[token] = append(s.records[token], record)
	return record, nil
}

// History returns the token's exchanges oldest first. Unknown tokens have
// an empty history.
func (s *Service) History(_ context.Context, token string) ([]chat.Exchange, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.records[token]
	history := make([]chat.Exchange, len(records))
	for i, r := range records {
		history[i] = r.Exchange
	}
	return history, nil
}

// Total returns the number of exchanges stored across all tokens.
func (s *Service) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, records := range s.records {
		total += len(records)
	}
	return total
}
