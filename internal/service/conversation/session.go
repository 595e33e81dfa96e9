// Package conversation owns the message list of one chat screen and
// mediates between optimistic local echo and the remote intent service.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/sentibot/internal/analysis/sentiment"
	"github.com/zhouzirui/sentibot/internal/model/chat"
	"github.com/zhouzirui/sentibot/internal/model/route"
)

var (
	ErrTokenRequired = errors.New("session token is required")
	ErrEmptyMessage  = errors.New("message text is empty")
)

// Remote is the subset of the API the session needs.
type Remote interface {
	DetectIntent(ctx context.Context, token, text string) (string, error)
	ChatHistory(ctx context.Context, token string) ([]chat.Exchange, error)
	SentimentAverage(ctx context.Context, token string) (float64, error)
}

// EventKind names a change in the session.
type EventKind string

const (
	EventEchoed        EventKind = "echoed"
	EventReplied       EventKind = "replied"
	EventFailed        EventKind = "failed"
	EventHistoryLoaded EventKind = "history_loaded"
	EventHistoryFailed EventKind = "history_failed"
)

// Event is delivered to the observer after every mutation or failure.
// Messages is the snapshot right after the change.
type Event struct {
	Kind     EventKind
	Turn     uint64
	Messages []chat.Message
	Err      error
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the sink for remote failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.log = logger
	}
}

// WithObserver registers fn to receive events in mutation order. fn runs on
// the goroutine that caused the change and must not call Send or
// LoadHistory synchronously.
func WithObserver(fn func(Event)) Option {
	return func(s *Session) {
		s.observer = fn
	}
}

// Session holds the ordered messages of one conversation screen.
type Session struct {
	remote   Remote
	token    string
	log      zerolog.Logger
	observer func(Event)

	mu       sync.Mutex
	messages []chat.Message
	nextTurn uint64
	pending  []*Turn
	queue    []Event

	notifyMu sync.Mutex
	wg       sync.WaitGroup
}

// New creates a session addressed by token.
func New(remote Remote, token string, opts ...Option) *Session {
	s := &Session{
		remote: remote,
		token:  token,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Token() string {
	return s.token
}

// Messages returns the current sequence. The slice is never modified later.
func (s *Session) Messages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages
}

// InFlight reports how many turns still await their reply.
func (s *Session) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// LoadHistory fetches the stored exchanges and replaces the sequence with
// them. On failure the sequence is left untouched.
func (s *Session) LoadHistory(ctx context.Context) ([]chat.Message, error) {
	if s.token == "" {
		return nil, ErrTokenRequired
	}

	history, err := s.remote.ChatHistory(ctx, s.token)
	if err != nil {
		s.log.Error().Err(err).Str("op", "load_history").Msg("fetch chat history failed")
		s.mu.Lock()
		s.enqueue(Event{Kind: EventHistoryFailed, Messages: s.messages, Err: err})
		s.mu.Unlock()
		s.flush()
		return nil, fmt.Errorf("load history: %w", err)
	}

	messages := chat.Flatten(history)

	s.mu.Lock()
	s.messages = messages
	s.enqueue(Event{Kind: EventHistoryLoaded, Messages: messages})
	s.mu.Unlock()
	s.flush()

	s.log.Debug().Int("exchanges", len(history)).Msg("chat history loaded")
	return messages, nil
}

// Send echoes text as a user message immediately and asks the remote for a
// reply in the background. Blank text is ignored.
//
// Replies are applied in send order: a reply that arrives while an earlier
// turn is still in flight waits until that turn settles.
func (s *Session) Send(ctx context.Context, text string) (*Turn, error) {
	if chat.Blank(text) {
		return nil, ErrEmptyMessage
	}
	if s.token == "" {
		return nil, ErrTokenRequired
	}

	s.mu.Lock()
	s.nextTurn++
	turn := newTurn(s.nextTurn, text)
	s.messages = chat.Append(s.messages, chat.UserMessage(text, turn.ID))
	s.pending = append(s.pending, turn)
	s.enqueue(Event{Kind: EventEchoed, Turn: turn.ID, Messages: s.messages})
	s.wg.Add(1)
	s.mu.Unlock()
	s.flush()

	go s.exchange(ctx, turn)
	return turn, nil
}

func (s *Session) exchange(ctx context.Context, turn *Turn) {
	defer s.wg.Done()

	reply, err := s.remote.DetectIntent(ctx, s.token, turn.Text)
	if err != nil {
		s.log.Error().Err(err).Uint64("turn", turn.ID).Str("op", "detect_intent").Msg("exchange failed")
	}
	s.resolve(turn, reply, err)
}

// resolve settles turn and applies every settled turn at the head of the
// pending queue.
func (s *Session) resolve(turn *Turn, reply string, err error) {
	turn.settle(reply, err)

	s.mu.Lock()
	for len(s.pending) > 0 && s.pending[0].isSettled() {
		head := s.pending[0]
		s.pending = s.pending[1:]

		if head.Err() == nil {
			s.messages = chat.Append(s.messages, chat.BotMessage(head.Reply(), head.ID))
		}
		if head.finish() == StateReplied {
			s.enqueue(Event{Kind: EventReplied, Turn: head.ID, Messages: s.messages})
		} else {
			s.enqueue(Event{Kind: EventFailed, Turn: head.ID, Messages: s.messages, Err: head.Err()})
		}
	}
	s.mu.Unlock()
	s.flush()
}

// SentimentSummary fetches the average sentiment and maps it to a band. A
// failure yields the fixed failure summary, never an error.
func (s *Session) SentimentSummary(ctx context.Context) sentiment.Summary {
	if s.token == "" {
		s.log.Error().Err(ErrTokenRequired).Str("op", "sentiment").Msg("sentiment summary unavailable")
		return sentiment.Failed()
	}

	average, err := s.remote.SentimentAverage(ctx, s.token)
	if err != nil {
		s.log.Error().Err(err).Str("op", "sentiment").Msg("fetch sentiment average failed")
		return sentiment.Failed()
	}
	return sentiment.Summarize(average)
}

// Logout sends the front-end back to the login screen.
func (s *Session) Logout(nav route.Navigator) error {
	return route.Go(nav, route.Login{})
}

// Wait blocks until every in-flight turn has settled.
func (s *Session) Wait() {
	s.wg.Wait()
}

// enqueue must be called with s.mu held.
func (s *Session) enqueue(ev Event) {
	if s.observer == nil {
		return
	}
	s.queue = append(s.queue, ev)
}

// flush delivers queued events outside s.mu, one goroutine at a time, so
// the observer sees them in the order they were queued.
func (s *Session) flush() {
	if s.observer == nil {
		return
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	for {
		s.mu.Lock()
		batch := s.queue
		s.queue = nil
		s.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, ev := range batch {
			s.observer(ev)
		}
	}
}
