package conversation

import (
	"context"
	"sync"
)

// State is the lifecycle position of one turn.
type State int

const (
	StateIdle State = iota
	StateEchoed
	StateReplied
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEchoed:
		return "echoed"
	case StateReplied:
		return "replied"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Turn is the handle returned by Send: one user message and the bot reply
// it may eventually receive.
type Turn struct {
	ID   uint64
	Text string

	mu      sync.Mutex
	state   State
	reply   string
	err     error
	settled bool
	done    chan struct{}
}

func newTurn(id uint64, text string) *Turn {
	return &Turn{ID: id, Text: text, state: StateEchoed, done: make(chan struct{})}
}

// Done is closed once the turn reaches StateReplied or StateFailed.
func (t *Turn) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the turn finishes or ctx ends, returning the turn error.
func (t *Turn) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Turn) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Reply is the bot answer once the turn is StateReplied.
func (t *Turn) Reply() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reply
}

// Err is the remote failure once the turn is StateFailed.
func (t *Turn) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// settle records the remote outcome without making it visible.
func (t *Turn) settle(reply string, err error) {
	t.mu.Lock()
	t.reply, t.err, t.settled = reply, err, true
	t.mu.Unlock()
}

func (t *Turn) isSettled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settled
}

// finish publishes the final state and releases waiters.
func (t *Turn) finish() State {
	t.mu.Lock()
	if t.err != nil {
		t.state = StateFailed
	} else {
		t.state = StateReplied
	}
	state := t.state
	t.mu.Unlock()
	close(t.done)
	return state
}
