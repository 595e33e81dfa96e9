package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhouzirui/sentibot/internal/model/route"
)

var errNotRunning = errors.New("terminal ui is not running")

// Bridge lets code outside the update loop talk to the running program:
// it navigates between screens and asks the user for confirmation. It is
// safe to call from any goroutine except the update loop itself.
type Bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func NewBridge() *Bridge {
	return &Bridge{}
}

// Bind connects the bridge to a program, usually (*tea.Program).Send.
func (b *Bridge) Bind(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Bridge) deliver(msg tea.Msg) error {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send == nil {
		return errNotRunning
	}
	send(msg)
	return nil
}

// Navigate implements route.Navigator.
func (b *Bridge) Navigate(dest route.Destination) error {
	return b.deliver(navigateMsg{dest: dest})
}

// Confirm shows a yes/no prompt and waits for the answer.
func (b *Bridge) Confirm(ctx context.Context, reason string) (bool, error) {
	reply := make(chan bool, 1)
	if err := b.deliver(confirmMsg{reason: reason, reply: reply}); err != nil {
		return false, err
	}
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
