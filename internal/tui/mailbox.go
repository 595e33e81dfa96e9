package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhouzirui/sentibot/internal/service/conversation"
)

// mailbox buffers session events without bound. The session notifies its
// observer synchronously from Send, which runs inside the update loop, so
// the observer must never block on the program.
type mailbox struct {
	session *conversation.Session

	mu     sync.Mutex
	items  []conversation.Event
	closed bool
	signal chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

func (m *mailbox) push(ev conversation.Event) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.items = append(m.items, ev)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.items = nil
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// pop blocks until an event is available; ok is false once closed.
func (m *mailbox) pop() (conversation.Event, bool) {
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return conversation.Event{}, false
		}
		if len(m.items) > 0 {
			ev := m.items[0]
			m.items = m.items[1:]
			m.mu.Unlock()
			return ev, true
		}
		m.mu.Unlock()
		<-m.signal
	}
}

// next delivers one event to the update loop. The loop re-arms it after
// handling each event.
func (m *mailbox) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := m.pop()
		if !ok {
			return nil
		}
		return sessionEventMsg{session: m.session, event: ev}
	}
}
