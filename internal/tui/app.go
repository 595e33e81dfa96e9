// Package tui is the terminal front-end: login, registration and the chat
// screen, driven by bubbletea.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/sentibot/internal/analysis/sentiment"
	"github.com/zhouzirui/sentibot/internal/device"
	"github.com/zhouzirui/sentibot/internal/model/account"
	"github.com/zhouzirui/sentibot/internal/model/route"
	"github.com/zhouzirui/sentibot/internal/service/auth"
	"github.com/zhouzirui/sentibot/internal/service/conversation"
)

type screen int

const (
	screenLogin screen = iota
	screenRegister
	screenChat
	screenProfile
)

// Deps are the services the screens call.
type Deps struct {
	Gateway *auth.Gateway
	Remote  conversation.Remote
	Logger  zerolog.Logger
	// Picker turns the path typed in the sign-up form into a picture.
	// Defaults to device.FilePicker.
	Picker func(path string) account.Picker
}

type (
	navigateMsg struct {
		dest route.Destination
	}

	confirmMsg struct {
		reason string
		reply  chan<- bool
	}

	authDoneMsg struct {
		err error
	}

	sessionEventMsg struct {
		session *conversation.Session
		event   conversation.Event
	}

	bootstrapMsg struct {
		session *conversation.Session
		mood    sentiment.Summary
		err     error
	}

	sentimentMsg struct {
		session *conversation.Session
		summary sentiment.Summary
	}

	errMsg struct {
		err error
	}
)

type Model struct {
	ctx    context.Context
	deps   Deps
	bridge *Bridge

	screen   screen
	width    int
	height   int
	login    loginForm
	register registerForm
	chat     chatView

	busy    bool
	notice  *auth.Notice
	confirm *confirmMsg
	status  string
}

// New builds the model on the login screen. ctx bounds every remote call
// the screens start.
func New(ctx context.Context, deps Deps, bridge *Bridge) Model {
	if deps.Picker == nil {
		deps.Picker = device.FilePicker
	}
	return Model{
		ctx:    ctx,
		deps:   deps,
		bridge: bridge,
		screen: screenLogin,
		width:  100,
		height: 30,
		login:  newLoginForm(),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chat.resize(m.width, m.height)
		return m, nil

	case navigateMsg:
		return m.apply(msg.dest)

	case confirmMsg:
		m.confirm = &msg
		return m, nil

	case authDoneMsg:
		m.busy = false
		if msg.err != nil {
			notice := auth.NoticeFor(msg.err)
			m.notice = &notice
		}
		return m, nil

	case sessionEventMsg:
		if msg.session != m.chat.session {
			return m, nil
		}
		m.chat.handleEvent(msg.event)
		return m, m.chat.mail.next()

	case bootstrapMsg:
		if msg.session != m.chat.session {
			return m, nil
		}
		m.chat.mood = &msg.mood
		return m, nil

	case sentimentMsg:
		if msg.session != m.chat.session {
			return m, nil
		}
		m.chat.loadingSummary = false
		m.chat.summary = &msg.summary
		return m, nil

	case errMsg:
		m.status = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.forward(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.chat.close()
		return m, tea.Quit
	}

	if m.confirm != nil {
		switch msg.String() {
		case "s", "y", "enter":
			m.confirm.reply <- true
			m.confirm = nil
		case "n", "esc":
			m.confirm.reply <- false
			m.confirm = nil
		}
		return m, nil
	}

	if m.notice != nil {
		m.notice = nil
		return m, nil
	}

	m.status = ""
	switch m.screen {
	case screenLogin:
		return m.updateLogin(msg)
	case screenRegister:
		return m.updateRegister(msg)
	case screenChat:
		return m.updateChat(msg)
	case screenProfile:
		if msg.String() == "esc" || msg.String() == "q" {
			m.screen = screenChat
		}
		return m, nil
	}
	return m, nil
}

// forward hands non-key messages such as cursor blinks to the active inputs.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case screenLogin:
		cmd = m.login.update(msg)
	case screenRegister:
		cmd = m.register.update(msg)
	case screenChat:
		cmd = m.chat.update(msg)
	}
	return m, cmd
}

// apply switches screens. Every transition arrives here through the Bridge.
func (m Model) apply(dest route.Destination) (tea.Model, tea.Cmd) {
	if err := dest.Validate(); err != nil {
		m.status = err.Error()
		return m, nil
	}

	switch d := dest.(type) {
	case route.Login:
		m.chat.close()
		m.chat = chatView{}
		m.login = newLoginForm()
		m.screen = screenLogin
		return m, nil

	case route.Register:
		m.register = newRegisterForm()
		m.screen = screenRegister
		return m, nil

	case route.Chat:
		m.chat.close()
		mail := newMailbox()
		session := conversation.New(m.deps.Remote, d.Token,
			conversation.WithLogger(m.deps.Logger),
			conversation.WithObserver(mail.push),
		)
		mail.session = session
		m.chat = newChatView(d.User, session, mail, m.width, m.height)
		m.screen = screenChat
		return m, tea.Batch(m.chat.mail.next(), bootstrap(m.ctx, session))

	case route.Profile:
		m.screen = screenProfile
		return m, nil
	}
	return m, nil
}

// goTo navigates off the update loop so the Bridge can deliver the result.
func (m Model) goTo(dest route.Destination) tea.Cmd {
	bridge := m.bridge
	return func() tea.Msg {
		if err := route.Go(bridge, dest); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

// authenticate runs an auth flow and routes to the chat screen on success.
func (m Model) authenticate(flow func(ctx context.Context) (account.User, error)) tea.Cmd {
	ctx, bridge := m.ctx, m.bridge
	return func() tea.Msg {
		user, err := flow(ctx)
		if err != nil {
			return authDoneMsg{err: err}
		}
		return authDoneMsg{err: route.Go(bridge, route.ForUser(user))}
	}
}

func (m Model) View() string {
	var body string
	switch m.screen {
	case screenLogin:
		body = m.viewLogin()
	case screenRegister:
		body = m.viewRegister()
	case screenChat:
		body = m.viewChat()
	case screenProfile:
		body = m.viewProfile()
	}

	switch {
	case m.confirm != nil:
		return m.overlay(noticeBoxStyle.Render(
			titleStyle.Render("Confirmar identidad") + "\n\n" + m.confirm.reason + "\n\n" +
				helpStyle.Render("s: confirmar  n: cancelar"),
		))
	case m.notice != nil:
		return m.overlay(noticeBoxStyle.Render(
			titleStyle.Render(m.notice.Title) + "\n\n" + m.notice.Message + "\n\n" +
				helpStyle.Render("Pulsa cualquier tecla para continuar"),
		))
	}
	return body
}

func (m Model) overlay(box string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) statusLine() string {
	if m.busy {
		return dimStyle.Render("Procesando...")
	}
	if m.status != "" {
		return failedMarkStyle.Render(m.status)
	}
	return ""
}
