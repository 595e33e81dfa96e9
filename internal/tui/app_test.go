package tui

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/sentibot/internal/analysis/sentiment"
	"github.com/zhouzirui/sentibot/internal/client"
	"github.com/zhouzirui/sentibot/internal/device"
	"github.com/zhouzirui/sentibot/internal/model/account"
	"github.com/zhouzirui/sentibot/internal/model/chat"
	"github.com/zhouzirui/sentibot/internal/model/route"
	"github.com/zhouzirui/sentibot/internal/service/auth"
	"github.com/zhouzirui/sentibot/internal/service/conversation"
)

var ana = account.User{ID: "u-1", Nombre: "Ana", Apellido: "Pérez", Email: "ana@example.com"}

type fakeBackend struct {
	loginErr error
}

func (b *fakeBackend) LoginWithEmail(_ context.Context, email, password string) (account.User, error) {
	if b.loginErr != nil {
		return account.User{}, b.loginErr
	}
	if email != ana.Email || password != "secreto1" {
		return account.User{}, &client.StatusError{Op: "login", Code: http.StatusUnauthorized}
	}
	return ana, nil
}

func (b *fakeBackend) LoginWithGoogle(context.Context, string) (account.User, error) {
	return ana, nil
}

func (b *fakeBackend) LoginWithFacebook(context.Context, string) (account.User, error) {
	return ana, nil
}

func (b *fakeBackend) RegisterWithEmail(_ context.Context, reg account.Registration) (account.User, error) {
	u := account.User{ID: "u-2", Nombre: reg.Nombre, Apellido: reg.Apellido, Email: reg.Email}
	if reg.Picture != nil {
		u.Foto = reg.Picture.URI
	}
	return u, nil
}

func (b *fakeBackend) RegisterWithGoogle(context.Context, string) (account.User, error) {
	return ana, nil
}

func (b *fakeBackend) RegisterWithFacebook(context.Context, string) (account.User, error) {
	return ana, nil
}

type fakeRemote struct {
	mu      sync.Mutex
	replies map[string]string
	average float64
	gate    chan struct{}
}

func (r *fakeRemote) DetectIntent(_ context.Context, _ string, text string) (string, error) {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	reply, ok := r.replies[text]
	if !ok {
		return "", errors.New("service down")
	}
	return reply, nil
}

func (r *fakeRemote) ChatHistory(context.Context, string) ([]chat.Exchange, error) {
	return []chat.Exchange{{Pregunta: "hola", Respuesta: "¡Hola!"}}, nil
}

func (r *fakeRemote) SentimentAverage(context.Context, string) (float64, error) {
	return r.average, nil
}

type harness struct {
	model   Model
	sent    chan tea.Msg
	backend *fakeBackend
	remote  *fakeRemote
}

func newHarness(t *testing.T, opts ...auth.Option) *harness {
	t.Helper()
	backend := &fakeBackend{}
	remote := &fakeRemote{replies: map[string]string{"hola": "¡Hola! ¿Cómo puedo ayudarte? 😊"}, average: 0.8}

	bridge := NewBridge()
	sent := make(chan tea.Msg, 16)
	bridge.Bind(func(msg tea.Msg) { sent <- msg })

	opts = append(opts, auth.WithBiometric(device.Prompter{Confirm: bridge.Confirm}))
	gateway := auth.NewGateway(backend, opts...)
	gateway.Configure(auth.ProviderConfig{GoogleClientID: "web", OfflineAccess: true})

	m := New(context.Background(), Deps{Gateway: gateway, Remote: remote, Logger: zerolog.Nop()}, bridge)
	return &harness{model: m, sent: sent, backend: backend, remote: remote}
}

func (h *harness) update(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

func (h *harness) key(t tea.KeyType) tea.Cmd {
	return h.update(tea.KeyMsg{Type: t})
}

func (h *harness) typeText(s string) {
	h.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) expectSent(t *testing.T) tea.Msg {
	t.Helper()
	select {
	case msg := <-h.sent:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered through the bridge")
		return nil
	}
}

// loginAsAna drives the login form and follows the navigation to the chat.
func (h *harness) loginAsAna(t *testing.T) {
	t.Helper()
	h.typeText(ana.Email)
	h.key(tea.KeyTab)
	h.typeText("secreto1")
	cmd := h.key(tea.KeyEnter)
	require.NotNil(t, cmd)
	require.True(t, h.model.busy)

	done := cmd()
	nav := h.expectSent(t)
	require.Equal(t, navigateMsg{dest: route.ForUser(ana)}, nav)
	h.update(nav)
	h.update(done)
	require.Equal(t, screenChat, h.model.screen)
	require.False(t, h.model.busy)
}

// nextEvent pulls one session event through the mailbox into the model.
func (h *harness) nextEvent(t *testing.T) conversation.Event {
	t.Helper()
	msg := h.model.chat.mail.next()()
	ev, ok := msg.(sessionEventMsg)
	require.True(t, ok, "expected a session event, got %T", msg)
	h.update(ev)
	return ev.event
}

func TestLoginWithEmailOpensChat(t *testing.T) {
	h := newHarness(t)
	h.loginAsAna(t)

	assert.Equal(t, ana, h.model.chat.user)
	assert.Equal(t, ana.ID, h.model.chat.session.Token())
	assert.Contains(t, h.model.View(), "Ana Pérez")
}

func TestLoginFailureShowsNotice(t *testing.T) {
	h := newHarness(t)
	h.typeText(ana.Email)
	h.key(tea.KeyTab)
	h.typeText("mal")
	cmd := h.key(tea.KeyEnter)
	require.NotNil(t, cmd)

	h.update(cmd())
	require.NotNil(t, h.model.notice)
	assert.Equal(t, "Credenciales incorrectas.", h.model.notice.Message)
	assert.Contains(t, h.model.View(), "Credenciales incorrectas.")
	assert.Equal(t, screenLogin, h.model.screen)

	// Any key dismisses the notice without reaching the form.
	h.typeText("x")
	assert.Nil(t, h.model.notice)
	assert.Equal(t, "mal", h.model.login.value(loginPassword))
}

func TestLoginServiceUnavailableNotice(t *testing.T) {
	h := newHarness(t)
	h.backend.loginErr = &client.StatusError{Op: "login", Code: http.StatusBadGateway}
	h.typeText(ana.Email)
	h.key(tea.KeyTab)
	h.typeText("secreto1")

	h.update(h.key(tea.KeyEnter)())
	require.NotNil(t, h.model.notice)
	assert.Equal(t, auth.ReasonServiceUnavailable, h.model.notice.Reason)
}

func TestSendEchoesThenReplies(t *testing.T) {
	h := newHarness(t)
	h.loginAsAna(t)

	h.typeText("hola")
	h.key(tea.KeyEnter)
	assert.Empty(t, h.model.chat.input.Value())

	ev := h.nextEvent(t)
	require.Equal(t, conversation.EventEchoed, ev.Kind)
	assert.True(t, h.model.chat.inflight[ev.Turn])
	assert.Equal(t, []chat.Message{chat.UserMessage("hola", ev.Turn)}, h.model.chat.messages)

	ev = h.nextEvent(t)
	require.Equal(t, conversation.EventReplied, ev.Kind)
	assert.False(t, h.model.chat.inflight[ev.Turn])
	require.Len(t, h.model.chat.messages, 2)
	assert.Equal(t, chat.SenderBot, h.model.chat.messages[1].Sender)
	assert.Contains(t, h.model.chat.transcript.View(), "Cómo puedo ayudarte")
}

func TestHeaderShowsPendingReply(t *testing.T) {
	h := newHarness(t)
	h.remote.gate = make(chan struct{})
	h.loginAsAna(t)

	h.typeText("hola")
	h.key(tea.KeyEnter)
	require.Equal(t, conversation.EventEchoed, h.nextEvent(t).Kind)
	assert.Contains(t, h.model.View(), "Bot escribiendo...")

	close(h.remote.gate)
	require.Equal(t, conversation.EventReplied, h.nextEvent(t).Kind)
	assert.NotContains(t, h.model.View(), "Bot escribiendo...")
}

func TestBlankSendIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.loginAsAna(t)

	h.typeText("   ")
	h.key(tea.KeyEnter)
	assert.Empty(t, h.model.status)
	assert.Empty(t, h.model.chat.session.Messages())
}

func TestFailedTurnIsMarked(t *testing.T) {
	h := newHarness(t)
	h.loginAsAna(t)

	h.typeText("algo raro")
	h.key(tea.KeyEnter)
	require.Equal(t, conversation.EventEchoed, h.nextEvent(t).Kind)

	ev := h.nextEvent(t)
	require.Equal(t, conversation.EventFailed, ev.Kind)
	assert.True(t, h.model.chat.failed[ev.Turn])
	assert.Len(t, h.model.chat.messages, 1)
	assert.Contains(t, h.model.chat.transcript.View(), "no enviado")
}

func TestSentimentPopup(t *testing.T) {
	h := newHarness(t)
	h.loginAsAna(t)

	cmd := h.key(tea.KeyCtrlS)
	require.NotNil(t, cmd)
	assert.True(t, h.model.chat.loadingSummary)

	h.update(cmd())
	require.NotNil(t, h.model.chat.summary)
	assert.Equal(t, sentiment.Positive, h.model.chat.summary.Band)
	assert.Contains(t, h.model.View(), "0.8")

	h.key(tea.KeyEsc)
	assert.Nil(t, h.model.chat.summary)
}

func TestBootstrapLoadsHistoryAndMood(t *testing.T) {
	h := newHarness(t)
	h.loginAsAna(t)

	msg := bootstrap(context.Background(), h.model.chat.session)()
	require.Equal(t, conversation.EventHistoryLoaded, h.nextEvent(t).Kind)
	h.update(msg)

	require.NotNil(t, h.model.chat.mood)
	assert.Equal(t, sentiment.Positive, h.model.chat.mood.Band)
	assert.Equal(t, chat.Flatten([]chat.Exchange{{Pregunta: "hola", Respuesta: "¡Hola!"}}), h.model.chat.messages)
}

func TestLogoutReturnsToLogin(t *testing.T) {
	h := newHarness(t)
	h.loginAsAna(t)
	old := h.model.chat

	cmd := h.key(tea.KeyCtrlL)
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())

	nav := h.expectSent(t)
	assert.Equal(t, navigateMsg{dest: route.Login{}}, nav)
	h.update(nav)
	assert.Equal(t, screenLogin, h.model.screen)
	assert.Nil(t, h.model.chat.session)

	// The old mailbox is closed and its events no longer reach the model.
	assert.Nil(t, old.mail.next()())
	h.update(sessionEventMsg{session: old.session, event: conversation.Event{Kind: conversation.EventEchoed}})
	assert.Equal(t, screenLogin, h.model.screen)
}

func TestBiometricLoginAsksForConfirmation(t *testing.T) {
	h := newHarness(t)
	h.loginAsAna(t)
	h.update(navigateMsg{dest: route.Login{}})

	cmd := h.key(tea.KeyCtrlB)
	require.NotNil(t, cmd)
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	prompt := h.expectSent(t)
	require.IsType(t, confirmMsg{}, prompt)
	h.update(prompt)
	assert.Contains(t, h.model.View(), "Confirmar identidad")

	h.typeText("s")
	assert.Nil(t, h.model.confirm)

	nav := h.expectSent(t)
	assert.Equal(t, navigateMsg{dest: route.ForUser(ana)}, nav)
	h.update(nav)
	h.update(<-done)
	assert.Equal(t, screenChat, h.model.screen)
}

func TestBiometricRefusalIsCancelled(t *testing.T) {
	h := newHarness(t)
	h.loginAsAna(t)
	h.update(navigateMsg{dest: route.Login{}})

	cmd := h.key(tea.KeyCtrlB)
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	h.update(h.expectSent(t))
	h.typeText("n")

	h.update(<-done)
	require.NotNil(t, h.model.notice)
	assert.Equal(t, auth.ReasonCancelled, h.model.notice.Reason)
	assert.Equal(t, screenLogin, h.model.screen)
}

func TestRegisterValidatesBeforeCalling(t *testing.T) {
	h := newHarness(t)
	h.update(navigateMsg{dest: route.Register{}})
	require.Equal(t, screenRegister, h.model.screen)

	values := []string{"Luis", "Gómez", "luis@example.com", "secreto1", "otra-cosa"}
	for _, v := range values {
		h.typeText(v)
		h.key(tea.KeyTab)
	}
	cmd := h.key(tea.KeyEnter)
	assert.Nil(t, cmd)
	require.NotNil(t, h.model.notice)
	assert.Equal(t, "Las contraseñas no coinciden.", h.model.notice.Message)
}

func TestRegisterOpensChat(t *testing.T) {
	h := newHarness(t)
	h.model.deps.Picker = func(path string) account.Picker {
		return account.PickerFunc(func(context.Context) (account.Picture, error) {
			return account.Picture{URI: "file:///" + path, MIMEType: "image/png"}, nil
		})
	}
	h.update(navigateMsg{dest: route.Register{}})

	values := []string{"Luis", "Gómez", "luis@example.com", "secreto1", "secreto1", "perfil.png"}
	for i, v := range values {
		h.typeText(v)
		if i < len(values)-1 {
			h.key(tea.KeyTab)
		}
	}
	cmd := h.key(tea.KeyEnter)
	require.NotNil(t, cmd)

	done := cmd()
	nav := h.expectSent(t).(navigateMsg)
	dest := nav.dest.(route.Chat)
	assert.Equal(t, "u-2", dest.Token)
	assert.Equal(t, "file:///perfil.png", dest.User.Foto)
	h.update(nav)
	h.update(done)
	assert.Equal(t, screenChat, h.model.screen)
}

func TestRegisterEscGoesBackToLogin(t *testing.T) {
	h := newHarness(t)
	h.update(navigateMsg{dest: route.Register{}})

	cmd := h.key(tea.KeyEsc)
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Equal(t, navigateMsg{dest: route.Login{}}, h.expectSent(t))
}

func TestSocialShortcutsHiddenWithoutProviders(t *testing.T) {
	h := newHarness(t)
	assert.Nil(t, h.key(tea.KeyCtrlG))
	assert.False(t, strings.Contains(h.model.View(), "Login with Google"))

	google := device.LocalProvider{Username: func() (string, error) { return "ana", nil }}
	h = newHarness(t, auth.WithGoogle(google))
	assert.Contains(t, h.model.View(), "Login with Google")
	cmd := h.key(tea.KeyCtrlG)
	require.NotNil(t, cmd)
	done := cmd()
	assert.Equal(t, navigateMsg{dest: route.ForUser(ana)}, h.expectSent(t))
	assert.Equal(t, authDoneMsg{}, done)
}

func TestProfileOverlay(t *testing.T) {
	h := newHarness(t)
	h.loginAsAna(t)

	cmd := h.key(tea.KeyCtrlP)
	require.NotNil(t, cmd)
	cmd()
	h.update(h.expectSent(t))
	assert.Equal(t, screenProfile, h.model.screen)
	assert.Contains(t, h.model.View(), ana.Email)

	h.key(tea.KeyEsc)
	assert.Equal(t, screenChat, h.model.screen)
}

func TestInvalidDestinationIsRejected(t *testing.T) {
	h := newHarness(t)
	h.update(navigateMsg{dest: route.Chat{User: ana}})
	assert.Equal(t, screenLogin, h.model.screen)
	assert.NotEmpty(t, h.model.status)
}
