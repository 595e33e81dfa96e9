package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/sentibot/internal/analysis/sentiment"
	"github.com/zhouzirui/sentibot/internal/model/account"
	"github.com/zhouzirui/sentibot/internal/model/chat"
	"github.com/zhouzirui/sentibot/internal/model/route"
	"github.com/zhouzirui/sentibot/internal/service/conversation"
)

// chrome is the number of rows used by the header, input and help lines.
const chrome = 5

type chatView struct {
	user    account.User
	session *conversation.Session
	mail    *mailbox

	messages []chat.Message
	inflight map[uint64]bool
	failed   map[uint64]bool

	transcript viewport.Model
	input      textinput.Model

	mood           *sentiment.Summary
	summary        *sentiment.Summary
	loadingSummary bool
	historyErr     error
}

func newChatView(user account.User, session *conversation.Session, mail *mailbox, width, height int) chatView {
	input := textinput.New()
	input.Placeholder = "Escribe un mensaje..."
	input.CharLimit = 500
	input.Prompt = "> "
	input.Focus()

	v := chatView{
		user:       user,
		session:    session,
		mail:       mail,
		inflight:   make(map[uint64]bool),
		failed:     make(map[uint64]bool),
		transcript: viewport.New(width, max(height-chrome, 1)),
		input:      input,
	}
	v.resize(width, height)
	return v
}

func (v *chatView) close() {
	if v.mail != nil {
		v.mail.close()
	}
}

func (v *chatView) resize(width, height int) {
	if v.session == nil {
		return
	}
	v.transcript.Width = width
	v.transcript.Height = max(height-chrome, 1)
	v.input.Width = max(width-4, 10)
	v.render()
}

func (v *chatView) update(msg tea.Msg) tea.Cmd {
	if v.session == nil {
		return nil
	}
	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	cmds = append(cmds, cmd)
	v.transcript, cmd = v.transcript.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (v *chatView) handleEvent(ev conversation.Event) {
	switch ev.Kind {
	case conversation.EventEchoed:
		v.inflight[ev.Turn] = true
	case conversation.EventReplied:
		delete(v.inflight, ev.Turn)
	case conversation.EventFailed:
		delete(v.inflight, ev.Turn)
		v.failed[ev.Turn] = true
	case conversation.EventHistoryLoaded:
		v.historyErr = nil
	case conversation.EventHistoryFailed:
		v.historyErr = ev.Err
	}
	if ev.Messages != nil || ev.Kind == conversation.EventHistoryLoaded {
		v.messages = ev.Messages
	}
	v.render()
}

func (v *chatView) render() {
	var b strings.Builder
	if v.historyErr != nil {
		b.WriteString(failedMarkStyle.Render("No se pudo cargar el historial"))
		b.WriteString("\n\n")
	}

	width := max(v.transcript.Width, 20)
	bubble := lipgloss.NewStyle().MaxWidth(width * 3 / 4)
	for _, msg := range v.messages {
		switch msg.Sender {
		case chat.SenderUser:
			line := userBubbleStyle.Render(msg.Text)
			switch {
			case v.failed[msg.Turn]:
				line += " " + failedMarkStyle.Render("⚠ no enviado")
			case v.inflight[msg.Turn]:
				line += " " + pendingMarkStyle.Render("enviando...")
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble.Render(line)))
		default:
			b.WriteString(bubble.Render(botBubbleStyle.Render(msg.Text)))
		}
		b.WriteString("\n\n")
	}

	v.transcript.SetContent(b.String())
	v.transcript.GotoBottom()
}

// bootstrap loads the stored conversation and the current mood together.
func bootstrap(ctx context.Context, session *conversation.Session) tea.Cmd {
	return func() tea.Msg {
		var mood sentiment.Summary
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			_, err := session.LoadHistory(gctx)
			return err
		})
		g.Go(func() error {
			mood = session.SentimentSummary(gctx)
			return nil
		})
		err := g.Wait()
		return bootstrapMsg{session: session, mood: mood, err: err}
	}
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.chat

	if v.summary != nil {
		if msg.String() == "esc" || msg.String() == "enter" || msg.String() == "ctrl+s" {
			v.summary = nil
		}
		return m, nil
	}

	switch msg.String() {
	case "enter":
		text := v.input.Value()
		if _, err := v.session.Send(m.ctx, text); err != nil {
			if !errors.Is(err, conversation.ErrEmptyMessage) {
				m.status = err.Error()
			}
			return m, nil
		}
		v.input.Reset()
		return m, nil

	case "ctrl+s":
		if v.loadingSummary {
			return m, nil
		}
		v.loadingSummary = true
		ctx, session := m.ctx, v.session
		return m, func() tea.Msg {
			return sentimentMsg{session: session, summary: session.SentimentSummary(ctx)}
		}

	case "ctrl+l":
		session, bridge := v.session, m.bridge
		return m, func() tea.Msg {
			if err := session.Logout(bridge); err != nil {
				return errMsg{err: err}
			}
			return nil
		}

	case "ctrl+p":
		return m, m.goTo(route.Profile{User: v.user})

	case "pgup", "pgdown":
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return m, cmd
}

func (m Model) viewChat() string {
	v := m.chat

	header := headerStyle.Render("Chat · " + v.user.DisplayName())
	if v.mood != nil && v.mood.Available {
		header += "  " + bandStyles[v.mood.Band].Render(bandLabel(v.mood.Band))
	}
	if v.session != nil && v.session.InFlight() > 0 {
		header += "  " + pendingMarkStyle.Render("Bot escribiendo...")
	}

	if v.summary != nil {
		box := boxStyle.Render(
			titleStyle.Render("Sentimiento") + "\n\n" +
				bandStyles[v.summary.Band].Render(v.summary.Text) + "\n\n" +
				helpStyle.Render("Esc: cerrar"),
		)
		return m.overlay(box)
	}

	footer := "ctrl+s: sentimiento  ctrl+p: perfil  ctrl+l: cerrar sesión  ctrl+c: salir"
	if v.loadingSummary {
		footer = "Calculando sentimiento..."
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s",
		header,
		v.transcript.View(),
		v.input.View(),
		helpStyle.Render(footer),
		m.statusLine(),
	)
}

func (m Model) viewProfile() string {
	u := m.chat.user
	foto := u.Foto
	if foto == "" {
		foto = dimStyle.Render("sin foto")
	}
	email := u.Email
	if email == "" {
		email = dimStyle.Render("no registrado")
	}

	content := fmt.Sprintf("%s\n\n%s  %s\n%s  %s\n%s  %s\n%s  %s\n\n%s",
		titleStyle.Render("Perfil"),
		fieldLabel("Nombre:", false), u.DisplayName(),
		fieldLabel("Email:", false), email,
		fieldLabel("Foto:", false), foto,
		fieldLabel("Token:", false), m.chat.session.Token(),
		helpStyle.Render("Esc: volver al chat"),
	)
	return m.overlay(boxStyle.Render(content))
}

func bandLabel(b sentiment.Band) string {
	switch b {
	case sentiment.Positive:
		return "ánimo positivo"
	case sentiment.Neutral:
		return "ánimo neutral"
	case sentiment.Negative:
		return "ánimo negativo"
	default:
		return ""
	}
}
