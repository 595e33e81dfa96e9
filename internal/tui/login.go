package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhouzirui/sentibot/internal/model/account"
	"github.com/zhouzirui/sentibot/internal/model/route"
)

const (
	loginEmail = iota
	loginPassword
	loginFieldCount
)

type loginForm struct {
	inputs []textinput.Model
	focus  int
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 120
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 120
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginForm{inputs: []textinput.Model{email, password}}
}

func (f *loginForm) cycle(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + loginFieldCount) % loginFieldCount
	f.inputs[f.focus].Focus()
}

func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f loginForm) value(field int) string {
	return f.inputs[field].Value()
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	gateway := m.deps.Gateway

	switch msg.String() {
	case "tab", "down":
		m.login.cycle(1)
		return m, nil
	case "shift+tab", "up":
		m.login.cycle(-1)
		return m, nil
	case "ctrl+n":
		return m, m.goTo(route.Register{})
	}

	if m.busy {
		return m, nil
	}

	var cmd tea.Cmd
	switch msg.String() {
	case "enter":
		if m.login.focus == loginEmail {
			m.login.cycle(1)
			return m, nil
		}
		email := strings.TrimSpace(m.login.value(loginEmail))
		password := m.login.value(loginPassword)
		cmd = m.authenticate(func(ctx context.Context) (account.User, error) {
			return gateway.LoginWithEmail(ctx, email, password)
		})
	case "ctrl+g":
		if gateway.Available(account.ProviderGoogle) {
			cmd = m.authenticate(gateway.LoginWithGoogle)
		}
	case "ctrl+f":
		if gateway.Available(account.ProviderFacebook) {
			cmd = m.authenticate(gateway.LoginWithFacebook)
		}
	case "ctrl+b":
		if gateway.Available(account.ProviderBiometric) {
			cmd = m.authenticate(gateway.LoginWithBiometrics)
		}
	default:
		return m, m.login.update(msg)
	}

	if cmd != nil {
		m.busy = true
	}
	return m, cmd
}

func (m Model) viewLogin() string {
	f := m.login
	gateway := m.deps.Gateway

	shortcuts := []string{"Enter: Login with Email"}
	if gateway.Available(account.ProviderGoogle) {
		shortcuts = append(shortcuts, "ctrl+g: Login with Google")
	}
	if gateway.Available(account.ProviderFacebook) {
		shortcuts = append(shortcuts, "ctrl+f: Login with Facebook")
	}
	if gateway.Available(account.ProviderBiometric) {
		shortcuts = append(shortcuts, "ctrl+b: Login with Biometrics")
	}

	content := fmt.Sprintf(
		"%s\n\n%s  %s\n\n%s  %s\n\n%s\n\n%s\n%s",
		titleStyle.Render("Login"),
		fieldLabel("Email:", f.focus == loginEmail), f.inputs[loginEmail].View(),
		fieldLabel("Password:", f.focus == loginPassword), f.inputs[loginPassword].View(),
		dimStyle.Render(strings.Join(shortcuts, "\n")),
		helpStyle.Render("ctrl+n: Registrarse  Tab: siguiente  ctrl+c: salir"),
		m.statusLine(),
	)
	return m.overlay(boxStyle.Render(content))
}
