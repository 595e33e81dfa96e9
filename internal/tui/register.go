package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhouzirui/sentibot/internal/model/account"
	"github.com/zhouzirui/sentibot/internal/model/route"
	"github.com/zhouzirui/sentibot/internal/service/auth"
)

const (
	regNombre = iota
	regApellido
	regEmail
	regPassword
	regConfirm
	regFoto
	regFieldCount
)

var registerLabels = [regFieldCount]string{
	"Nombre:",
	"Apellido:",
	"Email:",
	"Contraseña:",
	"Confirmar Contraseña:",
	"Foto (ruta):",
}

type registerForm struct {
	inputs []textinput.Model
	focus  int
}

func newRegisterForm() registerForm {
	placeholders := [regFieldCount]string{
		"Nombre",
		"Apellido",
		"Email",
		"Contraseña",
		"Confirmar Contraseña",
		"~/imagenes/perfil.png (opcional)",
	}

	inputs := make([]textinput.Model, regFieldCount)
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 120
		if i == regPassword || i == regConfirm {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		if i == regFoto {
			in.CharLimit = 300
		}
		inputs[i] = in
	}
	inputs[regNombre].Focus()

	return registerForm{inputs: inputs}
}

func (f *registerForm) cycle(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + regFieldCount) % regFieldCount
	f.inputs[f.focus].Focus()
}

func (f *registerForm) update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f registerForm) registration() account.Registration {
	return account.Registration{
		Nombre:          strings.TrimSpace(f.inputs[regNombre].Value()),
		Apellido:        strings.TrimSpace(f.inputs[regApellido].Value()),
		Email:           strings.TrimSpace(f.inputs[regEmail].Value()),
		Password:        f.inputs[regPassword].Value(),
		ConfirmPassword: f.inputs[regConfirm].Value(),
	}
}

func (m Model) updateRegister(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	gateway := m.deps.Gateway

	switch msg.String() {
	case "tab", "down":
		m.register.cycle(1)
		return m, nil
	case "shift+tab", "up":
		m.register.cycle(-1)
		return m, nil
	case "esc":
		return m, m.goTo(route.Login{})
	}

	if m.busy {
		return m, nil
	}

	var cmd tea.Cmd
	switch msg.String() {
	case "enter":
		if m.register.focus < regFieldCount-1 {
			m.register.cycle(1)
			return m, nil
		}
		reg := m.register.registration()
		if err := auth.ValidateRegistration(reg); err != nil {
			notice := auth.NoticeFor(err)
			m.notice = &notice
			return m, nil
		}
		picker := m.deps.Picker(m.register.inputs[regFoto].Value())
		cmd = m.authenticate(func(ctx context.Context) (account.User, error) {
			pic, err := auth.PickPicture(ctx, picker)
			if err != nil {
				return account.User{}, err
			}
			reg.Picture = pic
			return gateway.RegisterWithEmail(ctx, reg)
		})
	case "ctrl+g":
		if gateway.Available(account.ProviderGoogle) {
			cmd = m.authenticate(gateway.RegisterWithGoogle)
		}
	case "ctrl+f":
		if gateway.Available(account.ProviderFacebook) {
			cmd = m.authenticate(gateway.RegisterWithFacebook)
		}
	default:
		return m, m.register.update(msg)
	}

	if cmd != nil {
		m.busy = true
	}
	return m, cmd
}

func (m Model) viewRegister() string {
	f := m.register
	gateway := m.deps.Gateway

	var b strings.Builder
	b.WriteString(titleStyle.Render("Crea una cuenta"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Registrate para tener acceso a nuestras herramientas"))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		fmt.Fprintf(&b, "%s  %s\n", fieldLabel(registerLabels[i], f.focus == i), in.View())
	}

	shortcuts := []string{"Enter: Registrarse"}
	if gateway.Available(account.ProviderGoogle) {
		shortcuts = append(shortcuts, "ctrl+g: Registrarse con Google")
	}
	if gateway.Available(account.ProviderFacebook) {
		shortcuts = append(shortcuts, "ctrl+f: Registrarse con Facebook")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Join(shortcuts, "\n")))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("Esc: Ya tienes cuenta? Inicia Sesion"))
	if status := m.statusLine(); status != "" {
		b.WriteString("\n")
		b.WriteString(status)
	}

	return m.overlay(boxStyle.Width(72).Render(b.String()))
}
