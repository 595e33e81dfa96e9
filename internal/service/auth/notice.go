package auth

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/zhouzirui/sentibot/internal/client"
)

// Reason classifies an auth failure for the blocking notice.
type Reason string

const (
	ReasonCancelled          Reason = "cancelled"
	ReasonInProgress         Reason = "in_progress"
	ReasonServiceUnavailable Reason = "service_unavailable"
	ReasonGeneric            Reason = "generic"
)

// Notice is the modal message shown after a failed auth flow.
type Notice struct {
	Reason  Reason
	Title   string
	Message string
}

// NoticeFor maps err to the notice the user should see.
func NoticeFor(err error) Notice {
	switch {
	case errors.Is(err, ErrSignInCancelled), errors.Is(err, context.Canceled):
		return Notice{Reason: ReasonCancelled, Title: "Inicio cancelado", Message: "Cancelaste el inicio de sesión."}
	case errors.Is(err, ErrSignInInProgress):
		return Notice{Reason: ReasonInProgress, Title: "En progreso", Message: "Ya hay un inicio de sesión en curso."}
	case unavailable(err):
		return Notice{Reason: ReasonServiceUnavailable, Title: "Servicio no disponible", Message: "El servicio de inicio de sesión no está disponible en este momento."}
	}

	notice := Notice{Reason: ReasonGeneric, Title: "Error", Message: "Ocurrió un error al iniciar sesión."}
	switch {
	case errors.Is(err, ErrMissingField):
		notice.Message = "Completa todos los campos obligatorios."
	case errors.Is(err, ErrInvalidEmail):
		notice.Message = "El correo electrónico no es válido."
	case errors.Is(err, ErrWeakPassword):
		notice.Message = "La contraseña debe tener al menos 6 caracteres."
	case errors.Is(err, ErrPasswordMismatch):
		notice.Message = "Las contraseñas no coinciden."
	case errors.Is(err, ErrNoRememberedUser):
		notice.Message = "Inicia sesión una vez con tu correo antes de usar la huella."
	default:
		var statusErr *client.StatusError
		if errors.As(err, &statusErr) {
			switch statusErr.Code {
			case http.StatusUnauthorized, http.StatusNotFound:
				notice.Message = "Credenciales incorrectas."
			case http.StatusConflict:
				notice.Message = "Ya existe una cuenta con esos datos."
			}
		}
	}
	return notice
}

func unavailable(err error) bool {
	if errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrProviderMissing) {
		return true
	}
	var statusErr *client.StatusError
	if errors.As(err, &statusErr) && statusErr.Code >= http.StatusInternalServerError {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
