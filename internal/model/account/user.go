package account

import "strings"

// User is the identity returned by every login and registration flow.
type User struct {
	ID       string `json:"id"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
	Foto     string `json:"foto,omitempty"`
}

// DisplayName joins first and last name, falling back to the email.
func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.Nombre) + " " + strings.TrimSpace(u.Apellido))
	if name == "" {
		return u.Email
	}
	return name
}

// Provider names a sign-in method.
type Provider string

const (
	ProviderEmail     Provider = "email"
	ProviderGoogle    Provider = "google"
	ProviderFacebook  Provider = "facebook"
	ProviderBiometric Provider = "biometric"
)

// Registration carries the profile fields of the email sign-up form.
type Registration struct {
	Nombre          string
	Apellido        string
	Email           string
	Password        string
	ConfirmPassword string
	Picture         *Picture
}
