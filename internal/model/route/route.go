// Package route enumerates the screens a front-end can navigate to and the
// payload each one requires.
package route

import (
	"errors"
	"fmt"

	"github.com/zhouzirui/sentibot/internal/model/account"
)

var (
	ErrMissingToken = errors.New("chat destination requires a token")
	ErrMissingUser  = errors.New("destination requires a user id")
)

// Destination is a closed set: only types in this package implement it.
type Destination interface {
	Name() string
	Validate() error
	destination()
}

// Login is the sign-in screen.
type Login struct{}

// Register is the sign-up screen.
type Register struct{}

// Chat is the conversation screen for an authenticated user.
type Chat struct {
	User  account.User
	Token string
}

// Profile shows the user's profile and picture.
type Profile struct {
	User account.User
}

func (Login) Name() string    { return "Login" }
func (Register) Name() string { return "Register" }
func (Chat) Name() string     { return "Chat" }
func (Profile) Name() string  { return "Profile" }

func (Login) Validate() error    { return nil }
func (Register) Validate() error { return nil }

func (c Chat) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

func (p Profile) Validate() error {
	if p.User.ID == "" {
		return ErrMissingUser
	}
	return nil
}

func (Login) destination()    {}
func (Register) destination() {}
func (Chat) destination()     {}
func (Profile) destination()  {}

// Navigator switches the visible screen.
type Navigator interface {
	Navigate(dest Destination) error
}

// Go validates dest before handing it to nav.
func Go(nav Navigator, dest Destination) error {
	if dest == nil {
		return errors.New("nil destination")
	}
	if err := dest.Validate(); err != nil {
		return fmt.Errorf("navigate to %s: %w", dest.Name(), err)
	}
	return nav.Navigate(dest)
}

// ForUser picks the destination after a successful sign-in: the chat screen,
// addressed by the user's id.
func ForUser(user account.User) Chat {
	return Chat{User: user, Token: user.ID}
}
