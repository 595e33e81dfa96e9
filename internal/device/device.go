// Package device provides terminal stand-ins for the capabilities a phone
// offers the sign-in flows: an image picker, social sign-in and a
// biometric prompt.
package device

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/zhouzirui/sentibot/internal/model/account"
	"github.com/zhouzirui/sentibot/internal/service/auth"
)

var ErrNotImage = errors.New("file is not an image")

// FilePicker picks the image at path. An empty path means the user skipped
// the picture.
func FilePicker(path string) account.Picker {
	return account.PickerFunc(func(context.Context) (account.Picture, error) {
		path = strings.TrimSpace(path)
		if path == "" {
			return account.Picture{}, account.ErrPickCancelled
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return account.Picture{}, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return account.Picture{}, err
		}
		if info.IsDir() {
			return account.Picture{}, fmt.Errorf("%s: %w", path, ErrNotImage)
		}

		mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(abs)))
		if !strings.HasPrefix(mimeType, "image/") {
			return account.Picture{}, fmt.Errorf("%s: %w", path, ErrNotImage)
		}
		return account.Picture{URI: "file://" + filepath.ToSlash(abs), MIMEType: mimeType}, nil
	})
}

// LocalProvider signs in against a provider registered for this machine.
// The token is derived from the client id and the OS account, so the same
// person on the same machine always maps to the same backend identity.
type LocalProvider struct {
	Username func() (string, error)
}

// SignIn returns the provider token for clientID.
func (p LocalProvider) SignIn(ctx context.Context, clientID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if clientID == "" {
		return "", auth.ErrServiceUnavailable
	}

	username := p.Username
	if username == nil {
		username = currentUsername
	}
	name, err := username()
	if err != nil {
		return "", fmt.Errorf("resolve local account: %w", err)
	}
	return clientID + ":" + name, nil
}

func currentUsername() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// ConfirmFunc shows reason to the user and reports their answer.
type ConfirmFunc func(ctx context.Context, reason string) (bool, error)

// Prompter implements the biometric prompt as an explicit confirmation.
type Prompter struct {
	Confirm ConfirmFunc
}

// Authenticate asks for confirmation; a refusal cancels the sign-in.
func (p Prompter) Authenticate(ctx context.Context, reason string) error {
	if p.Confirm == nil {
		return auth.ErrServiceUnavailable
	}
	ok, err := p.Confirm(ctx, reason)
	if err != nil {
		return err
	}
	if !ok {
		return auth.ErrSignInCancelled
	}
	return nil
}
