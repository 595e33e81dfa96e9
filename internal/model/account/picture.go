package account

import (
	"context"
	"errors"
)

// ErrPickCancelled is returned by a Picker when the user backs out.
var ErrPickCancelled = errors.New("image selection cancelled")

// Picture references an image chosen for the profile.
type Picture struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
}

// Picker yields a picture reference or ErrPickCancelled.
type Picker interface {
	Pick(ctx context.Context) (Picture, error)
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(ctx context.Context) (Picture, error)

// Pick calls f.
func (f PickerFunc) Pick(ctx context.Context) (Picture, error) {
	return f(ctx)
}
