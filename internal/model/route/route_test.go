package route

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/sentibot/internal/model/account"
)

type recordingNavigator struct {
	visited []Destination
}

func (n *recordingNavigator) Navigate(dest Destination) error {
	n.visited = append(n.visited, dest)
	return nil
}

func TestGoRejectsChatWithoutToken(t *testing.T) {
	nav := &recordingNavigator{}

	err := Go(nav, Chat{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingToken))
	assert.Empty(t, nav.visited)
}

func TestGoForwardsValidDestination(t *testing.T) {
	nav := &recordingNavigator{}
	user := account.User{ID: "u-1", Nombre: "Ana"}

	require.NoError(t, Go(nav, ForUser(user)))
	require.Len(t, nav.visited, 1)

	chat, ok := nav.visited[0].(Chat)
	require.True(t, ok)
	assert.Equal(t, "u-1", chat.Token)
	assert.Equal(t, "Chat", chat.Name())
}

func TestProfileRequiresUser(t *testing.T) {
	assert.ErrorIs(t, Profile{}.Validate(), ErrMissingUser)
	assert.NoError(t, Profile{User: account.User{ID: "x"}}.Validate())
}
