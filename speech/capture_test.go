package speech

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnavailable(t *testing.T) {
	var c Unavailable
	assert.False(t, c.Available())
	assert.ErrorIs(t, c.Start(context.Background()), ErrUnavailable)
	assert.NoError(t, c.Stop(context.Background()))
}

func TestRemoteForwardsCommands(t *testing.T) {
	var sent []string
	r := NewRemote(func(action string) error {
		sent = append(sent, action)
		return nil
	}, true)

	require.NoError(t, r.Start(context.Background()))
	assert.True(t, r.Active())
	require.NoError(t, r.Stop(context.Background()))
	assert.False(t, r.Active())

	// stopping twice sends nothing more
	require.NoError(t, r.Stop(context.Background()))
	assert.Equal(t, []string{ActionStart, ActionStop}, sent)
}

func TestRemoteUnavailable(t *testing.T) {
	called := false
	r := NewRemote(func(string) error {
		called = true
		return nil
	}, true)
	r.SetAvailable(false)

	assert.ErrorIs(t, r.Start(context.Background()), ErrUnavailable)
	assert.False(t, called)
}

func TestRemoteSendFailure(t *testing.T) {
	r := NewRemote(func(string) error { return errors.New("closed") }, true)

	err := r.Start(context.Background())
	require.Error(t, err)
	assert.False(t, r.Active())
}

func TestRemoteEnded(t *testing.T) {
	var sent []string
	r := NewRemote(func(action string) error {
		sent = append(sent, action)
		return nil
	}, true)

	require.NoError(t, r.Start(context.Background()))
	r.Ended()
	require.NoError(t, r.Stop(context.Background()))
	assert.Equal(t, []string{ActionStart}, sent)
}
