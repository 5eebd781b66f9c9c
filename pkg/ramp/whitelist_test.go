package ramp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhitelistLifecycle(t *testing.T) {
	w := NewWhitelist()
	user := "0x1234567890123456789012345678901234567890"

	assert.False(t, w.IsWhitelisted(user, "USD"))

	// whitelisting requires prepared data
	assert.ErrorIs(t, w.WhitelistUser(user, "USD"), ErrUserDataNotFound)

	w.UpdateUser(user, "USD", "@handle", []string{"bank transfer", "cash"})
	assert.False(t, w.IsWhitelisted(user, "USD"))

	require.NoError(t, w.WhitelistUser(user, "USD"))
	assert.True(t, w.IsWhitelisted(user, "USD"))

	// whitelisting is per currency
	assert.False(t, w.IsWhitelisted(user, "EUR"))

	w.DelistUser(user, "USD")
	assert.False(t, w.IsWhitelisted(user, "USD"))

	// prepared data survives delisting
	require.NoError(t, w.WhitelistUser(user, "USD"))
	assert.True(t, w.IsWhitelisted(user, "USD"))
}

func TestWhitelistStagedUpdatesStayStagedUntilWhitelisted(t *testing.T) {
	w := NewWhitelist()
	user := "0x1234567890123456789012345678901234567890"

	w.UpdateUser(user, "USD", "@old", []string{"bank transfer"})
	require.NoError(t, w.WhitelistUser(user, "USD"))

	w.UpdateUser(user, "USD", "@new", []string{"cash"})

	data, err := w.UserData(user, "USD", true)
	require.NoError(t, err)
	assert.Equal(t, "@old", data.TelegramHandle)

	require.NoError(t, w.WhitelistUser(user, "USD"))

	data, err = w.UserData(user, "USD", true)
	require.NoError(t, err)
	assert.Equal(t, "@new", data.TelegramHandle)
	assert.Equal(t, []string{"cash"}, data.PaymentMethods)
}

func TestWhitelistUserDataPrivacy(t *testing.T) {
	w := NewWhitelist()
	user := "0x1234567890123456789012345678901234567890"

	w.UpdateUser(user, "USD", "@handle", []string{"bank transfer"})
	require.NoError(t, w.WhitelistUser(user, "USD"))

	public, err := w.UserData(user, "USD", false)
	require.NoError(t, err)
	assert.Equal(t, user, public.Address)
	assert.True(t, public.Whitelisted)
	assert.Empty(t, public.TelegramHandle)
	assert.Empty(t, public.PaymentMethods)

	private, err := w.UserData(user, "USD", true)
	require.NoError(t, err)
	assert.Equal(t, "@handle", private.TelegramHandle)
	assert.Equal(t, []string{"bank transfer"}, private.PaymentMethods)

	_, err = w.UserData("0x0000000000000000000000000000000000000000", "USD", true)
	assert.ErrorIs(t, err, ErrUserNotWhitelisted)
}
