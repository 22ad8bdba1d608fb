package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringManager_APIToken(t *testing.T) {
	keyring.MockInit()
	km := NewKeyringManager(nil)

	require.True(t, km.IsAvailable())

	token, err := km.GetAPIToken()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, km.SetAPIToken("tok-1234567890"))
	token, err = km.GetAPIToken()
	require.NoError(t, err)
	assert.Equal(t, "tok-1234567890", token)

	require.NoError(t, km.DeleteAPIToken())
	require.NoError(t, km.DeleteAPIToken(), "deleting twice is not an error")

	assert.Error(t, km.SetAPIToken(""))
}

func TestResolveAPIToken_Precedence(t *testing.T) {
	keyring.MockInit()
	km := NewKeyringManager(nil)
	require.NoError(t, km.SetAPIToken("from-keychain"))

	cfg := Default()
	token, source := km.ResolveAPIToken(cfg)
	assert.Equal(t, "from-keychain", token)
	assert.Equal(t, "keychain", source)

	cfg.Sink.HTTP.Token = "from-config"
	token, source = km.ResolveAPIToken(cfg)
	assert.Equal(t, "from-config", token)
	assert.Equal(t, "config", source)

	t.Setenv("COLLEAGUES_API_TOKEN", "from-env")
	token, source = km.ResolveAPIToken(cfg)
	assert.Equal(t, "from-env", token)
	assert.Equal(t, "env", source)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "(not set)", MaskToken(""))
	assert.Equal(t, "***", MaskToken("short"))
	assert.Equal(t, "abcd...wxyz", MaskToken("abcdefghijklmnopqrstuvwxyz"))
}
