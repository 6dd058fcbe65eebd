package auth

import (
	"context"
	"testing"

	"github.com/raywall/fast-fetch-toolkit/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	src, err := New(ctx, config.CredentialConf{})
	require.NoError(t, err)
	env, ok := src.(*EnvSource)
	require.True(t, ok)
	assert.Equal(t, DefaultEnvName, env.Name)

	src, err = New(ctx, config.CredentialConf{Type: "static", Value: "v"})
	require.NoError(t, err)
	assert.Equal(t, StaticSource("v"), src)

	src, err = New(ctx, config.CredentialConf{Type: "oauth2", OAuth: config.OAuthConf{TokenURL: "http://x", ClientID: "c"}})
	require.NoError(t, err)
	assert.IsType(t, &ClientCredentialsSource{}, src)

	_, err = New(ctx, config.CredentialConf{Type: "kerberos"})
	assert.Error(t, err)
}
