package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvectl/internal/adapters/terminal"
	"pvectl/internal/config"
	"pvectl/internal/errors"
	"pvectl/internal/pve"
	"pvectl/internal/testutil"
)

func testApp(t *testing.T) *App {
	t.Helper()
	return &App{
		PasswordReader: terminal.NewAdapter(strings.NewReader(""), &strings.Builder{}),
		Logger:         testutil.Logger(),
		Config:         &Config{},
	}
}

func TestCredentialForServer_APITokenFromEnv(t *testing.T) {
	t.Setenv(pve.EnvAPIToken, "root@pam!ci=aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	t.Setenv(pve.EnvAPITokenSecret, "")

	cred, err := testApp(t).credentialForServer(context.Background(), config.Server{
		Host:       "pve.example.com",
		AuthMethod: "api-token",
	})
	require.NoError(t, err)
	assert.Equal(t, pve.CredentialAPIToken, cred.Kind())
}

func TestCredentialForServer_StoredTokenIDWithSecret(t *testing.T) {
	t.Setenv(pve.EnvAPIToken, "")
	t.Setenv(pve.EnvAPITokenSecret, "s3cret")

	cred, err := testApp(t).credentialForServer(context.Background(), config.Server{
		Host:       "pve.example.com",
		AuthMethod: "api-token",
		TokenID:    "root@pam!automation",
	})
	require.NoError(t, err)
	assert.Equal(t, pve.CredentialAPIToken, cred.Kind())
}

func TestCredentialForServer_APITokenMissingEnv(t *testing.T) {
	t.Setenv(pve.EnvAPIToken, "")
	t.Setenv(pve.EnvAPITokenSecret, "")

	_, err := testApp(t).credentialForServer(context.Background(), config.Server{
		Host:       "pve.example.com",
		AuthMethod: "api-token",
	})
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))
}

func TestCredentialForServer_PasswordFromEnv(t *testing.T) {
	t.Setenv("PVE_PASSWORD", "hunter2")

	cred, err := testApp(t).credentialForServer(context.Background(), config.Server{
		Host:       "pve.example.com",
		AuthMethod: "password",
		Username:   "root@pam",
	})
	require.NoError(t, err)
	assert.Equal(t, pve.CredentialPassword, cred.Kind())
}

func TestCredentialForServer_PasswordMissingUsername(t *testing.T) {
	t.Setenv("PVE_USERNAME", "")

	_, err := testApp(t).credentialForServer(context.Background(), config.Server{
		Host:       "pve.example.com",
		AuthMethod: "password",
	})
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))
}

func TestCredentialForServer_UnknownMethod(t *testing.T) {
	_, err := testApp(t).credentialForServer(context.Background(), config.Server{
		Host:       "pve.example.com",
		AuthMethod: "kerberos",
	})
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))
}
