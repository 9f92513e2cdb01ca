package pve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "pvectl/internal/errors"
)

func TestValidateAPITokenFormat(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"well formed", "root@pam!automation=12345678-abcd-abcd-abcd-123456789abc", false},
		{"missing bang", "root@pam=secret", true},
		{"missing at", "rootpam!id=secret", true},
		{"missing equals", "root@pam!id", true},
		{"empty user", "@pam!id=secret", true},
		{"empty realm", "root@!id=secret", true},
		{"empty token id", "root@pam!=secret", true},
		{"empty secret", "root@pam!id=", true},
		{"empty string", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAPITokenFormat(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apierrors.IsConfiguration(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAPITokenParts_Assembly(t *testing.T) {
	cred := APITokenParts("root", "pam", "automation", "s3cret")
	require.NoError(t, cred.validate())
	assert.Equal(t, CredentialAPIToken, cred.Kind())
	assert.Equal(t, "root@pam!automation=s3cret", cred.token)
}

func TestAPITokenParts_TrimsWhitespace(t *testing.T) {
	cred := APITokenParts(" root ", " pam ", " id ", " secret ")
	assert.Equal(t, "root@pam!id=secret", cred.token)
}

func TestCredentialValidate(t *testing.T) {
	tests := []struct {
		name    string
		cred    Credential
		wantErr bool
	}{
		{"none is always valid", NoCredential(), false},
		{"ticket requires ticket value", TicketCredential("", "csrf"), true},
		{"ticket without csrf is valid", TicketCredential("TICKET", ""), false},
		{"password requires username", PasswordCredential("", "pw"), true},
		{"password requires password", PasswordCredential("root@pam", ""), true},
		{"password well formed", PasswordCredential("root@pam", "pw"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cred.validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCredentialFromEnv_APIToken(t *testing.T) {
	t.Setenv(EnvAuthMethod, AuthMethodAPIToken)
	t.Setenv(EnvAPIToken, "root@pam!ci=aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	cred, err := CredentialFromEnv()
	require.NoError(t, err)
	assert.Equal(t, CredentialAPIToken, cred.Kind())
}

func TestCredentialFromEnv_APITokenPartial(t *testing.T) {
	t.Setenv(EnvAuthMethod, AuthMethodAPITokenPartial)
	t.Setenv(EnvAPITokenUser, "root")
	t.Setenv(EnvAPITokenRealm, "pam")
	t.Setenv(EnvAPITokenID, "ci")
	t.Setenv(EnvAPITokenSecret, "s3cret")

	cred, err := CredentialFromEnv()
	require.NoError(t, err)
	assert.Equal(t, CredentialAPIToken, cred.Kind())
	assert.Equal(t, "root@pam!ci=s3cret", cred.token)
}

func TestCredentialFromEnv_UsernamePassword(t *testing.T) {
	t.Setenv(EnvAuthMethod, AuthMethodUsernamePassword)
	t.Setenv(EnvUsername, "root@pam")
	t.Setenv(EnvPassword, "hunter2")
	t.Setenv(EnvRealm, "pam")

	cred, err := CredentialFromEnv()
	require.NoError(t, err)
	assert.Equal(t, CredentialPassword, cred.Kind())
	assert.Equal(t, "root@pam", cred.username)
	assert.Equal(t, "pam", cred.realm)
}

func TestCredentialFromEnv_MissingRequiredVariable(t *testing.T) {
	t.Setenv(EnvAuthMethod, AuthMethodAPIToken)
	t.Setenv(EnvAPIToken, "")

	_, err := CredentialFromEnv()
	require.Error(t, err)
	assert.True(t, apierrors.IsConfiguration(err))
	assert.Contains(t, err.Error(), EnvAPIToken)
}

func TestCredentialFromEnv_UnknownMethod(t *testing.T) {
	t.Setenv(EnvAuthMethod, "KERBEROS")

	_, err := CredentialFromEnv()
	require.Error(t, err)
	assert.True(t, apierrors.IsConfiguration(err))
}

func TestCredentialFromEnv_MissingMethod(t *testing.T) {
	t.Setenv(EnvAuthMethod, "")

	_, err := CredentialFromEnv()
	require.Error(t, err)
	assert.True(t, apierrors.IsConfiguration(err))
}
