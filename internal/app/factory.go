package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"pvectl/internal/config"
	"pvectl/internal/errors"
	"pvectl/internal/pve"
)

const (
	// defaultRequestTimeout bounds each API request end to end.
	defaultRequestTimeout = 30 * time.Second
	// defaultConnectTimeout bounds connection establishment.
	defaultConnectTimeout = 10 * time.Second
)

// ClientForServer builds an authenticated API client for a stored server
// profile. The profile never stores secrets; token secrets and passwords are
// resolved from the environment or, for passwords, an interactive prompt.
func (a *App) ClientForServer(ctx context.Context, server config.Server) (*pve.Client, error) {
	cred, err := a.credentialForServer(ctx, server)
	if err != nil {
		return nil, err
	}

	opts := pve.NewOptions(server.Host).
		WithInsecureTLS(server.InsecureTLS).
		WithTimeout(defaultRequestTimeout).
		WithConnectTimeout(defaultConnectTimeout).
		WithCredential(cred).
		WithLogger(a.Logger)
	if server.Port != 0 {
		opts = opts.WithPort(server.Port)
	}

	return opts.Build(ctx)
}

func (a *App) credentialForServer(ctx context.Context, server config.Server) (pve.Credential, error) {
	switch server.AuthMethod {
	case "api-token":
		if secret := os.Getenv(pve.EnvAPITokenSecret); secret != "" && server.TokenID != "" {
			return pve.APIToken(server.TokenID + "=" + secret), nil
		}
		if token := os.Getenv(pve.EnvAPIToken); token != "" {
			return pve.APIToken(token), nil
		}
		return pve.Credential{}, errors.NewConfigurationError(
			"auth_method",
			server.AuthMethod,
			fmt.Sprintf("set %s, or %s for the stored token id", pve.EnvAPIToken, pve.EnvAPITokenSecret),
			nil,
		)

	case "password":
		username := server.Username
		if username == "" {
			username = os.Getenv(pve.EnvUsername)
		}
		if username == "" {
			return pve.Credential{}, errors.NewConfigurationError(
				"username", "", "profile has no username and "+pve.EnvUsername+" is not set", nil)
		}
		prompt := fmt.Sprintf("Password for %s@%s: ", username, server.Host)
		password, err := a.PasswordReader.ReadPassword(ctx, prompt)
		if err != nil {
			return pve.Credential{}, fmt.Errorf("failed to read password: %w", err)
		}
		return pve.PasswordCredentialWithOptions(username, password, pve.PasswordOptions{
			Realm: server.Realm,
		}), nil

	default:
		return pve.Credential{}, errors.NewConfigurationError(
			"auth_method",
			server.AuthMethod,
			fmt.Sprintf("auth method must be one of: %s", config.GetSupportedAuthMethodsString()),
			nil,
		)
	}
}
