package pve

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"pvectl/internal/errors"
)

// CredentialKind identifies one of the closed set of credential variants.
type CredentialKind string

const (
	// CredentialNone performs no authentication.
	CredentialNone CredentialKind = "none"
	// CredentialAPIToken uses a static token in user@realm!tokenid=secret form.
	CredentialAPIToken CredentialKind = "api_token"
	// CredentialTicket uses a pre-obtained session ticket and CSRF token.
	CredentialTicket CredentialKind = "ticket"
	// CredentialPassword performs a login exchange at construction time.
	CredentialPassword CredentialKind = "password"
)

const apiTokenFormatHint = "expected <user>@<realm>!<tokenid>=<secret>"

// Credential is an immutable description of how to authenticate. Exactly one
// variant is active; use the constructors rather than building the struct by
// hand.
type Credential struct {
	kind CredentialKind

	token string

	ticket string
	csrf   string

	username     string
	password     string
	otp          string
	realm        string
	tfaChallenge string
}

// PasswordOptions carries the optional fields of a password login.
type PasswordOptions struct {
	OTP          string
	Realm        string
	TFAChallenge string
}

// NoCredential returns the unauthenticated variant.
func NoCredential() Credential {
	return Credential{kind: CredentialNone}
}

// APIToken returns a token credential from an assembled token string.
func APIToken(token string) Credential {
	return Credential{kind: CredentialAPIToken, token: strings.TrimSpace(token)}
}

// APITokenParts assembles a token credential from its four components.
func APITokenParts(user, realm, tokenID, secret string) Credential {
	token := fmt.Sprintf("%s@%s!%s=%s",
		strings.TrimSpace(user), strings.TrimSpace(realm),
		strings.TrimSpace(tokenID), strings.TrimSpace(secret))
	return Credential{kind: CredentialAPIToken, token: token}
}

// TicketCredential returns a credential built from a pre-obtained ticket.
// The csrf value may be empty, in which case write requests will fail at
// signing time.
func TicketCredential(ticket, csrf string) Credential {
	return Credential{kind: CredentialTicket, ticket: ticket, csrf: csrf}
}

// PasswordCredential returns a password-login credential.
func PasswordCredential(username, password string) Credential {
	return Credential{kind: CredentialPassword, username: username, password: password}
}

// PasswordCredentialWithOptions returns a password-login credential with
// optional OTP, realm, and TFA challenge fields.
func PasswordCredentialWithOptions(username, password string, opts PasswordOptions) Credential {
	return Credential{
		kind:         CredentialPassword,
		username:     username,
		password:     password,
		otp:          opts.OTP,
		realm:        opts.Realm,
		tfaChallenge: opts.TFAChallenge,
	}
}

// Kind returns the active variant.
func (c Credential) Kind() CredentialKind {
	return c.kind
}

// validate catches malformed credentials before any network I/O.
func (c Credential) validate() error {
	switch c.kind {
	case CredentialNone:
		return nil
	case CredentialAPIToken:
		return validateAPITokenFormat(c.token)
	case CredentialTicket:
		if c.ticket == "" {
			return errors.NewConfigurationError("ticket", "", "ticket must not be empty", nil)
		}
		return nil
	case CredentialPassword:
		if c.username == "" {
			return errors.NewConfigurationError("username", "", "username must not be empty", nil)
		}
		if c.password == "" {
			return errors.NewConfigurationError("password", "", "password must not be empty", nil)
		}
		return nil
	default:
		return errors.NewConfigurationError("credential", string(c.kind), "unknown credential kind", nil)
	}
}

// validateAPITokenFormat checks the user@realm!tokenid=secret shape: the
// separators must appear in order and every segment must be non-empty.
func validateAPITokenFormat(token string) error {
	userRealm, tokenPart, ok := strings.Cut(token, "!")
	if !ok {
		return errors.NewConfigurationError("api_token", token, "api token format invalid, "+apiTokenFormatHint, nil)
	}
	user, realm, ok := strings.Cut(userRealm, "@")
	if !ok {
		return errors.NewConfigurationError("api_token", token, "api token format invalid, "+apiTokenFormatHint, nil)
	}
	tokenID, secret, ok := strings.Cut(tokenPart, "=")
	if !ok {
		return errors.NewConfigurationError("api_token", token, "api token format invalid, "+apiTokenFormatHint, nil)
	}
	if user == "" || realm == "" || tokenID == "" || secret == "" {
		return errors.NewConfigurationError("api_token", token, "api token format invalid, "+apiTokenFormatHint, nil)
	}
	return nil
}

// Environment variables recognized by CredentialFromEnv.
const (
	EnvAuthMethod     = "PVE_AUTH_METHOD"
	EnvAPIToken       = "PVE_API_TOKEN"
	EnvAPITokenUser   = "PVE_API_TOKEN_USER"
	EnvAPITokenRealm  = "PVE_API_TOKEN_REALM"
	EnvAPITokenID     = "PVE_API_TOKEN_ID"
	EnvAPITokenSecret = "PVE_API_TOKEN_SECRET"
	EnvUsername       = "PVE_USERNAME"
	EnvPassword       = "PVE_PASSWORD"
	EnvOTP            = "PVE_OTP"
	EnvRealm          = "PVE_REALM"
	EnvTFAChallenge   = "PVE_TFA_CHALLENGE"
)

// Auth method values accepted in PVE_AUTH_METHOD.
const (
	AuthMethodAPIToken         = "API_TOKEN"
	AuthMethodAPITokenPartial  = "API_TOKEN_PARTIAL"
	AuthMethodUsernamePassword = "USERNAME_PASSWORD"
)

// CredentialFromEnv resolves a credential from PVE_AUTH_METHOD-driven
// environment variables. Missing or empty required variables fail with a
// configuration error naming the variable.
func CredentialFromEnv() (Credential, error) {
	v := viper.New()
	v.AutomaticEnv()
	return credentialFromViper(v)
}

func credentialFromViper(v *viper.Viper) (Credential, error) {
	method, err := requiredEnv(v, EnvAuthMethod)
	if err != nil {
		return Credential{}, err
	}

	switch method {
	case AuthMethodAPIToken:
		token, err := requiredEnv(v, EnvAPIToken)
		if err != nil {
			return Credential{}, err
		}
		cred := APIToken(token)
		if err := cred.validate(); err != nil {
			return Credential{}, err
		}
		return cred, nil

	case AuthMethodAPITokenPartial:
		user, err := requiredEnv(v, EnvAPITokenUser)
		if err != nil {
			return Credential{}, err
		}
		realm, err := requiredEnv(v, EnvAPITokenRealm)
		if err != nil {
			return Credential{}, err
		}
		tokenID, err := requiredEnv(v, EnvAPITokenID)
		if err != nil {
			return Credential{}, err
		}
		secret, err := requiredEnv(v, EnvAPITokenSecret)
		if err != nil {
			return Credential{}, err
		}
		cred := APITokenParts(user, realm, tokenID, secret)
		if err := cred.validate(); err != nil {
			return Credential{}, err
		}
		return cred, nil

	case AuthMethodUsernamePassword:
		username, err := requiredEnv(v, EnvUsername)
		if err != nil {
			return Credential{}, err
		}
		password, err := requiredEnv(v, EnvPassword)
		if err != nil {
			return Credential{}, err
		}
		return PasswordCredentialWithOptions(username, password, PasswordOptions{
			OTP:          optionalEnv(v, EnvOTP),
			Realm:        optionalEnv(v, EnvRealm),
			TFAChallenge: optionalEnv(v, EnvTFAChallenge),
		}), nil

	default:
		return Credential{}, errors.NewConfigurationError(
			EnvAuthMethod,
			method,
			fmt.Sprintf("unsupported auth method, expected %s | %s | %s",
				AuthMethodAPIToken, AuthMethodAPITokenPartial, AuthMethodUsernamePassword),
			nil,
		)
	}
}

func requiredEnv(v *viper.Viper, name string) (string, error) {
	value := strings.TrimSpace(v.GetString(name))
	if value == "" {
		return "", errors.NewConfigurationError(name, "", fmt.Sprintf("missing env var %s", name), nil)
	}
	return value, nil
}

func optionalEnv(v *viper.Viper, name string) string {
	return strings.TrimSpace(v.GetString(name))
}
