package pve

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"pvectl/internal/errors"
)

// session is the resolved, request-signing form of a credential. It is set
// exactly once during client construction and never mutated afterwards, which
// keeps concurrent signing lock-free. The core performs no automatic
// re-authentication: a server-side expired ticket surfaces as a 401/403 on
// the next call, and re-login is the caller's decision.
type session struct {
	kind CredentialKind

	token string

	ticket     string
	csrf       string
	obtainedAt time.Time
}

// resolveSession turns a credential into signing state. Password credentials
// issue one login exchange; its failure fails client construction.
func (c *Client) resolveSession(ctx context.Context, cred Credential) (session, error) {
	switch cred.kind {
	case CredentialNone:
		return session{kind: CredentialNone}, nil

	case CredentialAPIToken:
		return session{kind: CredentialAPIToken, token: cred.token}, nil

	case CredentialTicket:
		return session{
			kind:       CredentialTicket,
			ticket:     cred.ticket,
			csrf:       cred.csrf,
			obtainedAt: time.Now(),
		}, nil

	case CredentialPassword:
		info, err := c.RequestTicket(ctx, TicketRequest{
			Username:     cred.username,
			Password:     cred.password,
			OTP:          cred.otp,
			Realm:        cred.realm,
			TFAChallenge: cred.tfaChallenge,
		})
		if err != nil {
			return session{}, errors.NewAuthenticationError(c.host, cred.username, err)
		}
		if info.Ticket == "" || info.CSRFPreventionToken == "" {
			return session{}, errors.NewAuthenticationError(c.host, cred.username,
				errors.NewDecodeError(http.MethodPost, loginPath, "",
					errors.NewValidationError("ticket", "", "required", "login response missing ticket or CSRF token")))
		}
		return session{
			kind:       CredentialTicket,
			ticket:     info.Ticket,
			csrf:       info.CSRFPreventionToken,
			obtainedAt: time.Now(),
		}, nil

	default:
		return session{}, errors.NewConfigurationError("credential", string(cred.kind), "unknown credential kind", nil)
	}
}

// sign attaches exactly the headers the active mode requires. Token mode is a
// single static Authorization header and never a CSRF header; ticket mode is
// the session cookie plus, on state-mutating methods only, the CSRF header.
func (s session) sign(req *resty.Request, method string) error {
	switch s.kind {
	case CredentialNone:
		return nil

	case CredentialAPIToken:
		req.SetHeader("Authorization", "PVEAPIToken="+s.token)
		return nil

	case CredentialTicket:
		req.SetHeader("Cookie", "PVEAuthCookie="+s.ticket)
		if isWriteMethod(method) {
			if s.csrf == "" {
				return errors.NewConfigurationError("csrf", "",
					"missing CSRF token for write request in ticket mode", nil)
			}
			req.SetHeader("CSRFPreventionToken", s.csrf)
		}
		return nil

	default:
		return errors.NewConfigurationError("credential", string(s.kind), "unknown session kind", nil)
	}
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}
