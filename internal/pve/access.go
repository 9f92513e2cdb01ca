package pve

import (
	"context"
	"net/http"
)

// loginPath is the fixed authentication endpoint.
const loginPath = "/access/ticket"

// TicketRequest carries the fields of a password login exchange.
type TicketRequest struct {
	Username     string
	Password     string
	OTP          string
	Realm        string
	TFAChallenge string
}

func (r TicketRequest) toParams() Params {
	return NewParams().
		Set("username", r.Username).
		Set("password", r.Password).
		SetOpt("otp", r.OTP).
		SetOpt("realm", r.Realm).
		SetOpt("tfa-challenge", r.TFAChallenge)
}

// TicketInfo is the payload returned by a successful login.
type TicketInfo struct {
	Username            string `json:"username"`
	Ticket              string `json:"ticket"`
	CSRFPreventionToken string `json:"CSRFPreventionToken"`
	ClusterName         string `json:"clustername"`
}

// RequestTicket performs a login exchange and returns the session ticket and
// CSRF token. It does not change the client's own session; use a password
// credential at construction for that.
func (c *Client) RequestTicket(ctx context.Context, req TicketRequest) (TicketInfo, error) {
	return call[TicketInfo](ctx, c, http.MethodPost, loginPath, nil, req.toParams())
}

// Version returns the API server version. Used by Connect as the eager probe.
func (c *Client) Version(ctx context.Context) (VersionInfo, error) {
	return call[VersionInfo](ctx, c, http.MethodGet, "/version", nil, nil)
}
