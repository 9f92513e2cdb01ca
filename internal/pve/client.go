// Package pve provides a typed client for the Proxmox VE REST API.
//
// A Client is built from Options carrying the target host, TLS and timeout
// settings, and a Credential describing one of the supported authentication
// schemes. Password credentials are exchanged for a session ticket once, at
// construction; the resulting session state is immutable afterwards, so a
// single Client is safe for concurrent use.
package pve

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	httpadapter "pvectl/internal/adapters/http"
	"pvectl/internal/errors"
	"pvectl/internal/logging"
)

// DefaultPort is the standard PVE API port.
const DefaultPort = 8006

// Options describes how to build a Client. Use NewOptions for defaults.
type Options struct {
	Host           string
	Port           int
	Scheme         string
	InsecureTLS    bool
	Timeout        time.Duration
	ConnectTimeout time.Duration
	Credential     Credential
	Logger         *slog.Logger
}

// NewOptions returns Options with the standard defaults: port 8006, https,
// TLS verification skipped, no timeouts, no credential.
func NewOptions(host string) *Options {
	return &Options{
		Host:        host,
		Port:        DefaultPort,
		Scheme:      "https",
		InsecureTLS: true,
		Credential:  NoCredential(),
	}
}

// WithPort sets the API port.
func (o *Options) WithPort(port int) *Options {
	o.Port = port
	return o
}

// WithScheme sets "https" or "http".
func (o *Options) WithScheme(scheme string) *Options {
	o.Scheme = scheme
	return o
}

// WithInsecureTLS controls certificate verification.
func (o *Options) WithInsecureTLS(insecure bool) *Options {
	o.InsecureTLS = insecure
	return o
}

// WithTimeout bounds the total duration of each request.
func (o *Options) WithTimeout(timeout time.Duration) *Options {
	o.Timeout = timeout
	return o
}

// WithConnectTimeout bounds connection establishment.
func (o *Options) WithConnectTimeout(timeout time.Duration) *Options {
	o.ConnectTimeout = timeout
	return o
}

// WithCredential sets the credential descriptor.
func (o *Options) WithCredential(cred Credential) *Options {
	o.Credential = cred
	return o
}

// WithLogger sets the logger used by the HTTP adapter for debug tracing.
func (o *Options) WithLogger(logger *slog.Logger) *Options {
	o.Logger = logger
	return o
}

// Client is the PVE API client facade. All domain operations dispatch through
// its transport; session state is fixed at construction.
type Client struct {
	host    string
	baseURL string
	adapter *httpadapter.Adapter
	session session
}

// New builds a Client from the given options. Credential validation and base
// URL construction happen before any network I/O; password credentials then
// perform one login exchange, and a failed login fails construction outright.
func New(ctx context.Context, opts *Options) (*Client, error) {
	if err := opts.Credential.validate(); err != nil {
		return nil, err
	}

	baseURL, host, err := buildBaseURL(opts.Host, opts.Port, opts.Scheme)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewTestLogger()
	}

	adapter := httpadapter.NewAdapter(httpadapter.Options{
		BaseURL:            baseURL,
		InsecureSkipVerify: opts.InsecureTLS,
		Timeout:            opts.Timeout,
		ConnectTimeout:     opts.ConnectTimeout,
	}, logger)

	// The login exchange itself dispatches through the transport, so the
	// client starts unauthenticated until the session is resolved.
	client := &Client{
		host:    host,
		baseURL: baseURL,
		adapter: adapter,
		session: session{kind: CredentialNone},
	}

	sess, err := client.resolveSession(ctx, opts.Credential)
	if err != nil {
		return nil, err
	}
	client.session = sess

	return client, nil
}

// Build validates the options and constructs the client.
func (o *Options) Build(ctx context.Context) (*Client, error) {
	return New(ctx, o)
}

// BaseURL returns the resolved scheme://host:port base.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AuthKind returns the authentication mode the client operates in.
func (c *Client) AuthKind() CredentialKind {
	return c.session.kind
}

// Connect issues one lightweight read-only call to surface authentication or
// network problems before the first real operation.
func (c *Client) Connect(ctx context.Context) error {
	_, err := c.Version(ctx)
	return err
}

// buildBaseURL validates the host and assembles scheme://host:port. The host
// must be a bare hostname or IP; embedded scheme-only prefixes are stripped,
// anything else (port, path, query, credentials) fails before network I/O.
func buildBaseURL(host string, port int, scheme string) (baseURL, cleanHost string, err error) {
	if scheme != "https" && scheme != "http" {
		return "", "", errors.NewConfigurationError("scheme", scheme, `scheme must be "https" or "http"`, nil)
	}
	if port <= 0 || port > 65535 {
		return "", "", errors.NewConfigurationError("port", fmt.Sprintf("%d", port), "port out of range", nil)
	}

	host = strings.TrimSpace(host)

	if strings.HasPrefix(host, "https://") || strings.HasPrefix(host, "http://") {
		parsed, parseErr := url.Parse(host)
		if parseErr != nil {
			return "", "", errors.NewConfigurationError("host", host,
				"invalid host URL, expected a hostname or IP without path/port", parseErr)
		}
		if parsed.Port() != "" {
			return "", "", errors.NewConfigurationError("host", host,
				"host must not include port, use Options.WithPort", nil)
		}
		if parsed.Path != "" && parsed.Path != "/" {
			return "", "", errors.NewConfigurationError("host", host,
				"host must not include path, API methods take relative paths", nil)
		}
		if parsed.RawQuery != "" || parsed.Fragment != "" {
			return "", "", errors.NewConfigurationError("host", host,
				"host must not include query or fragment", nil)
		}
		if parsed.User != nil {
			return "", "", errors.NewConfigurationError("host", host,
				"host must not include credentials", nil)
		}
		host = parsed.Hostname()
	}

	host = strings.TrimSuffix(host, "/")
	switch {
	case strings.Contains(host, "/"):
		return "", "", errors.NewConfigurationError("host", host,
			"host must not include path, API methods take relative paths", nil)
	case strings.ContainsAny(host, "?#"):
		return "", "", errors.NewConfigurationError("host", host,
			"host must not include query or fragment", nil)
	case strings.Contains(host, "@"):
		return "", "", errors.NewConfigurationError("host", host,
			"host must not include credentials", nil)
	}

	colons := strings.Count(host, ":")
	if strings.Contains(host, "]:") || (colons == 1 && !strings.HasPrefix(host, "[")) {
		return "", "", errors.NewConfigurationError("host", host,
			"host must not include port, use Options.WithPort", nil)
	}

	// Bare IPv6 addresses need brackets in a URL authority.
	if colons > 1 && !strings.HasPrefix(host, "[") && !strings.HasSuffix(host, "]") {
		host = "[" + host + "]"
	}

	if host == "" {
		return "", "", errors.NewConfigurationError("host", "", "host is empty", nil)
	}

	return fmt.Sprintf("%s://%s:%d", scheme, host, port), host, nil
}
