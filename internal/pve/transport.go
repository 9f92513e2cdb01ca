package pve

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime/multipart"
	"net"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"pvectl/internal/errors"
)

// apiPrefix is the fixed prefix every PVE API path lives under.
const apiPrefix = "/api2/json"

// envelope is the uniform {"data": ...} wrapper on all API responses. A
// missing "data" key leaves Data nil, while an explicit null is kept as the
// literal "null" bytes, so the two cases stay distinguishable.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// do dispatches one API call: normalize the path, attach query and form
// parameters, sign per the active auth mode, execute, and unwrap the
// envelope. The returned payload is raw JSON for domain-specific decoding.
func (c *Client) do(ctx context.Context, method, path string, query, form Params) (json.RawMessage, error) {
	req, fullURL, err := c.prepare(ctx, method, path, query)
	if err != nil {
		return nil, err
	}

	if len(form) > 0 {
		req.SetFormData(form)
	}

	resp, err := req.Execute(method, normalizeAPIPath(path))
	if err != nil {
		return nil, classifyTransportError(method, fullURL, err)
	}

	return decodeEnvelope(method, fullURL, resp)
}

// doMultipart dispatches a streaming multipart upload. The form body is
// assembled through a pipe so memory use stays bounded regardless of file
// size.
func (c *Client) doMultipart(ctx context.Context, method, path string, fields Params, fileField, fileName string, file io.Reader) (json.RawMessage, error) {
	req, fullURL, err := c.prepare(ctx, method, path, nil)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		for _, key := range fields.Keys() {
			if err := writer.WriteField(key, fields.Get(key)); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		part, err := writer.CreateFormFile(fileField, fileName)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	req.SetHeader("Content-Type", writer.FormDataContentType())
	req.SetBody(pr)

	resp, err := req.Execute(method, normalizeAPIPath(path))
	if err != nil {
		return nil, classifyTransportError(method, fullURL, err)
	}

	return decodeEnvelope(method, fullURL, resp)
}

// prepare builds a signed request. Paths carrying an embedded base URL are
// rejected to guard against double-prefixing.
func (c *Client) prepare(ctx context.Context, method, path string, query Params) (*resty.Request, string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return nil, "", errors.NewConfigurationError("path", path,
			"path must be relative to the API root, not a full URL", nil)
	}

	req := c.adapter.R(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	if err := c.session.sign(req, method); err != nil {
		return nil, "", err
	}

	return req, c.baseURL + normalizeAPIPath(path), nil
}

// decodeEnvelope maps the response to the error taxonomy: non-2xx is an HTTP
// error carrying status and raw body; a 2xx body without a well-formed
// "data" key is a decode error.
func decodeEnvelope(method, fullURL string, resp *resty.Response) (json.RawMessage, error) {
	raw := resp.RawBody()
	if raw == nil {
		return nil, errors.NewDecodeError(method, fullURL, "", stderrors.New("empty response body"))
	}
	defer raw.Close()

	body, err := io.ReadAll(raw)
	if err != nil {
		return nil, classifyTransportError(method, fullURL, err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, errors.NewHTTPError(resp.StatusCode(), method, fullURL, string(body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.NewDecodeError(method, fullURL, string(body), err)
	}
	if env.Data == nil {
		return nil, errors.NewDecodeError(method, fullURL, string(body),
			stderrors.New(`response envelope missing "data" key`))
	}

	return env.Data, nil
}

// call dispatches a request and decodes the unwrapped payload into T.
func call[T any](ctx context.Context, c *Client, method, path string, query, form Params) (T, error) {
	var out T
	raw, err := c.do(ctx, method, path, query, form)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, errors.NewDecodeError(method, c.baseURL+normalizeAPIPath(path), string(raw), err)
	}
	return out, nil
}

// decodeString decodes a raw payload expected to be a JSON string, such as
// the UPID returned by write operations.
func decodeString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errors.NewDecodeError("", "", string(raw), err)
	}
	return s, nil
}

// classifyTransportError distinguishes connect-phase timeouts from elapsed
// total request durations and wraps everything else as a plain network
// failure.
func classifyTransportError(method, fullURL string, err error) error {
	phase := errors.PhaseRequest
	timeout := false

	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		timeout = true
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		timeout = true
	}

	var opErr *net.OpError
	if stderrors.As(err, &opErr) && opErr.Op == "dial" {
		phase = errors.PhaseConnect
	}

	return errors.NewTransportError(method, fullURL, phase, timeout, err)
}

// normalizeAPIPath joins a caller path onto the fixed API prefix.
func normalizeAPIPath(path string) string {
	if strings.HasPrefix(path, apiPrefix) {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return apiPrefix + path
	}
	return apiPrefix + "/" + path
}

// escapePath percent-encodes one path segment.
func escapePath(segment string) string {
	return url.PathEscape(segment)
}
