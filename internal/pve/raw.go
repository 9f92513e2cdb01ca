package pve

import (
	"context"
	"encoding/json"
	"net/http"
)

// Raw dispatches an arbitrary API call and returns the unwrapped payload.
// It is the escape hatch for endpoints without a typed wrapper; the path is
// relative to the API root, signing and envelope handling apply as usual.
func (c *Client) Raw(ctx context.Context, method, path string, query, form Params) (json.RawMessage, error) {
	return c.do(ctx, method, path, query, form)
}

// RawGet issues a GET through Raw.
func (c *Client) RawGet(ctx context.Context, path string, query Params) (json.RawMessage, error) {
	return c.Raw(ctx, http.MethodGet, path, query, nil)
}

// RawPost issues a POST through Raw.
func (c *Client) RawPost(ctx context.Context, path string, form Params) (json.RawMessage, error) {
	return c.Raw(ctx, http.MethodPost, path, nil, form)
}

// RawPut issues a PUT through Raw.
func (c *Client) RawPut(ctx context.Context, path string, form Params) (json.RawMessage, error) {
	return c.Raw(ctx, http.MethodPut, path, nil, form)
}

// RawDelete issues a DELETE through Raw.
func (c *Client) RawDelete(ctx context.Context, path string, query Params) (json.RawMessage, error) {
	return c.Raw(ctx, http.MethodDelete, path, query, nil)
}
