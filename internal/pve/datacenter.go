package pve

import (
	"context"
	"encoding/json"
	"net/http"
)

const datacenterOptionsPath = "/cluster/options"

// DatacenterUpdateRequest carries the commonly changed datacenter options.
// Extra passes any further option keys verbatim.
type DatacenterUpdateRequest struct {
	Keyboard   string
	Language   string
	Migration  string
	Console    string
	EmailFrom  string
	MaxWorkers int
	NextID     string
	Extra      Params
}

func (r DatacenterUpdateRequest) toParams() Params {
	params := NewParams().
		SetOpt("keyboard", r.Keyboard).
		SetOpt("language", r.Language).
		SetOpt("migration", r.Migration).
		SetOpt("console", r.Console).
		SetOpt("email-from", r.EmailFrom).
		SetOpt("next-id", r.NextID)
	if r.MaxWorkers > 0 {
		params.SetInt("max_workers", r.MaxWorkers)
	}
	if r.Extra != nil {
		params.Merge(r.Extra)
	}
	return params
}

// DatacenterConfig returns the datacenter options document. The key set is
// open-ended, so the payload stays raw.
func (c *Client) DatacenterConfig(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, datacenterOptionsPath, nil, nil)
}

// DatacenterUpdateConfig changes datacenter options.
func (c *Client) DatacenterUpdateConfig(ctx context.Context, req DatacenterUpdateRequest) error {
	_, err := c.do(ctx, http.MethodPut, datacenterOptionsPath, nil, req.toParams())
	return err
}
