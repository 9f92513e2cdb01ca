package pve

import (
	"context"
	"encoding/json"
	"net/http"
)

// NodeSummary is one entry of GET /nodes.
type NodeSummary struct {
	Node   string  `json:"node"`
	Status string  `json:"status"`
	CPU    float64 `json:"cpu"`
	Mem    uint64  `json:"mem"`
	MaxMem uint64  `json:"maxmem"`
	Uptime uint64  `json:"uptime"`
}

// NodeTask is one entry of a node's task list.
type NodeTask struct {
	UPID      string `json:"upid"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	User      string `json:"user"`
	StartTime uint64 `json:"starttime"`
	EndTime   uint64 `json:"endtime"`
}

// NetworkInterface is one entry of a node's network configuration.
type NetworkInterface struct {
	Iface     string `json:"iface"`
	Type      string `json:"type"`
	Active    int    `json:"active"`
	Autostart int    `json:"autostart"`
	Address   string `json:"address"`
	CIDR      string `json:"cidr"`
	Gateway   string `json:"gateway"`
	MTU       uint64 `json:"mtu"`
}

// NodeTasksQuery filters a node task listing.
type NodeTasksQuery struct {
	ErrorsOnly bool
	Limit      int
	Start      int
	UserFilter string
	TypeFilter string
	Source     string // "archive", "active", or "all"
	VMID       int
}

func (q NodeTasksQuery) toParams() Params {
	params := NewParams()
	if q.ErrorsOnly {
		params.SetBool("errors", true)
	}
	if q.Limit > 0 {
		params.SetInt("limit", q.Limit)
	}
	if q.Start > 0 {
		params.SetInt("start", q.Start)
	}
	params.SetOpt("userfilter", q.UserFilter)
	params.SetOpt("typefilter", q.TypeFilter)
	params.SetOpt("source", q.Source)
	if q.VMID > 0 {
		params.SetInt("vmid", q.VMID)
	}
	return params
}

// Nodes lists all cluster nodes.
func (c *Client) Nodes(ctx context.Context) ([]NodeSummary, error) {
	return call[[]NodeSummary](ctx, c, http.MethodGet, "/nodes", nil, nil)
}

// NodeStatus returns the raw status payload of one node.
func (c *Client) NodeStatus(ctx context.Context, node string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/nodes/"+escapePath(node)+"/status", nil, nil)
}

// NodeTasks lists tasks on one node.
func (c *Client) NodeTasks(ctx context.Context, node string, query NodeTasksQuery) ([]NodeTask, error) {
	return call[[]NodeTask](ctx, c, http.MethodGet, "/nodes/"+escapePath(node)+"/tasks", query.toParams(), nil)
}

// NodeNetwork lists network interfaces on one node, optionally filtered by
// interface type.
func (c *Client) NodeNetwork(ctx context.Context, node, interfaceType string) ([]NetworkInterface, error) {
	params := NewParams().SetOpt("type", interfaceType)
	return call[[]NetworkInterface](ctx, c, http.MethodGet, "/nodes/"+escapePath(node)+"/network", params, nil)
}
