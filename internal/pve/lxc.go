package pve

import (
	"context"
	"encoding/json"
	"net/http"
)

// LxcSummary is one entry of a node's container listing.
type LxcSummary struct {
	VMID    uint32  `json:"vmid"`
	Name    string  `json:"name"`
	Status  string  `json:"status"`
	CPU     float64 `json:"cpu"`
	Mem     uint64  `json:"mem"`
	MaxMem  uint64  `json:"maxmem"`
	MaxDisk uint64  `json:"maxdisk"`
	Uptime  uint64  `json:"uptime"`
}

// LxcStatus is the payload of /status/current for one container.
type LxcStatus struct {
	VMID      uint32  `json:"vmid"`
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	CPU       float64 `json:"cpu"`
	Mem       uint64  `json:"mem"`
	MaxMem    uint64  `json:"maxmem"`
	MaxDisk   uint64  `json:"maxdisk"`
	NetIn     uint64  `json:"netin"`
	NetOut    uint64  `json:"netout"`
	DiskRead  uint64  `json:"diskread"`
	DiskWrite uint64  `json:"diskwrite"`
	Uptime    uint64  `json:"uptime"`
}

// LxcCreateRequest carries the common fields of container creation. Extra
// holds any additional endpoint parameters verbatim.
type LxcCreateRequest struct {
	VMID         int
	OSTemplate   string
	Hostname     string
	Memory       int
	Cores        int
	Password     string
	Storage      string
	RootFS       string
	Net0         string
	Unprivileged bool
	Extra        Params
}

func (r LxcCreateRequest) toParams() Params {
	params := NewParams().SetInt("vmid", r.VMID).
		Set("ostemplate", r.OSTemplate).
		SetOpt("hostname", r.Hostname).
		SetOpt("password", r.Password).
		SetOpt("storage", r.Storage).
		SetOpt("rootfs", r.RootFS).
		SetOpt("net0", r.Net0)
	if r.Memory > 0 {
		params.SetInt("memory", r.Memory)
	}
	if r.Cores > 0 {
		params.SetInt("cores", r.Cores)
	}
	if r.Unprivileged {
		params.SetBool("unprivileged", true)
	}
	if r.Extra != nil {
		params.Merge(r.Extra)
	}
	return params
}

func lxcPath(node string, vmid int, rest string) string {
	path := "/nodes/" + escapePath(node) + "/lxc"
	if vmid > 0 {
		path += "/" + itoa(vmid)
	}
	if rest != "" {
		path += rest
	}
	return path
}

// LxcList lists the containers on one node.
func (c *Client) LxcList(ctx context.Context, node string) ([]LxcSummary, error) {
	return call[[]LxcSummary](ctx, c, http.MethodGet, lxcPath(node, 0, ""), nil, nil)
}

// LxcCreate creates a container and returns the UPID of the creation task.
func (c *Client) LxcCreate(ctx context.Context, node string, req LxcCreateRequest) (string, error) {
	return call[string](ctx, c, http.MethodPost, lxcPath(node, 0, ""), nil, req.toParams())
}

// LxcConfig fetches the container configuration, optionally pinned to a
// snapshot.
func (c *Client) LxcConfig(ctx context.Context, node string, vmid int, snapshot string) (json.RawMessage, error) {
	params := NewParams().SetOpt("snapshot", snapshot)
	return c.do(ctx, http.MethodGet, lxcPath(node, vmid, "/config"), params, nil)
}

// LxcSetConfig applies configuration changes synchronously.
func (c *Client) LxcSetConfig(ctx context.Context, node string, vmid int, params Params) error {
	_, err := c.do(ctx, http.MethodPut, lxcPath(node, vmid, "/config"), nil, params)
	return err
}

// LxcStatusOf returns the current status of one container.
func (c *Client) LxcStatusOf(ctx context.Context, node string, vmid int) (LxcStatus, error) {
	return call[LxcStatus](ctx, c, http.MethodGet, lxcPath(node, vmid, "/status/current"), nil, nil)
}

// LxcStart starts the container and returns the task UPID.
func (c *Client) LxcStart(ctx context.Context, node string, vmid int, params Params) (string, error) {
	return c.lxcAction(ctx, node, vmid, "start", params)
}

// LxcShutdown requests a clean shutdown and returns the task UPID.
func (c *Client) LxcShutdown(ctx context.Context, node string, vmid int, params Params) (string, error) {
	return c.lxcAction(ctx, node, vmid, "shutdown", params)
}

// LxcStop hard-stops the container and returns the task UPID.
func (c *Client) LxcStop(ctx context.Context, node string, vmid int, params Params) (string, error) {
	return c.lxcAction(ctx, node, vmid, "stop", params)
}

// LxcReboot reboots the container and returns the task UPID.
func (c *Client) LxcReboot(ctx context.Context, node string, vmid int, params Params) (string, error) {
	return c.lxcAction(ctx, node, vmid, "reboot", params)
}

// LxcSnapshots lists the snapshots of one container.
func (c *Client) LxcSnapshots(ctx context.Context, node string, vmid int) ([]SnapshotInfo, error) {
	return call[[]SnapshotInfo](ctx, c, http.MethodGet, lxcPath(node, vmid, "/snapshot"), nil, nil)
}

// LxcSnapshotCreate creates a snapshot and returns the task UPID.
func (c *Client) LxcSnapshotCreate(ctx context.Context, node string, vmid int, snapname, description string) (string, error) {
	params := NewParams().Set("snapname", snapname).SetOpt("description", description)
	return call[string](ctx, c, http.MethodPost, lxcPath(node, vmid, "/snapshot"), nil, params)
}

// LxcSnapshotRollback rolls back to a snapshot and returns the task UPID.
func (c *Client) LxcSnapshotRollback(ctx context.Context, node string, vmid int, snapname string) (string, error) {
	path := lxcPath(node, vmid, "/snapshot/"+escapePath(snapname)+"/rollback")
	return call[string](ctx, c, http.MethodPost, path, nil, nil)
}

// LxcMigrate migrates the container to another node and returns the task
// UPID.
func (c *Client) LxcMigrate(ctx context.Context, node string, vmid int, target string, params Params) (string, error) {
	body := NewParams().Set("target", target)
	if params != nil {
		body.Merge(params)
	}
	return call[string](ctx, c, http.MethodPost, lxcPath(node, vmid, "/migrate"), nil, body)
}

func (c *Client) lxcAction(ctx context.Context, node string, vmid int, action string, params Params) (string, error) {
	return call[string](ctx, c, http.MethodPost, lxcPath(node, vmid, "/status/"+action), nil, params)
}
