package pve

import (
	"context"
	"encoding/json"
	"net/http"
)

// QemuSummary is one entry of a node's VM listing.
type QemuSummary struct {
	VMID    uint32  `json:"vmid"`
	Name    string  `json:"name"`
	Status  string  `json:"status"`
	CPU     float64 `json:"cpu"`
	Mem     uint64  `json:"mem"`
	MaxMem  uint64  `json:"maxmem"`
	MaxDisk uint64  `json:"maxdisk"`
	Uptime  uint64  `json:"uptime"`
}

// QemuStatus is the payload of /status/current for one VM.
type QemuStatus struct {
	VMID      uint32  `json:"vmid"`
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	QMPStatus string  `json:"qmpstatus"`
	CPU       float64 `json:"cpu"`
	Mem       uint64  `json:"mem"`
	MaxMem    uint64  `json:"maxmem"`
	NetIn     uint64  `json:"netin"`
	NetOut    uint64  `json:"netout"`
	DiskRead  uint64  `json:"diskread"`
	DiskWrite uint64  `json:"diskwrite"`
	Uptime    uint64  `json:"uptime"`
}

// QemuCreateRequest carries the common fields of VM creation. Extra holds
// any additional endpoint parameters verbatim.
type QemuCreateRequest struct {
	VMID    int
	Name    string
	Memory  int
	Cores   int
	Sockets int
	CPU     string
	BIOS    string
	OSType  string
	Agent   string
	Net0    string
	SCSI0   string
	Virtio0 string
	Machine string
	OnBoot  bool
	Extra   Params
}

func (r QemuCreateRequest) toParams() Params {
	params := NewParams().SetInt("vmid", r.VMID).
		SetOpt("name", r.Name).
		SetOpt("cpu", r.CPU).
		SetOpt("bios", r.BIOS).
		SetOpt("ostype", r.OSType).
		SetOpt("agent", r.Agent).
		SetOpt("net0", r.Net0).
		SetOpt("scsi0", r.SCSI0).
		SetOpt("virtio0", r.Virtio0).
		SetOpt("machine", r.Machine)
	if r.Memory > 0 {
		params.SetInt("memory", r.Memory)
	}
	if r.Cores > 0 {
		params.SetInt("cores", r.Cores)
	}
	if r.Sockets > 0 {
		params.SetInt("sockets", r.Sockets)
	}
	if r.OnBoot {
		params.SetBool("onboot", true)
	}
	if r.Extra != nil {
		params.Merge(r.Extra)
	}
	return params
}

// QemuCloneRequest carries the fields of a VM clone.
type QemuCloneRequest struct {
	NewID   int
	Name    string
	Target  string
	Storage string
	Full    bool
}

func (r QemuCloneRequest) toParams() Params {
	params := NewParams().SetInt("newid", r.NewID).
		SetOpt("name", r.Name).
		SetOpt("target", r.Target).
		SetOpt("storage", r.Storage)
	if r.Full {
		params.SetBool("full", true)
	}
	return params
}

func qemuPath(node string, vmid int, rest string) string {
	path := "/nodes/" + escapePath(node) + "/qemu"
	if vmid > 0 {
		path += "/" + itoa(vmid)
	}
	if rest != "" {
		path += rest
	}
	return path
}

// QemuList lists the VMs on one node.
func (c *Client) QemuList(ctx context.Context, node string, full bool) ([]QemuSummary, error) {
	params := NewParams()
	if full {
		params.SetBool("full", true)
	}
	return call[[]QemuSummary](ctx, c, http.MethodGet, qemuPath(node, 0, ""), params, nil)
}

// QemuCreate creates a VM and returns the UPID of the creation task.
func (c *Client) QemuCreate(ctx context.Context, node string, req QemuCreateRequest) (string, error) {
	return call[string](ctx, c, http.MethodPost, qemuPath(node, 0, ""), nil, req.toParams())
}

// QemuConfig fetches the VM configuration, optionally pinned to a snapshot.
func (c *Client) QemuConfig(ctx context.Context, node string, vmid int, snapshot string) (json.RawMessage, error) {
	params := NewParams().SetOpt("snapshot", snapshot)
	return c.do(ctx, http.MethodGet, qemuPath(node, vmid, "/config"), params, nil)
}

// QemuSetConfigAsync applies configuration changes as a background task and
// returns its UPID.
func (c *Client) QemuSetConfigAsync(ctx context.Context, node string, vmid int, params Params) (string, error) {
	return call[string](ctx, c, http.MethodPost, qemuPath(node, vmid, "/config"), nil, params)
}

// QemuSetConfigSync applies configuration changes synchronously.
func (c *Client) QemuSetConfigSync(ctx context.Context, node string, vmid int, params Params) error {
	_, err := c.do(ctx, http.MethodPut, qemuPath(node, vmid, "/config"), nil, params)
	return err
}

// QemuStatusOf returns the current status of one VM.
func (c *Client) QemuStatusOf(ctx context.Context, node string, vmid int) (QemuStatus, error) {
	return call[QemuStatus](ctx, c, http.MethodGet, qemuPath(node, vmid, "/status/current"), nil, nil)
}

// QemuStart starts the VM and returns the task UPID.
func (c *Client) QemuStart(ctx context.Context, node string, vmid int, params Params) (string, error) {
	return c.qemuAction(ctx, node, vmid, "start", params)
}

// QemuShutdown requests a clean shutdown and returns the task UPID.
func (c *Client) QemuShutdown(ctx context.Context, node string, vmid int, params Params) (string, error) {
	return c.qemuAction(ctx, node, vmid, "shutdown", params)
}

// QemuStop hard-stops the VM and returns the task UPID.
func (c *Client) QemuStop(ctx context.Context, node string, vmid int, params Params) (string, error) {
	return c.qemuAction(ctx, node, vmid, "stop", params)
}

// QemuReboot reboots the VM and returns the task UPID.
func (c *Client) QemuReboot(ctx context.Context, node string, vmid int, params Params) (string, error) {
	return c.qemuAction(ctx, node, vmid, "reboot", params)
}

// QemuSuspend suspends the VM and returns the task UPID.
func (c *Client) QemuSuspend(ctx context.Context, node string, vmid int, params Params) (string, error) {
	return c.qemuAction(ctx, node, vmid, "suspend", params)
}

// QemuResume resumes a suspended VM and returns the task UPID.
func (c *Client) QemuResume(ctx context.Context, node string, vmid int, params Params) (string, error) {
	return c.qemuAction(ctx, node, vmid, "resume", params)
}

// QemuSnapshots lists the snapshots of one VM.
func (c *Client) QemuSnapshots(ctx context.Context, node string, vmid int) ([]SnapshotInfo, error) {
	return call[[]SnapshotInfo](ctx, c, http.MethodGet, qemuPath(node, vmid, "/snapshot"), nil, nil)
}

// QemuSnapshotCreate creates a snapshot and returns the task UPID.
func (c *Client) QemuSnapshotCreate(ctx context.Context, node string, vmid int, snapname, description string) (string, error) {
	params := NewParams().Set("snapname", snapname).SetOpt("description", description)
	return call[string](ctx, c, http.MethodPost, qemuPath(node, vmid, "/snapshot"), nil, params)
}

// QemuSnapshotRollback rolls back to a snapshot and returns the task UPID.
func (c *Client) QemuSnapshotRollback(ctx context.Context, node string, vmid int, snapname string) (string, error) {
	path := qemuPath(node, vmid, "/snapshot/"+escapePath(snapname)+"/rollback")
	return call[string](ctx, c, http.MethodPost, path, nil, nil)
}

// QemuClone clones the VM and returns the task UPID.
func (c *Client) QemuClone(ctx context.Context, node string, vmid int, req QemuCloneRequest) (string, error) {
	return call[string](ctx, c, http.MethodPost, qemuPath(node, vmid, "/clone"), nil, req.toParams())
}

// QemuMigrate migrates the VM to another node and returns the task UPID.
func (c *Client) QemuMigrate(ctx context.Context, node string, vmid int, target string, params Params) (string, error) {
	body := NewParams().Set("target", target)
	if params != nil {
		body.Merge(params)
	}
	return call[string](ctx, c, http.MethodPost, qemuPath(node, vmid, "/migrate"), nil, body)
}

func (c *Client) qemuAction(ctx context.Context, node string, vmid int, action string, params Params) (string, error) {
	return call[string](ctx, c, http.MethodPost, qemuPath(node, vmid, "/status/"+action), nil, params)
}
