package pve

import (
	"context"
	"net/http"
	"strconv"

	"pvectl/internal/errors"
)

// ClusterStatusItem is one entry of GET /cluster/status.
type ClusterStatusItem struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	NodeID  uint64 `json:"nodeid"`
	Online  uint64 `json:"online"`
	Quorate uint64 `json:"quorate"`
}

// ClusterResource is one entry of GET /cluster/resources.
type ClusterResource struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Node    string  `json:"node"`
	VMID    uint32  `json:"vmid"`
	Status  string  `json:"status"`
	Name    string  `json:"name"`
	CPU     float64 `json:"cpu"`
	Mem     uint64  `json:"mem"`
	MaxMem  uint64  `json:"maxmem"`
	Disk    uint64  `json:"disk"`
	MaxDisk uint64  `json:"maxdisk"`
}

// Cluster resource type filters.
const (
	ResourceTypeVM      = "vm"
	ResourceTypeStorage = "storage"
	ResourceTypeNode    = "node"
	ResourceTypeSDN     = "sdn"
)

// ClusterStatus returns the cluster membership and quorum state.
func (c *Client) ClusterStatus(ctx context.Context) ([]ClusterStatusItem, error) {
	return call[[]ClusterStatusItem](ctx, c, http.MethodGet, "/cluster/status", nil, nil)
}

// ClusterResources lists cluster resources, optionally filtered by type.
func (c *Client) ClusterResources(ctx context.Context, resourceType string) ([]ClusterResource, error) {
	params := NewParams().SetOpt("type", resourceType)
	return call[[]ClusterResource](ctx, c, http.MethodGet, "/cluster/resources", params, nil)
}

// ClusterNextID returns the next free VMID. A non-zero vmid asks the server
// to verify that specific ID is free instead.
func (c *Client) ClusterNextID(ctx context.Context, vmid int) (int, error) {
	params := NewParams()
	if vmid > 0 {
		params.SetInt("vmid", vmid)
	}
	// The API returns the ID as a JSON string.
	id, err := call[string](ctx, c, http.MethodGet, "/cluster/nextid", params, nil)
	if err != nil {
		return 0, err
	}

	parsed, err := strconv.Atoi(id)
	if err != nil {
		return 0, errors.NewDecodeError(http.MethodGet, c.baseURL+apiPrefix+"/cluster/nextid", id, err)
	}
	return parsed, nil
}
