package pve

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"pvectl/internal/errors"
)

// StorageIndexItem is one entry of GET /storage.
type StorageIndexItem struct {
	Storage string `json:"storage"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// NodeStorageStatus is one entry of a node's storage status listing.
type NodeStorageStatus struct {
	Storage string `json:"storage"`
	Type    string `json:"type"`
	Active  int    `json:"active"`
	Enabled int    `json:"enabled"`
	Used    uint64 `json:"used"`
	Avail   uint64 `json:"avail"`
	Total   uint64 `json:"total"`
	Shared  int    `json:"shared"`
	Content string `json:"content"`
}

// StorageContentItem is one volume in a storage content listing.
type StorageContentItem struct {
	VolID  string `json:"volid"`
	Format string `json:"format"`
	Size   uint64 `json:"size"`
	Used   uint64 `json:"used"`
	VMID   uint32 `json:"vmid"`
	CTime  uint64 `json:"ctime"`
	Notes  string `json:"notes"`
}

// StorageUploadRequest describes a streamed file upload to a storage.
type StorageUploadRequest struct {
	// Content is the storage content type, e.g. "iso" or "vztmpl".
	Content           string
	FileName          string
	Reader            io.Reader
	Checksum          string
	ChecksumAlgorithm string
}

// VzdumpRequest carries the common fields of a backup job. Extra holds any
// additional endpoint parameters verbatim.
type VzdumpRequest struct {
	All              bool
	VMID             string
	Mode             string // "snapshot", "suspend", or "stop"
	Storage          string
	Compress         string // "0", "1", "gzip", "lzo", or "zstd"
	MailNotification string // "always" or "failure"
	MailTo           string
	NotesTemplate    string
	Remove           bool
	StopWait         int
	Extra            Params
}

func (r VzdumpRequest) toParams() Params {
	params := NewParams().
		SetOpt("vmid", r.VMID).
		SetOpt("mode", r.Mode).
		SetOpt("storage", r.Storage).
		SetOpt("compress", r.Compress).
		SetOpt("mailnotification", r.MailNotification).
		SetOpt("mailto", r.MailTo).
		SetOpt("notes-template", r.NotesTemplate)
	if r.All {
		params.SetBool("all", true)
	}
	if r.Remove {
		params.SetBool("remove", true)
	}
	if r.StopWait > 0 {
		params.SetInt("stopwait", r.StopWait)
	}
	if r.Extra != nil {
		params.Merge(r.Extra)
	}
	return params
}

func storagePath(node, storage, rest string) string {
	return "/nodes/" + escapePath(node) + "/storage/" + escapePath(storage) + rest
}

// StorageIndex lists storage definitions, optionally filtered by type.
func (c *Client) StorageIndex(ctx context.Context, storageType string) ([]StorageIndexItem, error) {
	params := NewParams().SetOpt("type", storageType)
	return call[[]StorageIndexItem](ctx, c, http.MethodGet, "/storage", params, nil)
}

// NodeStorage lists storage status on one node, optionally filtered by the
// content type it must support.
func (c *Client) NodeStorage(ctx context.Context, node, content string) ([]NodeStorageStatus, error) {
	params := NewParams().SetOpt("content", content)
	return call[[]NodeStorageStatus](ctx, c, http.MethodGet, "/nodes/"+escapePath(node)+"/storage", params, nil)
}

// StorageContent lists the volumes on one storage.
func (c *Client) StorageContent(ctx context.Context, node, storage string, query Params) ([]StorageContentItem, error) {
	return call[[]StorageContentItem](ctx, c, http.MethodGet, storagePath(node, storage, "/content"), query, nil)
}

// StorageAllocateDisk allocates a disk image and returns the new volume ID.
func (c *Client) StorageAllocateDisk(ctx context.Context, node, storage string, vmid int, filename, size string) (string, error) {
	params := NewParams().SetInt("vmid", vmid).Set("filename", filename).Set("size", size)
	return call[string](ctx, c, http.MethodPost, storagePath(node, storage, "/content"), nil, params)
}

// StorageUpload streams a file to a storage and returns the upload task
// UPID. The body is never buffered wholesale, so arbitrarily large images
// stay within bounded memory.
func (c *Client) StorageUpload(ctx context.Context, node, storage string, req StorageUploadRequest) (string, error) {
	if req.FileName == "" {
		return "", errors.NewValidationError("filename", "", "required", "upload file name must not be empty")
	}
	if req.Reader == nil {
		return "", errors.NewValidationError("reader", "", "required", "upload reader must not be nil")
	}

	fields := NewParams().
		Set("content", req.Content).
		SetOpt("checksum", req.Checksum).
		SetOpt("checksum-algorithm", req.ChecksumAlgorithm)

	raw, err := c.doMultipart(ctx, http.MethodPost, storagePath(node, storage, "/upload"),
		fields, "filename", req.FileName, req.Reader)
	if err != nil {
		return "", err
	}
	return decodeString(raw)
}

// StorageUploadFile streams a local file to a storage.
func (c *Client) StorageUploadFile(ctx context.Context, node, storage, content, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", errors.NewConfigurationError("file_path", path, "failed to open upload file", err)
	}
	defer file.Close()

	return c.StorageUpload(ctx, node, storage, StorageUploadRequest{
		Content:  content,
		FileName: filepath.Base(path),
		Reader:   file,
	})
}

// StorageDeleteVolume deletes a volume and returns the task UPID. A non-zero
// delay defers the removal by that many seconds.
func (c *Client) StorageDeleteVolume(ctx context.Context, node, storage, volume string, delay int) (string, error) {
	params := NewParams()
	if delay > 0 {
		params.SetInt("delay", delay)
	}
	path := storagePath(node, storage, "/content/"+escapePath(volume))
	return call[string](ctx, c, http.MethodDelete, path, params, nil)
}

// VzdumpBackup starts a backup job on one node and returns the task UPID.
func (c *Client) VzdumpBackup(ctx context.Context, node string, req VzdumpRequest) (string, error) {
	return call[string](ctx, c, http.MethodPost, "/nodes/"+escapePath(node)+"/vzdump", nil, req.toParams())
}
