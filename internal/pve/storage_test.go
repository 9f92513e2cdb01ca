package pve

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "pvectl/internal/errors"
)

func TestStorageUpload_StreamsMultipart(t *testing.T) {
	const fileContent = "fake iso content"

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api2/json/nodes/pve1/storage/local/upload", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "iso", r.FormValue("content"))
		assert.Equal(t, "sha256", r.FormValue("checksum-algorithm"))

		file, header, err := r.FormFile("filename")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "debian-12.iso", header.Filename)

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, fileContent, string(data))

		writeData(t, w, `"`+testUPID+`"`)
	}), NoCredential())

	upid, err := client.StorageUpload(context.Background(), "pve1", "local", StorageUploadRequest{
		Content:           "iso",
		FileName:          "debian-12.iso",
		Reader:            strings.NewReader(fileContent),
		Checksum:          "abc123",
		ChecksumAlgorithm: "sha256",
	})
	require.NoError(t, err)
	assert.Equal(t, testUPID, upid)
}

func TestStorageUpload_Validation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be issued")
	}), NoCredential())

	_, err := client.StorageUpload(context.Background(), "pve1", "local", StorageUploadRequest{
		Content: "iso",
		Reader:  strings.NewReader("x"),
	})
	require.Error(t, err)
	assert.True(t, apierrors.IsValidation(err))

	_, err = client.StorageUpload(context.Background(), "pve1", "local", StorageUploadRequest{
		Content:  "iso",
		FileName: "debian-12.iso",
	})
	require.Error(t, err)
	assert.True(t, apierrors.IsValidation(err))
}

func TestStorageContent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api2/json/nodes/pve1/storage/local/content", r.URL.Path)
		writeData(t, w, `[{"volid":"local:iso/debian-12.iso","format":"iso","size":4294967296}]`)
	}), NoCredential())

	items, err := client.StorageContent(context.Background(), "pve1", "local", nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "local:iso/debian-12.iso", items[0].VolID)
	assert.Equal(t, uint64(4294967296), items[0].Size)
}

func TestVzdumpBackup_EncodesForm(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api2/json/nodes/pve1/vzdump", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "100,101", r.PostFormValue("vmid"))
		assert.Equal(t, "snapshot", r.PostFormValue("mode"))
		assert.Equal(t, "zstd", r.PostFormValue("compress"))
		assert.Equal(t, "1", r.PostFormValue("remove"))
		writeData(t, w, `"`+testUPID+`"`)
	}), NoCredential())

	upid, err := client.VzdumpBackup(context.Background(), "pve1", VzdumpRequest{
		VMID:     "100,101",
		Mode:     "snapshot",
		Storage:  "backup",
		Compress: "zstd",
		Remove:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, testUPID, upid)
}
