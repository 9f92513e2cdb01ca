package pve

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQemuList(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api2/json/nodes/pve1/qemu", r.URL.Path)
		writeData(t, w, `[{"vmid":100,"name":"web","status":"running"},{"vmid":101,"name":"db","status":"stopped"}]`)
	}), NoCredential())

	vms, err := client.QemuList(context.Background(), "pve1", false)
	require.NoError(t, err)
	require.Len(t, vms, 2)
	assert.Equal(t, uint32(100), vms[0].VMID)
	assert.Equal(t, "web", vms[0].Name)
	assert.Equal(t, "stopped", vms[1].Status)
}

func TestQemuStart_ReturnsUPID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api2/json/nodes/pve1/qemu/100/status/start", r.URL.Path)
		writeData(t, w, `"`+testUPID+`"`)
	}), NoCredential())

	upid, err := client.QemuStart(context.Background(), "pve1", 100, nil)
	require.NoError(t, err)
	assert.Equal(t, testUPID, upid)
}

func TestQemuCreate_EncodesForm(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api2/json/nodes/pve1/qemu", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "100", r.PostFormValue("vmid"))
		assert.Equal(t, "web", r.PostFormValue("name"))
		assert.Equal(t, "2048", r.PostFormValue("memory"))
		assert.Equal(t, "2", r.PostFormValue("cores"))
		assert.Equal(t, "1", r.PostFormValue("onboot"))
		assert.Equal(t, "local-lvm:32", r.PostFormValue("scsi0"))
		assert.Equal(t, "q35", r.PostFormValue("machine"))
		writeData(t, w, `"`+testUPID+`"`)
	}), NoCredential())

	upid, err := client.QemuCreate(context.Background(), "pve1", QemuCreateRequest{
		VMID:   100,
		Name:   "web",
		Memory: 2048,
		Cores:  2,
		OnBoot: true,
		SCSI0:  "local-lvm:32",
		Extra:  Params{"machine": "q35"},
	})
	require.NoError(t, err)
	assert.Equal(t, testUPID, upid)
}

func TestQemuClone_EncodesForm(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api2/json/nodes/pve1/qemu/100/clone", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "200", r.PostFormValue("newid"))
		assert.Equal(t, "1", r.PostFormValue("full"))
		writeData(t, w, `"`+testUPID+`"`)
	}), NoCredential())

	_, err := client.QemuClone(context.Background(), "pve1", 100, QemuCloneRequest{
		NewID: 200,
		Full:  true,
	})
	require.NoError(t, err)
}

func TestQemuSnapshotRollback_EscapesSnapshotName(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api2/json/nodes/pve1/qemu/100/snapshot/pre upgrade/rollback", r.URL.Path)
		assert.Contains(t, r.URL.EscapedPath(), "pre%20upgrade")
		writeData(t, w, `"`+testUPID+`"`)
	}), NoCredential())

	_, err := client.QemuSnapshotRollback(context.Background(), "pve1", 100, "pre upgrade")
	require.NoError(t, err)
}

func TestLxcCreate_EncodesForm(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api2/json/nodes/pve1/lxc", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "200", r.PostFormValue("vmid"))
		assert.Equal(t, "local:vztmpl/debian-12.tar.zst", r.PostFormValue("ostemplate"))
		assert.Equal(t, "1", r.PostFormValue("unprivileged"))
		writeData(t, w, `"`+testUPID+`"`)
	}), NoCredential())

	upid, err := client.LxcCreate(context.Background(), "pve1", LxcCreateRequest{
		VMID:         200,
		OSTemplate:   "local:vztmpl/debian-12.tar.zst",
		Unprivileged: true,
	})
	require.NoError(t, err)
	assert.Equal(t, testUPID, upid)
}

func TestClusterNextID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api2/json/cluster/nextid", r.URL.Path)
		writeData(t, w, `"105"`)
	}), NoCredential())

	id, err := client.ClusterNextID(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 105, id)
}

func TestNodes(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api2/json/nodes", r.URL.Path)
		writeData(t, w, `[{"node":"pve1","status":"online"},{"node":"pve2","status":"offline"}]`)
	}), NoCredential())

	nodes, err := client.Nodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "pve1", nodes[0].Node)
	assert.Equal(t, "offline", nodes[1].Status)
}
