package pve

// VersionInfo is the payload of GET /version.
type VersionInfo struct {
	Version string `json:"version"`
	Release string `json:"release"`
	RepoID  string `json:"repoid"`
	Console string `json:"console"`
}

// SnapshotInfo describes one VM or container snapshot.
type SnapshotInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parent      string `json:"parent"`
	SnapTime    uint64 `json:"snaptime"`
	VMState     int    `json:"vmstate"`
}
