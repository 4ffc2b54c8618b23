package smbclient

// FileInfo describes one file in a directory listing, as reported by
// the file service.
type FileInfo struct {
	Name             string `json:"name"`
	Extension        string `json:"extension"`
	Size             int64  `json:"size"`
	SizeReadable     string `json:"size_readable"`
	ModifiedReadable string `json:"modified_readable"`
}

// Listing is the flat content of one directory. It is replaced
// wholesale on every navigation.
type Listing struct {
	Path    string     `json:"path"`
	Folders []string   `json:"folders"`
	Files   []FileInfo `json:"files"`
}

// ConnectionInfo is the result of a successful connection test.
type ConnectionInfo struct {
	Server       string `json:"server"`
	Share        string `json:"share"`
	FoldersCount int    `json:"folders_count"`
}

// StructureNode is one folder in the bounded-depth tree. Subfolders is
// keyed by folder name, mirroring the service's recursive map.
type StructureNode struct {
	Path       string                    `json:"path"`
	Subfolders map[string]*StructureNode `json:"subfolders"`
}

// browse-style envelope shared by most file service responses.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
