// Package files implements the dashboard's SMB file browser: flat
// directory navigation, the bounded folder tree, uploads and the
// grid/list presentation state.
package files

import (
	"errors"

	"github.com/matdash/matdash/internal/smbclient"
)

// ViewMode selects how a listing is presented. Switching modes
// re-renders the cached listing without refetching it.
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// ErrBadViewMode rejects anything other than grid or list.
var ErrBadViewMode = errors.New("view mode must be grid or list")

// Crumb is one breadcrumb segment; Path is the cumulative path from the
// share root up to and including this segment.
type Crumb struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Entry is a listing file enriched with presentation hints for the
// dashboard.
type Entry struct {
	smbclient.FileInfo
	Icon       string `json:"icon"`
	IconClass  string `json:"icon_class"`
	CanPreview bool   `json:"can_preview"`
}

// View is a rendered listing: the directory content plus the breadcrumb
// trail and the active presentation mode.
type View struct {
	Path    string   `json:"path"`
	Mode    ViewMode `json:"mode"`
	Crumbs  []Crumb  `json:"crumbs"`
	Folders []string `json:"folders"`
	Files   []Entry  `json:"files"`
}
