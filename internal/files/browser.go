package files

import (
	"context"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/matdash/matdash/internal/smbclient"
)

// Browser holds the file browser state: the current path, the active
// view mode and the last fetched listing. Navigation always refetches;
// view switches and searches reuse the cached listing.
type Browser struct {
	client *smbclient.Client
	logger *zap.Logger

	mu      sync.Mutex
	path    string
	mode    ViewMode
	listing *smbclient.Listing
}

// NewBrowser creates a browser rooted at the share root, in grid view.
func NewBrowser(client *smbclient.Client, logger *zap.Logger) *Browser {
	return &Browser{
		client: client,
		logger: logger,
		mode:   ViewGrid,
	}
}

// Browse navigates to path. The previous listing is replaced wholesale;
// stale entries never survive a navigation.
func (b *Browser) Browse(ctx context.Context, path string) (*View, error) {
	path = cleanPath(path)
	listing, err := b.client.Browse(ctx, path)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.path = path
	b.listing = listing
	view := b.buildView(listing)
	b.mu.Unlock()
	return view, nil
}

// Refresh refetches the current directory.
func (b *Browser) Refresh(ctx context.Context) (*View, error) {
	b.mu.Lock()
	path := b.path
	b.mu.Unlock()
	return b.Browse(ctx, path)
}

// Path returns the current directory.
func (b *Browser) Path() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path
}

// SetView switches the presentation mode and re-renders the cached
// listing without contacting the file service.
func (b *Browser) SetView(mode ViewMode) (*View, error) {
	if mode != ViewGrid && mode != ViewList {
		return nil, ErrBadViewMode
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.mode = mode
	if b.listing == nil {
		return &View{Path: b.path, Mode: mode, Crumbs: Breadcrumb(b.path), Folders: []string{}, Files: []Entry{}}, nil
	}
	return b.buildView(b.listing), nil
}

// View renders the cached listing, if any.
func (b *Browser) View() *View {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listing == nil {
		return &View{Path: b.path, Mode: b.mode, Crumbs: Breadcrumb(b.path), Folders: []string{}, Files: []Entry{}}
	}
	return b.buildView(b.listing)
}

// Filter narrows the cached listing to entries matching query. A query
// with glob metacharacters matches as a pattern; anything else is a
// case-insensitive substring match. The cache itself is untouched.
func (b *Browser) Filter(query string) *View {
	view := b.View()
	if query == "" {
		return view
	}

	match := matcher(query)
	folders := make([]string, 0, len(view.Folders))
	for _, f := range view.Folders {
		if match(f) {
			folders = append(folders, f)
		}
	}
	filtered := make([]Entry, 0, len(view.Files))
	for _, f := range view.Files {
		if match(f.Name) {
			filtered = append(filtered, f)
		}
	}
	view.Folders = folders
	view.Files = filtered
	return view
}

func matcher(query string) func(string) bool {
	lower := strings.ToLower(query)
	if strings.ContainsAny(query, "*?[{") {
		return func(name string) bool {
			ok, err := doublestar.Match(lower, strings.ToLower(name))
			return err == nil && ok
		}
	}
	return func(name string) bool {
		return strings.Contains(strings.ToLower(name), lower)
	}
}

// buildView renders a listing. Callers must hold b.mu.
func (b *Browser) buildView(listing *smbclient.Listing) *View {
	entries := make([]Entry, len(listing.Files))
	for i, f := range listing.Files {
		ext := f.Extension
		if ext == "" {
			ext = ExtensionOf(f.Name)
		}
		entries[i] = Entry{
			FileInfo:   f,
			Icon:       Icon(ext),
			IconClass:  IconClass(ext),
			CanPreview: CanPreview(ext),
		}
	}
	return &View{
		Path:    listing.Path,
		Mode:    b.mode,
		Crumbs:  Breadcrumb(listing.Path),
		Folders: listing.Folders,
		Files:   entries,
	}
}

// Breadcrumb splits a path into cumulative segments, starting at the
// share root.
func Breadcrumb(path string) []Crumb {
	crumbs := []Crumb{{Name: "Home", Path: ""}}
	path = cleanPath(path)
	if path == "" {
		return crumbs
	}

	var prefix string
	for _, seg := range strings.Split(path, "/") {
		if prefix == "" {
			prefix = seg
		} else {
			prefix += "/" + seg
		}
		crumbs = append(crumbs, Crumb{Name: seg, Path: prefix})
	}
	return crumbs
}

func cleanPath(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}
