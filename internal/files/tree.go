package files

import (
	"context"
	"html"
	"sort"
	"strings"

	"github.com/matdash/matdash/internal/smbclient"
)

// Tree fetches the folder structure rooted at path, bounded to maxDepth
// levels, and returns it alongside its rendered HTML.
func Tree(ctx context.Context, client *smbclient.Client, path string, maxDepth int) (map[string]*smbclient.StructureNode, string, error) {
	structure, err := client.Structure(ctx, cleanPath(path), maxDepth)
	if err != nil {
		return nil, "", err
	}
	return structure, RenderTree(structure), nil
}

// RenderTree renders the folder tree as nested lists, folders sorted by
// name. A node's path rides along as a data attribute so the dashboard
// can navigate on click.
func RenderTree(structure map[string]*smbclient.StructureNode) string {
	if len(structure) == 0 {
		return `<p class="tree-empty">No subfolders</p>`
	}
	var b strings.Builder
	renderLevel(&b, structure)
	return b.String()
}

func renderLevel(b *strings.Builder, nodes map[string]*smbclient.StructureNode) {
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString(`<ul class="folder-tree">`)
	for _, name := range names {
		node := nodes[name]
		b.WriteString(`<li><span class="tree-folder" data-path="` +
			html.EscapeString(node.Path) + `">` + html.EscapeString(name) + `</span>`)
		if len(node.Subfolders) > 0 {
			renderLevel(b, node.Subfolders)
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
}
