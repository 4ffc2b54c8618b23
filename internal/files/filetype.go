package files

import (
	"path/filepath"
	"strings"
)

// icons maps a lowercase extension (with dot) to its Font Awesome icon.
var icons = map[string]string{
	".pdf":  "fa-file-pdf",
	".doc":  "fa-file-word",
	".docx": "fa-file-word",
	".xls":  "fa-file-excel",
	".xlsx": "fa-file-excel",
	".ppt":  "fa-file-powerpoint",
	".pptx": "fa-file-powerpoint",
	".jpg":  "fa-file-image",
	".jpeg": "fa-file-image",
	".png":  "fa-file-image",
	".gif":  "fa-file-image",
	".zip":  "fa-file-archive",
	".rar":  "fa-file-archive",
	".txt":  "fa-file-alt",
	".csv":  "fa-file-csv",
}

// previewable extensions open inline; everything else falls back to a
// plain download.
var previewable = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".txt":  true,
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Icon returns the Font Awesome icon name for an extension.
func Icon(ext string) string {
	if icon, ok := icons[normalizeExt(ext)]; ok {
		return icon
	}
	return "fa-file"
}

// IconClass returns the color class for an extension.
func IconClass(ext string) string {
	switch normalizeExt(ext) {
	case ".pdf":
		return "pdf"
	case ".doc", ".docx":
		return "doc"
	case ".xls", ".xlsx":
		return "xls"
	case ".jpg", ".jpeg", ".png", ".gif":
		return "img"
	default:
		return "default"
	}
}

// CanPreview reports whether the dashboard previews this extension
// inline.
func CanPreview(ext string) bool {
	return previewable[normalizeExt(ext)]
}

// ExtensionOf extracts the lowercase extension from a file name.
func ExtensionOf(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
