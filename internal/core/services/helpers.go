package services

import (
	"path/filepath"
	"sort"
	"strings"
)

// mergeTags unions tag lists, deduplicated and sorted.
func mergeTags(existing []string, extra ...[]string) []string {
	set := make(map[string]bool, len(existing))
	for _, t := range existing {
		if t != "" {
			set[t] = true
		}
	}
	for _, list := range extra {
		for _, t := range list {
			if t != "" {
				set[t] = true
			}
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// mimeFromPath maps a file extension to a content type. Good enough
// for the handful of formats the archive carries.
func mimeFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".html", ".htm":
		return "text/html"
	case ".csv":
		return "text/csv"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

// extensionForContentType is the inverse of mimeFromPath for the same
// handful of formats. Unknown types map to "".
func extensionForContentType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "application/pdf":
		return "pdf"
	case "text/plain":
		return "txt"
	case "text/html":
		return "html"
	case "text/csv":
		return "csv"
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/tiff":
		return "tif"
	case "message/rfc822":
		return "eml"
	default:
		return ""
	}
}

// isPDF reports whether a stored artifact should go through the PDF
// analysis pipeline.
func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
