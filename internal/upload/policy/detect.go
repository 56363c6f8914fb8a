package policy

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DetectMediaType declares a media type for a file about to become a
// candidate. Content sniffing wins; the extension is used when the content is
// not recognised beyond the generic octet-stream/plain-text fallbacks.
func DetectMediaType(name string, data []byte) string {
	sniffed := ""
	if len(data) > 0 {
		sniffed = mimetype.Detect(data).String()
	}

	if sniffed != "" && !isGeneric(sniffed) {
		return stripParams(sniffed)
	}

	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		return stripParams(byExt)
	}

	if sniffed != "" {
		return stripParams(sniffed)
	}
	return "application/octet-stream"
}

func isGeneric(mt string) bool {
	return strings.HasPrefix(mt, "application/octet-stream") || strings.HasPrefix(mt, "text/plain")
}

func stripParams(mt string) string {
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.TrimSpace(mt)
}
