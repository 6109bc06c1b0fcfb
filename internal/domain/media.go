package domain

import (
	"mime"
	"net/http"
	"strings"
)

// ImageType returns the image media type of f. A declared type wins when it
// is an image; otherwise the content is sniffed. ok is false for non-images.
func ImageType(f File) (mediaType string, ok bool) {
	if mt, _, err := mime.ParseMediaType(f.ContentType); err == nil && strings.HasPrefix(mt, "image/") {
		return mt, true
	}
	if f.ContentType != "" && f.ContentType != "application/octet-stream" {
		return "", false
	}
	sniffed := http.DetectContentType(f.Data)
	if mt, _, err := mime.ParseMediaType(sniffed); err == nil && strings.HasPrefix(mt, "image/") {
		return mt, true
	}
	return "", false
}
