// Package objectkey names uploaded blobs so concurrent uploads of the same
// filename never collide.
package objectkey

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New returns "<folder>/<unix-nanos>-<uuid>-<clean filename>".
func New(folder, filename string) string {
	return fmt.Sprintf("%s/%d-%s-%s", strings.Trim(folder, "/"), time.Now().UnixNano(), uuid.NewString(), Clean(filename))
}

// Clean keeps the base name and replaces anything outside [A-Za-z0-9._-] with '_'.
func Clean(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "image"
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
