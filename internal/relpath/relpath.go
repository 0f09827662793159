// Package relpath computes the library-relative form of a media file
// path for presentation to the title generator.
package relpath

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolve returns path relative to the first library root that is a
// literal prefix of it. Roots are tried in input order, so overlapping
// roots resolve to the earliest match, not the longest. When no root
// matches, the basename is returned as a last-resort identifier.
//
// Resolve is pure string work: it never touches the filesystem, so
// neither the path nor the roots need to exist.
func Resolve(path string, roots []string) string {
	sep := string(os.PathSeparator)
	for _, root := range roots {
		prefix := strings.TrimRight(root, sep) + sep
		if strings.HasPrefix(path, prefix) {
			return path[len(prefix):]
		}
	}
	return filepath.Base(path)
}
