// Package web holds the page templates and static assets compiled into the
// orrery binary.
package web

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed templates static
var files embed.FS

var (
	Templates = mustSub("templates")
	Static    = mustSub("static")
)

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(files, dir)
	if err != nil {
		panic("web: embedded " + dir + " missing: " + err.Error())
	}
	return sub
}

// Files exposes the whole embedded tree, rooted above templates/ and static/.
func Files() fs.FS {
	return files
}

// Resolve returns the on-disk directory when dir is set, otherwise the
// embedded fallback.
func Resolve(dir string, embedded fs.FS) fs.FS {
	if dir == "" {
		return embedded
	}
	return os.DirFS(dir)
}
