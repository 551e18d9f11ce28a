// Package static embeds the HTML templates and browser assets of the form page.
package static

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html assets/*
var content embed.FS

// Templates parses all embedded page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(content, "templates/*.html")
}

// GetFileSystem returns an http.FileSystem for the embedded assets directory.
func GetFileSystem() http.FileSystem {
	fsys, err := fs.Sub(content, "assets")
	if err != nil {
		panic(err)
	}
	return http.FS(fsys)
}
