package frontend

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFiles embed.FS

// Handler serves the embedded dashboard page.
func Handler() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil
	}
	return http.FileServer(http.FS(sub))
}
