package handlers

import (
	"embed"
	"html/template"
)

//go:embed assets
var assets embed.FS

// newIndex parses the dashboard page.
func newIndex() (*template.Template, error) {
	return template.ParseFS(assets, "assets/index.html")
}
