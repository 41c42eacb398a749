package web

import (
	"embed"
	"net/http"
)

//go:embed templates/*.html
var templates embed.FS

// IndexHandler serves the playground page that drives the JSON API.
func IndexHandler(w http.ResponseWriter, r *http.Request) {
	data, err := templates.ReadFile("templates/index.html")
	if err != nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}
