package http

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

// ServeDashboardPage serves the embedded dashboard page. The page is a
// single self-contained document; everything dynamic on it comes from the
// JSON endpoints, so the template executes with no data.
func ServeDashboardPage(webFS fs.FS) (http.HandlerFunc, error) {
	tmpl, err := template.ParseFS(webFS, "index.html")
	if err != nil {
		return nil, fmt.Errorf("parse dashboard page: %w", err)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		if err := tmpl.Execute(w, nil); err != nil {
			http.Error(w, "Error rendering page", http.StatusInternalServerError)
		}
	}, nil
}

// ServeStaticAssets serves any additional files shipped alongside the
// dashboard page (favicon, logos). Unknown paths fall through to 404.
func ServeStaticAssets(webFS fs.FS) http.Handler {
	return http.FileServer(http.FS(webFS))
}
