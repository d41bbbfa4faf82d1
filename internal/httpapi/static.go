package httpapi

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var widgetAssets embed.FS

// newStaticHandler serves the candidate widget. Assets are revalidated on
// every load so a redeploy never pairs new API routes with a stale app.js.
func newStaticHandler() http.Handler {
	assets, err := fs.Sub(widgetAssets, "static")
	if err != nil {
		return http.NotFoundHandler()
	}
	files := http.FileServer(http.FS(assets))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}
