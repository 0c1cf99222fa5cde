// Package api provides the HTTP server, its routes and API documentation.
package api

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

//go:embed openapi.json
var openapiDocument []byte

var swaggerPage = template.Must(template.New("swagger").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
    <style>body { margin: 0; background: #fafafa; }</style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" charset="UTF-8"></script>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-standalone-preset.js" charset="UTF-8"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: {{.SpecURL}},
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [SwaggerUIBundle.presets.apis, SwaggerUIStandalonePreset],
                layout: "StandaloneLayout"
            });
        };
    </script>
</body>
</html>`))

// parsedDocument splits the embedded OpenAPI document into its top-level
// members once, so each request only re-encodes servers and info.
var parsedDocument = sync.OnceValues(func() (map[string]json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(openapiDocument, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	return doc, nil
})

// DocsRouter serves Swagger UI and the OpenAPI document it renders.
type DocsRouter struct {
	specURL string
	version string
}

// NewDocsRouter creates a documentation router. The served document
// reports version as the API version.
func NewDocsRouter(specURL, version string) *DocsRouter {
	return &DocsRouter{specURL: specURL, version: version}
}

// Routes returns the chi router for documentation endpoints.
func (d *DocsRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", d.page)
	router.Get("/openapi.json", d.document)
	return router
}

func (d *DocsRouter) page(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct{ Title, SpecURL string }{Title: "Compset API Documentation", SpecURL: d.specURL}
	if err := swaggerPage.Execute(w, data); err != nil {
		http.Error(w, "render docs", http.StatusInternalServerError)
	}
}

// document serves the OpenAPI document with its server URL pointed at the
// host the request arrived on, so "Try it out" works behind any proxy.
func (d *DocsRouter) document(w http.ResponseWriter, r *http.Request) {
	base, err := parsedDocument()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	doc := make(map[string]json.RawMessage, len(base))
	for k, v := range base {
		doc[k] = v
	}

	servers, _ := json.Marshal([]map[string]string{{"url": requestBaseURL(r) + "/api/v1"}})
	doc["servers"] = servers

	if d.version != "" {
		var info map[string]any
		if err := json.Unmarshal(base["info"], &info); err == nil {
			info["version"] = d.version
			doc["info"], _ = json.Marshal(info)
		}
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		http.Error(w, "encode openapi document", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(out)
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	host := r.Host
	if forwarded := r.Header.Get("X-Forwarded-Host"); forwarded != "" {
		host = forwarded
	}
	return scheme + "://" + host
}
