package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var pageTemplate = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Info.Title}} - API documentation</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <header>
    <h1>{{.Info.Title}} <small>{{.Info.Version}}</small></h1>
    <p>{{.Info.Description}}</p>
    <p>Raw document: <a href="{{.SpecPath}}/openapi.json">JSON</a> | <a href="{{.SpecPath}}/openapi.yaml">YAML</a></p>
  </header>
  <noscript>
  <table>
    <thead><tr><th>Method</th><th>Path</th><th>Summary</th><th>Responses</th></tr></thead>
    <tbody>
    {{- range .Endpoints}}
      <tr><td>{{.Method}}</td><td>{{.Path}}</td><td>{{.Summary}}</td><td>{{.Responses}}</td></tr>
    {{- end}}
    </tbody>
  </table>
  </noscript>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({url: "{{.SpecPath}}/openapi.json", dom_id: "#swagger-ui", docExpansion: "full", deepLinking: false});
  </script>
</body>
</html>
`))

// Endpoint is one documented operation, flattened for rendering.
type Endpoint struct {
	Method    string
	Path      string
	Summary   string
	Responses string
}

var methodOrder = map[string]int{"get": 0, "post": 1, "put": 2, "patch": 3, "delete": 4}

// Endpoints lists every operation sorted by path then method.
func (d *Document) Endpoints() []Endpoint {
	var out []Endpoint
	for path, item := range d.Paths {
		for method, op := range item {
			codes := make([]string, 0, len(op.Responses))
			for code := range op.Responses {
				codes = append(codes, code)
			}
			sort.Strings(codes)
			out = append(out, Endpoint{
				Method:    strings.ToUpper(method),
				Path:      path,
				Summary:   op.Summary,
				Responses: strings.Join(codes, ", "),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return methodOrder[strings.ToLower(out[i].Method)] < methodOrder[strings.ToLower(out[j].Method)]
	})
	return out
}

// Handler serves the rendered page at basePath and the raw document under
// basePath/openapi.json and basePath/openapi.yaml.
type Handler struct {
	basePath string
	page     []byte
	json     []byte
	yaml     []byte
}

func NewHandler(doc *Document, basePath string) (*Handler, error) {
	jsonDoc, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal openapi json: %w", err)
	}
	yamlDoc, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi yaml: %w", err)
	}

	var page bytes.Buffer
	err = pageTemplate.Execute(&page, struct {
		Info      Info
		SpecPath  string
		Endpoints []Endpoint
	}{doc.Info, basePath, doc.Endpoints()})
	if err != nil {
		return nil, fmt.Errorf("render docs page: %w", err)
	}

	return &Handler{basePath: basePath, page: page.Bytes(), json: jsonDoc, yaml: yamlDoc}, nil
}

// Paths returns the three paths the handler answers.
func (h *Handler) Paths() []string {
	return []string{h.basePath, h.basePath + "/openapi.json", h.basePath + "/openapi.yaml"}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimSuffix(r.URL.Path, "/") {
	case h.basePath:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(h.page)
	case h.basePath + "/openapi.json":
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(h.json)
	case h.basePath + "/openapi.yaml":
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(h.yaml)
	default:
		http.NotFound(w, r)
	}
}
