package webwidget

import (
	_ "embed"
	"encoding/json"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

type pageData struct {
	AssistantName string
}

// ServeIndex serves the chat widget page.
func (w *Widget) ServeIndex(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(rw, pageData{AssistantName: w.opts.AssistantName}); err != nil {
		w.logger.Error("rendering widget page", zap.Error(err))
	}
}

func (w *Widget) serveHighlightCSS(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/css; charset=utf-8")
	rw.Header().Set("Cache-Control", "public, max-age=3600")
	rw.Write([]byte(w.highlightCSS))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
