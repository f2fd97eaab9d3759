package webwidget

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/smartie/internal/location"
	"github.com/ziadkadry99/smartie/internal/render"
	"github.com/ziadkadry99/smartie/internal/widget"
)

// DefaultAssistantName is shown in the panel header.
const DefaultAssistantName = "SMARTIE"

// Options configures the web widget.
type Options struct {
	AssistantName string
	Greeting      string
	Placeholder   string
	Responder     widget.Responder
	Reporter      *location.Reporter
	Logger        *zap.Logger

	// AllowedOrigins lists the pages allowed to open chat sockets, in
	// addition to localhost and same-host pages.
	AllowedOrigins []string
	AllowAll       bool
}

// Widget serves the embeddable chat page and one chat session per
// WebSocket connection.
type Widget struct {
	opts         Options
	renderer     *render.Renderer
	highlightCSS string
	logger       *zap.Logger
	upgrader     websocket.Upgrader
	origins      []string
	active       atomic.Int64
}

// New creates a Widget.
func New(opts Options) (*Widget, error) {
	if opts.AssistantName == "" {
		opts.AssistantName = DefaultAssistantName
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	css, err := render.HighlightCSS()
	if err != nil {
		return nil, fmt.Errorf("preparing widget stylesheet: %w", err)
	}

	w := &Widget{
		opts:         opts,
		renderer:     render.New(),
		highlightCSS: css,
		logger:       opts.Logger,
	}
	w.origins = append(w.origins, localOrigins...)
	for _, o := range opts.AllowedOrigins {
		w.origins = append(w.origins, strings.ToLower(strings.TrimSuffix(o, "/")))
	}
	w.upgrader = websocket.Upgrader{CheckOrigin: w.checkOrigin}
	return w, nil
}

// RegisterRoutes mounts the widget routes onto the given router.
func (w *Widget) RegisterRoutes(r chi.Router) {
	r.Get("/", w.ServeIndex)
	r.Get("/widget/highlight.css", w.serveHighlightCSS)
	r.Get("/api/widget/sessions", w.handleSessions)
	r.Get("/ws/chat", w.handleWebSocket)
}

// ActiveSessions returns the number of connected chat sessions.
func (w *Widget) ActiveSessions() int64 {
	return w.active.Load()
}

func (w *Widget) handleSessions(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, http.StatusOK, map[string]int64{"active": w.ActiveSessions()})
}

func (w *Widget) newSession(view widget.View) *widget.Session {
	return widget.New(widget.Options{
		Greeting:    w.opts.Greeting,
		Placeholder: w.opts.Placeholder,
		Renderer:    w.renderer,
		Responder:   w.opts.Responder,
		Reporter:    w.opts.Reporter,
		View:        view,
		Logger:      w.logger,
	})
}
