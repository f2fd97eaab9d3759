package webwidget

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/smartie/internal/location"
	"github.com/ziadkadry99/smartie/internal/render"
)

const writeWait = 10 * time.Second

// localOrigins are always allowed, matching the server's CORS defaults.
var localOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}

// clientFrame is the incoming WebSocket message format.
type clientFrame struct {
	Type      string   `json:"type"` // "toggle", "open", "close", "submit" or "location"
	Content   string   `json:"content,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// serverFrame is the outgoing WebSocket message format.
type serverFrame struct {
	Type     string         `json:"type"` // "visibility", "transcript", "scroll", "clear_input" or "error"
	Open     *bool          `json:"open,omitempty"`
	Messages []render.Entry `json:"messages,omitempty"`
	Content  string         `json:"content,omitempty"`
}

// socketView displays a session over one WebSocket connection.
type socketView struct {
	conn   *websocket.Conn
	logger *zap.Logger

	mu sync.Mutex
}

func (v *socketView) SetVisible(open bool) {
	v.send(serverFrame{Type: "visibility", Open: &open})
}

func (v *socketView) Render(entries []render.Entry) {
	v.send(serverFrame{Type: "transcript", Messages: entries})
}

func (v *socketView) ScrollToLatest() {
	v.send(serverFrame{Type: "scroll"})
}

func (v *socketView) ClearInput() {
	v.send(serverFrame{Type: "clear_input"})
}

func (v *socketView) sendError(message string) {
	v.send(serverFrame{Type: "error", Content: message})
}

func (v *socketView) send(frame serverFrame) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := v.conn.WriteJSON(frame); err != nil {
		v.logger.Debug("websocket write", zap.String("frame", frame.Type), zap.Error(err))
	}
}

func (w *Widget) handleWebSocket(rw http.ResponseWriter, r *http.Request) {
	conn, err := w.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		w.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	view := &socketView{conn: conn, logger: w.logger}
	sess := w.newSession(view)
	log := w.logger.With(zap.String("session_id", sess.ID()))

	w.active.Add(1)
	defer w.active.Add(-1)

	// In-flight answers are abandoned once the visitor goes away.
	ctx, cancel := context.WithCancel(r.Context())
	defer sess.Shutdown()
	defer cancel()

	log.Debug("chat session started")
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read", zap.Error(err))
			}
			log.Debug("chat session ended")
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(msg, &frame); err != nil {
			view.sendError("invalid message format")
			continue
		}

		switch frame.Type {
		case "toggle":
			sess.Toggle()
		case "open":
			sess.Open()
		case "close":
			sess.Close()
		case "submit":
			// Blank input is ignored without a reply.
			sess.Submit(ctx, frame.Content)
		case "location":
			coords := location.Coordinates{Latitude: frame.Latitude, Longitude: frame.Longitude}
			if err := sess.SetLocation(ctx, coords); err != nil {
				view.sendError("invalid coordinates")
			}
		default:
			view.sendError("unknown message type: " + frame.Type)
		}
	}
}

// checkOrigin admits requests without an Origin header, same-host pages
// and the configured embedding origins. Patterns may hold one "*".
func (w *Widget) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || w.opts.AllowAll {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}

	origin = strings.ToLower(origin)
	for _, pattern := range w.origins {
		if matchOrigin(pattern, origin) {
			return true
		}
	}
	w.logger.Warn("websocket origin rejected", zap.String("origin", origin))
	return false
}

func matchOrigin(pattern, origin string) bool {
	prefix, suffix, wildcard := strings.Cut(pattern, "*")
	if !wildcard {
		return pattern == origin
	}
	return len(origin) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(origin, prefix) &&
		strings.HasSuffix(origin, suffix)
}
