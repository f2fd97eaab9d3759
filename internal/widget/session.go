package widget

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/smartie/internal/location"
	"github.com/ziadkadry99/smartie/internal/render"
	"github.com/ziadkadry99/smartie/internal/responder"
	"github.com/ziadkadry99/smartie/internal/transcript"
)

// DefaultGreeting is appended the first time a session's panel opens.
const DefaultGreeting = "Hi! I'm Smartie. Ask me anything about our products, orders or stores."

// ErrInvalidLocation is returned by SetLocation for out-of-range coordinates.
var ErrInvalidLocation = errors.New("coordinates out of range")

// State is the visibility of the chat panel.
type State int

const (
	StateClosed State = iota
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// View is a surface that displays a session. Calls are made while the
// session holds its view lock, so a View never sees two calls at once.
type View interface {
	SetVisible(open bool)
	Render(entries []render.Entry)
	ScrollToLatest()
	ClearInput()
}

// Responder answers one turn and settles its placeholder.
type Responder interface {
	Respond(ctx context.Context, turn responder.Turn) error
}

// Options configures a Session.
type Options struct {
	SessionID   string
	Greeting    string
	Placeholder string
	Renderer    *render.Renderer
	Responder   Responder
	Reporter    *location.Reporter
	View        View
	Logger      *zap.Logger
}

// Session is one visitor's chat: the panel state machine, its transcript,
// and the submissions in flight against it.
type Session struct {
	id        string
	greeting  string
	store     *transcript.Store
	renderer  *render.Renderer
	responder Responder
	reporter  *location.Reporter
	logger    *zap.Logger
	location  location.Tracker

	// mu guards state, greeted and every call into view.
	mu      sync.Mutex
	state   State
	greeted bool
	view    View

	wg          sync.WaitGroup
	unsubscribe func()
}

// New creates a closed Session subscribed to its own transcript.
func New(opts Options) *Session {
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	if opts.Greeting == "" {
		opts.Greeting = DefaultGreeting
	}
	if opts.Renderer == nil {
		opts.Renderer = render.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Session{
		id:        opts.SessionID,
		greeting:  opts.Greeting,
		store:     transcript.NewStore(opts.Placeholder),
		renderer:  opts.Renderer,
		responder: opts.Responder,
		reporter:  opts.Reporter,
		logger:    opts.Logger.With(zap.String("session_id", opts.SessionID)),
		view:      opts.View,
	}
	s.unsubscribe = s.store.Subscribe(s.onChange)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current panel state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcript returns a copy of the session's messages.
func (s *Session) Transcript() []transcript.Message {
	return s.store.Snapshot()
}

// Entries returns the transcript prepared for display.
func (s *Session) Entries() []render.Entry {
	return s.renderer.RenderAll(s.store.Snapshot())
}

// Toggle flips the panel between closed and open and returns the new state.
func (s *Session) Toggle() State {
	if s.State() == StateOpen {
		s.Close()
		return StateClosed
	}
	s.Open()
	return StateOpen
}

// Open shows the panel. The first time a session opens, the greeting is
// appended to the transcript; later opens only redisplay it.
func (s *Session) Open() {
	s.mu.Lock()
	if s.state == StateOpen {
		s.mu.Unlock()
		return
	}
	s.state = StateOpen
	first := !s.greeted
	s.greeted = true
	s.callView(func(v View) { v.SetVisible(true) })
	if !first {
		s.renderLocked(s.store.Snapshot())
	}
	s.mu.Unlock()

	if first {
		s.logger.Debug("panel opened for the first time")
		// The store notifies onChange, which renders with the greeting.
		s.store.Append(transcript.RoleBot, s.greeting)
	}
}

// Close hides the panel. It has no other effect.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	s.callView(func(v View) { v.SetVisible(false) })
}

// Submit sends input as a new question. Empty or whitespace-only input is
// ignored and false is returned. Otherwise the input is cleared, the
// question and a placeholder are appended, and exactly one responder call
// is started for that placeholder. ctx bounds the responder call.
func (s *Session) Submit(ctx context.Context, input string) bool {
	text := strings.TrimSpace(input)
	if text == "" {
		return false
	}

	s.mu.Lock()
	s.callView(func(v View) { v.ClearInput() })
	s.mu.Unlock()

	pair := s.store.AppendPair(text)
	s.logger.Debug("question submitted", zap.String("placeholder_id", pair.Placeholder.ID))

	if s.responder == nil {
		s.store.FailPlaceholder(pair.Placeholder.ID, responder.DefaultErrorText)
		s.logger.Error("no responder configured")
		return true
	}

	turn := responder.Turn{
		SessionID:     s.id,
		PlaceholderID: pair.Placeholder.ID,
		Snapshot:      pair.Snapshot,
		Location:      s.location.Get(),
		Target:        s.store,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// Failures are already settled into the transcript and logged.
		_ = s.responder.Respond(ctx, turn)
	}()
	return true
}

// SetLocation records the visitor's coordinates for later questions.
// Either coordinate may be nil. When a Reporter is configured the
// coordinates are also forwarded to it in the background.
func (s *Session) SetLocation(ctx context.Context, c location.Coordinates) error {
	if !c.Valid() {
		return ErrInvalidLocation
	}
	s.location.Set(c)

	if !s.reporter.Enabled() || c.Empty() {
		return nil
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.reporter.Report(ctx, c)
	}()
	return nil
}

// Location returns the coordinates last set on the session.
func (s *Session) Location() location.Coordinates {
	return s.location.Get()
}

// Wait blocks until every responder call and location report started by
// the session has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Shutdown detaches the view and waits for in-flight work. Responses that
// arrive afterwards still settle the transcript but are not displayed.
func (s *Session) Shutdown() {
	s.mu.Lock()
	s.view = nil
	s.mu.Unlock()
	s.wg.Wait()
	s.unsubscribe()
}

func (s *Session) onChange(c transcript.Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return
	}
	s.renderLocked(c.Entries)
}

func (s *Session) renderLocked(messages []transcript.Message) {
	entries := s.renderer.RenderAll(messages)
	s.callView(func(v View) {
		v.Render(entries)
		v.ScrollToLatest()
	})
}

func (s *Session) callView(fn func(View)) {
	if s.view != nil {
		fn(s.view)
	}
}
