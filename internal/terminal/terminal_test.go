package terminal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/smartie/internal/render"
	"github.com/ziadkadry99/smartie/internal/responder"
	"github.com/ziadkadry99/smartie/internal/widget"
)

type scriptedReader struct {
	lines []string
	err   error
}

func (s *scriptedReader) ReadLine() (string, error) {
	if len(s.lines) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

type countingIndicator struct {
	starts, stops int
	running       bool
}

func (c *countingIndicator) Start(string) {
	if !c.running {
		c.starts++
	}
	c.running = true
}

func (c *countingIndicator) Stop() {
	if c.running {
		c.stops++
	}
	c.running = false
}

type echoResponder struct {
	fail map[string]bool
}

func (e echoResponder) Respond(_ context.Context, turn responder.Turn) error {
	q := turn.Snapshot[len(turn.Snapshot)-2].Text
	if e.fail[q] {
		turn.Target.FailPlaceholder(turn.PlaceholderID, responder.DefaultErrorText)
		return errors.New("boom")
	}
	turn.Target.ResolvePlaceholder(turn.PlaceholderID, "You said **"+q+"**")
	return nil
}

func newChat(t *testing.T, lines []string, resp widget.Responder) (*Chat, *bytes.Buffer, *countingIndicator) {
	t.Helper()
	var out bytes.Buffer
	ind := &countingIndicator{}
	renderer := render.New()
	view := NewView("SMARTIE", &out, renderer, ind)
	sess := widget.New(widget.Options{
		Greeting:  "Hello! How can I help?",
		Renderer:  renderer,
		Responder: resp,
		View:      view,
	})
	return NewChat(sess, &scriptedReader{lines: lines}), &out, ind
}

func TestChatPrintsGreetingAndAnswers(t *testing.T) {
	chat, out, ind := newChat(t, []string{"hi", "  ", "bye"}, echoResponder{fail: map[string]bool{"bye": true}})

	require.NoError(t, chat.Run(t.Context()))

	want := "SMARTIE: Hello! How can I help?\n\n" +
		"SMARTIE: You said hi\n\n" +
		"SMARTIE: Oops! An error has occurred.\n\n"
	assert.Equal(t, want, out.String())
	assert.Equal(t, 2, ind.starts)
	assert.False(t, ind.running)
}

func TestChatStopsOnQuit(t *testing.T) {
	chat, out, _ := newChat(t, []string{"/quit", "never sent"}, echoResponder{})

	require.NoError(t, chat.Run(t.Context()))
	assert.NotContains(t, out.String(), "never sent")
	assert.Equal(t, 1, strings.Count(out.String(), "SMARTIE:"))
}

func TestChatReturnsReadErrors(t *testing.T) {
	chat, _, _ := newChat(t, nil, echoResponder{})
	chat.input = &scriptedReader{err: errors.New("tty gone")}

	err := chat.Run(t.Context())
	assert.ErrorContains(t, err, "tty gone")
}

func TestViewSkipsUserEntriesAndPrintsOnce(t *testing.T) {
	var out bytes.Buffer
	ind := &countingIndicator{}
	v := NewView("Bot", &out, render.New(), ind)

	entries := []render.Entry{
		{ID: "1", Role: "user", Text: "question"},
		{ID: "2", Role: "bot", Pending: true, Text: "..."},
	}
	v.Render(entries)
	assert.Empty(t, out.String())
	assert.True(t, ind.running)

	entries[1] = render.Entry{ID: "2", Role: "bot", HTML: "<p>answer &amp; more</p>"}
	v.Render(entries)
	v.Render(entries)
	assert.Equal(t, "Bot: answer & more\n\n", out.String())
	assert.False(t, ind.running)
}
