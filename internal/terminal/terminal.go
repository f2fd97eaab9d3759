package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/smartie/internal/progress"
	"github.com/ziadkadry99/smartie/internal/render"
	"github.com/ziadkadry99/smartie/internal/transcript"
	"github.com/ziadkadry99/smartie/internal/widget"
)

// LineReader supplies one line of visitor input at a time. It returns
// io.EOF when input is exhausted.
type LineReader interface {
	ReadLine() (string, error)
}

// PromptReader reads lines with an interactive promptui prompt.
type PromptReader struct {
	Label string
}

func (p PromptReader) ReadLine() (string, error) {
	prompt := promptui.Prompt{Label: p.Label}
	line, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return "", io.EOF
	}
	return line, err
}

// View prints a session's bot messages as plain text as they settle and
// shows a typing indicator while an answer is pending.
type View struct {
	name      string
	out       io.Writer
	renderer  *render.Renderer
	indicator progress.Indicator

	mu      sync.Mutex
	printed map[string]bool
}

// NewView creates a View writing to out.
func NewView(name string, out io.Writer, renderer *render.Renderer, indicator progress.Indicator) *View {
	return &View{
		name:      name,
		out:       out,
		renderer:  renderer,
		indicator: indicator,
		printed:   make(map[string]bool),
	}
}

func (v *View) SetVisible(open bool) {}

// Render prints every settled bot entry not printed before. User entries
// are skipped since the visitor typed them.
func (v *View) Render(entries []render.Entry) {
	v.mu.Lock()
	defer v.mu.Unlock()

	pending := false
	for _, e := range entries {
		if e.Pending {
			pending = true
			continue
		}
		if v.printed[e.ID] {
			continue
		}
		v.printed[e.ID] = true
		if e.Role != transcript.RoleBot {
			continue
		}
		v.indicator.Stop()
		fmt.Fprintf(v.out, "%s: %s\n\n", v.name, v.renderer.PlainText(string(e.HTML)))
	}

	if pending {
		v.indicator.Start(v.name + " is typing")
	} else {
		v.indicator.Stop()
	}
}

func (v *View) ScrollToLatest() {}

func (v *View) ClearInput() {}

// Chat runs an interactive chat session in the terminal.
type Chat struct {
	session *widget.Session
	input   LineReader
}

// NewChat creates a Chat reading from input.
func NewChat(session *widget.Session, input LineReader) *Chat {
	return &Chat{session: session, input: input}
}

// Run opens the panel, then submits each line read until input ends, the
// visitor types /quit, or ctx is done. Each answer is awaited before the
// next line is read.
func (c *Chat) Run(ctx context.Context) error {
	c.session.Open()
	defer c.session.Shutdown()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := c.input.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		switch strings.TrimSpace(line) {
		case "/quit", "/exit":
			return nil
		}

		if c.session.Submit(ctx, line) {
			c.session.Wait()
		}
	}
}
