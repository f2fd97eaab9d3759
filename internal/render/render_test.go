package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/smartie/internal/transcript"
)

func TestRenderBotStripsEventHandlers(t *testing.T) {
	r := New()
	out := r.RenderBot(`<img src=x onerror=alert(1)>hello`)

	assert.NotContains(t, strings.ToLower(out), "onerror")
	assert.NotContains(t, out, "alert(1)")
	assert.Contains(t, out, "hello")
}

func TestRenderBotSanitizes(t *testing.T) {
	r := New()
	tests := []struct {
		name      string
		input     string
		forbidden []string
		want      string
	}{
		{
			name:      "script block",
			input:     "before\n\n<script>alert('x')</script>\n\nafter",
			forbidden: []string{"<script", "alert("},
			want:      "after",
		},
		{
			name:      "javascript link",
			input:     "[click](javascript:alert(1))",
			forbidden: []string{"javascript:"},
			want:      "click",
		},
		{
			name:      "raw anchor with handler",
			input:     `<a href="https://example.com" onclick="steal()">site</a>`,
			forbidden: []string{"onclick", "steal"},
			want:      "site",
		},
		{
			name:      "iframe",
			input:     `<iframe src="https://evil.example"></iframe>text`,
			forbidden: []string{"<iframe"},
			want:      "text",
		},
		{
			name:      "style attribute",
			input:     `<p style="position:fixed">overlay</p>`,
			forbidden: []string{"style="},
			want:      "overlay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := r.RenderBot(tt.input)
			for _, f := range tt.forbidden {
				assert.NotContains(t, out, f)
			}
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestRenderBotMarkdown(t *testing.T) {
	r := New()

	out := r.RenderBot("**bold** and _em_\n\n- one\n- two")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<em>em</em>")
	assert.Contains(t, out, "<li>one</li>")
}

func TestRenderBotLinks(t *testing.T) {
	r := New()
	out := r.RenderBot("[Nestle](https://www.madewithnestle.ca)")

	assert.Contains(t, out, `href="https://www.madewithnestle.ca"`)
	assert.Contains(t, out, "nofollow")
	assert.Contains(t, out, `target="_blank"`)
}

func TestRenderBotHighlightsCode(t *testing.T) {
	r := New()
	out := r.RenderBot("```go\nfunc main() {}\n```")

	assert.Contains(t, out, "<pre")
	assert.Contains(t, out, `class="`)
	assert.Contains(t, out, "main")
	assert.NotContains(t, out, "style=")
}

func TestRenderUserIsLiteral(t *testing.T) {
	r := New()
	assert.Equal(t, "**bold**", r.RenderUser("**bold**"))
	assert.Equal(t, "<b>x</b>", r.RenderUser("<b>x</b>"))
}

func TestRenderEntry(t *testing.T) {
	r := New()

	user := r.Render(transcript.Message{ID: "u1", Role: transcript.RoleUser, Text: "**bold**"})
	assert.Equal(t, "**bold**", user.Text)
	assert.Empty(t, user.HTML)

	bot := r.Render(transcript.Message{ID: "b1", Role: transcript.RoleBot, Text: "**bold**"})
	assert.Contains(t, string(bot.HTML), "<strong>bold</strong>")
	assert.Empty(t, bot.Text)

	pending := r.Render(transcript.Message{ID: "b2", Role: transcript.RoleBot, Text: "...", Pending: true})
	assert.True(t, pending.Pending)
	assert.Equal(t, "...", pending.Text)
	assert.Empty(t, pending.HTML)
}

func TestRenderAllKeepsOrder(t *testing.T) {
	r := New()
	entries := r.RenderAll([]transcript.Message{
		{ID: "1", Role: transcript.RoleBot, Text: "hello"},
		{ID: "2", Role: transcript.RoleUser, Text: "hi"},
	})
	require.Len(t, entries, 2)
	assert.Equal(t, "1", entries[0].ID)
	assert.Equal(t, "2", entries[1].ID)
}

func TestPlainText(t *testing.T) {
	r := New()
	out := r.PlainText(r.RenderBot("Salt & pepper\n\n**Second** paragraph"))

	assert.Equal(t, "Salt & pepper\n\nSecond paragraph", out)
}

func TestHighlightCSS(t *testing.T) {
	css, err := HighlightCSS()
	require.NoError(t, err)
	assert.Contains(t, css, ".chroma")
}
