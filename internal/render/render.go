package render

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/smartie/internal/transcript"
)

// highlightStyle is the chroma style used for fenced code in answers.
const highlightStyle = "github"

var (
	classPattern = regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)
	extraNewline = regexp.MustCompile(`\n{3,}`)
)

// Entry is a message prepared for display. Bot entries carry sanitized
// HTML; user entries carry only Text, which the view must insert as
// literal text.
type Entry struct {
	ID      string          `json:"id"`
	Role    transcript.Role `json:"role"`
	HTML    template.HTML   `json:"html,omitempty"`
	Text    string          `json:"text,omitempty"`
	Pending bool            `json:"pending,omitempty"`
}

// Renderer turns transcript messages into display-safe output.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	strict *bluemonday.Policy
}

// New creates a Renderer with GFM, code highlighting and the UGC
// sanitizer policy.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(highlightStyle),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		// Raw HTML is passed through here and removed by the sanitizer.
		goldmark.WithRendererOptions(
			goldhtml.WithUnsafe(),
		),
	)

	return &Renderer{
		md:     md,
		policy: newPolicy(),
		strict: bluemonday.StrictPolicy(),
	}
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(classPattern).OnElements("pre", "code", "span")
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// RenderBot parses raw as markdown and returns sanitized HTML.
func (r *Renderer) RenderBot(raw string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(raw), &buf); err != nil {
		// goldmark only fails on writer errors; fall back to escaped text.
		return "<p>" + html.EscapeString(raw) + "</p>"
	}
	return r.policy.Sanitize(buf.String())
}

// RenderUser returns raw unchanged. User text is never interpreted as
// markup; callers must insert it as text content.
func (r *Renderer) RenderUser(raw string) string {
	return raw
}

// Render prepares a message for display.
func (r *Renderer) Render(m transcript.Message) Entry {
	e := Entry{ID: m.ID, Role: m.Role, Pending: m.Pending}
	switch {
	case m.Role == transcript.RoleBot && !m.Pending:
		e.HTML = template.HTML(r.RenderBot(m.Text))
	default:
		e.Text = r.RenderUser(m.Text)
	}
	return e
}

// RenderAll prepares every message in order.
func (r *Renderer) RenderAll(messages []transcript.Message) []Entry {
	out := make([]Entry, 0, len(messages))
	for _, m := range messages {
		out = append(out, r.Render(m))
	}
	return out
}

var blockBreaks = strings.NewReplacer(
	"</p>", "</p>\n\n",
	"<br>", "\n",
	"<br/>", "\n",
	"</li>", "</li>\n",
	"</pre>", "</pre>\n",
	"</h1>", "</h1>\n\n",
	"</h2>", "</h2>\n\n",
	"</h3>", "</h3>\n\n",
	"</h4>", "</h4>\n\n",
	"</tr>", "</tr>\n",
)

// PlainText strips all markup from sanitized HTML, keeping block breaks,
// for surfaces that cannot display HTML.
func (r *Renderer) PlainText(sanitized string) string {
	text := r.strict.Sanitize(blockBreaks.Replace(sanitized))
	text = extraNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(html.UnescapeString(text))
}

// HighlightCSS returns the stylesheet matching the classes emitted for
// fenced code blocks.
func HighlightCSS() (string, error) {
	style := styles.Get(highlightStyle)
	var buf bytes.Buffer
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&buf, style); err != nil {
		return "", fmt.Errorf("writing highlight css: %w", err)
	}
	return buf.String(), nil
}
