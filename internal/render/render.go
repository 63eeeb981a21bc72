// Package render turns stored post bodies into sanitized HTML for the site
// and derives plain text statistics such as reading time.
package render

import (
	"fmt"
	"html"
	"html/template"
	"math"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"portfolio/internal/blocks"
	"portfolio/internal/core"
)

// WordsPerMinute is the reading speed used by ReadTime.
const WordsPerMinute = 200

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("figure", "figcaption")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.AllowAttrs("id").Matching(regexp.MustCompile(`^[a-z0-9-]+$`)).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[a-z0-9+#-]+$`)).OnElements("code")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^code-filename$`)).OnElements("figcaption")
	return p
}

// Body renders a post body as HTML, whichever form it is stored in.
func Body(b core.Body) template.HTML {
	if b.IsBlocks() {
		return Blocks(blocks.FromPortableText(b.Blocks))
	}
	return Markdown(b.Markdown)
}

// Markdown converts markdown text to sanitized HTML.
func Markdown(text string) template.HTML {
	if text == "" {
		return template.HTML("")
	}

	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	mdParser := parser.NewWithExtensions(extensions)

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank,
	})

	out := markdown.ToHTML([]byte(text), mdParser, renderer)
	return template.HTML(policy.SanitizeBytes(out))
}

// Blocks renders structured blocks as sanitized HTML. Consecutive bullets are
// grouped into a single list.
func Blocks(blks []blocks.Block) template.HTML {
	var b strings.Builder
	inList := false

	for _, blk := range blks {
		if blk.Kind != blocks.KindBullet && inList {
			b.WriteString("</ul>\n")
			inList = false
		}

		switch blk.Kind {
		case blocks.KindHeading:
			level := min(max(blk.Level, 1), 6)
			fmt.Fprintf(&b, "<h%d>%s</h%d>\n", level, spansHTML(blk.Spans), level)
		case blocks.KindBullet:
			if !inList {
				b.WriteString("<ul>\n")
				inList = true
			}
			fmt.Fprintf(&b, "<li>%s</li>\n", spansHTML(blk.Spans))
		case blocks.KindCode:
			b.WriteString("<figure>")
			if blk.Filename != "" {
				fmt.Fprintf(&b, `<figcaption class="code-filename">%s</figcaption>`, html.EscapeString(blk.Filename))
			}
			fmt.Fprintf(&b, `<pre><code class="language-%s">%s</code></pre></figure>`+"\n",
				html.EscapeString(blk.Language), html.EscapeString(blk.Code))
		default:
			fmt.Fprintf(&b, "<p>%s</p>\n", spansHTML(blk.Spans))
		}
	}
	if inList {
		b.WriteString("</ul>\n")
	}

	return template.HTML(policy.Sanitize(b.String()))
}

func spansHTML(spans []blocks.Span) string {
	var b strings.Builder
	for _, s := range spans {
		text := html.EscapeString(s.Text)
		if s.Has(blocks.MarkCode) {
			text = "<code>" + text + "</code>"
		}
		if s.Has(blocks.MarkEm) {
			text = "<em>" + text + "</em>"
		}
		if s.Has(blocks.MarkStrong) {
			text = "<strong>" + text + "</strong>"
		}
		if s.Has(blocks.MarkLink) && s.Href != "" {
			text = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(s.Href), text)
		}
		b.WriteString(text)
	}
	return b.String()
}

// PlainText strips markup from rendered HTML.
func PlainText(h template.HTML) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(h)))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// ReadTime estimates minutes to read b at WordsPerMinute, at least 1.
func ReadTime(b core.Body) int {
	words := len(strings.Fields(PlainText(Body(b))))
	return max(int(math.Ceil(float64(words)/WordsPerMinute)), 1)
}

// Excerpt returns at most n runes of the plain text of b, cut at a word
// boundary with "..." appended when shortened.
func Excerpt(b core.Body, n int) string {
	text := PlainText(Body(b))
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	cut := string(r[:n])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
