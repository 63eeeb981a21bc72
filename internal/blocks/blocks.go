// Package blocks turns markdown into an ordered sequence of rich-text blocks
// and encodes them in the CMS portable-text shape.
package blocks

import "strings"

// Kind identifies the variant of a Block.
type Kind string

const (
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindBullet    Kind = "bullet"
	KindCode      Kind = "code"
)

// Mark is a formatting mark carried by a span. A span may carry several.
type Mark string

const (
	MarkStrong Mark = "strong"
	MarkEm     Mark = "em"
	MarkCode   Mark = "code"
	MarkLink   Mark = "link"
)

// DefaultLanguage is used for fences without a language tag.
const DefaultLanguage = "javascript"

// Span is a run of inline text.
type Span struct {
	Text  string `json:"text"`
	Marks []Mark `json:"marks,omitempty"`
	Href  string `json:"href,omitempty"` // set when Marks contains MarkLink
}

// Has reports whether the span carries mark m.
func (s Span) Has(m Mark) bool {
	for _, got := range s.Marks {
		if got == m {
			return true
		}
	}
	return false
}

// Block is a single converted block. Which fields are meaningful depends on Kind:
// headings use Level and Spans, paragraphs and bullets use Spans, and code
// blocks use Language, Code and Filename.
type Block struct {
	Key      string `json:"key"`
	Kind     Kind   `json:"kind"`
	Level    int    `json:"level,omitempty"`
	Spans    []Span `json:"spans,omitempty"`
	Language string `json:"language,omitempty"`
	Code     string `json:"code,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Text returns the concatenated span text, or the code for code blocks.
func (b Block) Text() string {
	if b.Kind == KindCode {
		return b.Code
	}
	var sb strings.Builder
	for _, s := range b.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// PlainText joins the text of every block with newlines.
func PlainText(blks []Block) string {
	parts := make([]string, 0, len(blks))
	for _, b := range blks {
		parts = append(parts, b.Text())
	}
	return strings.Join(parts, "\n")
}
