package blocks

import "regexp"

// inlinePattern alternatives, in priority order:
//  1. bold that may contain inline code
//  2. inline code
//  3. bold
//  4. link, with text in group 5 and url in group 6
var inlinePattern = regexp.MustCompile(
	"(\\*\\*(?:[^*]|`[^`]*`)+\\*\\*)|(`[^`]+`)|(\\*\\*[^*]+\\*\\*)|(\\[([^\\]]+)\\]\\(([^)]+)\\))",
)

var inlineCodePattern = regexp.MustCompile("`([^`]+)`")

// ParseInline splits a line of markdown into formatted spans. A line without
// any formatting yields a single plain span.
func ParseInline(line string) []Span {
	var spans []Span
	last := 0

	for _, m := range inlinePattern.FindAllStringSubmatchIndex(line, -1) {
		if m[0] > last {
			spans = append(spans, Span{Text: line[last:m[0]]})
		}

		switch {
		case m[2] >= 0:
			inner := line[m[2]+2 : m[3]-2]
			spans = append(spans, parseBold(inner)...)
		case m[4] >= 0:
			spans = append(spans, Span{Text: line[m[4]+1 : m[5]-1], Marks: []Mark{MarkCode}})
		case m[6] >= 0:
			spans = append(spans, Span{Text: line[m[6]+2 : m[7]-2], Marks: []Mark{MarkStrong}})
		case m[8] >= 0:
			spans = append(spans, Span{
				Text:  line[m[10]:m[11]],
				Marks: []Mark{MarkLink},
				Href:  line[m[12]:m[13]],
			})
		}
		last = m[1]
	}

	if last < len(line) {
		spans = append(spans, Span{Text: line[last:]})
	}
	if len(spans) == 0 {
		spans = append(spans, Span{Text: line})
	}
	return spans
}

// parseBold splits bold content so inline code inside it carries both marks.
func parseBold(content string) []Span {
	var spans []Span
	last := 0

	for _, m := range inlineCodePattern.FindAllStringSubmatchIndex(content, -1) {
		if m[0] > last {
			spans = append(spans, Span{Text: content[last:m[0]], Marks: []Mark{MarkStrong}})
		}
		spans = append(spans, Span{Text: content[m[2]:m[3]], Marks: []Mark{MarkStrong, MarkCode}})
		last = m[1]
	}

	if last < len(content) {
		spans = append(spans, Span{Text: content[last:], Marks: []Mark{MarkStrong}})
	}
	return spans
}
