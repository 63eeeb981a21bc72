package generator

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"portfolio/internal/apierr"
	"portfolio/internal/core"
)

const (
	DefaultMaxTitleLength   = 100
	DefaultMaxSummaryLength = 160
	DefaultReadTime         = 5
	DefaultMaxTags          = 5
	DefaultFallbackTag      = "web development"
)

// ParseOptions bounds and defaults applied to a recovered post.
type ParseOptions struct {
	MaxTitle        int
	MaxSummary      int
	MaxTags         int
	DefaultReadTime int
	FallbackTag     string
}

// DefaultParseOptions returns the limits the CMS schema enforces.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		MaxTitle:        DefaultMaxTitleLength,
		MaxSummary:      DefaultMaxSummaryLength,
		MaxTags:         DefaultMaxTags,
		DefaultReadTime: DefaultReadTime,
		FallbackTag:     DefaultFallbackTag,
	}
}

var (
	titleField    = regexp.MustCompile(`"title"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	summaryField  = regexp.MustCompile(`"summary"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	bodyPrefix    = regexp.MustCompile(`"body"\s*:\s*"`)
	tagsField     = regexp.MustCompile(`(?s)"tags"\s*:\s*\[(.*?)\]`)
	readTimeField = regexp.MustCompile(`"readTime"\s*:\s*"?(\d+)`)
	leadingInt    = regexp.MustCompile(`\d+`)
)

// ParseResponse recovers a post from raw model output using default options.
func ParseResponse(raw string) (*core.GeneratedPost, error) {
	return ParseResponseWith(raw, DefaultParseOptions())
}

// ParseResponseWith recovers a post from raw model output. The text should be
// one JSON object, but fences, surrounding prose and unescaped control
// characters inside string values are tolerated.
func ParseResponseWith(raw string, opts ParseOptions) (*core.GeneratedPost, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, apierr.Generation(apierr.CodeAIGenerationFailed, "model returned an empty response", nil)
	}

	text = isolateObject(unwrapFence(text))

	post, decodeErr := decodeStrict(text, opts)
	if decodeErr == nil {
		return post, nil
	}
	if apierr.IsKind(decodeErr, apierr.KindGeneration) {
		return nil, decodeErr
	}

	return reconstruct(text, opts)
}

func unwrapFence(text string) string {
	switch {
	case strings.HasPrefix(text, "```json"):
		text = text[len("```json"):]
	case strings.HasPrefix(text, "```"):
		text = text[len("```"):]
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func isolateObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

type strictPost struct {
	Title    *string         `json:"title"`
	Summary  *string         `json:"summary"`
	Body     *string         `json:"body"`
	Tags     json.RawMessage `json:"tags"`
	ReadTime json.RawMessage `json:"readTime"`
}

// decodeStrict is the fast path. A JSON syntax error is returned as a plain
// error so the caller falls through to reconstruction; missing fields are
// terminal.
func decodeStrict(text string, opts ParseOptions) (*core.GeneratedPost, error) {
	var sp strictPost
	if err := json.Unmarshal([]byte(text), &sp); err != nil {
		return nil, err
	}

	var missing []string
	for _, f := range []struct {
		name  string
		value *string
	}{{"title", sp.Title}, {"summary", sp.Summary}, {"body", sp.Body}} {
		if f.value == nil || strings.TrimSpace(*f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, missingFields(missing)
	}

	return finalize(*sp.Title, *sp.Summary, *sp.Body, decodeTags(sp.Tags), decodeReadTime(sp.ReadTime), opts), nil
}

// reconstruct is the slow path: locate each field positionally.
func reconstruct(text string, opts ParseOptions) (*core.GeneratedPost, error) {
	titleMatch := titleField.FindStringSubmatch(text)
	if titleMatch == nil {
		return nil, parseFailure("could not locate title field")
	}
	summaryMatch := summaryField.FindStringSubmatch(text)
	if summaryMatch == nil {
		return nil, parseFailure("could not locate summary field")
	}

	loc := bodyPrefix.FindStringIndex(text)
	if loc == nil {
		return nil, parseFailure("could not locate body field")
	}
	bodyStart := loc[1]
	bodyEnd := findBodyEnd(text, bodyStart)
	if bodyEnd < 0 {
		return nil, parseFailure("could not find the end of the body string")
	}

	title := unescapeLenient(titleMatch[1])
	summary := unescapeLenient(summaryMatch[1])
	body := unescapeLenient(text[bodyStart:bodyEnd])

	var missing []string
	if strings.TrimSpace(title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(summary) == "" {
		missing = append(missing, "summary")
	}
	if strings.TrimSpace(body) == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return nil, missingFields(missing)
	}

	readTime := 0
	if m := readTimeField.FindStringSubmatch(text); m != nil {
		readTime, _ = strconv.Atoi(m[1])
	}

	return finalize(title, summary, body, extractTags(text), readTime, opts), nil
}

// findBodyEnd returns the index of the quote closing the body string that
// starts at start, or -1. The closing quote is the first unescaped quote
// followed by a comma; failing that, the last quote before the "tags" key.
func findBodyEnd(text string, start int) int {
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '"' && i+1 < len(text) && text[i+1] == ',' {
			return i
		}
	}

	tagsIdx := strings.Index(text[start:], `"tags"`)
	if tagsIdx < 0 {
		return -1
	}
	tagsIdx += start
	lastQuote := strings.LastIndex(text[:tagsIdx], `"`)
	if lastQuote >= start {
		return lastQuote
	}
	return -1
}

// extractTags reads the tags array without requiring the surrounding JSON to
// be valid.
func extractTags(text string) []string {
	m := tagsField.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(m[1], ",") {
		tag := strings.Trim(strings.TrimSpace(part), `"'`)
		if tag != "" {
			tags = append(tags, unescapeLenient(tag))
		}
	}
	return tags
}

func decodeTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		return strings.Split(joined, ",")
	}
	var mixed []any
	if err := json.Unmarshal(raw, &mixed); err == nil {
		list = nil
		for _, v := range mixed {
			if s, ok := v.(string); ok {
				list = append(list, s)
			}
		}
		return list
	}
	return nil
}

func decodeReadTime(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f + 0.5)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if m := leadingInt.FindString(s); m != "" {
			n, _ := strconv.Atoi(m)
			return n
		}
	}
	return 0
}

func finalize(title, summary, body string, tags []string, readTime int, opts ParseOptions) *core.GeneratedPost {
	if readTime <= 0 {
		readTime = opts.DefaultReadTime
	}
	return &core.GeneratedPost{
		Title:    truncate(strings.TrimSpace(title), opts.MaxTitle),
		Summary:  truncate(strings.TrimSpace(summary), opts.MaxSummary),
		Body:     strings.TrimSpace(body),
		Tags:     normalizeTags(tags, opts),
		ReadTime: readTime,
	}
}

// normalizeTags lowercases, trims and de-duplicates tags, keeping at most
// opts.MaxTags. An empty result becomes the fallback tag.
func normalizeTags(tags []string, opts ParseOptions) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if opts.MaxTags > 0 && len(out) == opts.MaxTags {
			break
		}
	}
	if len(out) == 0 {
		return []string{opts.FallbackTag}
	}
	return out
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}

// unescapeLenient decodes JSON string escapes. Raw control characters pass
// through untouched and unknown escapes are kept literally.
func unescapeLenient(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '"', '\\', '/':
			b.WriteByte(s[i])
		case 'u':
			r, width := decodeUnicodeEscape(s[i+1:])
			if width == 0 {
				b.WriteString(`\u`)
				continue
			}
			b.WriteRune(r)
			i += width
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// decodeUnicodeEscape reads the hex digits after `\u`, joining surrogate
// pairs. It returns the rune and the bytes consumed, or width 0 when the
// escape is malformed.
func decodeUnicodeEscape(s string) (rune, int) {
	if len(s) < 4 {
		return 0, 0
	}
	v, err := strconv.ParseUint(s[:4], 16, 32)
	if err != nil {
		return 0, 0
	}
	r := rune(v)
	if utf16.IsSurrogate(r) && len(s) >= 10 && s[4] == '\\' && s[5] == 'u' {
		if lo, err := strconv.ParseUint(s[6:10], 16, 32); err == nil {
			if dec := utf16.DecodeRune(r, rune(lo)); dec != utf8.RuneError {
				return dec, 10
			}
		}
	}
	return r, 4
}

func parseFailure(msg string) *apierr.Error {
	return apierr.Generation(apierr.CodeAIJSONParse, msg, nil)
}

func missingFields(fields []string) *apierr.Error {
	e := apierr.Generation(apierr.CodeMissingRequiredFields, "missing required fields: "+strings.Join(fields, ", "), nil)
	e.Details = map[string][]string{"missing": fields}
	return e
}
