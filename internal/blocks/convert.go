package blocks

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnterminatedFence is returned by ConvertStrict when the input ends inside a code fence.
var ErrUnterminatedFence = errors.New("unterminated code fence")

const fence = "```"

var (
	headingPattern  = regexp.MustCompile(`^(#{1,4})\s+(.*)`)
	bareWordPattern = regexp.MustCompile(`^\w+$`)
	titleAttr       = regexp.MustCompile(`title="([^"]*)"`)
)

// Convert tokenizes markdown into blocks in source order. Content after an
// unterminated fence is dropped; use ConvertStrict to detect that case.
func Convert(markdown string) []Block {
	blks, _ := convert(markdown)
	return blks
}

// ConvertStrict behaves like Convert but reports an unterminated fence as an
// error. The blocks emitted before the fence are still returned.
func ConvertStrict(markdown string) ([]Block, error) {
	return convert(markdown)
}

type codeState struct {
	language string
	filename string
	lines    []string
	openedAt int
}

func convert(markdown string) ([]Block, error) {
	lines := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n")
	out := make([]Block, 0, len(lines)/2)
	var code *codeState

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if code != nil {
			if trimmed == fence {
				out = append(out, Block{
					Key:      fmt.Sprintf("code-%d", len(out)),
					Kind:     KindCode,
					Language: NormalizeLanguage(code.language),
					Code:     strings.Join(code.lines, "\n"),
					Filename: code.filename,
				})
				code = nil
				continue
			}
			code.lines = append(code.lines, line)
			continue
		}

		if strings.HasPrefix(trimmed, fence) {
			lang, filename := parseFenceInfo(trimmed[len(fence):])
			code = &codeState{language: lang, filename: filename, openedAt: i + 1}
			continue
		}

		// "go" on one line and a bare fence on the next.
		if bareWordPattern.MatchString(trimmed) && i+1 < len(lines) && strings.TrimSpace(lines[i+1]) == fence {
			code = &codeState{language: trimmed, openedAt: i + 1}
			i++
			continue
		}

		if trimmed == "" {
			continue
		}

		key := fmt.Sprintf("block-%d", len(out))

		if m := headingPattern.FindStringSubmatch(line); m != nil {
			out = append(out, Block{Key: key, Kind: KindHeading, Level: len(m[1]), Spans: ParseInline(m[2])})
			continue
		}

		if strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "- ") {
			out = append(out, Block{Key: key, Kind: KindBullet, Spans: ParseInline(line[2:])})
			continue
		}

		out = append(out, Block{Key: key, Kind: KindParagraph, Spans: ParseInline(line)})
	}

	if code != nil {
		return out, fmt.Errorf("%w opened on line %d", ErrUnterminatedFence, code.openedAt)
	}
	return out, nil
}

// parseFenceInfo reads the info string after an opening fence. Both
// "go:main.go" and `go title="main.go"` name a file.
func parseFenceInfo(info string) (language, filename string) {
	info = strings.TrimSpace(info)
	if info == "" {
		return "", ""
	}

	token, rest, _ := strings.Cut(info, " ")
	language, filename, _ = strings.Cut(token, ":")
	if m := titleAttr.FindStringSubmatch(rest); m != nil && filename == "" {
		filename = m[1]
	}
	return language, filename
}
