package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Mock is an offline Generator for local development and tests. It returns
// Response verbatim when set, otherwise a small well-formed post derived from
// the prompt.
type Mock struct {
	Response string
	Err      error

	mu      sync.Mutex
	prompts []string
}

// Provider implements Generator.
func (m *Mock) Provider() string { return "mock" }

// Generate implements Generator.
func (m *Mock) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	if m.Response != "" {
		return m.Response, nil
	}
	return mockPost(prompt), nil
}

// Prompts returns every prompt received so far.
func (m *Mock) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

func mockPost(prompt string) string {
	subject := "Web Development"
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "- ") {
			subject = strings.TrimPrefix(line, "- ")
			break
		}
	}

	body := fmt.Sprintf("## Why %s matters\n\n%s keeps showing up in production stacks. "+
		"This post walks through a **minimal `setup`** and a few trade-offs.\n\n"+
		"```ts\nconsole.log(%q);\n```\n\n"+
		"- Start small\n- Measure before optimizing\n\n"+
		"Read more in the [official docs](https://developer.mozilla.org).", subject, subject, subject)

	out, _ := json.Marshal(map[string]any{
		"title":    "A Practical Look at " + subject,
		"summary":  "Hands-on notes on " + subject + " for working engineers.",
		"body":     body,
		"tags":     []string{strings.ToLower(subject), "web development", "engineering"},
		"readTime": 4,
	})
	return "```json\n" + string(out) + "\n```"
}
