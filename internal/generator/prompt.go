package generator

import (
	"fmt"
	"strings"
)

// PromptOptions controls the length and shape targets written into the prompt.
type PromptOptions struct {
	MinWords   int
	MaxWords   int
	MaxTitle   int
	MaxSummary int
	MinTags    int
	MaxTags    int
	Audience   string
}

// DefaultPromptOptions mirrors the limits enforced by the response parser.
func DefaultPromptOptions() PromptOptions {
	return PromptOptions{
		MinWords:   800,
		MaxWords:   1200,
		MaxTitle:   DefaultMaxTitleLength,
		MaxSummary: DefaultMaxSummaryLength,
		MinTags:    3,
		MaxTags:    DefaultMaxTags,
		Audience:   "intermediate to advanced web developers",
	}
}

// BuildPrompt assembles the generation instruction for the selected topics.
func BuildPrompt(sel TopicSelection, opts PromptOptions) string {
	var b strings.Builder

	topics := sel.All()
	if len(topics) == 0 {
		topics = []string{"modern web development"}
	}

	fmt.Fprintf(&b, "Write an original, practical technical blog post for %s.\n\n", opts.Audience)
	b.WriteString("The post should explore the following subjects and how they relate to each other:\n")
	for _, t := range topics {
		fmt.Fprintf(&b, "- %s\n", t)
	}

	b.WriteString("\nRequirements:\n")
	fmt.Fprintf(&b, "1. Length: %d-%d words.\n", opts.MinWords, opts.MaxWords)
	b.WriteString("2. Professional, engaging tone suitable for software engineers.\n")
	b.WriteString("3. Structure the content with clear sections using ## and ### headings. Do not repeat the title as a heading.\n")
	b.WriteString("4. Include practical examples and fenced code blocks with a language tag (for example ```ts).\n")
	b.WriteString("5. Use **bold**, `inline code`, bullet lists starting with \"- \" and [links](https://example.com) where helpful. No HTML, tables or images.\n")
	b.WriteString("6. End with actionable takeaways.\n")

	b.WriteString("\nRespond with ONLY a single JSON object, no surrounding prose and no markdown fences, with exactly these fields:\n")
	b.WriteString("{\n")
	fmt.Fprintf(&b, "  \"title\": \"compelling, SEO-friendly title (max %d characters)\",\n", opts.MaxTitle)
	fmt.Fprintf(&b, "  \"summary\": \"one or two sentence summary (max %d characters)\",\n", opts.MaxSummary)
	b.WriteString("  \"body\": \"the full post in markdown\",\n")
	fmt.Fprintf(&b, "  \"tags\": [\"%d-%d short lowercase tags\"],\n", opts.MinTags, opts.MaxTags)
	b.WriteString("  \"readTime\": estimated minutes to read as an integer\n")
	b.WriteString("}\n")
	b.WriteString("Escape every newline inside string values as \\n and every double quote as \\\".\n")

	return b.String()
}
