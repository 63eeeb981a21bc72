package blocks

import "strings"

var languageAliases = map[string]string{
	"js":    "javascript",
	"ts":    "typescript",
	"py":    "python",
	"sh":    "bash",
	"shell": "bash",
	"yml":   "yaml",
	"md":    "markdown",
	"htm":   "html",
	"gql":   "graphql",
}

// NormalizeLanguage maps a fence language tag onto the name the CMS code
// input expects.
func NormalizeLanguage(lang string) string {
	l := strings.ToLower(strings.TrimSpace(lang))
	if alias, ok := languageAliases[l]; ok {
		return alias
	}
	if l == "" {
		return DefaultLanguage
	}
	return l
}
