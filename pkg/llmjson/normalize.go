package llmjson

import (
	"regexp"
	"strings"
)

var (
	leadingFence  = regexp.MustCompile("^\\s*```[A-Za-z0-9_+.-]*[ \\t]*\\r?\\n?")
	trailingFence = regexp.MustCompile("\\r?\\n?[ \\t]*```\\s*$")
)

// Normalize removes a leading code fence (with an optional language tag) and a
// trailing code fence, then trims surrounding whitespace. Text without fences
// is only trimmed.
func Normalize(raw string) string {
	text := leadingFence.ReplaceAllString(raw, "")
	text = trailingFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
