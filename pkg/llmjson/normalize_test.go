package llmjson

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "json fence", input: "```json\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "bare fence", input: "```\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "fence on one line", input: "```JSON {\"a\": 1}```", want: `{"a": 1}`},
		{name: "crlf fence", input: "```json\r\n{\"a\": 1}\r\n```", want: `{"a": 1}`},
		{name: "no fence", input: "  {\"a\": 1}\n", want: `{"a": 1}`},
		{name: "empty", input: "", want: ""},
		{name: "only opening fence", input: "```json\n{\"a\": 1", want: `{"a": 1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeFenceIsTransparent(t *testing.T) {
	bodies := []string{
		`{"content": "x", "keyPoints": ["a", "b"]}`,
		"{\n  \"content\": `multi\nline`\n}",
		"plain prose answer",
	}
	tags := []string{"", "json", "javascript"}

	for _, body := range bodies {
		for _, tag := range tags {
			wrapped := "```" + tag + "\n" + body + "\n```"
			require.Equal(t, Normalize(body), Normalize(wrapped), "tag %q body %q", tag, body)
		}
	}
}
