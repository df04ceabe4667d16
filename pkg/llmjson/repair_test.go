package llmjson

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRepairLeavesValidJSONUntouched(t *testing.T) {
	inputs := []string{
		`{"content": "a\nb", "keyPoints": ["x", "y"]}`,
		`{"content": "- bullets stay when the document is valid"}`,
		`{}`,
	}
	for _, input := range inputs {
		require.Equal(t, input, Repair(input))

		_, err := Parse(Repair(input))
		require.NoError(t, err)
	}
}

func TestRepair(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		field  string
		want   string
		output string
	}{
		{
			name:   "backtick content",
			input:  "{\"content\": `line1\nline2`}",
			field:  "content",
			want:   "line1\nline2",
			output: `{"content": "line1\nline2"}`,
		},
		{
			name:  "backtick in other field escapes quotes and backslashes",
			input: "{\"summary\": `a \"quoted\" word\tand C:\\path`}",
			field: "summary",
			want:  "a \"quoted\" word\tand C:\\path",
		},
		{
			name:  "raw newline in quoted value",
			input: "{\"content\": \"line1\nline2\"}",
			field: "content",
			want:  "line1\nline2",
		},
		{
			name:  "already escaped quotes are not escaped again",
			input: "{\"content\": \"He said \\\"hi\\\"\nthen left\"}",
			field: "content",
			want:  "He said \"hi\"\nthen left",
		},
		{
			name:  "list markers stripped from content lines",
			input: "{\"content\": \"Intro\n- first\n• second\n  * third\", \"keyPoints\": [\"a\"]}",
			field: "content",
			want:  "Intro\nfirst\nsecond\nthird",
		},
		{
			name:   "truncated inside array",
			input:  `{"content": "Intro", "keyPoints": ["a", "b`,
			field:  "content",
			want:   "Intro",
			output: `{"content": "Intro"}`,
		},
		{
			name:   "truncated after scalar",
			input:  `{"score": 7, "feedback": "Go`,
			field:  "score",
			output: `{"score": 7}`,
		},
		{
			name:   "truncated before any complete pair",
			input:  `{"content": "Intr`,
			output: `{}`,
		},
		{
			name:   "trailing prose after object",
			input:  `{"answer": "42"} hope this helps`,
			field:  "answer",
			want:   "42",
			output: `{"answer": "42"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repaired := Repair(tt.input)
			if tt.output != "" {
				require.Equal(t, tt.output, repaired)
			}

			obj, err := Parse(repaired)
			require.NoError(t, err)
			if tt.want != "" {
				require.Equal(t, tt.want, obj[tt.field])
			}
		})
	}
}

func TestRepairPrimaryAndFreeTextOptions(t *testing.T) {
	input := "{\"answer\": `Use:\n- a map\n- a slice`}"

	repaired := Repair(input, WithPrimaryFields("answer"), WithFreeTextFields("answer"))
	obj, err := Parse(repaired)
	require.NoError(t, err)
	require.Equal(t, "Use:\na map\na slice", obj["answer"])
}

func TestRepairIsIdempotent(t *testing.T) {
	fixtures := []string{
		"{\"content\": `line1\nline2`}",
		"{\"content\": \"Intro\n- first\n- - nested\"}",
		`{"content": "Intro", "keyPoints": ["a", "b`,
		`{"content": "Intr`,
		`{"a": b c}`,
		`{"content": "x" "y": 1}`,
		"not json at all",
		`[{"a": 1}, {"b": 2}]`,
		"",
	}

	for _, fixture := range fixtures {
		once := Repair(fixture)
		require.Equal(t, once, Repair(once), "fixture %q", fixture)
	}
}

func TestEscapeStringOrder(t *testing.T) {
	require.Equal(t, `a\\n\"b\"\n\t`, EscapeString("a\\n\"b\"\n\t"))
}
