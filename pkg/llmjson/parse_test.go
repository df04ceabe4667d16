package llmjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lessonFields = FieldSet{
	{Name: "content", Kind: FieldString},
	{Name: "keyPoints", Kind: FieldArray},
	{Name: "examples", Kind: FieldArray},
	{Name: "practicalApplications", Kind: FieldArray},
}

func TestParseRejectsNonObjects(t *testing.T) {
	for _, input := range []string{`["a"]`, `null`, `"text"`, `{"a":`} {
		_, err := Parse(input)
		require.ErrorIs(t, err, ErrNotObject, input)
	}
}

func TestParseOrExtractStrict(t *testing.T) {
	obj, source := ParseOrExtract(`{"content": "Hello", "keyPoints": ["a"]}`, lessonFields)
	require.Equal(t, SourceStrict, source)
	require.Equal(t, "Hello", obj["content"])
	require.Equal(t, []any{"a"}, obj["keyPoints"])
}

func TestParseOrExtractEmbedded(t *testing.T) {
	obj, source := ParseOrExtract(`Sure! Here you go: {"answer": "It {depends}"} Hope it helps`, nil)
	require.Equal(t, SourceEmbedded, source)
	require.Equal(t, "It {depends}", obj["answer"])
}

func TestParseOrExtractFallsBackToFieldExtraction(t *testing.T) {
	text := `{"content": "Intro\nMore \"quoted\"", "keyPoints": ["one", 'two', , ""], "examples": [ ], broken`

	obj, source := ParseOrExtract(text, lessonFields)
	require.Equal(t, SourceExtracted, source)
	assert.Equal(t, "Intro\nMore \"quoted\"", obj["content"])
	assert.Equal(t, []any{"one", "two"}, obj["keyPoints"])
	assert.NotContains(t, obj, "examples")
	assert.NotContains(t, obj, "practicalApplications")
}

func TestExtractBacktickString(t *testing.T) {
	obj := Extract("{\"content\": `raw\ntext`, \"keyPoints\": [\"x\"", lessonFields)
	require.Equal(t, "raw\ntext", obj["content"])
	require.NotContains(t, obj, "keyPoints")
}

func TestParseOrExtractEmpty(t *testing.T) {
	obj, source := ParseOrExtract("I cannot help with that.", lessonFields)
	require.Equal(t, SourceEmpty, source)
	require.NotNil(t, obj)
	require.Empty(t, obj)
}

func TestPipelineRecoversFencedBacktickContent(t *testing.T) {
	raw := "```json\n{\"content\": `line1\nline2`}\n```"

	obj, source := ParseOrExtract(Repair(Normalize(raw)), lessonFields)
	require.Equal(t, SourceStrict, source)
	require.Equal(t, "line1\nline2", obj["content"])
	require.NotContains(t, obj["content"], "`")
}
