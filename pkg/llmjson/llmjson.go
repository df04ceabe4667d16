// Package llmjson recovers JSON objects from free-form language model output.
//
// Recovery is an ordered pipeline of pure functions: Normalize strips code
// fences, Repair rewrites the text into a better candidate for strict parsing,
// and ParseOrExtract either decodes the repaired text or salvages individual
// fields with pattern matching. None of the stages fail; the worst outcome is
// an empty Object.
package llmjson

import "encoding/json"

// Object is a generic decoded JSON object. Fields may be missing.
type Object map[string]any

// FieldKind describes the shape of a field targeted by fallback extraction.
type FieldKind int

const (
	// FieldString extracts a single quoted string value.
	FieldString FieldKind = iota
	// FieldArray extracts a bracketed list of scalar values as strings.
	FieldArray
)

// Field names one top level key that fallback extraction should salvage.
type Field struct {
	Name string
	Kind FieldKind
}

// FieldSet lists the fields extracted when strict parsing fails.
type FieldSet []Field

// Source reports which stage produced an Object.
type Source string

const (
	// SourceStrict means the repaired text decoded as a JSON object.
	SourceStrict Source = "strict"
	// SourceEmbedded means a complete JSON object was found inside surrounding prose.
	SourceEmbedded Source = "embedded"
	// SourceExtracted means at least one field was salvaged by pattern matching.
	SourceExtracted Source = "extracted"
	// SourceEmpty means nothing could be recovered.
	SourceEmpty Source = "empty"
)

func strictObject(text string) (Object, bool) {
	var obj Object
	if err := json.Unmarshal([]byte(text), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
