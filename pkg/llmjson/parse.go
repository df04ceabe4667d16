package llmjson

import (
	"errors"
	"strings"
)

// ErrNotObject is returned by Parse when the text is not a JSON object.
var ErrNotObject = errors.New("llmjson: text is not a json object")

var unescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n", `\"`, `"`, `\t`, "\t")

// Parse strictly decodes text as a JSON object.
func Parse(text string) (Object, error) {
	obj, ok := strictObject(text)
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}

// ParseOrExtract decodes text strictly and, when that fails, looks for a
// complete object embedded in surrounding prose. As a last step the fields in
// fields are salvaged one by one with Extract. The returned Source names the
// stage that produced the object; SourceEmpty comes with an empty Object.
func ParseOrExtract(text string, fields FieldSet) (Object, Source) {
	if obj, err := Parse(text); err == nil {
		return obj, SourceStrict
	}
	if obj, ok := embeddedObject(text); ok {
		return obj, SourceEmbedded
	}

	obj := Extract(text, fields)
	if len(obj) == 0 {
		return obj, SourceEmpty
	}
	return obj, SourceExtracted
}

// Extract matches each field independently against text without requiring the
// document to be valid JSON. String values are read between the first pair of
// double quotes or backticks; arrays are split on commas with wrapping quotes
// and empty elements removed. Fields that cannot be found are left out.
func Extract(text string, fields FieldSet) Object {
	obj := Object{}
	for _, field := range fields {
		switch field.Kind {
		case FieldString:
			if value, ok := extractString(text, field.Name); ok {
				obj[field.Name] = value
			}
		case FieldArray:
			if values := extractArray(text, field.Name); len(values) > 0 {
				obj[field.Name] = values
			}
		}
	}
	return obj
}

func extractString(text, name string) (string, bool) {
	pattern := fieldPattern(name, "(?:\"((?:[^\"\\\\]|\\\\.)*)\"|`([^`]*)`)")
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	value := match[2]
	if value == "" {
		value = match[3]
	}
	value = strings.TrimSpace(unescaper.Replace(value))
	return value, value != ""
}

func extractArray(text, name string) []any {
	pattern := fieldPattern(name, `\[([^\]]*)\]`)
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}

	parts := strings.Split(match[2], ",")
	values := make([]any, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		item = strings.Trim(item, "\"'`")
		item = strings.TrimSpace(unescaper.Replace(item))
		if item == "" {
			continue
		}
		values = append(values, item)
	}
	return values
}

// embeddedObject finds the first brace balanced region that decodes as an
// object, skipping braces inside strings.
func embeddedObject(text string) (Object, bool) {
	for pos := 0; pos < len(text); {
		start := strings.IndexByte(text[pos:], '{')
		if start < 0 {
			return nil, false
		}
		start += pos

		end := closingBrace(text, start)
		if end < 0 {
			return nil, false
		}
		if obj, ok := strictObject(text[start : end+1]); ok {
			return obj, true
		}
		pos = start + 1
	}
	return nil, false
}

func closingBrace(text string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
