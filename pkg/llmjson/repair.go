package llmjson

import (
	"regexp"
	"strings"
)

const defaultPrimaryField = "content"

type repairConfig struct {
	primaryFields  []string
	freeTextFields []string
}

// RepairOption customises Repair.
type RepairOption func(*repairConfig)

// WithPrimaryFields sets the fields whose backtick quoted values are rewritten
// first. Defaults to "content".
func WithPrimaryFields(names ...string) RepairOption {
	return func(cfg *repairConfig) {
		cfg.primaryFields = append([]string(nil), names...)
	}
}

// WithFreeTextFields sets the prose fields whose lines are stripped of leading
// list markers. Defaults to "content".
func WithFreeTextFields(names ...string) RepairOption {
	return func(cfg *repairConfig) {
		cfg.freeTextFields = append([]string(nil), names...)
	}
}

var (
	backtickField     = regexp.MustCompile("\"([^\"\\\\]+)\"\\s*:\\s*`([^`]*)`")
	quotedField       = regexp.MustCompile(`(?s)("[^"\\]+"\s*:\s*")((?:[^"\\]|\\.)*)(")`)
	leadingListMarker = regexp.MustCompile(`(^|\\n|\n)[ \t]*(?:[-*•▪◦‣●–][ \t]+)+`)
)

// Repair returns text unchanged when it already decodes as a JSON object.
// Otherwise it applies, in order: rewriting of backtick quoted values for the
// primary fields, the same rewrite for any remaining backtick quoted values,
// escaping of raw control characters inside double quoted values, stripping of
// list markers inside free text fields, and closing of truncated objects after
// the last complete key/value pair.
//
// Repair is heuristic. Its output is not guaranteed to parse, but running it
// on its own output changes nothing.
func Repair(text string, opts ...RepairOption) string {
	if _, ok := strictObject(text); ok {
		return text
	}

	cfg := repairConfig{
		primaryFields:  []string{defaultPrimaryField},
		freeTextFields: []string{defaultPrimaryField},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	repaired := text
	for _, name := range cfg.primaryFields {
		repaired = rewriteBacktickValues(fieldPattern(name, "`([^`]*)`"), repaired)
	}
	repaired = rewriteBacktickValues(backtickField, repaired)
	repaired = escapeQuotedControls(repaired)
	for _, name := range cfg.freeTextFields {
		repaired = stripListMarkers(name, repaired)
	}
	return closeTruncated(repaired)
}

// EscapeString escapes s for use inside a double quoted JSON string.
// Backslashes go first so later replacements are not escaped twice.
func EscapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return escapeControls(s)
}

func escapeControls(s string) string {
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	s = strings.ReplaceAll(s, "\f", `\f`)
	return strings.ReplaceAll(s, "\b", `\b`)
}

func fieldPattern(name, value string) *regexp.Regexp {
	return regexp.MustCompile(`"(` + regexp.QuoteMeta(name) + `)"\s*:\s*` + value)
}

func rewriteBacktickValues(pattern *regexp.Regexp, text string) string {
	return replaceSubmatches(pattern, text, func(groups []string) string {
		return `"` + groups[1] + `": "` + EscapeString(groups[2]) + `"`
	})
}

func escapeQuotedControls(text string) string {
	return replaceSubmatches(quotedField, text, func(groups []string) string {
		value := groups[2]
		if !strings.ContainsAny(value, "\n\r\t\f\b") {
			return groups[0]
		}
		if strings.Contains(value, `\n`) || strings.Contains(value, `\"`) {
			// already escaped once; only the stray control characters are left
			value = escapeControls(value)
		} else {
			value = EscapeString(value)
		}
		return groups[1] + value + groups[3]
	})
}

func stripListMarkers(name, text string) string {
	pattern := fieldPattern(name, `"((?:[^"\\]|\\.)*)"`)
	return replaceSubmatches(pattern, text, func(groups []string) string {
		value := leadingListMarker.ReplaceAllString(groups[2], "${1}")
		return `"` + groups[1] + `": "` + value + `"`
	})
}

func replaceSubmatches(pattern *regexp.Regexp, text string, fn func(groups []string) string) string {
	matches := pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, loc := range matches {
		b.WriteString(text[last:loc[0]])
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = text[loc[2*i]:loc[2*i+1]]
			}
		}
		b.WriteString(fn(groups))
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// closeTruncated handles objects cut off before their closing brace. The text
// is cut after the last complete top level pair and closed; when no pair is
// complete the result is an empty object.
func closeTruncated(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.HasSuffix(trimmed, "}") {
		return text
	}

	start := strings.IndexByte(trimmed, '{')
	if start < 0 {
		return text
	}

	body := trimmed[start:]
	end, closed := lastCompletePair(body)
	switch {
	case closed:
		return body[:end]
	case end <= 0:
		return "{}"
	default:
		return body[:end] + "}"
	}
}

const (
	expectKey = iota
	expectColon
	expectValue
	inScalar
	afterValue
)

// lastCompletePair scans an object that starts at body[0] and returns the
// offset just past the last complete top level value. closed reports whether
// the object itself was closed, in which case the offset is past its brace.
func lastCompletePair(body string) (end int, closed bool) {
	depth := 0
	state := expectKey
	inString, escaped, valueString := false, false, false
	end = -1

	for i := 0; i < len(body); i++ {
		ch := body[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
				if depth == 1 {
					if valueString {
						end = i + 1
						state = afterValue
					} else {
						state = expectColon
					}
				}
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			valueString = depth == 1 && state == expectValue
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth <= 0 {
				return i + 1, true
			}
			if depth == 1 {
				end = i + 1
				state = afterValue
			}
		case ':':
			if depth == 1 && state == expectColon {
				state = expectValue
			}
		case ',':
			if depth == 1 {
				if state == inScalar {
					end = i
				}
				state = expectKey
			}
		case ' ', '\t', '\n', '\r':
			if depth == 1 && state == inScalar {
				end = i
				state = afterValue
			}
		default:
			if depth == 1 && state == expectValue {
				state = inScalar
			}
		}
	}
	return end, false
}
