package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseAgentJSON extracts and parses JSON from agent/LLM output that may be:
// - Pure JSON
// - JSON wrapped in markdown code fences (```json ... ```)
// - JSON embedded in surrounding prose
// - JSON with minor formatting defects (trailing commas, unquoted keys)
func ParseAgentJSON(input string, target interface{}) error {
	if input == "" {
		return fmt.Errorf("empty input")
	}

	// Direct parse first (most common case)
	if err := json.Unmarshal([]byte(input), target); err == nil {
		return nil
	}

	// JSON inside markdown code fences
	if extracted := extractFromMarkdown(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	// Brace-matched JSON object or array inside prose
	if extracted := ExtractJSONFromText(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
		// The embedded snippet may itself carry minor defects
		if err := json.Unmarshal([]byte(cleanJSON(extracted)), target); err == nil {
			return nil
		}
	}

	// Last resort: repair common defects in the whole input
	if err := json.Unmarshal([]byte(cleanJSON(input)), target); err == nil {
		return nil
	}

	return fmt.Errorf("failed to parse JSON from input: %s", Truncate(input, 100))
}

// extractFromMarkdown pulls the payload out of ```json ... ``` or ``` ... ```
func extractFromMarkdown(input string) string {
	re := regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")
	if matches := re.FindStringSubmatch(input); len(matches) > 1 {
		content := strings.TrimSpace(matches[1])
		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			return content
		}
	}
	return ""
}

// ExtractJSONFromText finds the first JSON object or array embedded in text
// using balanced-brace scanning (string-literal and escape aware).
func ExtractJSONFromText(input string) string {
	if start := strings.Index(input, "{"); start >= 0 {
		if extracted := extractBalanced(input[start:], '{', '}'); extracted != "" {
			return extracted
		}
	}
	if start := strings.Index(input, "["); start >= 0 {
		if extracted := extractBalanced(input[start:], '[', ']'); extracted != "" {
			return extracted
		}
	}
	return ""
}

func extractBalanced(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}
		if ch == '\\' {
			escape = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		if ch == open {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == close {
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
	controlCharRe   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// cleanJSON repairs the defects agents most often produce: BOM prefixes,
// trailing commas, unquoted keys, single-quoted strings, stray control
// characters.
func cleanJSON(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "\ufeff")
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	s = fixSingleQuotes(s)
	s = controlCharRe.ReplaceAllString(s, "")
	return s
}

// fixSingleQuotes rewrites single-quoted strings as double-quoted ones.
// Apostrophes inside double-quoted strings are left alone; an apostrophe
// inside a single-quoted string still ends it, the same limitation the
// producing agents have.
func fixSingleQuotes(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	inDouble := false
	inSingle := false
	escape := false

	for _, ch := range input {
		if escape {
			b.WriteRune(ch)
			escape = false
			continue
		}
		if ch == '\\' {
			b.WriteRune(ch)
			escape = true
			continue
		}
		if ch == '"' && !inSingle {
			inDouble = !inDouble
			b.WriteRune(ch)
			continue
		}
		if ch == '\'' && !inDouble {
			inSingle = !inSingle
			b.WriteRune('"')
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// Truncate shortens s to maxLen with an ellipsis suffix.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
