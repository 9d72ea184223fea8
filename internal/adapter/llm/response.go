package llm

import (
	"errors"
	"strings"
)

// ErrNoJSON is returned by ExtractJSON when the text holds no JSON value.
var ErrNoJSON = errors.New("no JSON value found in LLM response")

// StripThink removes a leading <think>...</think> block some models emit.
func StripThink(s string) string {
	s = strings.TrimSpace(s)
	if thinkStart := strings.Index(s, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(s, "</think>"); thinkEnd != -1 && thinkEnd > thinkStart {
			s = s[:thinkStart] + s[thinkEnd+len("</think>"):]
		}
	}
	return strings.TrimSpace(s)
}

// StripFences removes a surrounding markdown code fence. langs are the info
// strings to strip after the opening backticks ("json", "javascript", "js"),
// tried in order; a bare fence is stripped as well.
func StripFences(s string, langs ...string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	lower := strings.ToLower(s)
	for _, lang := range langs {
		if lang != "" && strings.HasPrefix(lower, lang) {
			s = s[len(lang):]
			break
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ExtractJSON returns the outermost JSON array or object in s after
// stripping think blocks and fences. Whichever bracket opens first decides
// whether an array or an object is extracted.
func ExtractJSON(s string) (string, error) {
	s = StripFences(StripThink(s), "json")

	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return "", ErrNoJSON
	}
	closer := "}"
	if s[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(s, closer)
	if end <= start {
		return "", ErrNoJSON
	}
	return s[start : end+1], nil
}
