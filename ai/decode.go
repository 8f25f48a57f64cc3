package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// arrayPattern is greedy: first '[' to last ']'
var arrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// DecodeSuggestions extracts a list of strings from raw model output. It
// tries the whole trimmed output as a JSON string array, then the widest
// bracketed substring. Anything else yields an empty, non-nil list.
func DecodeSuggestions(raw string) []string {
	if list, ok := parseStringArray(strings.TrimSpace(raw)); ok {
		return list
	}
	if m := arrayPattern.FindString(raw); m != "" {
		if list, ok := parseStringArray(m); ok {
			return list
		}
	}
	return []string{}
}

func parseStringArray(s string) ([]string, bool) {
	if s == "" {
		return nil, false
	}
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		return nil, false
	}
	// "null" decodes without error
	if list == nil {
		return nil, false
	}
	return list, true
}
