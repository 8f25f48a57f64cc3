package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeSuggestions(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"strict array", `["A","B","C"]`, []string{"A", "B", "C"}},
		{"surrounding whitespace", "\n  [\"A\"]\n", []string{"A"}},
		{"code fence", "```json\n[\"Hey\",\"Sure\",\"Later\"]\n```", []string{"Hey", "Sure", "Later"}},
		{"prose around array", `Here you go: ["x", "y"] enjoy`, []string{"x", "y"}},
		{"multiline array", "Sure!\n[\n  \"one\",\n  \"two\"\n]", []string{"one", "two"}},
		{"empty array", `[]`, []string{}},
		{"more than three kept", `["a","b","c","d"]`, []string{"a", "b", "c", "d"}},
		{"no array", "I cannot help with that.", []string{}},
		{"empty output", "", []string{}},
		{"null", "null", []string{}},
		{"object", `{"replies":"nope"}`, []string{}},
		{"non-string elements", `[1, 2, 3]`, []string{}},
		{"greedy span is invalid", `["a"] and ["b"]`, []string{}},
		{"broken json", `["a", "b"`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeSuggestions(tt.raw)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildReplyPrompt(t *testing.T) {
	prompt := BuildReplyPrompt(`see you "tomorrow"`)

	assert.Equal(t,
		"Suggest 3 short, casual replies to the following message. Return ONLY a JSON array of strings with exactly 3 elements. Example: [\"reply1\", \"reply2\", \"reply3\"]\n\nMessage: \"see you \"tomorrow\"\"",
		prompt,
	)
}
