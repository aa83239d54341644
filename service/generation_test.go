package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripJSONFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading space", "  \n```json\n{\"a\":1}\n```  ", `{"a":1}`},
		{"unclosed fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"single line", "```{\"a\":1}", `{"a":1}`},
		{"array body", "```json\n[1,2]\n```", `[1,2]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stripJSONFence(tc.in))
		})
	}
}

func TestDecodeGeneratedMatchesUnfenced(t *testing.T) {
	type payload struct {
		A int `json:"a"`
	}

	var plain, fenced payload
	require.NoError(t, decodeGenerated(`{"a": 7}`, &plain))
	require.NoError(t, decodeGenerated("```json\n{\"a\": 7}\n```", &fenced))
	assert.Equal(t, plain, fenced)
}

func TestDecodeGeneratedRejectsGarbage(t *testing.T) {
	var v map[string]interface{}
	assert.Error(t, decodeGenerated("not json", &v))
}

func TestTruncateContent(t *testing.T) {
	assert.Equal(t, "abc", truncateContent("abc", 10))
	assert.Equal(t, "abc", truncateContent("abc", 3))

	long := strings.Repeat("x", 20)
	got := truncateContent(long, 10)
	assert.Equal(t, strings.Repeat("x", 10)+"...", got)
}

func TestTruncateContentKeepsRunesIntact(t *testing.T) {
	// The budget lands on the second byte of the two-byte "é"; the cut backs
	// up instead of emitting a broken rune.
	mixed := strings.Repeat("a", 9) + "é" + strings.Repeat("b", 5)
	got := truncateContent(mixed, 10)
	assert.Equal(t, strings.Repeat("a", 9)+"...", got)
	assert.True(t, utf8.ValidString(got))

	// A budget past the rune keeps it whole.
	got = truncateContent(mixed, 11)
	assert.Equal(t, strings.Repeat("a", 9)+"é...", got)
	assert.True(t, utf8.ValidString(got))

	wide := strings.Repeat("世", 10)
	got = truncateContent(wide, 10)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("世", 3)+"...", got)
}
