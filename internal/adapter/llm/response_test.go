package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		lang string
		want string
	}{
		{"json fence", "```json\n[\"a\"]\n```", "json", `["a"]`},
		{"bare fence", "```\n{\"k\":1}\n```", "json", `{"k":1}`},
		{"javascript fence", "```javascript\nconst x = 1;\n```", "javascript", "const x = 1;"},
		{"no fence", "  plain  ", "json", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in, tt.lang))
		})
	}
}

func TestStripThink(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripThink("<think>hmm, let me see</think>\n{\"a\":1}"))
	assert.Equal(t, "no think", StripThink(" no think "))
}

func TestExtractJSON(t *testing.T) {
	got, err := ExtractJSON("Here you go:\n```json\n[\"Reflection\", \"Refraction\"]\n```")
	require.NoError(t, err)
	assert.Equal(t, `["Reflection", "Refraction"]`, got)

	got, err = ExtractJSON(`Sure! {"questions": [{"options": ["a"]}]} Hope that helps.`)
	require.NoError(t, err)
	assert.Equal(t, `{"questions": [{"options": ["a"]}]}`, got)

	_, err = ExtractJSON("I cannot help with that.")
	assert.ErrorIs(t, err, ErrNoJSON)
}
