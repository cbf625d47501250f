package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Intent
	}{
		{"add keyword", "remember to call mom", Add},
		{"ask keywords only", "how should I apologize?", Ask},
		{"no keywords", "mumbai coffee shop", Search},
		{"add wins over ask", "remember how to say sorry", Add},
		{"multi word add", "Remind me about Dad's checkup", Add},
		{"multi word ask", "can you draft something", Ask},
		{"apostrophe phrase", "don't forget the photos", Add},
		{"curly apostrophe", "don’t forget the photos", Add},
		{"case folding", "GIFT IDEAS FOR DAD", Ask},
		{"label prefix", "Promise: Call mom this Sunday", Add},
		{"empty", "", Search},
		{"whitespace", "   \t ", Search},
		{"plain name", "Ananya", Search},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassifyWordBoundaries(t *testing.T) {
	// "log" lives inside "apologize" and "catalog"; "how" inside "show".
	assert.Equal(t, Ask, Classify("How to apologize for being late?"))
	assert.Equal(t, Search, Classify("catalog showroom"))
}

func TestSubstringModeKeepsOriginalBehavior(t *testing.T) {
	c := New(AddKeywords, AskKeywords, MatchSubstring)

	assert.Equal(t, Add, c.Classify("how should I apologize?"))
	assert.Equal(t, Ask, c.Classify("showroom"))
	assert.Equal(t, Search, c.Classify("mumbai coffee shop"))
}

func TestExplainReportsKeyword(t *testing.T) {
	m := Default().Explain("remember how to say sorry")
	assert.Equal(t, Add, m.Intent)
	assert.Equal(t, "remember", m.Keyword)

	m = Default().Explain("Gift ideas for Dad")
	assert.Equal(t, Ask, m.Intent)
	assert.Equal(t, "gift", m.Keyword)

	m = Default().Explain("mumbai")
	assert.Equal(t, Search, m.Intent)
	assert.Empty(t, m.Keyword)
}

func TestClassifyIsDeterministic(t *testing.T) {
	inputs := []string{"remember to call mom", "how are you", "priya", ""}
	for _, in := range inputs {
		assert.Equal(t, Classify(in), Classify(in), in)
	}
}

func TestCustomKeywords(t *testing.T) {
	c := New([]string{"  Jot Down "}, []string{"why"}, MatchWords)

	assert.Equal(t, Add, c.Classify("jot down: rahul likes hiking"))
	assert.Equal(t, Ask, c.Classify("why not"))
	assert.Equal(t, Search, c.Classify("remember this"))
}
