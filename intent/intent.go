// ABOUTME: Keyword-based intent classification for free-text assistant input
// ABOUTME: Maps a query to search, add, or ask with add checked before ask
package intent

import (
	"strings"
	"unicode"
)

// Intent is the classified purpose of a free-text query.
type Intent string

const (
	Search Intent = "search"
	Add    Intent = "add"
	Ask    Intent = "ask"
)

func (i Intent) String() string {
	return string(i)
}

// MatchMode controls how keywords are located in the input.
type MatchMode int

const (
	// MatchWords requires each keyword to appear as whole words.
	MatchWords MatchMode = iota
	// MatchSubstring accepts a keyword anywhere in the text, including inside
	// longer words ("apologize" contains "log").
	MatchSubstring
)

// AddKeywords signal the user wants to save something.
var AddKeywords = []string{
	"add",
	"note",
	"remember",
	"save",
	"promise",
	"record",
	"log",
	"track",
	"remind me",
	"don't forget",
	"meeting with",
	"birthday",
	"anniversary",
	"deadline",
	"task",
	"todo",
	"schedule",
	"appointment",
	"event",
}

// AskKeywords signal the user wants advice or generated text.
var AskKeywords = []string{
	"how",
	"what",
	"why",
	"when",
	"where",
	"advice",
	"suggest",
	"help",
	"should",
	"gift",
	"recommend",
	"tell me",
	"explain",
	"guide",
	"write",
	"draft",
	"compose",
	"create",
	"generate",
	"ideas",
	"tips",
	"can you",
	"please",
	"help me",
	"should i",
}

// Match is a classification together with the keyword that decided it.
// Keyword is empty when nothing matched and the result fell back to Search.
type Match struct {
	Intent  Intent `json:"intent"`
	Keyword string `json:"keyword,omitempty"`
}

// Classifier holds the keyword sets. The zero value is not usable; use New.
type Classifier struct {
	add  []string
	ask  []string
	mode MatchMode
}

// New creates a classifier over the given keyword sets.
func New(add, ask []string, mode MatchMode) *Classifier {
	return &Classifier{
		add:  normalizeKeywords(add),
		ask:  normalizeKeywords(ask),
		mode: mode,
	}
}

var defaultClassifier = New(AddKeywords, AskKeywords, MatchWords)

// Default returns the shared classifier built from AddKeywords and AskKeywords.
func Default() *Classifier {
	return defaultClassifier
}

// Classify uses the default classifier.
func Classify(text string) Intent {
	return defaultClassifier.Classify(text)
}

// Classify returns Add if any add keyword matches, else Ask if any ask
// keyword matches, else Search.
func (c *Classifier) Classify(text string) Intent {
	return c.Explain(text).Intent
}

// Explain classifies text and reports the first keyword that matched.
func (c *Classifier) Explain(text string) Match {
	normalized := normalize(text)
	if normalized == "" {
		return Match{Intent: Search}
	}

	var words []string
	if c.mode == MatchWords {
		words = tokenize(normalized)
	}

	if kw, ok := c.firstMatch(c.add, normalized, words); ok {
		return Match{Intent: Add, Keyword: kw}
	}
	if kw, ok := c.firstMatch(c.ask, normalized, words); ok {
		return Match{Intent: Ask, Keyword: kw}
	}
	return Match{Intent: Search}
}

func (c *Classifier) firstMatch(keywords []string, normalized string, words []string) (string, bool) {
	for _, kw := range keywords {
		if c.mode == MatchSubstring {
			if strings.Contains(normalized, kw) {
				return kw, true
			}
			continue
		}
		if containsPhrase(words, tokenize(kw)) {
			return kw, true
		}
	}
	return "", false
}

func normalize(text string) string {
	text = strings.ReplaceAll(text, "’", "'")
	return strings.ToLower(strings.TrimSpace(text))
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if n := normalize(kw); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// tokenize splits on anything that is not a letter, digit, or apostrophe.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}
	for i := 0; i+len(phrase) <= len(words); i++ {
		matched := true
		for j := range phrase {
			if words[i+j] != phrase[j] {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}
