// ABOUTME: The unified search box: classifies free text and searches, advises, or captures
// ABOUTME: Captured text becomes a note on the first person whose first name it mentions
package search

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/harperreed/dofo/intent"
	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/timefmt"
)

// Relevance scores for each result kind.
const (
	PersonRelevance  = 0.8
	NoteRelevance    = 0.6
	CaptureRelevance = 1.0
)

// Suggestions are the example prompts shown for an empty query.
var Suggestions = map[intent.Intent][]string{
	intent.Search: {
		"Ananya birthday plans",
		"Mumbai friends",
		"work meetings this week",
		"family health updates",
	},
	intent.Add: {
		"Remember: Rahul likes hiking",
		"Promise: Call mom this Sunday",
		"Note: Dad needs BP medication",
		"Event: Ananya graduation party",
	},
	intent.Ask: {
		"How to reconnect with old friends?",
		"Gift ideas for Dad under ₹3000",
		"How to apologize for being late?",
		"What to write in birthday message?",
	},
}

// PersonStore is what search needs from the people backend.
type PersonStore interface {
	List(ctx context.Context) ([]models.Person, error)
	AddNote(ctx context.Context, personID string, note *models.Note) error
}

// AdviceSource provides canned advice for ASK queries.
type AdviceSource interface {
	ListAdvice(ctx context.Context) ([]models.AdviceResponse, error)
}

// Response is the outcome of one query.
type Response struct {
	Query       string                     `json:"query"`
	Intent      intent.Intent              `json:"intent,omitempty"`
	Keyword     string                     `json:"keyword,omitempty"`
	Results     []models.SearchResult      `json:"results"`
	Suggestions map[intent.Intent][]string `json:"suggestions,omitempty"`
	Captured    *models.Note               `json:"captured,omitempty"`
}

// Engine runs queries against a store.
type Engine struct {
	people     PersonStore
	advice     AdviceSource
	classifier *intent.Classifier
	logger     *zap.Logger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewEngine creates a search engine using the default classifier.
func NewEngine(people PersonStore, advice AdviceSource, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		people:     people,
		advice:     advice,
		classifier: intent.Default(),
		logger:     logger,
		entropy:    ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// WithClassifier swaps the intent classifier.
func (e *Engine) WithClassifier(c *intent.Classifier) *Engine {
	e.classifier = c
	return e
}

// Run classifies query and dispatches to search, advice, or capture.
// An empty query returns suggestions without classifying.
func (e *Engine) Run(ctx context.Context, query string, now time.Time) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &Response{Suggestions: Suggestions}, nil
	}

	match := e.classifier.Explain(query)
	resp := &Response{Query: query, Intent: match.Intent, Keyword: match.Keyword}
	e.logger.Debug("classified query",
		zap.String("intent", string(match.Intent)),
		zap.String("keyword", match.Keyword))

	var err error
	switch match.Intent {
	case intent.Add:
		err = e.capture(ctx, resp, now)
	case intent.Ask:
		resp.Results, err = e.ask(ctx)
	default:
		resp.Results, err = e.search(ctx, query, now)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (e *Engine) search(ctx context.Context, query string, now time.Time) ([]models.SearchResult, error) {
	people, err := e.people.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}

	needle := strings.ToLower(query)
	results := []models.SearchResult{}

	for _, p := range people {
		if !personMatches(p, needle) {
			continue
		}
		label, err := timefmt.FormatRelative(p.LastContact, now, timefmt.Past)
		if err != nil {
			return nil, err
		}
		results = append(results, models.SearchResult{
			Type:           models.ResultPerson,
			ID:             p.ID,
			Title:          p.Name,
			Description:    fmt.Sprintf("%s • Last contact: %s", p.Relation, label),
			RelevanceScore: PersonRelevance,
			PersonID:       p.ID,
		})
	}

	for _, p := range people {
		for _, n := range p.Notes {
			if !strings.Contains(strings.ToLower(n.Content), needle) {
				continue
			}
			date := n.Date
			results = append(results, models.SearchResult{
				Type:           models.ResultNote,
				ID:             n.ID,
				Title:          "Note about " + p.Name,
				Description:    n.Content,
				Date:           &date,
				RelevanceScore: NoteRelevance,
				PersonID:       p.ID,
			})
		}
	}

	return results, nil
}

func personMatches(p models.Person, needle string) bool {
	if strings.Contains(strings.ToLower(p.Name), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func (e *Engine) ask(ctx context.Context) ([]models.SearchResult, error) {
	advice, err := e.advice.ListAdvice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list advice: %w", err)
	}

	results := make([]models.SearchResult, 0, len(advice))
	for _, a := range advice {
		results = append(results, models.SearchResult{
			Type:           models.ResultAdvice,
			ID:             a.ID,
			Title:          fmt.Sprintf("AI Suggestion (%d%% confident)", int(math.Round(a.Confidence*100))),
			Description:    a.Content,
			RelevanceScore: a.Confidence,
		})
	}
	return results, nil
}

func (e *Engine) capture(ctx context.Context, resp *Response, now time.Time) error {
	content := StripLabel(resp.Query)

	people, err := e.people.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list people: %w", err)
	}

	person := MentionedPerson(people, content)
	if person == nil {
		resp.Results = []models.SearchResult{{
			Type:        models.ResultNote,
			Title:       "Not saved",
			Description: "No matching person found for: " + content,
		}}
		return nil
	}

	note := &models.Note{
		ID:      e.newID(now),
		Content: content,
		Date:    now,
	}
	if resp.Keyword != "" {
		note.Tags = []string{resp.Keyword}
	}
	if err := e.people.AddNote(ctx, person.ID, note); err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}

	e.logger.Info("captured note", zap.String("person_id", person.ID), zap.String("note_id", note.ID))

	date := note.Date
	resp.Captured = note
	resp.Results = []models.SearchResult{{
		Type:           models.ResultNote,
		ID:             note.ID,
		Title:          "Saved note for " + person.Name,
		Description:    content,
		Date:           &date,
		RelevanceScore: CaptureRelevance,
		PersonID:       person.ID,
	}}
	return nil
}

func (e *Engine) newID(now time.Time) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), e.entropy).String()
}

// StripLabel removes a short leading "Label:" such as "Remember:" or "Promise:".
func StripLabel(text string) string {
	text = strings.TrimSpace(text)
	label, rest, ok := strings.Cut(text, ":")
	if !ok || label == "" || len(label) > 20 {
		return text
	}
	for _, r := range label {
		if !unicode.IsLetter(r) && r != ' ' {
			return text
		}
	}
	if rest = strings.TrimSpace(rest); rest == "" {
		return text
	}
	return rest
}

// MentionedPerson returns the first person whose first name appears as a word in text.
func MentionedPerson(people []models.Person, text string) *models.Person {
	words := map[string]bool{}
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}

	for i := range people {
		first := strings.ToLower(people[i].FirstName())
		if first != "" && words[first] {
			return &people[i]
		}
	}
	return nil
}
