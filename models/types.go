// ABOUTME: Data models for DoFo relationship entities
// ABOUTME: Defines Person, DailyAction, InboxItem, Circle, and preference structs
package models

import (
	"errors"
	"time"
)

// Relation categories.
const (
	RelationFamily  = "family"
	RelationClose   = "close"
	RelationFriends = "friends"
	RelationWork    = "work"
	RelationOther   = "other"
)

// Relations lists the relation categories in display order.
var Relations = []string{RelationFamily, RelationClose, RelationFriends, RelationWork, RelationOther}

// Cadence frequencies.
const (
	FrequencyDaily     = "daily"
	FrequencyWeekly    = "weekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
)

// Frequencies lists the cadence frequencies, most frequent first.
var Frequencies = []string{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly}

// Milestone types.
const (
	MilestoneBirthday    = "birthday"
	MilestoneAnniversary = "anniversary"
	MilestoneMeeting     = "meeting"
	MilestoneFollowup    = "followup"
)

// DefaultCadenceDays is used when a person has neither a contact frequency nor a cadence.
const DefaultCadenceDays = 30

type Milestone struct {
	Type        string    `json:"type" yaml:"type"`
	Date        time.Time `json:"date" yaml:"date"`
	Description string    `json:"description" yaml:"description"`
}

type Cadence struct {
	Frequency   string    `json:"frequency" yaml:"frequency"`
	LastContact time.Time `json:"last_contact" yaml:"last_contact"`
	Overdue     bool      `json:"overdue" yaml:"overdue"`
}

type Person struct {
	ID               string        `json:"id" yaml:"id"`
	Name             string        `json:"name" yaml:"name"`
	Email            string        `json:"email,omitempty" yaml:"email,omitempty"`
	Phone            string        `json:"phone,omitempty" yaml:"phone,omitempty"`
	Avatar           string        `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Relation         string        `json:"relation" yaml:"relation"`
	Circles          []string      `json:"circles,omitempty" yaml:"circles,omitempty"`
	LastContact      *time.Time    `json:"last_contact,omitempty" yaml:"last_contact,omitempty"`
	ContactFrequency int           `json:"contact_frequency" yaml:"contact_frequency"`
	NextMilestone    *Milestone    `json:"next_milestone,omitempty" yaml:"next_milestone,omitempty"`
	HealthScore      int           `json:"health_score" yaml:"health_score"`
	Tags             []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
	Cadence          *Cadence      `json:"cadence,omitempty" yaml:"cadence,omitempty"`
	Notes            []Note        `json:"notes,omitempty" yaml:"notes,omitempty"`
	Promises         []Promise     `json:"promises,omitempty" yaml:"promises,omitempty"`
	Interactions     []Interaction `json:"interactions,omitempty" yaml:"interactions,omitempty"`
}

// FirstName returns the first word of the person's name, ignoring any
// parenthesised alias ("Dad (Suresh)" yields "Dad").
func (p *Person) FirstName() string {
	for i, r := range p.Name {
		if r == ' ' || r == '(' {
			return p.Name[:i]
		}
	}
	return p.Name
}

// CadenceDays resolves how often this person should be contacted, in days.
// An explicit contact frequency wins, then the cadence frequency, then DefaultCadenceDays.
func (p *Person) CadenceDays() int {
	return p.CadenceDaysOr(DefaultCadenceDays)
}

// CadenceDaysOr is CadenceDays with fallback used when the person sets neither.
func (p *Person) CadenceDaysOr(fallback int) int {
	if p.ContactFrequency > 0 {
		return p.ContactFrequency
	}
	if p.Cadence != nil {
		if days := FrequencyDays(p.Cadence.Frequency); days > 0 {
			return days
		}
	}
	return fallback
}

// FrequencyDays maps a cadence frequency to days, or 0 for an unknown one.
func FrequencyDays(frequency string) int {
	switch frequency {
	case FrequencyDaily:
		return 1
	case FrequencyWeekly:
		return 7
	case FrequencyMonthly:
		return 30
	case FrequencyQuarterly:
		return 90
	}
	return 0
}

// OpenPromises returns promises that are not yet completed.
func (p *Person) OpenPromises() []Promise {
	var open []Promise
	for _, pr := range p.Promises {
		if !pr.Completed {
			open = append(open, pr)
		}
	}
	return open
}

type Note struct {
	ID       string    `json:"id" yaml:"id"`
	Content  string    `json:"content" yaml:"content"`
	Date     time.Time `json:"date" yaml:"date"`
	Tags     []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	PersonID string    `json:"person_id" yaml:"person_id"`
}

// Priority levels shared by promises and daily actions.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// PriorityRank orders priorities high to low. Unknown priorities sort last.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

type Promise struct {
	ID            string     `json:"id" yaml:"id"`
	Description   string     `json:"description" yaml:"description"`
	DueDate       time.Time  `json:"due_date" yaml:"due_date"`
	Completed     bool       `json:"completed" yaml:"completed"`
	CompletedDate *time.Time `json:"completed_date,omitempty" yaml:"completed_date,omitempty"`
	PersonID      string     `json:"person_id" yaml:"person_id"`
	Priority      string     `json:"priority" yaml:"priority"`
}

// InteractionType constants.
const (
	InteractionCall    = "call"
	InteractionMessage = "message"
	InteractionMeeting = "meeting"
	InteractionEmail   = "email"
	InteractionPhoto   = "photo"
	InteractionGift    = "gift"
)

// InteractionTypes lists the valid interaction types.
var InteractionTypes = []string{InteractionCall, InteractionMessage, InteractionMeeting, InteractionEmail, InteractionPhoto, InteractionGift}

// Sentiment constants.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Sentiments lists the valid sentiments. An empty sentiment is also allowed.
var Sentiments = []string{SentimentPositive, SentimentNeutral, SentimentNegative}

type Interaction struct {
	ID          string    `json:"id" yaml:"id"`
	Type        string    `json:"type" yaml:"type"`
	Date        time.Time `json:"date" yaml:"date"`
	Description string    `json:"description" yaml:"description"`
	PersonID    string    `json:"person_id" yaml:"person_id"`
	Sentiment   string    `json:"sentiment,omitempty" yaml:"sentiment,omitempty"`
}

// Daily action types.
const (
	ActionBirthday  = "birthday"
	ActionFollowup  = "followup"
	ActionPromise   = "promise"
	ActionCheckin   = "checkin"
	ActionMilestone = "milestone"
)

type DailyAction struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Type        string     `json:"type" yaml:"type"`
	Priority    string     `json:"priority" yaml:"priority"`
	PersonID    string     `json:"person_id" yaml:"person_id"`
	PersonName  string     `json:"person_name" yaml:"person_name"`
	AIDraft     string     `json:"ai_draft,omitempty" yaml:"ai_draft,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Completed   bool       `json:"completed" yaml:"completed"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Inbox item types.
const (
	InboxBirthdayDetected    = "birthday_detected"
	InboxJobChange           = "job_change"
	InboxPhotoMemory         = "photo_memory"
	InboxOverduePromise      = "overdue_promise"
	InboxRelationshipInsight = "relationship_insight"
)

type InboxItem struct {
	ID               string    `json:"id" yaml:"id"`
	Type             string    `json:"type" yaml:"type"`
	Title            string    `json:"title" yaml:"title"`
	Description      string    `json:"description" yaml:"description"`
	PersonID         string    `json:"person_id,omitempty" yaml:"person_id,omitempty"`
	PersonName       string    `json:"person_name,omitempty" yaml:"person_name,omitempty"`
	Date             time.Time `json:"date" yaml:"date"`
	Actionable       bool      `json:"actionable" yaml:"actionable"`
	SuggestedActions []string  `json:"suggested_actions,omitempty" yaml:"suggested_actions,omitempty"`
	Dismissed        bool      `json:"dismissed" yaml:"dismissed"`
}

type CircleEvent struct {
	Type        string    `json:"type" yaml:"type"`
	Date        time.Time `json:"date" yaml:"date"`
	Description string    `json:"description" yaml:"description"`
}

type Circle struct {
	ID                string        `json:"id" yaml:"id"`
	Name              string        `json:"name" yaml:"name"`
	Type              string        `json:"type" yaml:"type"`
	Members           []string      `json:"members" yaml:"members"`
	HealthScore       int           `json:"health_score" yaml:"health_score"`
	LastGroupActivity *time.Time    `json:"last_group_activity,omitempty" yaml:"last_group_activity,omitempty"`
	UpcomingEvents    []CircleEvent `json:"upcoming_events,omitempty" yaml:"upcoming_events,omitempty"`
}

type TagUsage struct {
	People     int `json:"people" yaml:"people"`
	Memories   int `json:"memories" yaml:"memories"`
	Activities int `json:"activities" yaml:"activities"`
}

type Tag struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Type       string   `json:"type" yaml:"type"`
	UsageCount TagUsage `json:"usage_count" yaml:"usage_count"`
	Color      string   `json:"color,omitempty" yaml:"color,omitempty"`
}

// Advice response types.
const (
	AdviceMessageDraft     = "message_draft"
	AdviceActionSuggestion = "action_suggestion"
	AdviceGiftIdea         = "gift_idea"
	AdviceGeneral          = "general_advice"
)

type AdviceResponse struct {
	ID         string  `json:"id" yaml:"id"`
	Type       string  `json:"type" yaml:"type"`
	Content    string  `json:"content" yaml:"content"`
	Tone       string  `json:"tone,omitempty" yaml:"tone,omitempty"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
}

// Search result types.
const (
	ResultPerson      = "person"
	ResultNote        = "note"
	ResultPromise     = "promise"
	ResultInteraction = "interaction"
	ResultAdvice      = "advice"
)

type SearchResult struct {
	Type           string     `json:"type"`
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Date           *time.Time `json:"date,omitempty"`
	RelevanceScore float64    `json:"relevance_score"`
	PersonID       string     `json:"person_id,omitempty"`
}

type QuietHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type UserPreferences struct {
	Name                string     `json:"name,omitempty"`
	NudgeIntensity      string     `json:"nudge_intensity"`
	QuietHours          QuietHours `json:"quiet_hours"`
	Language            string     `json:"language"`
	DefaultTone         string     `json:"default_tone"`
	EnableNotifications bool       `json:"enable_notifications"`
	DailyQuestionLimit  int        `json:"daily_question_limit"`
}

// DefaultPreferences mirrors the settings a new user starts with.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		NudgeIntensity:      "medium",
		QuietHours:          QuietHours{Start: "22:00", End: "08:00"},
		Language:            "en",
		DefaultTone:         "casual",
		EnableNotifications: true,
		DailyQuestionLimit:  3,
	}
}

type DailyQuestion struct {
	ID         string   `json:"id" yaml:"id"`
	Category   string   `json:"category" yaml:"category"`
	Text       string   `json:"text" yaml:"text"`
	Type       string   `json:"type" yaml:"type"`
	Options    []string `json:"options,omitempty" yaml:"options,omitempty"`
	PersonID   string   `json:"person_id,omitempty" yaml:"person_id,omitempty"`
	PersonName string   `json:"person_name,omitempty" yaml:"person_name,omitempty"`
}

// ErrNotFound is returned by every store when an id does not resolve.
var ErrNotFound = errors.New("not found")
