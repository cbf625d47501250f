// ABOUTME: Catalog repository for circles, tags, canned advice, and daily questions
// ABOUTME: These tables are filled by Seed and read by the presentation layers
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/harperreed/dofo/models"
)

// CatalogRepository reads reference data.
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListCircles returns every circle with members and upcoming events.
func (r *CatalogRepository) ListCircles(ctx context.Context) ([]models.Circle, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, members, health_score, last_group_activity, upcoming_events
		FROM circles ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query circles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var circles []models.Circle
	for rows.Next() {
		var c models.Circle
		var members, events string
		var lastActivity sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &members, &c.HealthScore, &lastActivity, &events); err != nil {
			return nil, fmt.Errorf("failed to scan circle: %w", err)
		}
		if c.Members, err = decodeList(members); err != nil {
			return nil, err
		}
		c.LastGroupActivity = timePtr(lastActivity)
		if events != "" && events != "[]" {
			if err := json.Unmarshal([]byte(events), &c.UpcomingEvents); err != nil {
				return nil, fmt.Errorf("failed to decode circle events: %w", err)
			}
		}
		circles = append(circles, c)
	}
	return circles, rows.Err()
}

// ListTags returns every tag with usage counts.
func (r *CatalogRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, people_count, memories_count, activities_count, color
		FROM tags ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		var color sql.NullString
		err := rows.Scan(&t.ID, &t.Name, &t.Type, &t.UsageCount.People, &t.UsageCount.Memories,
			&t.UsageCount.Activities, &color)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		t.Color = color.String
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListAdvice returns the canned advice responses.
func (r *CatalogRepository) ListAdvice(ctx context.Context) ([]models.AdviceResponse, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, content, tone, confidence, reasoning
		FROM advice_responses ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query advice: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var advice []models.AdviceResponse
	for rows.Next() {
		var a models.AdviceResponse
		var tone, reasoning sql.NullString
		if err := rows.Scan(&a.ID, &a.Type, &a.Content, &tone, &a.Confidence, &reasoning); err != nil {
			return nil, fmt.Errorf("failed to scan advice: %w", err)
		}
		a.Tone = tone.String
		a.Reasoning = reasoning.String
		advice = append(advice, a)
	}
	return advice, rows.Err()
}

// ListQuestions returns the daily question pool.
func (r *CatalogRepository) ListQuestions(ctx context.Context) ([]models.DailyQuestion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category, text, type, options, person_id, person_name
		FROM daily_questions ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var questions []models.DailyQuestion
	for rows.Next() {
		var q models.DailyQuestion
		var options string
		var personID, personName sql.NullString
		if err := rows.Scan(&q.ID, &q.Category, &q.Text, &q.Type, &options, &personID, &personName); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		if q.Options, err = decodeList(options); err != nil {
			return nil, err
		}
		q.PersonID = personID.String
		q.PersonName = personName.String
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func insertCircle(ctx context.Context, ex execer, c *models.Circle) error {
	members, err := encodeList(c.Members)
	if err != nil {
		return err
	}
	events := "[]"
	if len(c.UpcomingEvents) > 0 {
		b, err := json.Marshal(c.UpcomingEvents)
		if err != nil {
			return fmt.Errorf("failed to encode circle events: %w", err)
		}
		events = string(b)
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO circles (id, name, type, members, health_score, last_group_activity, upcoming_events)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Type, members, c.HealthScore, nullTime(c.LastGroupActivity), events)
	if err != nil {
		return fmt.Errorf("failed to insert circle: %w", err)
	}
	return nil
}

func insertTag(ctx context.Context, ex execer, t *models.Tag) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO tags (id, name, type, people_count, memories_count, activities_count, color)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Type, t.UsageCount.People, t.UsageCount.Memories, t.UsageCount.Activities, nullString(t.Color))
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}
	return nil
}

func insertAdvice(ctx context.Context, ex execer, a *models.AdviceResponse) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO advice_responses (id, type, content, tone, confidence, reasoning)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.Type, a.Content, nullString(a.Tone), a.Confidence, nullString(a.Reasoning))
	if err != nil {
		return fmt.Errorf("failed to insert advice: %w", err)
	}
	return nil
}

func insertQuestion(ctx context.Context, ex execer, q *models.DailyQuestion) error {
	options, err := encodeList(q.Options)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO daily_questions (id, category, text, type, options, person_id, person_name)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, q.ID, q.Category, q.Text, q.Type, options, nullString(q.PersonID), nullString(q.PersonName))
	if err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}
	return nil
}
