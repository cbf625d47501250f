// ABOUTME: Daily action repository backing the home feed
// ABOUTME: Actions keep their insertion order; sorting is the feed's job
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/harperreed/dofo/models"
)

// ActionRepository stores daily actions.
type ActionRepository struct {
	db *sql.DB
}

// NewActionRepository creates a new action repository.
func NewActionRepository(db *sql.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

const actionColumns = `id, title, description, type, priority, person_id, person_name, ai_draft, due_date, completed, tags`

func (r *ActionRepository) query(ctx context.Context, query string, args ...any) ([]models.DailyAction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var actions []models.DailyAction
	for rows.Next() {
		var a models.DailyAction
		var desc, draft sql.NullString
		var due sql.NullTime
		var tags string
		if err := rows.Scan(&a.ID, &a.Title, &desc, &a.Type, &a.Priority, &a.PersonID, &a.PersonName, &draft, &due, &a.Completed, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		a.Description = desc.String
		a.AIDraft = draft.String
		a.DueDate = timePtr(due)
		if a.Tags, err = decodeList(tags); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// List returns every daily action.
func (r *ActionRepository) List(ctx context.Context) ([]models.DailyAction, error) {
	return r.query(ctx, `SELECT `+actionColumns+` FROM daily_actions ORDER BY position, rowid`)
}

// ListByPerson returns the daily actions for one person.
func (r *ActionRepository) ListByPerson(ctx context.Context, personID string) ([]models.DailyAction, error) {
	return r.query(ctx, `SELECT `+actionColumns+` FROM daily_actions WHERE person_id = ? ORDER BY position, rowid`, personID)
}

// Create appends an action to the list.
func (r *ActionRepository) Create(ctx context.Context, a *models.DailyAction) error {
	return insertAction(ctx, r.db, a)
}

func insertAction(ctx context.Context, ex execer, a *models.DailyAction) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Priority == "" {
		a.Priority = models.PriorityMedium
	}
	tags, err := encodeList(a.Tags)
	if err != nil {
		return err
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO daily_actions (
			id, title, description, type, priority, person_id, person_name,
			ai_draft, due_date, completed, tags, position
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM daily_actions))
	`, a.ID, a.Title, nullString(a.Description), a.Type, a.Priority, a.PersonID, a.PersonName,
		nullString(a.AIDraft), nullTime(a.DueDate), a.Completed, tags)
	if err != nil {
		return fmt.Errorf("failed to insert action: %w", err)
	}
	return nil
}

// Complete marks an action done.
func (r *ActionRepository) Complete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE daily_actions SET completed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to complete action: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
