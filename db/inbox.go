// ABOUTME: Inbox repository for detected events and insights
// ABOUTME: Dismissed items are kept and hidden from the default listing
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/harperreed/dofo/models"
)

// InboxRepository stores inbox items.
type InboxRepository struct {
	db *sql.DB
}

// NewInboxRepository creates a new inbox repository.
func NewInboxRepository(db *sql.DB) *InboxRepository {
	return &InboxRepository{db: db}
}

// List returns inbox items newest first.
func (r *InboxRepository) List(ctx context.Context, includeDismissed bool) ([]models.InboxItem, error) {
	query := `
		SELECT id, type, title, description, person_id, person_name, date,
		       actionable, suggested_actions, dismissed
		FROM inbox_items
	`
	if !includeDismissed {
		query += ` WHERE dismissed = 0`
	}
	query += ` ORDER BY date DESC, rowid`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query inbox: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []models.InboxItem
	for rows.Next() {
		var item models.InboxItem
		var desc, personID, personName sql.NullString
		var suggested string
		err := rows.Scan(&item.ID, &item.Type, &item.Title, &desc, &personID, &personName,
			&item.Date, &item.Actionable, &suggested, &item.Dismissed)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inbox item: %w", err)
		}
		item.Date = item.Date.UTC()
		item.Description = desc.String
		item.PersonID = personID.String
		item.PersonName = personName.String
		if item.SuggestedActions, err = decodeList(suggested); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Create adds an item to the inbox.
func (r *InboxRepository) Create(ctx context.Context, item *models.InboxItem) error {
	return insertInboxItem(ctx, r.db, item)
}

func insertInboxItem(ctx context.Context, ex execer, item *models.InboxItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	suggested, err := encodeList(item.SuggestedActions)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO inbox_items (
			id, type, title, description, person_id, person_name, date,
			actionable, suggested_actions, dismissed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.Type, item.Title, nullString(item.Description), nullString(item.PersonID),
		nullString(item.PersonName), item.Date.UTC(), item.Actionable, suggested, item.Dismissed)
	if err != nil {
		return fmt.Errorf("failed to insert inbox item: %w", err)
	}
	return nil
}

// Dismiss hides an item from the default listing.
func (r *InboxRepository) Dismiss(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE inbox_items SET dismissed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to dismiss inbox item: %w", err)
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
