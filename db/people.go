// ABOUTME: Person repository with notes, promises, and interaction history
// ABOUTME: Logging an interaction moves last contact forward and refreshes the cadence flag
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/urgency"
)

// PersonRepository stores people and their nested history.
type PersonRepository struct {
	db *sql.DB
}

// NewPersonRepository creates a new person repository.
func NewPersonRepository(db *sql.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

const personColumns = `
	id, name, email, phone, avatar, relation, circles, tags, last_contact,
	contact_frequency, health_score, milestone_type, milestone_date,
	milestone_description, cadence_frequency, cadence_last_contact, cadence_overdue
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*models.Person, error) {
	var (
		p                            models.Person
		email, phone, avatar         sql.NullString
		circles, tags                string
		lastContact, milestoneDate   sql.NullTime
		milestoneType, milestoneDesc sql.NullString
		cadenceFrequency             sql.NullString
		cadenceLastContact           sql.NullTime
		cadenceOverdue               bool
	)

	err := row.Scan(
		&p.ID, &p.Name, &email, &phone, &avatar, &p.Relation, &circles, &tags, &lastContact,
		&p.ContactFrequency, &p.HealthScore, &milestoneType, &milestoneDate,
		&milestoneDesc, &cadenceFrequency, &cadenceLastContact, &cadenceOverdue,
	)
	if err != nil {
		return nil, err
	}

	p.Email = email.String
	p.Phone = phone.String
	p.Avatar = avatar.String
	p.LastContact = timePtr(lastContact)

	if p.Circles, err = decodeList(circles); err != nil {
		return nil, err
	}
	if p.Tags, err = decodeList(tags); err != nil {
		return nil, err
	}

	if milestoneType.Valid && milestoneDate.Valid {
		p.NextMilestone = &models.Milestone{
			Type:        milestoneType.String,
			Date:        milestoneDate.Time.UTC(),
			Description: milestoneDesc.String,
		}
	}

	if cadenceFrequency.Valid {
		p.Cadence = &models.Cadence{
			Frequency: cadenceFrequency.String,
			Overdue:   cadenceOverdue,
		}
		if cadenceLastContact.Valid {
			p.Cadence.LastContact = cadenceLastContact.Time.UTC()
		}
	}

	return &p, nil
}

// List returns every person with notes, promises, and interactions attached.
func (r *PersonRepository) List(ctx context.Context) ([]models.Person, error) {
	return r.query(ctx, `SELECT `+personColumns+` FROM people ORDER BY rowid`)
}

// FindByName returns people whose name contains name, case-insensitively.
func (r *PersonRepository) FindByName(ctx context.Context, name string) ([]models.Person, error) {
	pattern := "%" + strings.ToLower(name) + "%"
	return r.query(ctx, `SELECT `+personColumns+` FROM people WHERE LOWER(name) LIKE ? ORDER BY rowid`, pattern)
}

func (r *PersonRepository) query(ctx context.Context, query string, args ...any) ([]models.Person, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}

	var people []models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, *p)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	for i := range people {
		if err := r.loadHistory(ctx, &people[i]); err != nil {
			return nil, err
		}
	}
	return people, nil
}

// Get returns one person by id or ErrNotFound.
func (r *PersonRepository) Get(ctx context.Context, id string) (*models.Person, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE id = ?`, id)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	if err := r.loadHistory(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PersonRepository) loadHistory(ctx context.Context, p *models.Person) error {
	var err error
	if p.Notes, err = r.notes(ctx, p.ID); err != nil {
		return err
	}
	if p.Promises, err = r.promises(ctx, p.ID); err != nil {
		return err
	}
	if p.Interactions, err = r.interactions(ctx, p.ID); err != nil {
		return err
	}
	return nil
}

func (r *PersonRepository) notes(ctx context.Context, personID string) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, content, date, tags FROM notes WHERE person_id = ? ORDER BY date, rowid
	`, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		var tags string
		if err := rows.Scan(&n.ID, &n.Content, &n.Date, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		n.Date = n.Date.UTC()
		n.PersonID = personID
		if n.Tags, err = decodeList(tags); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *PersonRepository) promises(ctx context.Context, personID string) ([]models.Promise, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, due_date, completed, completed_date, priority
		FROM promises WHERE person_id = ? ORDER BY rowid
	`, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to query promises: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var promises []models.Promise
	for rows.Next() {
		var pr models.Promise
		var completedDate sql.NullTime
		if err := rows.Scan(&pr.ID, &pr.Description, &pr.DueDate, &pr.Completed, &completedDate, &pr.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan promise: %w", err)
		}
		pr.DueDate = pr.DueDate.UTC()
		pr.CompletedDate = timePtr(completedDate)
		pr.PersonID = personID
		promises = append(promises, pr)
	}
	return promises, rows.Err()
}

func (r *PersonRepository) interactions(ctx context.Context, personID string) ([]models.Interaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, date, description, sentiment
		FROM interactions WHERE person_id = ? ORDER BY date, rowid
	`, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Interaction
	for rows.Next() {
		var in models.Interaction
		var desc, sentiment sql.NullString
		if err := rows.Scan(&in.ID, &in.Type, &in.Date, &desc, &sentiment); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		in.Date = in.Date.UTC()
		in.Description = desc.String
		in.Sentiment = sentiment.String
		in.PersonID = personID
		out = append(out, in)
	}
	return out, rows.Err()
}

// Create inserts p and its nested history. A missing id gets a UUID.
func (r *PersonRepository) Create(ctx context.Context, p *models.Person) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertPerson(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

func insertPerson(ctx context.Context, ex execer, p *models.Person) error {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return errors.New("person name is required")
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Relation == "" {
		p.Relation = models.RelationOther
	}

	circles, err := encodeList(p.Circles)
	if err != nil {
		return err
	}
	tags, err := encodeList(p.Tags)
	if err != nil {
		return err
	}

	var milestoneType, milestoneDesc sql.NullString
	var milestoneDate sql.NullTime
	if p.NextMilestone != nil {
		milestoneType = nullString(p.NextMilestone.Type)
		milestoneDesc = nullString(p.NextMilestone.Description)
		milestoneDate = nullTime(&p.NextMilestone.Date)
	}

	var cadenceFrequency sql.NullString
	var cadenceLastContact sql.NullTime
	var cadenceOverdue bool
	if p.Cadence != nil {
		cadenceFrequency = sql.NullString{String: p.Cadence.Frequency, Valid: true}
		if !p.Cadence.LastContact.IsZero() {
			cadenceLastContact = nullTime(&p.Cadence.LastContact)
		}
		cadenceOverdue = p.Cadence.Overdue
	}

	now := time.Now().UTC()

	_, err = ex.ExecContext(ctx, `
		INSERT INTO people (
			id, name, email, phone, avatar, relation, circles, tags, last_contact,
			contact_frequency, health_score, milestone_type, milestone_date,
			milestone_description, cadence_frequency, cadence_last_contact, cadence_overdue,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.Name, nullString(p.Email), nullString(p.Phone), nullString(p.Avatar),
		p.Relation, circles, tags, nullTime(p.LastContact),
		p.ContactFrequency, p.HealthScore, milestoneType, milestoneDate,
		milestoneDesc, cadenceFrequency, cadenceLastContact, cadenceOverdue,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}

	for i := range p.Notes {
		if err := insertNote(ctx, ex, p.ID, &p.Notes[i]); err != nil {
			return err
		}
	}
	for i := range p.Promises {
		if err := insertPromise(ctx, ex, p.ID, &p.Promises[i]); err != nil {
			return err
		}
	}
	for i := range p.Interactions {
		if err := insertInteraction(ctx, ex, p.ID, &p.Interactions[i]); err != nil {
			return err
		}
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertNote(ctx context.Context, ex execer, personID string, n *models.Note) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.PersonID = personID
	tags, err := encodeList(n.Tags)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO notes (id, person_id, content, date, tags) VALUES (?, ?, ?, ?, ?)
	`, n.ID, personID, n.Content, n.Date.UTC(), tags)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

func insertPromise(ctx context.Context, ex execer, personID string, pr *models.Promise) error {
	if pr.ID == "" {
		pr.ID = uuid.New().String()
	}
	if pr.Priority == "" {
		pr.Priority = models.PriorityMedium
	}
	pr.PersonID = personID
	_, err := ex.ExecContext(ctx, `
		INSERT INTO promises (id, person_id, description, due_date, completed, completed_date, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, pr.ID, personID, pr.Description, pr.DueDate.UTC(), pr.Completed, nullTime(pr.CompletedDate), pr.Priority)
	if err != nil {
		return fmt.Errorf("failed to insert promise: %w", err)
	}
	return nil
}

func insertInteraction(ctx context.Context, ex execer, personID string, in *models.Interaction) error {
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	in.PersonID = personID
	_, err := ex.ExecContext(ctx, `
		INSERT INTO interactions (id, person_id, type, date, description, sentiment)
		VALUES (?, ?, ?, ?, ?, ?)
	`, in.ID, personID, in.Type, in.Date.UTC(), in.Description, in.Sentiment)
	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}

func (r *PersonRepository) exists(ctx context.Context, id string) error {
	var found int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM people WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// AddNote attaches a note to a person.
func (r *PersonRepository) AddNote(ctx context.Context, personID string, note *models.Note) error {
	if err := r.exists(ctx, personID); err != nil {
		return err
	}
	return insertNote(ctx, r.db, personID, note)
}

// AddPromise attaches an open promise to a person.
func (r *PersonRepository) AddPromise(ctx context.Context, personID string, promise *models.Promise) error {
	if err := r.exists(ctx, personID); err != nil {
		return err
	}
	return insertPromise(ctx, r.db, personID, promise)
}

// CompletePromise marks a promise done as of at.
func (r *PersonRepository) CompletePromise(ctx context.Context, promiseID string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE promises SET completed = 1, completed_date = ? WHERE id = ?
	`, at.UTC(), promiseID)
	if err != nil {
		return fmt.Errorf("failed to complete promise: %w", err)
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

// SetMilestone replaces a person's next milestone. A nil milestone clears it.
func (r *PersonRepository) SetMilestone(ctx context.Context, personID string, m *models.Milestone) error {
	var kind, desc sql.NullString
	var date sql.NullTime
	if m != nil {
		kind = nullString(m.Type)
		desc = nullString(m.Description)
		date = nullTime(&m.Date)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE people
		SET milestone_type = ?, milestone_date = ?, milestone_description = ?, updated_at = ?
		WHERE id = ?
	`, kind, date, desc, time.Now().UTC(), personID)
	if err != nil {
		return fmt.Errorf("failed to set milestone: %w", err)
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

// LogInteraction records an interaction and, when it is the newest contact,
// moves last contact forward and recomputes the stored overdue flag.
func (r *PersonRepository) LogInteraction(ctx context.Context, personID string, in *models.Interaction) error {
	p, err := r.Get(ctx, personID)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertInteraction(ctx, tx, personID, in); err != nil {
		return err
	}

	if p.LastContact == nil || !p.LastContact.After(in.Date) {
		at := in.Date.UTC()
		overdue := urgency.IsOverdue(&at, p.CadenceDays(), at)
		_, err = tx.ExecContext(ctx, `
			UPDATE people
			SET last_contact = ?,
			    cadence_last_contact = CASE WHEN cadence_frequency IS NULL THEN NULL ELSE ? END,
			    cadence_overdue = ?,
			    updated_at = ?
			WHERE id = ?
		`, at, at, overdue, time.Now().UTC(), personID)
		if err != nil {
			return fmt.Errorf("failed to update last contact: %w", err)
		}
	}

	return tx.Commit()
}
